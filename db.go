package quarrydb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/quarrydb/quarrydb.go/pkg/connection"
	"github.com/quarrydb/quarrydb.go/pkg/constants"
	"github.com/quarrydb/quarrydb.go/pkg/logger"
	"github.com/quarrydb/quarrydb.go/pkg/wire"
)

// DB is a QuarryDB client over one logical connection.
//
// Every operation is a single pipeline round-trip; the supplied context
// bounds that one exchange. A DB instance must not be shared between
// concurrent units of work without external synchronization.
type DB struct {
	conn   connection.Connection
	logger logger.Logger
	shapes *shapeCache
}

// New connects to the QuarryDB endpoint at the given URL, choosing the HTTP
// or WebSocket transport from the scheme.
func New(ctx context.Context, endpointURL string) (*DB, error) {
	u, err := url.Parse(endpointURL)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpointURL, err)
	}
	return NewWithConfig(ctx, connection.NewConfig(u))
}

// NewWithConfig connects using a prepared configuration.
func NewWithConfig(ctx context.Context, conf *connection.Config) (*DB, error) {
	var conn connection.Connection
	switch conf.URL.Scheme {
	case "http", "https":
		conn = connection.NewHTTPConnection(conf)
	case "ws", "wss":
		conn = connection.NewWSConnection(conf)
	default:
		return nil, fmt.Errorf("unsupported endpoint scheme %q", conf.URL.Scheme)
	}
	return FromConnection(ctx, conn, conf.Logger)
}

// FromConnection builds a DB over an already-constructed connection and
// establishes it.
func FromConnection(ctx context.Context, conn connection.Connection, log logger.Logger) (*DB, error) {
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}
	return &DB{conn: conn, logger: log, shapes: newShapeCache()}, nil
}

// Close releases the connection and any server-side session behind it.
func (db *DB) Close(ctx context.Context) error {
	return db.conn.Close(ctx)
}

// Query executes SQL expected to return rows and materializes the full
// result set behind a cursor. Arguments are positional, or named via Named.
func (db *DB) Query(ctx context.Context, sql string, args ...any) (*Rows, error) {
	response, err := db.roundTrip(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	if response.Result == nil {
		// Only a sequence legitimately materializes nothing; an execute
		// response must carry its result payload.
		if response.Type != wire.RequestTypeSequence {
			return nil, fmt.Errorf("%w: %s response carries no result", constants.ErrInvalidResponse, response.Type)
		}
		return newRows(&wire.QueryResult{}), nil
	}
	return newRows(response.Result), nil
}

// Execute runs SQL for its side effects and returns the affected-row count
// and last insert rowid, when the execution shape reports them.
func (db *DB) Execute(ctx context.Context, sql string, args ...any) (*Result, error) {
	response, err := db.roundTrip(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	if response.Result == nil {
		if response.Type != wire.RequestTypeSequence {
			return nil, fmt.Errorf("%w: %s response carries no result", constants.ErrInvalidResponse, response.Type)
		}
		// Sequence shape: the server ran every statement but reports no
		// cardinality.
		return &Result{}, nil
	}
	res := &Result{affected: response.Result.AffectedRowCount, affectedKnown: true}
	if raw := response.Result.LastInsertRowID; raw != nil {
		id, err := strconv.ParseInt(*raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: last_insert_rowid %q: %v", constants.ErrInvalidResponse, *raw, err)
		}
		res.lastInsertID = &id
	}
	return res, nil
}

func (db *DB) roundTrip(ctx context.Context, sql string, args []any) (*wire.Response, error) {
	reqs, err := db.buildRequests(sql, args)
	if err != nil {
		return nil, err
	}
	resp, err := db.conn.Send(ctx, reqs)
	if err != nil {
		return nil, err
	}
	return firstResponse(resp)
}

// firstResponse extracts the payload of the first pipeline result,
// surfacing server errors verbatim and rejecting structurally invalid
// envelopes.
func firstResponse(resp *wire.PipelineResponse) (*wire.Response, error) {
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%w: empty results", constants.ErrInvalidResponse)
	}
	res := resp.Results[0]
	if res.Type == wire.ResultTypeError {
		if res.Error == nil {
			return nil, fmt.Errorf("%w: error result carries no error", constants.ErrInvalidResponse)
		}
		return nil, res.Error
	}
	if res.Response == nil {
		return nil, fmt.Errorf("%w: result carries no response payload", constants.ErrInvalidResponse)
	}
	if res.Response.Error != nil {
		return nil, res.Response.Error
	}
	return res.Response, nil
}

// Result reports the outcome of a non-query execution.
type Result struct {
	affected      int64
	affectedKnown bool
	lastInsertID  *int64
}

// RowsAffected returns the number of rows changed. Sequence executions fail
// with ErrRowCountUnknown because the protocol reports none for them.
func (r *Result) RowsAffected() (int64, error) {
	if !r.affectedKnown {
		return 0, ErrRowCountUnknown
	}
	return r.affected, nil
}

// LastInsertID returns the rowid of the last inserted row, when the server
// reported one.
func (r *Result) LastInsertID() (int64, error) {
	if r.lastInsertID == nil {
		return 0, ErrNoLastInsertID
	}
	return *r.lastInsertID, nil
}
