package quarrydb

import (
	"errors"
	"fmt"

	"github.com/quarrydb/quarrydb.go/pkg/wire"
)

// Errors reported by the client itself. Server-side failures are surfaced as
// *wire.Error with the message and code verbatim.
var (
	// ErrInvalidCursorState is returned by row accessors called before the
	// first Next, after Next has returned false, or after Close.
	ErrInvalidCursorState = errors.New("no current row")

	// ErrNullValue is returned by typed accessors when the field is null.
	ErrNullValue = errors.New("value is null")

	// ErrColumnNotFound is returned for an unknown column name or an
	// out-of-range ordinal.
	ErrColumnNotFound = errors.New("column not found")

	// ErrUnsupportedShape rejects statement shapes the protocol cannot
	// express, before any transport call is made.
	ErrUnsupportedShape = errors.New("unsupported statement shape")

	// ErrRowCountUnknown is reported for sequence executions: the server
	// runs every statement but reports no per-statement row counts.
	ErrRowCountUnknown = errors.New("row count not reported for sequence execution")

	// ErrNoLastInsertID is reported when the statement produced no rowid.
	ErrNoLastInsertID = errors.New("no last insert rowid reported")
)

// CastError reports a typed accessor applied to a field whose value cannot
// be converted to the requested kind.
type CastError struct {
	From string
	To   string
}

func (e *CastError) Error() string {
	return fmt.Sprintf("cannot convert %s value to %s", e.From, e.To)
}

// TransactionError reports a failed atomic batch. Step is the index of the
// first failed batch step (0 is the opening BEGIN) and Cause its server
// error; StepErrors holds the raw per-step errors, parallel to the batch
// steps, for callers needing the full detail. The server has already rolled
// back by the time this error is observed.
type TransactionError struct {
	Step       int
	Cause      *wire.Error
	StepErrors []*wire.Error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction failed at step %d: %v", e.Step, e.Cause)
}

func (e *TransactionError) Unwrap() error {
	return e.Cause
}
