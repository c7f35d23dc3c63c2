package sql

import (
	"context"
	"database/sql/driver"
	"errors"

	"github.com/quarrydb/quarrydb.go"
)

// Conn adapts a quarrydb.DB to database/sql. One Conn owns one logical
// pipeline connection; database/sql provides the pooling above it.
type Conn struct {
	db *quarrydb.DB

	// tx is non-nil while a transaction is buffering statements.
	tx *Tx
}

func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return &Stmt{conn: c, query: query}, nil
}

func (c *Conn) Close() error {
	return c.db.Close(context.Background())
}

func (c *Conn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *Conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if c.tx != nil {
		return nil, errors.New("a transaction is already in progress on this connection")
	}
	if opts.ReadOnly {
		return nil, errors.New("read-only transactions are not supported")
	}
	if opts.Isolation != driver.IsolationLevel(0) {
		return nil, errors.New("isolation levels are not configurable")
	}
	c.tx = &Tx{conn: c}
	return c.tx, nil
}

func (c *Conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if c.tx != nil {
		// Buffered statements have not reached the server yet, so a query
		// here could not observe them.
		return nil, errors.New("queries are not supported inside a pending transaction")
	}
	rows, err := c.db.Query(ctx, query, toArgs(args)...)
	if err != nil {
		return nil, err
	}
	return &Rows{rows: rows}, nil
}

func (c *Conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if c.tx != nil {
		c.tx.enqueue(query, toArgs(args))
		return pendingResult{}, nil
	}
	res, err := c.db.Execute(ctx, query, toArgs(args)...)
	if err != nil {
		return nil, err
	}
	return result{res: res}, nil
}

func (c *Conn) Ping(ctx context.Context) error {
	_, err := c.db.Execute(ctx, "SELECT 1")
	return err
}

func (c *Conn) ResetSession(ctx context.Context) error {
	c.tx = nil
	return nil
}

func (c *Conn) IsValid() bool {
	return true
}

// CheckNamedValue normalizes arguments through the default converter, so
// every value reaching the wire codec is one of the driver base types.
func (c *Conn) CheckNamedValue(nv *driver.NamedValue) error {
	v, err := driver.DefaultParameterConverter.ConvertValue(nv.Value)
	if err != nil {
		return err
	}
	nv.Value = v
	return nil
}

func toArgs(args []driver.NamedValue) []any {
	out := make([]any, len(args))
	for i, a := range args {
		if a.Name != "" {
			out[i] = quarrydb.Named(a.Name, a.Value)
		} else {
			out[i] = a.Value
		}
	}
	return out
}
