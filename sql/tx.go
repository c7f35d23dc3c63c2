package sql

import (
	"context"

	"github.com/quarrydb/quarrydb.go"
)

// Tx buffers statements client-side and submits them as one atomic
// conditional batch on Commit. The protocol has no interactive transaction
// primitive, so nothing reaches the server before Commit and Rollback is
// purely local.
type Tx struct {
	conn  *Conn
	stmts []quarrydb.Statement
}

func (t *Tx) enqueue(query string, args []any) {
	t.stmts = append(t.stmts, quarrydb.Statement{SQL: query, Args: args})
}

func (t *Tx) Commit() error {
	defer func() { t.conn.tx = nil }()
	if len(t.stmts) == 0 {
		return nil
	}
	_, err := t.conn.db.ExecuteTransaction(context.Background(), t.stmts...)
	return err
}

func (t *Tx) Rollback() error {
	t.conn.tx = nil
	return nil
}
