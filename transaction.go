package quarrydb

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/quarrydb/quarrydb.go/pkg/constants"
	"github.com/quarrydb/quarrydb.go/pkg/wire"
)

// buildTransactionBatch emulates an atomic multi-statement transaction with
// a conditional-step graph, since the protocol has no native transaction
// primitive. For N statements the batch has N+3 steps:
//
//	step 0     BEGIN              unconditional
//	step i     statement i        runs only if step i-1 succeeded
//	step N+1   COMMIT             runs only if step N succeeded
//	step N+2   ROLLBACK           runs only if COMMIT did not succeed
//
// Each statement guards on its immediate predecessor, so one early failure
// short-circuits every later guarded step through the batch's own condition
// evaluation; the final ROLLBACK fires both when a statement failed and when
// COMMIT itself failed.
func buildTransactionBatch(stmts []wire.Stmt) wire.Batch {
	steps := make([]wire.BatchStep, 0, len(stmts)+3)
	steps = append(steps, wire.BatchStep{Stmt: wire.Stmt{SQL: "BEGIN"}})
	for i, s := range stmts {
		steps = append(steps, wire.BatchStep{Stmt: s, Condition: wire.Ok(int32(i))})
	}
	n := int32(len(stmts))
	steps = append(steps, wire.BatchStep{Stmt: wire.Stmt{SQL: "COMMIT"}, Condition: wire.Ok(n)})
	steps = append(steps, wire.BatchStep{Stmt: wire.Stmt{SQL: "ROLLBACK"}, Condition: wire.Not(wire.Ok(n + 1))})
	return wire.Batch{Steps: steps}
}

// ExecuteTransaction runs the statements atomically in one round-trip. On
// any step failure the server has already rolled back; the returned error is
// a *TransactionError carrying the first step error and the raw per-step
// error list.
func (db *DB) ExecuteTransaction(ctx context.Context, stmts ...Statement) (*Result, error) {
	wireStmts := make([]wire.Stmt, 0, len(stmts))
	for _, s := range stmts {
		ws, err := buildStmt(s.SQL, s.Args)
		if err != nil {
			return nil, err
		}
		wireStmts = append(wireStmts, ws)
	}

	resp, err := db.conn.Send(ctx, []wire.Request{wire.BatchRequest(buildTransactionBatch(wireStmts))})
	if err != nil {
		return nil, err
	}

	response, err := firstResponse(resp)
	if err != nil {
		return nil, err
	}
	if response.BatchResult == nil {
		return nil, fmt.Errorf("%w: batch response carries no batch result", constants.ErrInvalidResponse)
	}

	res, err := summarizeBatch(response.BatchResult, len(stmts))
	if err != nil && db.logger != nil {
		var txErr *TransactionError
		if errors.As(err, &txErr) {
			db.logger.Warn("transaction rolled back",
				"step", txErr.Step,
				"code", txErr.Cause.Code)
		}
	}
	return res, err
}

// summarizeBatch turns per-step outcomes into one result. Any non-nil step
// error fails the whole operation; on success the affected-row counts of the
// statement steps (1..N) are summed, BEGIN/COMMIT/ROLLBACK carry none.
func summarizeBatch(br *wire.BatchResult, stmtCount int) (*Result, error) {
	for i, stepErr := range br.StepErrors {
		if stepErr != nil {
			return nil, &TransactionError{Step: i, Cause: stepErr, StepErrors: br.StepErrors}
		}
	}

	res := &Result{affectedKnown: true}
	for i := 1; i <= stmtCount && i < len(br.StepResults); i++ {
		sr := br.StepResults[i]
		if sr == nil {
			continue
		}
		res.affected += sr.AffectedRowCount
		if sr.LastInsertRowID != nil {
			id, err := strconv.ParseInt(*sr.LastInsertRowID, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: last_insert_rowid %q: %v", constants.ErrInvalidResponse, *sr.LastInsertRowID, err)
			}
			res.lastInsertID = &id
		}
	}
	return res, nil
}
