package quarrydb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarrydb.go/internal/mock"
	"github.com/quarrydb/quarrydb.go/pkg/wire"
)

func TestBuildTransactionBatchTwoStatements(t *testing.T) {
	batch := buildTransactionBatch([]wire.Stmt{
		{SQL: "INSERT INTO t VALUES (1)"},
		{SQL: "INSERT INTO t VALUES (2)"},
	})

	require.Len(t, batch.Steps, 5)

	assert.Equal(t, "BEGIN", batch.Steps[0].Stmt.SQL)
	assert.Nil(t, batch.Steps[0].Condition)

	for i, want := range []int32{0, 1, 2} {
		cond := batch.Steps[i+1].Condition
		require.NotNil(t, cond)
		assert.Equal(t, wire.ConditionTypeOk, cond.Type)
		require.NotNil(t, cond.Step)
		assert.Equal(t, want, *cond.Step)
	}
	assert.Equal(t, "COMMIT", batch.Steps[3].Stmt.SQL)

	rollback := batch.Steps[4]
	assert.Equal(t, "ROLLBACK", rollback.Stmt.SQL)
	require.NotNil(t, rollback.Condition)
	assert.Equal(t, wire.ConditionTypeNot, rollback.Condition.Type)
	require.NotNil(t, rollback.Condition.Cond)
	assert.Equal(t, wire.ConditionTypeOk, rollback.Condition.Cond.Type)
	require.NotNil(t, rollback.Condition.Cond.Step)
	assert.Equal(t, int32(3), *rollback.Condition.Cond.Step)
}

func TestSummarizeBatchSuccess(t *testing.T) {
	rowid := "12"
	res, err := summarizeBatch(&wire.BatchResult{
		StepResults: []*wire.QueryResult{
			{},
			{AffectedRowCount: 1},
			{AffectedRowCount: 2, LastInsertRowID: &rowid},
			{},
			nil,
		},
		StepErrors: make([]*wire.Error, 5),
	}, 2)
	require.NoError(t, err)

	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)

	id, err := res.LastInsertID()
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
}

func TestSummarizeBatchStepFailure(t *testing.T) {
	stepErrs := []*wire.Error{
		nil,
		nil,
		{Message: "UNIQUE constraint failed", Code: "SQLITE_CONSTRAINT"},
		nil,
		nil,
	}
	_, err := summarizeBatch(&wire.BatchResult{
		StepResults: make([]*wire.QueryResult, 5),
		StepErrors:  stepErrs,
	}, 2)

	var txErr *TransactionError
	require.True(t, errors.As(err, &txErr))
	assert.Equal(t, 2, txErr.Step)
	assert.Equal(t, "UNIQUE constraint failed", txErr.Cause.Message)
	// The raw per-step errors stay reachable for callers needing full detail.
	assert.Equal(t, stepErrs, txErr.StepErrors)
}

func TestExecuteTransaction(t *testing.T) {
	conn := mock.New(mock.OkBatch(&wire.BatchResult{
		StepResults: []*wire.QueryResult{{}, {AffectedRowCount: 1}, {AffectedRowCount: 1}, {}, nil},
		StepErrors:  make([]*wire.Error, 5),
	}))
	db := &DB{conn: conn, shapes: newShapeCache()}

	res, err := db.ExecuteTransaction(context.Background(),
		Statement{SQL: "INSERT INTO t VALUES (?1)", Args: []any{1}},
		Statement{SQL: "DELETE FROM u WHERE id=@id", Args: []any{Named("id", 2)}},
	)
	require.NoError(t, err)

	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	require.Len(t, conn.Sent, 1)
	require.Len(t, conn.Sent[0], 1)
	sent := conn.Sent[0][0]
	assert.Equal(t, wire.RequestTypeBatch, sent.Type)
	require.NotNil(t, sent.Batch)
	require.Len(t, sent.Batch.Steps, 5)
	assert.Equal(t, "DELETE FROM u WHERE id=?1", sent.Batch.Steps[2].Stmt.SQL)
}

func TestExecuteTransactionBadStatement(t *testing.T) {
	conn := mock.New()
	db := &DB{conn: conn, shapes: newShapeCache()}

	_, err := db.ExecuteTransaction(context.Background(),
		Statement{SQL: "SELECT 1", Args: []any{Named("nope", 1)}})
	assert.ErrorIs(t, err, ErrUnsupportedShape)
	// Rejected before any transport call.
	assert.Empty(t, conn.Sent)
}
