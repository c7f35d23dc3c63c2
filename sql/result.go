package sql

import (
	"errors"

	"github.com/quarrydb/quarrydb.go"
)

type result struct {
	res *quarrydb.Result
}

func (r result) LastInsertId() (int64, error) {
	return r.res.LastInsertID()
}

func (r result) RowsAffected() (int64, error) {
	return r.res.RowsAffected()
}

// pendingResult is returned for statements buffered inside a transaction:
// nothing has reached the server yet, so no counts exist until Commit.
type pendingResult struct{}

var errPending = errors.New("result not available until the transaction commits")

func (pendingResult) LastInsertId() (int64, error) {
	return 0, errPending
}

func (pendingResult) RowsAffected() (int64, error) {
	return 0, errPending
}
