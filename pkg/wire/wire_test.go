package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The field names and type tags below are the literal strings the server
// expects; these tests pin them.
func TestRequestJSON(t *testing.T) {
	t.Run("execute", func(t *testing.T) {
		req := ExecuteRequest(Stmt{
			SQL:  "INSERT INTO t VALUES (?1)",
			Args: []Value{{Type: TypeInteger, Value: "1"}},
		})
		data, err := json.Marshal(PipelineRequest{Requests: []Request{req}})
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"requests": [{
				"type": "execute",
				"stmt": {
					"sql": "INSERT INTO t VALUES (?1)",
					"args": [{"type": "integer", "value": "1"}]
				}
			}]
		}`, string(data))
	})

	t.Run("sequence", func(t *testing.T) {
		data, err := json.Marshal(SequenceRequest("SELECT 1; SELECT 2"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"type": "sequence", "sql": "SELECT 1; SELECT 2"}`, string(data))
	})

	t.Run("close with baton", func(t *testing.T) {
		data, err := json.Marshal(PipelineRequest{Baton: "b-1", Requests: []Request{CloseRequest()}})
		require.NoError(t, err)
		assert.JSONEq(t, `{"baton": "b-1", "requests": [{"type": "close"}]}`, string(data))
	})

	t.Run("batch with conditions", func(t *testing.T) {
		req := BatchRequest(Batch{Steps: []BatchStep{
			{Stmt: Stmt{SQL: "BEGIN"}},
			{Stmt: Stmt{SQL: "DELETE FROM t"}, Condition: Ok(0)},
			{Stmt: Stmt{SQL: "ROLLBACK"}, Condition: Not(Ok(1))},
		}})
		data, err := json.Marshal(req)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"type": "batch",
			"batch": {
				"steps": [
					{"stmt": {"sql": "BEGIN"}},
					{"stmt": {"sql": "DELETE FROM t"}, "condition": {"type": "ok", "step": 0}},
					{"stmt": {"sql": "ROLLBACK"}, "condition": {"type": "not", "cond": {"type": "ok", "step": 1}}}
				]
			}
		}`, string(data))
	})
}

func TestValueJSON(t *testing.T) {
	t.Run("null carries no payload", func(t *testing.T) {
		data, err := json.Marshal(Value{Type: TypeNull})
		require.NoError(t, err)
		assert.JSONEq(t, `{"type": "null"}`, string(data))
	})

	t.Run("blob uses base64 field", func(t *testing.T) {
		data, err := json.Marshal(Value{Type: TypeBlob, Base64: "YWJj"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"type": "blob", "base64": "YWJj"}`, string(data))
	})
}

func TestResponseJSON(t *testing.T) {
	raw := `{
		"baton": "b-2",
		"base_url": "http://replica:8080",
		"results": [{
			"type": "ok",
			"response": {
				"type": "execute",
				"result": {
					"cols": [{"name": "id", "decltype": "INTEGER"}],
					"rows": [[{"type": "integer", "value": "1"}]],
					"affected_row_count": 0,
					"last_insert_rowid": "9223372036854775807",
					"rows_read": 1,
					"rows_written": 0,
					"query_duration_ms": 0.2
				}
			}
		}]
	}`

	var resp PipelineResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))

	assert.Equal(t, "b-2", resp.Baton)
	assert.Equal(t, "http://replica:8080", resp.BaseURL)
	require.Len(t, resp.Results, 1)
	require.NotNil(t, resp.Results[0].Response)
	result := resp.Results[0].Response.Result
	require.NotNil(t, result)
	assert.Equal(t, "id", result.Cols[0].Name)
	require.NotNil(t, result.LastInsertRowID)
	assert.Equal(t, "9223372036854775807", *result.LastInsertRowID)
}

func TestErrorMessage(t *testing.T) {
	assert.EqualError(t, &Error{Message: "no such table: t", Code: "SQLITE_ERROR"},
		"no such table: t (SQLITE_ERROR)")
	assert.EqualError(t, &Error{Message: "boom"}, "boom")
}
