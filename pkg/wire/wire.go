// Package wire defines the request and response model of the QuarryDB
// pipeline protocol, a JSON-over-HTTP batch API. Field names and type tags
// are fixed by the server contract and must not be changed.
package wire

import "fmt"

// Request type tags accepted by the pipeline endpoint.
const (
	RequestTypeExecute  = "execute"
	RequestTypeClose    = "close"
	RequestTypeBatch    = "batch"
	RequestTypeSequence = "sequence"
)

// Result status tags returned by the pipeline endpoint.
const (
	ResultTypeOk    = "ok"
	ResultTypeError = "error"
)

// Value type tags.
const (
	TypeNull    = "null"
	TypeInteger = "integer"
	TypeFloat   = "float"
	TypeText    = "text"
	TypeBlob    = "blob"
)

// Condition type tags.
const (
	ConditionTypeOk  = "ok"
	ConditionTypeNot = "not"
)

// Value is the tagged wire representation of a single SQL value.
//
// Exactly one payload field is populated, consistent with Type: integers
// travel as decimal strings in Value to survive 64-bit round-trips, floats
// as JSON numbers in Value, text as a string in Value, and blobs as Base64
// in Base64. A null carries no payload at all.
type Value struct {
	Type   string `json:"type"`
	Value  any    `json:"value,omitempty"`
	Base64 string `json:"base64,omitempty"`
}

// Stmt is a single SQL statement with positional arguments. Named parameters
// must be rewritten to positional placeholders before a Stmt is built.
type Stmt struct {
	SQL  string  `json:"sql"`
	Args []Value `json:"args,omitempty"`
}

// Condition guards a batch step. It is a recursive tree: an "ok" node refers
// to the outcome of an earlier step by index, a "not" node negates its child.
type Condition struct {
	Type string     `json:"type"`
	Step *int32     `json:"step,omitempty"`
	Cond *Condition `json:"cond,omitempty"`
}

// Ok returns a condition that holds when the given step succeeded.
func Ok(step int32) *Condition {
	return &Condition{Type: ConditionTypeOk, Step: &step}
}

// Not returns a condition that holds when the child condition does not.
func Not(cond *Condition) *Condition {
	return &Condition{Type: ConditionTypeNot, Cond: cond}
}

// BatchStep is one statement within a batch, optionally guarded by a
// condition over earlier steps. A step with no condition always runs.
type BatchStep struct {
	Stmt      Stmt       `json:"stmt"`
	Condition *Condition `json:"condition,omitempty"`
}

// Batch is an ordered sequence of conditional steps executed server-side in
// a single round-trip.
type Batch struct {
	Steps []BatchStep `json:"steps"`
}

// Request is one entry of a pipeline request. The wire encoding is not a
// true union: Type selects which of the optional payload fields is
// populated, and the client must only ever populate the matching one.
type Request struct {
	Type  string `json:"type"`
	Stmt  *Stmt  `json:"stmt,omitempty"`
	Batch *Batch `json:"batch,omitempty"`
	SQL   string `json:"sql,omitempty"`
}

// ExecuteRequest wraps a single statement execution.
func ExecuteRequest(stmt Stmt) Request {
	return Request{Type: RequestTypeExecute, Stmt: &stmt}
}

// SequenceRequest wraps raw, possibly multi-statement SQL text that the
// server executes in source order. Sequences carry no arguments and report
// no per-statement row counts.
func SequenceRequest(sql string) Request {
	return Request{Type: RequestTypeSequence, SQL: sql}
}

// BatchRequest wraps a conditional batch.
func BatchRequest(batch Batch) Request {
	return Request{Type: RequestTypeBatch, Batch: &batch}
}

// CloseRequest ends the server-side session identified by the baton.
func CloseRequest() Request {
	return Request{Type: RequestTypeClose}
}

// PipelineRequest is the full request body. Requests are executed in order
// and the response results correspond to them positionally. Baton threads a
// server-issued session across otherwise stateless HTTP exchanges.
type PipelineRequest struct {
	Baton    string    `json:"baton,omitempty"`
	Requests []Request `json:"requests"`
}

// Error is a server-reported failure. Message and Code are surfaced to the
// caller verbatim.
type Error struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	if target == nil {
		return e == nil
	}
	_, ok := target.(*Error)
	return ok
}

// Column is the metadata of one result column. Decltype is the declared type
// string from the schema and is advisory only; actual row values carry their
// own type tags.
type Column struct {
	Name     string `json:"name"`
	Decltype string `json:"decltype,omitempty"`
}

// QueryResult is the materialized result of one executed statement.
//
// Rows is not guaranteed to be rectangular: the server may omit trailing
// null values, so a row may be shorter than Cols. LastInsertRowID is
// string-encoded because it may exceed the float64-safe integer range.
type QueryResult struct {
	Cols             []Column  `json:"cols"`
	Rows             [][]Value `json:"rows"`
	AffectedRowCount int64     `json:"affected_row_count"`
	LastInsertRowID  *string   `json:"last_insert_rowid,omitempty"`
	RowsRead         int64     `json:"rows_read"`
	RowsWritten      int64     `json:"rows_written"`
	QueryDurationMS  float64   `json:"query_duration_ms"`
}

// BatchResult reports per-step outcomes of a batch. StepResults and
// StepErrors are parallel to the batch steps; a non-nil StepErrors entry at
// index i means step i failed and its condition-dependents did not run. A
// step skipped by its condition has nil entries in both.
type BatchResult struct {
	StepResults []*QueryResult `json:"step_results"`
	StepErrors  []*Error       `json:"step_errors"`
}

// Response is the payload of a successful pipeline result. Type mirrors the
// request type; exactly one of Result, BatchResult or Error is populated.
type Response struct {
	Type        string       `json:"type"`
	Result      *QueryResult `json:"result,omitempty"`
	BatchResult *BatchResult `json:"batch_result,omitempty"`
	Error       *Error       `json:"error,omitempty"`
}

// Result is one entry of the pipeline response, tagged "ok" or "error".
type Result struct {
	Type     string    `json:"type"`
	Response *Response `json:"response,omitempty"`
	Error    *Error    `json:"error,omitempty"`
}

// PipelineResponse is the full response body. Baton and BaseURL, when set,
// must be threaded into the next pipeline request issued against the same
// logical connection.
type PipelineResponse struct {
	Baton   string   `json:"baton,omitempty"`
	BaseURL string   `json:"base_url,omitempty"`
	Results []Result `json:"results"`
}
