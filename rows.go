package quarrydb

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/quarrydb/quarrydb.go/pkg/values"
	"github.com/quarrydb/quarrydb.go/pkg/wire"
)

// Kind is the advisory field kind guessed from a column's declared type
// string. It exists for introspection only: actual decoding always trusts
// the per-value wire tag, never this guess.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindFloat
	KindBlob
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBlob:
		return "blob"
	default:
		return "text"
	}
}

// kindOfDecltype guesses a kind lexically from the declared type string,
// following SQLite affinity conventions.
func kindOfDecltype(decltype string) Kind {
	d := strings.ToUpper(decltype)
	switch {
	case strings.Contains(d, "INT"):
		return KindInteger
	case strings.Contains(d, "REAL"), strings.Contains(d, "FLOAT"), strings.Contains(d, "DOUBLE"):
		return KindFloat
	case strings.Contains(d, "BLOB"):
		return KindBlob
	default:
		return KindText
	}
}

// Rows is a forward-only cursor over one materialized result set.
//
// The cursor starts before the first row; call Next to advance. Accessors
// called before the first Next, after Next has returned false, or after
// Close fail with ErrInvalidCursorState. A Rows is not safe for concurrent
// use.
type Rows struct {
	cols []wire.Column
	rows [][]wire.Value

	pos    int
	closed bool
}

func newRows(res *wire.QueryResult) *Rows {
	return &Rows{cols: res.Cols, rows: res.Rows, pos: -1}
}

// Next advances to the next row and reports whether one exists.
func (r *Rows) Next() bool {
	if r.closed {
		return false
	}
	if r.pos < len(r.rows) {
		r.pos++
	}
	return r.pos < len(r.rows)
}

// NextResultSet always reports false: this transport yields exactly one
// result set per executed request.
func (r *Rows) NextResultSet() bool {
	return false
}

// Close ends the cursor. It is safe to call in any state and is terminal.
func (r *Rows) Close() error {
	r.closed = true
	return nil
}

// Columns returns the column names in result order.
func (r *Rows) Columns() []string {
	names := make([]string, len(r.cols))
	for i, c := range r.cols {
		names[i] = c.Name
	}
	return names
}

// ColumnCount returns the number of columns in the result set.
func (r *Rows) ColumnCount() int {
	return len(r.cols)
}

// DeclType returns the declared type string of the column, or "" when the
// ordinal is out of range or the schema reported none.
func (r *Rows) DeclType(ordinal int) string {
	if ordinal < 0 || ordinal >= len(r.cols) {
		return ""
	}
	return r.cols[ordinal].Decltype
}

// ColumnKind returns the advisory kind guess for the column.
func (r *Rows) ColumnKind(ordinal int) Kind {
	return kindOfDecltype(r.DeclType(ordinal))
}

// Ordinal resolves a column name to its ordinal, case-insensitively.
func (r *Rows) Ordinal(name string) (int, error) {
	for i, c := range r.cols {
		if strings.EqualFold(c.Name, name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

func (r *Rows) current() ([]wire.Value, error) {
	if r.closed {
		return nil, fmt.Errorf("%w: cursor is closed", ErrInvalidCursorState)
	}
	if r.pos < 0 {
		return nil, fmt.Errorf("%w: Next has not been called", ErrInvalidCursorState)
	}
	if r.pos >= len(r.rows) {
		return nil, fmt.Errorf("%w: cursor is exhausted", ErrInvalidCursorState)
	}
	return r.rows[r.pos], nil
}

// Value returns the decoded native value of the field: nil, int64, float64,
// string or []byte. The server may omit trailing null fields, so an ordinal
// beyond the end of the current row reads as nil provided it names a column.
func (r *Rows) Value(ordinal int) (any, error) {
	row, err := r.current()
	if err != nil {
		return nil, err
	}
	if ordinal < 0 || ordinal >= len(r.cols) {
		return nil, fmt.Errorf("%w: ordinal %d of %d columns", ErrColumnNotFound, ordinal, len(r.cols))
	}
	if ordinal >= len(row) {
		return nil, nil
	}
	return values.Decode(row[ordinal])
}

// IsNull reports whether the field decodes to the null value.
func (r *Rows) IsNull(ordinal int) (bool, error) {
	v, err := r.Value(ordinal)
	if err != nil {
		return false, err
	}
	return v == nil, nil
}

// Int64 returns the field as an int64, converting exactly-integral floats
// and base-10 text. Null fails with ErrNullValue, anything inconvertible
// with a *CastError.
func (r *Rows) Int64(ordinal int) (int64, error) {
	v, err := r.Value(ordinal)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case nil:
		return 0, ErrNullValue
	case int64:
		return x, nil
	case float64:
		if x != math.Trunc(x) {
			return 0, &CastError{From: kindName(v), To: "integer"}
		}
		return int64(x), nil
	case string:
		i, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0, &CastError{From: kindName(v), To: "integer"}
		}
		return i, nil
	default:
		return 0, &CastError{From: kindName(v), To: "integer"}
	}
}

// Float64 returns the field as a float64.
func (r *Rows) Float64(ordinal int) (float64, error) {
	v, err := r.Value(ordinal)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case nil:
		return 0, ErrNullValue
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, &CastError{From: kindName(v), To: "float"}
		}
		return f, nil
	default:
		return 0, &CastError{From: kindName(v), To: "float"}
	}
}

// String returns the field as a string, formatting numbers in their
// invariant base-10 form.
func (r *Rows) String(ordinal int) (string, error) {
	v, err := r.Value(ordinal)
	if err != nil {
		return "", err
	}
	switch x := v.(type) {
	case nil:
		return "", ErrNullValue
	case string:
		return x, nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	default:
		return "", &CastError{From: kindName(v), To: "text"}
	}
}

// Bytes returns the field as a byte slice. Only blob fields convert.
func (r *Rows) Bytes(ordinal int) ([]byte, error) {
	v, err := r.Value(ordinal)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case nil:
		return nil, ErrNullValue
	case []byte:
		return x, nil
	default:
		return nil, &CastError{From: kindName(v), To: "blob"}
	}
}

// Bool returns the field as a bool, with any non-zero integer reading true.
func (r *Rows) Bool(ordinal int) (bool, error) {
	i, err := r.Int64(ordinal)
	if err != nil {
		return false, err
	}
	return i != 0, nil
}

func kindName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case int64:
		return "integer"
	case float64:
		return "float"
	case string:
		return "text"
	case []byte:
		return "blob"
	default:
		return fmt.Sprintf("%T", v)
	}
}
