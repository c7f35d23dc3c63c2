package sql

import (
	"database/sql/driver"
	"io"
	"strings"

	"github.com/quarrydb/quarrydb.go"
)

type Rows struct {
	rows *quarrydb.Rows
}

func (r *Rows) Columns() []string {
	return r.rows.Columns()
}

func (r *Rows) Close() error {
	return r.rows.Close()
}

func (r *Rows) Next(dest []driver.Value) error {
	if !r.rows.Next() {
		return io.EOF
	}
	for i := range dest {
		v, err := r.rows.Value(i)
		if err != nil {
			return err
		}
		dest[i] = v
	}
	return nil
}

// ColumnTypeDatabaseTypeName exposes the declared type string from the
// schema, uppercased per the driver convention.
func (r *Rows) ColumnTypeDatabaseTypeName(index int) string {
	return strings.ToUpper(r.rows.DeclType(index))
}
