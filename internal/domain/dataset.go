package domain

import (
	"fmt"
	"time"
)

// Row maps column names to cell values. Valid value types are float64,
// int64, string, time.Time, and nil for null.
type Row map[string]any

// Dataset is a tabular in-memory artifact: an ordered sequence of rows
// sharing one column layout. It has no identity of its own beyond the
// artifact reference it was loaded from.
type Dataset struct {
	Columns []string
	Rows    []Row
}

// NewDataset creates an empty dataset with the given column order.
func NewDataset(columns ...string) *Dataset {
	return &Dataset{Columns: columns}
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// HasColumn reports whether the dataset declares the named column.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AppendRow adds a row. Cells for undeclared columns are ignored at write
// time by the artifact store, so callers should declare columns first.
func (d *Dataset) AppendRow(r Row) {
	d.Rows = append(d.Rows, r)
}

// AddColumn declares a new column. Existing rows read as null until set.
// Declaring an existing column is a no-op.
func (d *Dataset) AddColumn(name string) {
	if !d.HasColumn(name) {
		d.Columns = append(d.Columns, name)
	}
}

// Float returns the numeric value of a cell, widening int64 to float64.
// The second return is false for nulls and non-numeric values.
func (d *Dataset) Float(row int, column string) (float64, bool) {
	if row < 0 || row >= len(d.Rows) {
		return 0, false
	}
	return AsFloat(d.Rows[row][column])
}

// Time returns the time value of a cell, or false if the cell is not a
// timestamp.
func (d *Dataset) Time(row int, column string) (time.Time, bool) {
	if row < 0 || row >= len(d.Rows) {
		return time.Time{}, false
	}
	t, ok := d.Rows[row][column].(time.Time)
	return t, ok
}

// String returns the string value of a cell, or false if the cell is not a
// string.
func (d *Dataset) String(row int, column string) (string, bool) {
	if row < 0 || row >= len(d.Rows) {
		return "", false
	}
	s, ok := d.Rows[row][column].(string)
	return s, ok
}

// FloatColumn collects the non-null numeric values of a column, preserving
// row order. Null and non-numeric cells are skipped.
func (d *Dataset) FloatColumn(column string) []float64 {
	out := make([]float64, 0, len(d.Rows))
	for i := range d.Rows {
		if v, ok := d.Float(i, column); ok {
			out = append(out, v)
		}
	}
	return out
}

// Clone deep-copies the dataset so a transform can mutate its working copy
// without touching the loaded input.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Columns: append([]string(nil), d.Columns...),
		Rows:    make([]Row, len(d.Rows)),
	}
	for i, r := range d.Rows {
		nr := make(Row, len(r))
		for k, v := range r {
			nr[k] = v
		}
		out.Rows[i] = nr
	}
	return out
}

// AsFloat widens a cell value to float64. Returns false for nulls and
// non-numeric types.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

// ValueKind names the concrete type of a cell value for violation messages.
func ValueKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case float64:
		return "float"
	case int64:
		return "int"
	case string:
		return "string"
	case time.Time:
		return "timestamp"
	default:
		return fmt.Sprintf("%T", v)
	}
}
