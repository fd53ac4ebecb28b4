// Package table holds the in-memory tabular structure every pipeline stage
// consumes and produces. A missing key in a Row means the field was never
// supplied (an unmatched join, for example); an empty string is a blank value
// that was present in the source.
package table

// Row maps column name to cell value.
type Row map[string]string

// Clone returns a copy of the row that can be mutated independently.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is a finite, fully materialized table with a declared column order.
// Stages never mutate their input table; they build a new one.
type Table struct {
	Columns []string
	Rows    []Row
}

// New creates an empty table with the given column order.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string{}, columns...)}
}

// Append adds a row to the table.
func (t *Table) Append(r Row) {
	t.Rows = append(t.Rows, r)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether the column is declared.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// EnsureColumn declares the column if it is not present yet. Existing rows
// are left untouched; their value for the new column reads as missing.
func (t *Table) EnsureColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}
