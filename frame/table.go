package frame

import (
	"fmt"
	"strings"
)

// Table is an ordered set of named columns over rows of cells. It is the
// normalized form of every tabular census payload.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]Cell `json:"rows"`
}

// NewTable creates an empty table with the given column order.
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.Columns) }

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the cell at (row, column name). Missing columns and
// out-of-range rows yield a null cell.
func (t *Table) Cell(row int, column string) Cell {
	i := t.ColumnIndex(column)
	if i < 0 || row < 0 || row >= len(t.Rows) || i >= len(t.Rows[row]) {
		return Null()
	}
	return t.Rows[row][i]
}

// Column returns all cells of the named column in row order, or nil if the
// column does not exist.
func (t *Table) Column(name string) []Cell {
	i := t.ColumnIndex(name)
	if i < 0 {
		return nil
	}
	out := make([]Cell, 0, len(t.Rows))
	for _, row := range t.Rows {
		if i < len(row) {
			out = append(out, row[i])
		} else {
			out = append(out, Null())
		}
	}
	return out
}

// AppendRow adds a row. The row is padded or truncated to the column count
// so a ragged upstream payload cannot corrupt later lookups.
func (t *Table) AppendRow(cells ...Cell) {
	n := len(t.Columns)
	row := make([]Cell, n)
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Equal reports whether two tables have identical columns and cells.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.Columns) != len(o.Columns) || len(t.Rows) != len(o.Rows) {
		return false
	}
	for i := range t.Columns {
		if t.Columns[i] != o.Columns[i] {
			return false
		}
	}
	for i := range t.Rows {
		if len(t.Rows[i]) != len(o.Rows[i]) {
			return false
		}
		for j := range t.Rows[i] {
			if t.Rows[i][j] != o.Rows[i][j] {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]Cell, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]Cell(nil), row...)
	}
	return out
}

// String renders a compact summary for logs.
func (t *Table) String() string {
	if t == nil {
		return "Table(nil)"
	}
	return fmt.Sprintf("Table(%d rows × %d cols: %s)", t.NumRows(), t.NumCols(),
		strings.Join(t.Columns, ", "))
}
