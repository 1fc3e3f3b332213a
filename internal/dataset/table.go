// Package dataset defines the in-memory table model shared by every pipeline
// stage: an ordered set of typed columns over row-major cells.
//
// Column types are resolved once, at load time, and recorded on the column
// descriptor. Downstream stages branch on the recorded tag instead of
// re-inspecting cell values, so a column's treatment (quality checks,
// normalization targets, categorical diagnostics) is decided in exactly one
// place.
//
// Cell domain per column type:
//
//	numeric: float64, or nil when the source cell was missing
//	text:    string, or nil when the source cell was missing
//
// Stages never mutate a Table they receive; each stage that changes data
// returns a new independent Table built via Clone or fresh allocation.
package dataset

// ColumnType tags a column as numeric or text. The tag is assigned by the
// loader and never changes afterwards.
type ColumnType string

const (
	// Numeric marks a column whose every non-missing cell parsed as float64.
	Numeric ColumnType = "numeric"
	// Text marks every other column, including columns with no non-missing
	// cells to infer from.
	Text ColumnType = "text"
)

// Column describes one named, typed column.
type Column struct {
	Name string
	Type ColumnType
}

// Table is an ordered collection of typed columns over row-major cells.
// len(Rows[i]) == len(Columns) holds for every row.
type Table struct {
	Columns []Column
	Rows    [][]any
}

// Shape returns the current (rows, columns) dimensions.
func (t *Table) Shape() (rows, cols int) {
	return len(t.Rows), len(t.Columns)
}

// Names returns the column names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column, or -1 when absent.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// NumericColumns returns the names of all columns tagged Numeric, in table
// order.
func (t *Table) NumericColumns() []string {
	var names []string
	for _, c := range t.Columns {
		if c.Type == Numeric {
			names = append(names, c.Name)
		}
	}
	return names
}

// TextColumns returns the names of all columns tagged Text, in table order.
func (t *Table) TextColumns() []string {
	var names []string
	for _, c := range t.Columns {
		if c.Type == Text {
			names = append(names, c.Name)
		}
	}
	return names
}

// Clone returns a deep copy of the table. Cells hold immutable values
// (float64, string, nil), so copying the row slices is sufficient for full
// independence.
func (t *Table) Clone() *Table {
	cols := make([]Column, len(t.Columns))
	copy(cols, t.Columns)
	rows := make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		nr := make([]any, len(r))
		copy(nr, r)
		rows[i] = nr
	}
	return &Table{Columns: cols, Rows: rows}
}
