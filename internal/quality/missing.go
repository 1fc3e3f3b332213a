// Package quality implements the row-level cleaning stages: missing-value
// removal and duplicate collapse. Each stage returns a new Table plus a
// report of what it measured before changing anything; inputs are never
// mutated, and neither stage can fail. An empty or already-clean table is a
// valid steady state.
package quality

import "nutriprep/internal/dataset"

// ColumnCount pairs a column name with a count. Reports keep table column
// order so log output lines up with the source file.
type ColumnCount struct {
	Column string
	Count  int
}

// MissingReport summarizes one DropMissing pass.
type MissingReport struct {
	// PerColumn holds the missing-cell count for every column, measured
	// before any removal.
	PerColumn []ColumnCount
	// Total is the sum over PerColumn.
	Total int
	// RowsDropped counts rows removed for containing at least one missing cell.
	RowsDropped int
}

// DropMissing returns a copy of t with every row containing at least one
// missing cell removed. Surviving rows keep their relative order. When the
// table has no missing cells the copy is content-identical to the input.
func DropMissing(t *dataset.Table) (*dataset.Table, MissingReport) {
	rep := MissingReport{PerColumn: make([]ColumnCount, len(t.Columns))}
	for i, c := range t.Columns {
		rep.PerColumn[i].Column = c.Name
	}
	for _, row := range t.Rows {
		for j, v := range row {
			if v == nil {
				rep.PerColumn[j].Count++
				rep.Total++
			}
		}
	}

	out := t.Clone()
	if rep.Total == 0 {
		return out, rep
	}

	kept := out.Rows[:0]
	for _, row := range out.Rows {
		complete := true
		for _, v := range row {
			if v == nil {
				complete = false
				break
			}
		}
		if complete {
			kept = append(kept, row)
		}
	}
	out.Rows = kept
	rep.RowsDropped = len(t.Rows) - len(kept)
	return out, rep
}
