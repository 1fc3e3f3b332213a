package quality

import (
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"nutriprep/internal/dataset"
)

// DuplicateReport summarizes one Deduplicate pass.
type DuplicateReport struct {
	// DuplicateRows counts rows identical to an earlier row across all
	// columns. Every one of them is removed; the first occurrence stays.
	DuplicateRows int
	// PerTextColumn reports, for each text column independently, how many of
	// its values repeat an earlier value in that column (missing values
	// compare equal to each other). Diagnostic only; never triggers removal.
	PerTextColumn []ColumnCount
}

// Deduplicate returns a copy of t with all fully-duplicate rows collapsed to
// their first occurrence, preserving the relative order of kept rows.
//
// Row identity is keyed by an xxh3 hash of the row's canonical cell encoding;
// hash buckets are verified cell-wise, so a collision can never collapse two
// distinct rows.
func Deduplicate(t *dataset.Table) (*dataset.Table, DuplicateReport) {
	var rep DuplicateReport

	// Per-column diagnostics are measured on the input, before any removal,
	// mirroring what gets reported to the user.
	for j, c := range t.Columns {
		if c.Type != dataset.Text {
			continue
		}
		distinct := make(map[string]struct{}, len(t.Rows))
		for _, row := range t.Rows {
			distinct[cellKey(row[j])] = struct{}{}
		}
		rep.PerTextColumn = append(rep.PerTextColumn, ColumnCount{
			Column: c.Name,
			Count:  len(t.Rows) - len(distinct),
		})
	}

	buckets := make(map[uint64][]int, len(t.Rows))
	keep := make([]int, 0, len(t.Rows))
	for i, row := range t.Rows {
		h := hashRow(row)
		dup := false
		for _, k := range buckets[h] {
			if rowsEqual(t.Rows[k], row) {
				dup = true
				break
			}
		}
		if dup {
			rep.DuplicateRows++
			continue
		}
		buckets[h] = append(buckets[h], i)
		keep = append(keep, i)
	}

	cols := make([]dataset.Column, len(t.Columns))
	copy(cols, t.Columns)
	rows := make([][]any, 0, len(keep))
	for _, i := range keep {
		row := make([]any, len(t.Rows[i]))
		copy(row, t.Rows[i])
		rows = append(rows, row)
	}
	return &dataset.Table{Columns: cols, Rows: rows}, rep
}

// hashRow hashes the canonical encoding of a row: cells joined by the unit
// separator, nil encoded as a NUL byte, floats in their exact shortest form.
func hashRow(row []any) uint64 {
	var b strings.Builder
	for i, v := range row {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(cellKey(v))
	}
	return xxh3.HashString(b.String())
}

func cellKey(v any) string {
	switch x := v.(type) {
	case nil:
		return "\x00"
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return x.(string)
	}
}

func rowsEqual(a, b []any) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
