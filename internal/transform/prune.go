// Package transform implements the column-level stages: pruning configured
// columns away and min-max scaling numeric columns into [0, 1]. Every
// operation returns a new Table; inputs are never mutated.
package transform

import "nutriprep/internal/dataset"

// Prune returns a copy of t without the named columns. Names not present in
// the table are silently ignored. removed lists the columns actually
// dropped, in drop-list order.
func Prune(t *dataset.Table, drop []string) (*dataset.Table, []string) {
	var removed []string
	dropSet := make(map[string]struct{}, len(drop))
	for _, name := range drop {
		if t.Index(name) < 0 {
			continue
		}
		if _, dup := dropSet[name]; !dup {
			removed = append(removed, name)
		}
		dropSet[name] = struct{}{}
	}
	if len(dropSet) == 0 {
		return t.Clone(), nil
	}

	keep := make([]int, 0, len(t.Columns))
	cols := make([]dataset.Column, 0, len(t.Columns))
	for j, c := range t.Columns {
		if _, ok := dropSet[c.Name]; ok {
			continue
		}
		keep = append(keep, j)
		cols = append(cols, c)
	}

	rows := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		nr := make([]any, len(keep))
		for k, j := range keep {
			nr[k] = row[j]
		}
		rows[i] = nr
	}
	return &dataset.Table{Columns: cols, Rows: rows}, removed
}
