package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"nutriprep/internal/dataset"
)

// Write serializes t to w in the same delimited layout Parse consumes: one
// header row of column names followed by the data rows, with no synthetic
// index column. A zero comma means ','.
//
// Float cells use the shortest representation that round-trips exactly
// (strconv 'g' with precision -1), so Write→Parse reproduces numeric values
// bit for bit. Missing cells are written empty.
func Write(w io.Writer, t *dataset.Table, comma rune) error {
	cw := csv.NewWriter(w)
	if comma != 0 {
		cw.Comma = comma
	}

	if err := cw.Write(t.Names()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	rec := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		for j, v := range row {
			rec[j] = formatCell(v)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
