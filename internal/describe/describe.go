// Package describe computes pandas-style summary statistics over the numeric
// columns of a table: count, mean, sample standard deviation, min, quartiles,
// max. It is a pure reporting stage; the input table is read, never modified.
package describe

import (
	"fmt"
	"io"
	"math"
	"sort"

	"nutriprep/internal/dataset"
)

// ColumnSummary holds the descriptive statistics of one numeric column,
// computed over its non-missing cells.
type ColumnSummary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64 // sample standard deviation (n-1); 0 when Count < 2
	Min    float64
	Q25    float64
	Q50    float64
	Q75    float64
	Max    float64
}

// Summary is the set of per-column summaries, in table column order. A table
// with no numeric columns yields an empty Summary, not an error.
type Summary struct {
	Columns []ColumnSummary
}

// Summarize computes the summary statistics for every numeric column of t.
func Summarize(t *dataset.Table) Summary {
	var s Summary
	for j, c := range t.Columns {
		if c.Type != dataset.Numeric {
			continue
		}
		vals := make([]float64, 0, len(t.Rows))
		for _, row := range t.Rows {
			if v, ok := row[j].(float64); ok {
				vals = append(vals, v)
			}
		}
		s.Columns = append(s.Columns, summarizeColumn(c.Name, vals))
	}
	return s
}

func summarizeColumn(name string, vals []float64) ColumnSummary {
	cs := ColumnSummary{Column: name, Count: len(vals)}
	if len(vals) == 0 {
		return cs
	}

	var sum float64
	for _, v := range vals {
		sum += v
	}
	cs.Mean = sum / float64(len(vals))

	if len(vals) > 1 {
		var ss float64
		for _, v := range vals {
			d := v - cs.Mean
			ss += d * d
		}
		cs.Std = math.Sqrt(ss / float64(len(vals)-1))
	}

	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	cs.Min = sorted[0]
	cs.Max = sorted[len(sorted)-1]
	cs.Q25 = quantile(sorted, 0.25)
	cs.Q50 = quantile(sorted, 0.50)
	cs.Q75 = quantile(sorted, 0.75)
	return cs
}

// quantile returns the linearly interpolated quantile of sorted values, the
// same interpolation pandas uses for describe().
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	idx := q * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}
	w := idx - float64(lower)
	return sorted[lower]*(1-w) + sorted[upper]*w
}

// Render writes the summary as an aligned text table: one column per numeric
// column, one row per statistic. An empty summary renders a single
// explanatory line instead of failing.
func (s Summary) Render(w io.Writer) {
	if len(s.Columns) == 0 {
		fmt.Fprintln(w, "no numeric columns")
		return
	}

	fmt.Fprintf(w, "%-6s", "")
	for _, c := range s.Columns {
		fmt.Fprintf(w, " %14s", c.Column)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-6s", "count")
	for _, c := range s.Columns {
		fmt.Fprintf(w, " %14d", c.Count)
	}
	fmt.Fprintln(w)

	stat := func(label string, pick func(ColumnSummary) float64) {
		fmt.Fprintf(w, "%-6s", label)
		for _, c := range s.Columns {
			fmt.Fprintf(w, " %14.6f", pick(c))
		}
		fmt.Fprintln(w)
	}
	stat("mean", func(c ColumnSummary) float64 { return c.Mean })
	stat("std", func(c ColumnSummary) float64 { return c.Std })
	stat("min", func(c ColumnSummary) float64 { return c.Min })
	stat("25%", func(c ColumnSummary) float64 { return c.Q25 })
	stat("50%", func(c ColumnSummary) float64 { return c.Q50 })
	stat("75%", func(c ColumnSummary) float64 { return c.Q75 })
	stat("max", func(c ColumnSummary) float64 { return c.Max })
}
