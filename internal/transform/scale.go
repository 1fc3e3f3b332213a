package transform

import (
	"fmt"

	"nutriprep/internal/dataset"
)

// ColumnRange is the fitted (min, max) of one scaled column.
type ColumnRange struct {
	Column string  `json:"column"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Scaler holds fitted min-max parameters, one range per scaled column, in
// resolution order. Transform maps a value x to (x - min) / (max - min).
//
// Constant columns are the documented degenerate case: when Min == Max the
// transform maps every value to 0 instead of dividing by zero, and the
// fitted range still records the observed value.
type Scaler struct {
	Ranges []ColumnRange `json:"ranges"`
}

// Fit computes the per-column min and max of the named columns over the
// non-missing cells of t. Every name must resolve to a numeric column with
// at least one value to fit from.
func Fit(t *dataset.Table, columns []string) (*Scaler, error) {
	s := &Scaler{Ranges: make([]ColumnRange, 0, len(columns))}
	for _, name := range columns {
		j := t.Index(name)
		if j < 0 {
			return nil, fmt.Errorf("fit %s: column not found", name)
		}
		if t.Columns[j].Type != dataset.Numeric {
			return nil, fmt.Errorf("fit %s: column is not numeric", name)
		}
		lo, hi, ok := observedRange(t, j)
		if !ok {
			return nil, fmt.Errorf("fit %s: no values to fit", name)
		}
		s.Ranges = append(s.Ranges, ColumnRange{Column: name, Min: lo, Max: hi})
	}
	return s, nil
}

// Transform returns a copy of t with every fitted column rescaled. Missing
// cells stay missing; columns not covered by the scaler pass through
// unchanged.
func (s *Scaler) Transform(t *dataset.Table) (*dataset.Table, error) {
	out := t.Clone()
	for _, r := range s.Ranges {
		j := out.Index(r.Column)
		if j < 0 {
			return nil, fmt.Errorf("transform %s: column not found", r.Column)
		}
		if out.Columns[j].Type != dataset.Numeric {
			return nil, fmt.Errorf("transform %s: column is not numeric", r.Column)
		}
		span := r.Max - r.Min
		for _, row := range out.Rows {
			v, ok := row[j].(float64)
			if !ok {
				continue
			}
			if span == 0 {
				row[j] = 0.0
			} else {
				row[j] = (v - r.Min) / span
			}
		}
	}
	return out, nil
}

// Verify reports the observed [min, max] of every fitted column in t. The
// orchestrator logs these after scaling; in the non-degenerate case they are
// [0, 1] up to floating-point error.
func (s *Scaler) Verify(t *dataset.Table) []ColumnRange {
	res := make([]ColumnRange, 0, len(s.Ranges))
	for _, r := range s.Ranges {
		j := t.Index(r.Column)
		if j < 0 {
			continue
		}
		lo, hi, ok := observedRange(t, j)
		if !ok {
			continue
		}
		res = append(res, ColumnRange{Column: r.Column, Min: lo, Max: hi})
	}
	return res
}

// Normalize resolves the scaling targets for t, fits a scaler, and applies
// it. It returns the rescaled copy, the fitted scaler, and the resolved
// target names. With no explicit columns the targets are every column tagged
// numeric; an explicit list is intersected with the columns present.
func Normalize(t *dataset.Table, explicit []string) (*dataset.Table, *Scaler, []string, error) {
	targets, err := ResolveTargets(t, explicit)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(targets) == 0 {
		// Nothing to scale; hand back an untouched copy and an empty scaler.
		return t.Clone(), &Scaler{}, nil, nil
	}
	sc, err := Fit(t, targets)
	if err != nil {
		return nil, nil, nil, err
	}
	out, err := sc.Transform(t)
	if err != nil {
		return nil, nil, nil, err
	}
	return out, sc, targets, nil
}

// ResolveTargets returns the columns Normalize will scale. Explicit names
// missing from the table are silently dropped and repeated names collapse to
// one, but a name that resolves to a non-numeric column is an error: that is
// a type mismatch the caller must hear about, not skip.
func ResolveTargets(t *dataset.Table, explicit []string) ([]string, error) {
	if len(explicit) == 0 {
		return t.NumericColumns(), nil
	}
	seen := make(map[string]struct{}, len(explicit))
	var targets []string
	for _, name := range explicit {
		j := t.Index(name)
		if j < 0 {
			continue
		}
		if t.Columns[j].Type != dataset.Numeric {
			return nil, fmt.Errorf("column %q is not numeric (type %s)", name, t.Columns[j].Type)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		targets = append(targets, name)
	}
	return targets, nil
}

func observedRange(t *dataset.Table, j int) (lo, hi float64, ok bool) {
	first := true
	for _, row := range t.Rows {
		v, isNum := row[j].(float64)
		if !isNum {
			continue
		}
		if first {
			lo, hi = v, v
			first = false
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, !first
}
