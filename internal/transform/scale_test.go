package transform

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"nutriprep/internal/dataset"
)

const eps = 1e-9

func scaleTable() *dataset.Table {
	return &dataset.Table{
		Columns: []dataset.Column{
			{Name: "name", Type: dataset.Text},
			{Name: "calories", Type: dataset.Numeric},
			{Name: "fat", Type: dataset.Numeric},
		},
		Rows: [][]any{
			{"apple", 52.0, 0.2},
			{"bread", 265.0, 3.2},
			{"butter", 717.0, 81.0},
		},
	}
}

func TestNormalizeAutoDetect(t *testing.T) {
	out, sc, targets, err := Normalize(scaleTable(), nil)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if want := []string{"calories", "fat"}; !reflect.DeepEqual(targets, want) {
		t.Fatalf("targets = %v, want %v", targets, want)
	}
	wantRanges := []ColumnRange{
		{Column: "calories", Min: 52.0, Max: 717.0},
		{Column: "fat", Min: 0.2, Max: 81.0},
	}
	if !reflect.DeepEqual(sc.Ranges, wantRanges) {
		t.Fatalf("ranges = %v, want %v", sc.Ranges, wantRanges)
	}

	for _, r := range sc.Verify(out) {
		if math.Abs(r.Min) > eps || math.Abs(r.Max-1) > eps {
			t.Fatalf("post-transform range for %s = [%v, %v], want [0, 1]", r.Column, r.Min, r.Max)
		}
	}
}

func TestNormalizeValuesAndMonotonicity(t *testing.T) {
	out, _, _, err := Normalize(scaleTable(), []string{"calories"})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	j := out.Index("calories")
	want := []float64{0, (265.0 - 52.0) / (717.0 - 52.0), 1}
	var prev float64 = -1
	for i, row := range out.Rows {
		v := row[j].(float64)
		if math.Abs(v-want[i]) > eps {
			t.Fatalf("row %d = %v, want %v", i, v, want[i])
		}
		if v <= prev {
			t.Fatalf("scaling is not monotonic at row %d: %v <= %v", i, v, prev)
		}
		prev = v
	}

	// Untargeted numeric column passes through unchanged.
	k := out.Index("fat")
	if got, want := out.Rows[2][k], 81.0; got != want {
		t.Fatalf("fat[2] = %v, want %v", got, want)
	}
}

func TestNormalizeExplicitIntersection(t *testing.T) {
	_, _, targets, err := Normalize(scaleTable(), []string{"calories", "unknown", "calories"})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if want := []string{"calories"}; !reflect.DeepEqual(targets, want) {
		t.Fatalf("targets = %v, want %v", targets, want)
	}
}

func TestNormalizeTextColumnFails(t *testing.T) {
	_, _, _, err := Normalize(scaleTable(), []string{"name"})
	if err == nil {
		t.Fatal("normalize accepted a text column, want error")
	}
	if !strings.Contains(err.Error(), "not numeric") {
		t.Fatalf("error = %v, want type mismatch", err)
	}
}

func TestNormalizeConstantColumn(t *testing.T) {
	tb := &dataset.Table{
		Columns: []dataset.Column{{Name: "x", Type: dataset.Numeric}},
		Rows:    [][]any{{5.0}, {5.0}, {5.0}},
	}

	out, sc, _, err := Normalize(tb, nil)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	for i, row := range out.Rows {
		if got := row[0].(float64); got != 0 {
			t.Fatalf("constant column row %d = %v, want 0", i, got)
		}
	}
	if want := (ColumnRange{Column: "x", Min: 5.0, Max: 5.0}); sc.Ranges[0] != want {
		t.Fatalf("range = %v, want %v", sc.Ranges[0], want)
	}
}

func TestNormalizeIdempotence(t *testing.T) {
	first, _, _, err := Normalize(scaleTable(), nil)
	if err != nil {
		t.Fatalf("first normalize: %v", err)
	}
	second, _, _, err := Normalize(first, nil)
	if err != nil {
		t.Fatalf("second normalize: %v", err)
	}

	for _, name := range []string{"calories", "fat"} {
		j := first.Index(name)
		for i := range first.Rows {
			a := first.Rows[i][j].(float64)
			b := second.Rows[i][j].(float64)
			if math.Abs(a-b) > eps {
				t.Fatalf("%s row %d changed on re-normalize: %v -> %v", name, i, a, b)
			}
		}
	}
}

func TestNormalizeNoTargets(t *testing.T) {
	tb := &dataset.Table{
		Columns: []dataset.Column{{Name: "name", Type: dataset.Text}},
		Rows:    [][]any{{"a"}},
	}

	out, sc, targets, err := Normalize(tb, nil)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if targets != nil || len(sc.Ranges) != 0 {
		t.Fatalf("targets/ranges = %v/%v, want empty", targets, sc.Ranges)
	}
	if !reflect.DeepEqual(out, tb) {
		t.Fatalf("table changed with no targets")
	}
}

func TestTransformKeepsMissingCells(t *testing.T) {
	tb := &dataset.Table{
		Columns: []dataset.Column{{Name: "x", Type: dataset.Numeric}},
		Rows:    [][]any{{1.0}, {nil}, {3.0}},
	}

	out, _, _, err := Normalize(tb, nil)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if out.Rows[1][0] != nil {
		t.Fatalf("missing cell = %v, want nil", out.Rows[1][0])
	}
}

func TestFitEmptyColumnFails(t *testing.T) {
	tb := &dataset.Table{
		Columns: []dataset.Column{{Name: "x", Type: dataset.Numeric}},
		Rows:    nil,
	}
	if _, err := Fit(tb, []string{"x"}); err == nil {
		t.Fatal("fit succeeded on empty column, want error")
	}
}

func TestNormalizeInputUnmutated(t *testing.T) {
	in := scaleTable()
	before := in.Clone()

	if _, _, _, err := Normalize(in, nil); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !reflect.DeepEqual(in, before) {
		t.Fatalf("input mutated: %v", in)
	}
}
