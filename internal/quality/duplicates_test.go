package quality

import (
	"reflect"
	"testing"

	"nutriprep/internal/dataset"
)

func dupTable() *dataset.Table {
	return &dataset.Table{
		Columns: []dataset.Column{
			{Name: "name", Type: dataset.Text},
			{Name: "group", Type: dataset.Text},
			{Name: "calories", Type: dataset.Numeric},
		},
		Rows: [][]any{
			{"apple", "fruit", 52.0},
			{"bread", "grain", 265.0},
			{"apple", "fruit", 52.0},
			{"pear", "fruit", 57.0},
			{"apple", "fruit", 52.0},
		},
	}
}

func TestDeduplicateKeepFirst(t *testing.T) {
	out, rep := Deduplicate(dupTable())

	if got, want := rep.DuplicateRows, 2; got != want {
		t.Fatalf("DuplicateRows = %d, want %d", got, want)
	}
	wantRows := [][]any{
		{"apple", "fruit", 52.0},
		{"bread", "grain", 265.0},
		{"pear", "fruit", 57.0},
	}
	if !reflect.DeepEqual(out.Rows, wantRows) {
		t.Fatalf("rows = %v, want %v", out.Rows, wantRows)
	}
}

func TestDeduplicateNoDuplicates(t *testing.T) {
	in := &dataset.Table{
		Columns: []dataset.Column{{Name: "x", Type: dataset.Numeric}},
		Rows:    [][]any{{1.0}, {2.0}, {3.0}},
	}
	out, rep := Deduplicate(in)

	if rep.DuplicateRows != 0 {
		t.Fatalf("DuplicateRows = %d, want 0", rep.DuplicateRows)
	}
	if !reflect.DeepEqual(out.Rows, in.Rows) {
		t.Fatalf("rows changed: %v", out.Rows)
	}
}

func TestDeduplicateTextColumnDiagnostics(t *testing.T) {
	_, rep := Deduplicate(dupTable())

	// "apple" repeats twice in name; "fruit" repeats three times in group.
	want := []ColumnCount{
		{Column: "name", Count: 2},
		{Column: "group", Count: 3},
	}
	if !reflect.DeepEqual(rep.PerTextColumn, want) {
		t.Fatalf("PerTextColumn = %v, want %v", rep.PerTextColumn, want)
	}
}

func TestDeduplicateMissingValuesCompareEqual(t *testing.T) {
	in := &dataset.Table{
		Columns: []dataset.Column{{Name: "name", Type: dataset.Text}},
		Rows:    [][]any{{nil}, {nil}, {"x"}},
	}
	out, rep := Deduplicate(in)

	if got, want := rep.DuplicateRows, 1; got != want {
		t.Fatalf("DuplicateRows = %d, want %d", got, want)
	}
	if got, want := rep.PerTextColumn[0].Count, 1; got != want {
		t.Fatalf("PerTextColumn count = %d, want %d", got, want)
	}
	if rows, _ := out.Shape(); rows != 2 {
		t.Fatalf("rows = %d, want 2", rows)
	}
}

func TestDeduplicateInputUnmutated(t *testing.T) {
	in := dupTable()
	before := in.Clone()

	Deduplicate(in)

	if !reflect.DeepEqual(in, before) {
		t.Fatalf("input mutated: %v", in)
	}
}
