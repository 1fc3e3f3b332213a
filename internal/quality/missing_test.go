package quality

import (
	"reflect"
	"testing"

	"nutriprep/internal/dataset"
)

func mkTable() *dataset.Table {
	return &dataset.Table{
		Columns: []dataset.Column{
			{Name: "name", Type: dataset.Text},
			{Name: "calories", Type: dataset.Numeric},
			{Name: "fat", Type: dataset.Numeric},
		},
		Rows: [][]any{
			{"apple", 52.0, 0.2},
			{"bread", nil, 3.2},
			{"butter", 717.0, 81.0},
			{nil, 0.0, nil},
		},
	}
}

func TestDropMissingCounts(t *testing.T) {
	in := mkTable()
	out, rep := DropMissing(in)

	wantPerColumn := []ColumnCount{
		{Column: "name", Count: 1},
		{Column: "calories", Count: 1},
		{Column: "fat", Count: 1},
	}
	if !reflect.DeepEqual(rep.PerColumn, wantPerColumn) {
		t.Fatalf("PerColumn = %v, want %v", rep.PerColumn, wantPerColumn)
	}
	if got, want := rep.Total, 3; got != want {
		t.Fatalf("Total = %d, want %d", got, want)
	}
	if got, want := rep.RowsDropped, 2; got != want {
		t.Fatalf("RowsDropped = %d, want %d", got, want)
	}

	wantRows := [][]any{
		{"apple", 52.0, 0.2},
		{"butter", 717.0, 81.0},
	}
	if !reflect.DeepEqual(out.Rows, wantRows) {
		t.Fatalf("rows = %v, want %v", out.Rows, wantRows)
	}
	for _, row := range out.Rows {
		for _, v := range row {
			if v == nil {
				t.Fatalf("missing value survived: %v", out.Rows)
			}
		}
	}
}

func TestDropMissingCleanTable(t *testing.T) {
	in := &dataset.Table{
		Columns: []dataset.Column{{Name: "x", Type: dataset.Numeric}},
		Rows:    [][]any{{1.0}, {2.0}},
	}
	out, rep := DropMissing(in)

	if rep.Total != 0 || rep.RowsDropped != 0 {
		t.Fatalf("report = %+v, want zero counts", rep)
	}
	if !reflect.DeepEqual(out, in) {
		t.Fatalf("clean table changed: %v", out)
	}
}

func TestDropMissingInputUnmutated(t *testing.T) {
	in := mkTable()
	before := in.Clone()

	DropMissing(in)

	if !reflect.DeepEqual(in, before) {
		t.Fatalf("input mutated: %v", in)
	}
}

func TestDropMissingAllRows(t *testing.T) {
	in := &dataset.Table{
		Columns: []dataset.Column{{Name: "x", Type: dataset.Numeric}},
		Rows:    [][]any{{nil}, {nil}},
	}
	out, rep := DropMissing(in)

	if rows, _ := out.Shape(); rows != 0 {
		t.Fatalf("rows = %d, want 0", rows)
	}
	if got, want := rep.RowsDropped, 2; got != want {
		t.Fatalf("RowsDropped = %d, want %d", got, want)
	}
}
