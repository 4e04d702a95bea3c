package model

import (
	"reflect"
	"testing"
)

func sampleFrame() *Frame {
	f := NewFrame("job_id", "title", "views")
	f.Append("1", "Engineer", int64(10))
	f.Append("2", "Analyst", nil)
	f.Append("1", "Engineer (dup)", int64(3))
	f.Append("3", nil, 2.5)
	return f
}

func TestDistinct_KeepsFirstPerKey(t *testing.T) {
	out := sampleFrame().Distinct("job_id")
	if out.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", out.Len())
	}
	if got := out.Text(0, "title"); got != "Engineer" {
		t.Fatalf("first title = %q, want Engineer", got)
	}
}

func TestDistinct_TypedKeysDoNotCollide(t *testing.T) {
	f := NewFrame("k")
	f.Append("1")
	f.Append(int64(1))
	f.Append(nil)
	f.Append(nil)
	if got := f.Distinct().Len(); got != 3 {
		t.Fatalf("Distinct().Len() = %d, want 3", got)
	}
}

func TestSelect_IgnoresMissingAndReorders(t *testing.T) {
	out := sampleFrame().Select("views", "missing", "job_id")
	if !reflect.DeepEqual(out.Columns, []string{"views", "job_id"}) {
		t.Fatalf("Columns = %v", out.Columns)
	}
	if out.Value(0, "job_id") != "1" || out.Value(0, "views") != int64(10) {
		t.Fatalf("row 0 = %v", out.Rows[0])
	}
}

func TestNumericColumns(t *testing.T) {
	got := sampleFrame().NumericColumns()
	if !reflect.DeepEqual(got, []string{"views"}) {
		t.Fatalf("NumericColumns() = %v, want [views]", got)
	}
}

func TestWithColumn_AddsAndOverwrites(t *testing.T) {
	f := sampleFrame().WithColumn("flag", func(row []any) any { return row[0] == "1" })
	if f.Value(0, "flag") != true || f.Value(1, "flag") != false {
		t.Fatalf("flag column = %v / %v", f.Value(0, "flag"), f.Value(1, "flag"))
	}
	g := f.WithColumn("title", func([]any) any { return "x" })
	if len(g.Columns) != len(f.Columns) || g.Text(3, "title") != "x" {
		t.Fatalf("overwrite failed: %v", g.Columns)
	}
	if f.Text(0, "title") != "Engineer" {
		t.Fatalf("source frame was mutated")
	}
}

func TestHeadAndValueBounds(t *testing.T) {
	f := sampleFrame()
	if f.Head(2).Len() != 2 || f.Head(99).Len() != 4 || f.Head(0).Len() != 0 {
		t.Fatalf("Head lengths wrong")
	}
	if f.Value(99, "title") != nil || f.Value(0, "nope") != nil {
		t.Fatalf("out of range Value should be nil")
	}
	var nilFrame *Frame
	if nilFrame.Len() != 0 || !nilFrame.Empty() {
		t.Fatalf("nil frame should be empty")
	}
}

func TestFormatCellAndToFloat(t *testing.T) {
	if got := FormatCell(125000.0); got != "125000" {
		t.Fatalf("FormatCell(125000.0) = %q", got)
	}
	if got := FormatCell(0.25); got != "0.25" {
		t.Fatalf("FormatCell(0.25) = %q", got)
	}
	if got := FormatCell(nil); got != "" {
		t.Fatalf("FormatCell(nil) = %q", got)
	}
	if n, ok := ToFloat(" 42.5 "); !ok || n != 42.5 {
		t.Fatalf("ToFloat(\" 42.5 \") = %v, %v", n, ok)
	}
	if _, ok := ToFloat("n/a"); ok {
		t.Fatalf("ToFloat(n/a) should fail")
	}
}
