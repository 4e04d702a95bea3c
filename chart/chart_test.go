package chart

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"careerflow/model"

	"go.uber.org/zap"
)

func rankedFrame(n int) *model.Frame {
	f := model.NewFrame("skill", "job_count")
	for i := 0; i < n; i++ {
		// 故意不按数值排序，检验不重排
		f.Append(fmt.Sprintf("skill-%02d", i), int64((i*7)%20+1))
	}
	return f
}

func TestClassifyPriority(t *testing.T) {
	cases := []struct {
		name  string
		shape Shape
		want  Selection
	}{
		{"count beats salary", Shape{Columns: []string{"industry", "avg_salary", "total_jobs"}, Rows: 5, Numeric: []string{"avg_salary", "total_jobs"}}, Selection{KindRankedBar, "total_jobs"}},
		{"job_count preferred", Shape{Columns: []string{"x", "unique_jobs", "job_count"}, Rows: 3}, Selection{KindRankedBar, "job_count"}},
		{"salary", Shape{Columns: []string{"level", "med_salary"}, Rows: 3}, Selection{KindGroupedBar, "med_salary"}},
		{"pie", Shape{Columns: []string{"industry", "remote_percentage"}, Rows: 10, Numeric: []string{"remote_percentage"}}, Selection{KindPie, "remote_percentage"}},
		{"remote_pct wins", Shape{Columns: []string{"a", "share_pct", "remote_pct"}, Rows: 2}, Selection{KindPie, "remote_pct"}},
		{"pie too many rows", Shape{Columns: []string{"industry", "remote_percentage"}, Rows: 11, Numeric: []string{"remote_percentage"}}, Selection{KindLine, "remote_percentage"}},
		{"line", Shape{Columns: []string{"month", "views"}, Rows: 2, Numeric: []string{"views"}}, Selection{KindLine, "views"}},
		{"single row", Shape{Columns: []string{"month", "views"}, Rows: 1, Numeric: []string{"views"}}, Selection{KindNone, ""}},
		{"no numeric", Shape{Columns: []string{"a", "b"}, Rows: 4}, Selection{KindNone, ""}},
		{"empty", Shape{Columns: []string{"job_count"}, Rows: 0}, Selection{KindNone, ""}},
	}
	for _, tc := range cases {
		if got := Classify(tc.shape); got != tc.want {
			t.Fatalf("%s: Classify = %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestClassifyIsPure(t *testing.T) {
	shape := Shape{Columns: []string{"company", "avg_salary", "total_jobs"}, Rows: 30, Numeric: []string{"avg_salary", "total_jobs"}}
	before := Shape{Columns: append([]string(nil), shape.Columns...), Rows: shape.Rows, Numeric: append([]string(nil), shape.Numeric...)}
	first := Classify(shape)
	for i := 0; i < 5; i++ {
		if got := Classify(shape); got != first {
			t.Fatalf("Classify not deterministic: %+v vs %+v", got, first)
		}
	}
	if !reflect.DeepEqual(shape, before) {
		t.Fatalf("Classify mutated its input")
	}
}

func TestRankedBarsKeepQueryOrder(t *testing.T) {
	f := rankedFrame(20)
	sel := Classify(ShapeOf(f))
	if sel.Kind != KindRankedBar || sel.Metric != "job_count" {
		t.Fatalf("selection = %+v", sel)
	}
	s := seriesOf(f, sel.Metric, rankedBarLimit)
	if len(s.values) != 15 {
		t.Fatalf("bars = %d, want 15", len(s.values))
	}
	for i := range s.labels {
		if s.labels[i] != f.Text(i, "skill") {
			t.Fatalf("bar %d = %s, want %s", i, s.labels[i], f.Text(i, "skill"))
		}
		if want, _ := f.Float(i, "job_count"); s.values[i] != want {
			t.Fatalf("bar %d value = %v, want %v", i, s.values[i], want)
		}
	}
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestRenderWritesPNG(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(zap.NewNop())

	pie := model.NewFrame("industry", "total_jobs_x", "remote_percentage")
	pie.Append("Software", int64(40), 35.5)
	pie.Append("Finance", int64(20), 12.0)
	pie.Append("Retail", int64(10), 0.0)

	line := model.NewFrame("level", "views")
	for i := 0; i < 25; i++ {
		line.Append(fmt.Sprintf("L%d", i), float64(i*i))
	}

	salary := model.NewFrame("industry", "avg_salary")
	salary.Append("Software", 120000.4)
	salary.Append("Retail", 45000.0)

	frames := map[string]*model.Frame{"ranked": rankedFrame(20), "pie": pie, "line": line, "salary": salary}
	for name, f := range frames {
		sel := Classify(ShapeOf(f))
		path := filepath.Join(dir, "out", name+".png")
		if err := r.Render(path, name, f, sel); err != nil {
			t.Fatalf("%s (%s): Render: %v", name, sel.Kind, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("%s: read: %v", name, err)
		}
		if !bytes.HasPrefix(data, pngMagic) {
			t.Fatalf("%s: not a png", name)
		}
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "out"))
	if len(entries) != len(frames) {
		t.Fatalf("files = %d, want %d (temp files left behind?)", len(entries), len(frames))
	}
}

func TestRenderUnsupportedWritesNothing(t *testing.T) {
	dir := t.TempDir()
	f := model.NewFrame("a", "b")
	f.Append("x", "y")
	path := filepath.Join(dir, "none.png")

	err := NewRenderer(nil).Render(path, "none", f, Classify(ShapeOf(f)))
	if err == nil {
		t.Fatalf("expected error for unsupported shape")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("file written for unsupported shape")
	}
}

func TestRenderPieAllZeroFails(t *testing.T) {
	dir := t.TempDir()
	f := model.NewFrame("industry", "remote_pct")
	f.Append("A", 0.0)
	f.Append("B", 0.0)
	path := filepath.Join(dir, "pie.png")
	if err := NewRenderer(nil).Render(path, "pie", f, Selection{Kind: KindPie, Metric: "remote_pct"}); err == nil {
		t.Fatalf("expected error for zero pie")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("partial file left behind")
	}
}
