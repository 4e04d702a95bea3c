package analyzer

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"careerflow/model"
)

const previewCellWidth = 40

// writePreview 以对齐的表格打印前 n 行
func writePreview(w io.Writer, f *model.Frame, n int) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(f.Columns, "\t"))
	head := f.Head(n)
	cells := make([]string, len(f.Columns))
	for _, row := range head.Rows {
		for i := range cells {
			var v any
			if i < len(row) {
				v = row[i]
			}
			if v == nil {
				cells[i] = "NULL"
			} else {
				cells[i] = truncate(model.FormatCell(v), previewCellWidth)
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

// valueRange 最后一列的最小值与最大值（忽略空值）；全部为数值时按数值比较，否则按字符串
func valueRange(f *model.Frame) (string, string, bool) {
	if f.Empty() || len(f.Columns) == 0 {
		return "", "", false
	}
	col := f.Columns[len(f.Columns)-1]
	var nums []float64
	var strs []string
	numeric := true
	for i := 0; i < f.Len(); i++ {
		v := f.Value(i, col)
		if v == nil {
			continue
		}
		strs = append(strs, model.FormatCell(v))
		switch v.(type) {
		case int64, float64:
			n, ok := model.ToFloat(v)
			if ok {
				nums = append(nums, n)
				continue
			}
		}
		numeric = false
	}
	if len(strs) == 0 {
		return "", "", false
	}
	if numeric {
		sort.Float64s(nums)
		return model.FormatCell(nums[0]), model.FormatCell(nums[len(nums)-1]), true
	}
	sort.Strings(strs)
	return strs[0], strs[len(strs)-1], true
}
