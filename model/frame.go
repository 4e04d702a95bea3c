package model

//
// 表格数据模型
//
// 说明：
// - Frame 是导入（CSV -> 清洗 -> 入库）与分析（SQL 结果 -> 报表/图表）之间共用的二维表结构。
// - 单元格取值只会是 nil、string、int64、float64、bool 之一；nil 表示空值（CSV 空单元格或 SQL NULL）。
// - 所有变换方法都返回新的 Frame，不修改原对象。

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Frame 列名 + 行数据
type Frame struct {
	Columns []string
	Rows    [][]any
}

// NewFrame 创建空表
func NewFrame(columns ...string) *Frame {
	return &Frame{Columns: append([]string(nil), columns...)}
}

// Len 行数；nil 安全
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// Empty 无行
func (f *Frame) Empty() bool { return f.Len() == 0 }

// Index 列下标，不存在返回 -1
func (f *Frame) Index(col string) int {
	if f == nil {
		return -1
	}
	for i, c := range f.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

func (f *Frame) Has(col string) bool { return f.Index(col) >= 0 }

// Append 追加一行；长度不足补 nil，超出截断
func (f *Frame) Append(row ...any) {
	out := make([]any, len(f.Columns))
	copy(out, row)
	f.Rows = append(f.Rows, out)
}

// Value 取单元格，越界或列不存在返回 nil
func (f *Frame) Value(row int, col string) any {
	idx := f.Index(col)
	if idx < 0 || row < 0 || row >= f.Len() || idx >= len(f.Rows[row]) {
		return nil
	}
	return f.Rows[row][idx]
}

// Text 取单元格的字符串形式，nil 为 ""
func (f *Frame) Text(row int, col string) string {
	return FormatCell(f.Value(row, col))
}

// Float 取数值单元格；字符串会尝试解析
func (f *Frame) Float(row int, col string) (float64, bool) {
	return ToFloat(f.Value(row, col))
}

// Filter 保留 keep 返回 true 的行
func (f *Frame) Filter(keep func(row []any) bool) *Frame {
	out := NewFrame(f.Columns...)
	for _, r := range f.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Select 按给定顺序投影列，不存在的列被忽略
func (f *Frame) Select(cols ...string) *Frame {
	var keep []string
	var idx []int
	for _, c := range cols {
		if i := f.Index(c); i >= 0 {
			keep = append(keep, c)
			idx = append(idx, i)
		}
	}
	out := NewFrame(keep...)
	out.Rows = make([][]any, 0, len(f.Rows))
	for _, r := range f.Rows {
		nr := make([]any, len(idx))
		for j, i := range idx {
			if i < len(r) {
				nr[j] = r[i]
			}
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// Distinct 按给定列去重，保留首次出现的行；不给列时按整行去重
func (f *Frame) Distinct(cols ...string) *Frame {
	if len(cols) == 0 {
		cols = f.Columns
	}
	idx := make([]int, 0, len(cols))
	for _, c := range cols {
		if i := f.Index(c); i >= 0 {
			idx = append(idx, i)
		}
	}
	out := NewFrame(f.Columns...)
	if len(idx) == 0 {
		out.Rows = append(out.Rows, f.Rows...)
		return out
	}
	seen := make(map[string]struct{}, len(f.Rows))
	var key strings.Builder
	for _, r := range f.Rows {
		key.Reset()
		for _, i := range idx {
			if i < len(r) {
				key.WriteString(cellKey(r[i]))
			}
			key.WriteByte(0x1f)
		}
		k := key.String()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out.Rows = append(out.Rows, r)
	}
	return out
}

// Head 前 n 行
func (f *Frame) Head(n int) *Frame {
	out := NewFrame(f.Columns...)
	if n > f.Len() {
		n = f.Len()
	}
	if n > 0 {
		out.Rows = append(out.Rows, f.Rows[:n]...)
	}
	return out
}

// WithColumn 追加（或覆盖）一列，值由 fn 按行计算
func (f *Frame) WithColumn(col string, fn func(row []any) any) *Frame {
	idx := f.Index(col)
	cols := f.Columns
	if idx < 0 {
		cols = append(append([]string(nil), f.Columns...), col)
		idx = len(cols) - 1
	}
	out := NewFrame(cols...)
	out.Rows = make([][]any, 0, len(f.Rows))
	for _, r := range f.Rows {
		nr := make([]any, len(cols))
		copy(nr, r)
		nr[idx] = fn(r)
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// NumericColumns 非空值全部为数值（且至少一个非空）的列
func (f *Frame) NumericColumns() []string {
	var out []string
	for i, c := range f.Columns {
		seen := false
		numeric := true
		for _, r := range f.Rows {
			if i >= len(r) || r[i] == nil {
				continue
			}
			seen = true
			switch r[i].(type) {
			case int64, float64, int, int32, float32:
			default:
				numeric = false
			}
			if !numeric {
				break
			}
		}
		if seen && numeric {
			out = append(out, c)
		}
	}
	return out
}

// FormatCell 单元格转字符串：nil 为空串，浮点数去掉多余的 0
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

// ToFloat 数值或可解析字符串转 float64
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(n) {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func cellKey(v any) string {
	if v == nil {
		return "\x00"
	}
	return fmt.Sprintf("%T:%s", v, FormatCell(v))
}
