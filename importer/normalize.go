package importer

import (
	"regexp"
	"strconv"
	"strings"

	"careerflow/model"
)

// NormalizeColumnName 去首尾空白、转小写、空格换下划线
func NormalizeColumnName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// NormalizeColumns 规范化全部列名；重名的列依次加 _1、_2 后缀。
// 对已规范化的列名再次调用结果不变。
func NormalizeColumns(cols []string) []string {
	out := make([]string, len(cols))
	used := make(map[string]bool, len(cols))
	for i, c := range cols {
		n := NormalizeColumnName(c)
		if !used[n] {
			used[n] = true
			out[i] = n
			continue
		}
		for k := 1; ; k++ {
			candidate := n + "_" + strconv.Itoa(k)
			if !used[candidate] {
				used[candidate] = true
				out[i] = candidate
				break
			}
		}
	}
	return out
}

// headerToken 形如 company_id、skill_name、employee_count、med_salary 的表头词
var headerToken = regexp.MustCompile(`^([a-z]+_)*(id|name|count|salary)(_[a-z]+)*$`)

// looksLikeHeaderRow 判断首行数据是否是混进数据里的表头：
// 至少两个单元格像表头词，或者所有非空单元格都像表头词
func looksLikeHeaderRow(cols []string, row []any) bool {
	matched, present := 0, 0
	for i, c := range cols {
		if i >= len(row) || row[i] == nil {
			continue
		}
		present++
		v := NormalizeColumnName(model.FormatCell(row[i]))
		if v == c || headerToken.MatchString(v) {
			matched++
		}
	}
	return matched >= 2 || (present > 0 && matched == present)
}

// prepare 规范列名、去掉内嵌表头行和全空行；返回被丢弃的行数
func prepare(f *model.Frame) (*model.Frame, int) {
	out := &model.Frame{Columns: NormalizeColumns(f.Columns), Rows: f.Rows}
	dropped := 0
	if out.Len() > 0 && looksLikeHeaderRow(out.Columns, out.Rows[0]) {
		out.Rows = out.Rows[1:]
		dropped++
	}
	before := out.Len()
	out = out.Filter(func(row []any) bool {
		for _, v := range row {
			if v != nil {
				return true
			}
		}
		return false
	})
	return out, dropped + before - out.Len()
}
