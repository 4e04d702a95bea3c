package chart

import (
	"strings"

	"careerflow/model"
)

// Kind 图表策略
type Kind int

const (
	KindNone Kind = iota
	KindRankedBar
	KindGroupedBar
	KindPie
	KindLine
)

func (k Kind) String() string {
	switch k {
	case KindRankedBar:
		return "ranked-bar"
	case KindGroupedBar:
		return "grouped-bar"
	case KindPie:
		return "pie"
	case KindLine:
		return "line"
	default:
		return "none"
	}
}

const (
	rankedBarLimit  = 15
	groupedBarLimit = 12
	pieMaxRows      = 10
	pieSlices       = 8
	lineLabelCount  = 10
)

var (
	countColumns  = []string{"job_count", "total_jobs", "unique_jobs"}
	salaryColumns = []string{"avg_salary", "med_salary"}
)

// Shape 结果集的形状，分类只看这些信息
type Shape struct {
	Columns []string
	Rows    int
	Numeric []string
}

// ShapeOf 从结果集提取形状
func ShapeOf(f *model.Frame) Shape {
	if f == nil {
		return Shape{}
	}
	return Shape{Columns: f.Columns, Rows: f.Len(), Numeric: f.NumericColumns()}
}

// Selection 分类结果：策略 + 作为取值的列
type Selection struct {
	Kind   Kind
	Metric string
}

// Classify 按优先级选择图表策略：计数列 > 薪资列 > 百分比列（≤10 行） > 首个数值列（≥2 行）。
// 纯函数，不修改入参，也不对行重新排序。
func Classify(s Shape) Selection {
	if s.Rows == 0 {
		return Selection{Kind: KindNone}
	}
	if c := firstPresent(s.Columns, countColumns); c != "" {
		return Selection{Kind: KindRankedBar, Metric: c}
	}
	if c := firstPresent(s.Columns, salaryColumns); c != "" {
		return Selection{Kind: KindGroupedBar, Metric: c}
	}
	if c := percentColumn(s.Columns); c != "" && s.Rows <= pieMaxRows {
		return Selection{Kind: KindPie, Metric: c}
	}
	if len(s.Numeric) > 0 && s.Rows >= 2 {
		return Selection{Kind: KindLine, Metric: s.Numeric[0]}
	}
	return Selection{Kind: KindNone}
}

func firstPresent(cols, candidates []string) string {
	for _, want := range candidates {
		for _, c := range cols {
			if c == want {
				return c
			}
		}
	}
	return ""
}

func percentColumn(cols []string) string {
	for _, c := range cols {
		if c == "remote_pct" {
			return c
		}
	}
	for _, c := range cols {
		lc := strings.ToLower(c)
		if strings.Contains(lc, "pct") || strings.Contains(lc, "percentage") {
			return c
		}
	}
	return ""
}
