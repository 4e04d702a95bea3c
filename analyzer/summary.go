package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"careerflow/model"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Summary 一次分析运行的汇总
type Summary struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	Results     []*Result
	Succeeded   int
	Total       int
	Interrupted bool

	Stats      *Stats
	Workbook   string
	CSVFiles   int // 结果目录中的 csv 总数（含历史）
	ChartFiles int // 图表目录中的 png 总数（含历史）
	Highlights []string
}

// Stats 全库统计
type Stats struct {
	Companies  int64
	Jobs       int64
	Skills     int64
	Industries int64
	AvgSalary  float64
	HasSalary  bool
}

// Lookup 按标题取查询结果；查询失败或不存在时返回 nil
func (s *Summary) Lookup(title string) *model.Frame {
	for _, r := range s.Results {
		if r.Query.Title == title && r.Err == nil {
			return r.Frame
		}
	}
	return nil
}

// Files 本次生成的全部输出文件
func (s *Summary) Files() []string {
	var out []string
	for _, r := range s.Results {
		if r.CSVPath != "" {
			out = append(out, r.CSVPath)
		}
		if r.ChartPath != "" {
			out = append(out, r.ChartPath)
		}
	}
	if s.Workbook != "" {
		out = append(out, s.Workbook)
	}
	return out
}

// Snapshot 转为上报用的快照
func (s *Summary) Snapshot() *model.RunSnapshot {
	snap := &model.RunSnapshot{
		RunID:      s.RunID,
		Stage:      model.StageAnalysis,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		Succeeded:  s.Succeeded,
		Total:      s.Total,
		Files:      s.Files(),
		Highlights: s.Highlights,
	}
	for _, r := range s.Results {
		u := model.UnitSnapshot{Name: r.Query.Title, Rows: r.Frame.Len(), Status: "ok"}
		switch {
		case r.Err != nil:
			u.Status, u.Message = "failed", r.Err.Error()
		case r.Frame.Empty():
			u.Status = "empty"
		}
		snap.Units = append(snap.Units, u)
	}
	return snap
}

func money(v float64) string {
	return "$" + humanize.Comma(decimal.NewFromFloat(v).Round(0).IntPart())
}

func count(v float64) string {
	return humanize.Comma(int64(v))
}

// loadStats 执行全库统计查询
func (a *Analyzer) loadStats(ctx context.Context) (*Stats, error) {
	f, err := a.db.Query(ctx, statsQuery)
	if err != nil {
		return nil, err
	}
	if f.Empty() {
		return nil, fmt.Errorf("statistics query returned no rows")
	}
	st := &Stats{}
	for col, dst := range map[string]*int64{
		"total_companies":  &st.Companies,
		"total_jobs":       &st.Jobs,
		"total_skills":     &st.Skills,
		"total_industries": &st.Industries,
	} {
		if v, ok := f.Float(0, col); ok {
			*dst = int64(v)
		}
	}
	st.AvgSalary, st.HasSalary = f.Float(0, "avg_salary_all")
	return st, nil
}

// highlights 从指定标题的结果中提炼关键结论；结果缺失或为空时跳过对应条目
func highlights(s *Summary) []string {
	var out []string
	if f := s.Lookup(TitleTopSkills); !f.Empty() && f.Has("skill") && f.Has("job_count") {
		n, _ := f.Float(0, "job_count")
		out = append(out, fmt.Sprintf("Most in-demand skill: '%s' (%s jobs)", f.Text(0, "skill"), count(n)))
	}
	if f := s.Lookup(TitleIndustrySalaries); !f.Empty() && f.Has("industry") && f.Has("avg_salary") {
		v, _ := f.Float(0, "avg_salary")
		out = append(out, fmt.Sprintf("Highest salary: %s in '%s'", money(v), f.Text(0, "industry")))
	}
	if f := s.Lookup(TitleActiveCompanies); !f.Empty() && f.Has("company") && f.Has("total_jobs") {
		n, _ := f.Float(0, "total_jobs")
		out = append(out, fmt.Sprintf("Most active employer: '%s' (%s jobs)", f.Text(0, "company"), count(n)))
	}
	return out
}

func (a *Analyzer) summarize(ctx context.Context, s *Summary) {
	bar := strings.Repeat("=", 80)
	fmt.Fprintf(a.out, "\n%s\nANALYSIS SUMMARY\n%s\n", bar, bar)

	st, err := a.loadStats(ctx)
	if err != nil {
		a.logger.Warn("failed to load statistics", zap.Error(err))
		fmt.Fprintf(a.out, "Statistics unavailable: %v\n", err)
	} else {
		s.Stats = st
		fmt.Fprintf(a.out, "Total companies: %s\n", humanize.Comma(st.Companies))
		fmt.Fprintf(a.out, "Total jobs: %s\n", humanize.Comma(st.Jobs))
		fmt.Fprintf(a.out, "Unique skills: %s\n", humanize.Comma(st.Skills))
		fmt.Fprintf(a.out, "Industries: %s\n", humanize.Comma(st.Industries))
		if st.HasSalary {
			fmt.Fprintf(a.out, "Average salary across all jobs: %s\n", money(st.AvgSalary))
		}
	}

	s.CSVFiles = countFiles(a.opts.ResultsDir, "*.csv")
	s.ChartFiles = countFiles(a.opts.ChartsDir, "*.png")
	fmt.Fprintln(a.out, "\nFiles on disk:")
	fmt.Fprintf(a.out, "   CSV reports: %d\n", s.CSVFiles)
	fmt.Fprintf(a.out, "   PNG charts: %d\n", s.ChartFiles)

	s.Highlights = highlights(s)
	if len(s.Highlights) > 0 {
		fmt.Fprintln(a.out, "\nKey insights:")
		for _, h := range s.Highlights {
			fmt.Fprintf(a.out, "   %s\n", h)
		}
	}

	fmt.Fprintf(a.out, "\nSuccessful queries: %d/%d\n", s.Succeeded, s.Total)
	a.logger.Info("analysis finished",
		zap.String("run_id", s.RunID),
		zap.Int("succeeded", s.Succeeded),
		zap.Int("total", s.Total),
		zap.Bool("interrupted", s.Interrupted))
}
