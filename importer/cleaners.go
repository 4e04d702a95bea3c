package importer

import (
	"fmt"
	"strings"

	"careerflow/errors"
	"careerflow/model"
)

// CleanReport 清洗统计
type CleanReport struct {
	Input  int
	Output int
	Note   string
}

// Cleaner 单表清洗规则
type Cleaner interface {
	Clean(f *model.Frame) (*model.Frame, CleanReport, error)
}

// CleanerFunc 让普通函数满足 Cleaner
type CleanerFunc func(f *model.Frame) (*model.Frame, CleanReport, error)

func (fn CleanerFunc) Clean(f *model.Frame) (*model.Frame, CleanReport, error) {
	return fn(f)
}

// jobColumns jobs 表保留的列，CSV 中缺失的列跳过
var jobColumns = []string{
	"job_id", "company_id", "title", "description", "location", "views",
	"formatted_work_type", "applies", "remote_allowed", "formatted_experience_level",
	"work_type", "zip_code",
}

// DefaultCleaners 表名 -> 清洗规则
func DefaultCleaners() map[string]Cleaner {
	return map[string]Cleaner{
		"companies":            keyOnly("companies", "company_id"),
		"industries":           keyOnly("industries", "industry_id"),
		"skills":               CleanerFunc(cleanSkills),
		"jobs":                 CleanerFunc(cleanJobs),
		"benefits":             CleanerFunc(cleanBenefits),
		"salaries":             CleanerFunc(cleanSalaries),
		"employee_counts":      CleanerFunc(cleanEmployeeCounts),
		"company_specialities": keyOnly("specialities", "speciality"),
		"job_industries":       CleanerFunc(cleanJobIndustries),
		"job_skills":           CleanerFunc(cleanJobSkills),
		"company_industries":   CleanerFunc(cleanCompanyIndustries),
	}
}

// requireColumns 缺列时返回 Schema 错误，并列出现有列
func requireColumns(f *model.Frame, cols ...string) error {
	for _, c := range cols {
		if !f.Has(c) {
			return errors.Schema(fmt.Sprintf("column %q not found, available columns: [%s]", c, strings.Join(f.Columns, ", ")), nil)
		}
	}
	return nil
}

// keyFilter 键列非空，且不等于自身列名（残留表头）
func keyFilter(f *model.Frame, cols ...string) *model.Frame {
	idx := make([]int, 0, len(cols))
	for _, c := range cols {
		if i := f.Index(c); i >= 0 {
			idx = append(idx, i)
		}
	}
	return f.Filter(func(row []any) bool {
		for _, i := range idx {
			if i >= len(row) || row[i] == nil {
				return false
			}
			if strings.TrimSpace(model.FormatCell(row[i])) == f.Columns[i] {
				return false
			}
		}
		return true
	})
}

// mapColumn 原地替换某列的值，列不存在时原样返回
func mapColumn(f *model.Frame, col string, fn func(v any) any) *model.Frame {
	i := f.Index(col)
	if i < 0 {
		return f
	}
	return f.WithColumn(col, func(row []any) any {
		if i < len(row) {
			return fn(row[i])
		}
		return fn(nil)
	})
}

func report(in, out *model.Frame, format string, args ...any) CleanReport {
	return CleanReport{Input: in.Len(), Output: out.Len(), Note: fmt.Sprintf(format, args...)}
}

func keyOnly(noun string, key string) Cleaner {
	return CleanerFunc(func(f *model.Frame) (*model.Frame, CleanReport, error) {
		if err := requireColumns(f, key); err != nil {
			return nil, CleanReport{Input: f.Len()}, err
		}
		out := keyFilter(f, key)
		return out, report(f, out, "processed %d %s", out.Len(), noun), nil
	})
}

func cleanSkills(f *model.Frame) (*model.Frame, CleanReport, error) {
	if err := requireColumns(f, "skill_abr", "skill_name"); err != nil {
		return nil, CleanReport{Input: f.Len()}, err
	}
	out := keyFilter(f, "skill_abr", "skill_name").Distinct("skill_abr")
	abr := out.Index("skill_abr")
	out = out.WithColumn("skill_id", func(row []any) any {
		return DeriveSkillID(model.FormatCell(row[abr]))
	})
	out = out.Distinct("skill_id").Select("skill_id", "skill_abr", "skill_name")
	return out, report(f, out, "derived %d skill ids", out.Len()), nil
}

func cleanJobs(f *model.Frame) (*model.Frame, CleanReport, error) {
	out := f.Select(jobColumns...)
	if err := requireColumns(out, "job_id"); err != nil {
		return nil, CleanReport{Input: f.Len()}, err
	}
	out = keyFilter(out, "job_id")
	for _, c := range []string{"views", "applies"} {
		out = mapColumn(out, c, func(v any) any { return ToCount(v) })
	}
	out = mapColumn(out, "remote_allowed", func(v any) any { return ToBool(v) })
	return out, report(f, out, "extracted %d jobs from %d columns", out.Len(), len(out.Columns)), nil
}

func cleanBenefits(f *model.Frame) (*model.Frame, CleanReport, error) {
	if err := requireColumns(f, "job_id"); err != nil {
		return nil, CleanReport{Input: f.Len()}, err
	}
	out := keyFilter(f, "job_id").Distinct("job_id")
	return out, report(f, out, "processed %d unique benefits", out.Len()), nil
}

func cleanSalaries(f *model.Frame) (*model.Frame, CleanReport, error) {
	if err := requireColumns(f, "salary_id"); err != nil {
		return nil, CleanReport{Input: f.Len()}, err
	}
	out := keyFilter(f, "salary_id")
	for _, c := range []string{"max_salary", "med_salary", "min_salary"} {
		out = mapColumn(out, c, func(v any) any { return ToAmount(v) })
	}
	return out, report(f, out, "processed %d salary records", out.Len()), nil
}

func cleanEmployeeCounts(f *model.Frame) (*model.Frame, CleanReport, error) {
	if err := requireColumns(f, "company_id"); err != nil {
		return nil, CleanReport{Input: f.Len()}, err
	}
	out := keyFilter(f, "company_id")
	for _, c := range []string{"employee_count", "follower_count"} {
		out = mapColumn(out, c, func(v any) any { return ToCount(v) })
	}
	return out, report(f, out, "processed %d employee count records", out.Len()), nil
}

func cleanJobIndustries(f *model.Frame) (*model.Frame, CleanReport, error) {
	if err := requireColumns(f, "industry_id"); err != nil {
		return nil, CleanReport{Input: f.Len()}, err
	}
	out := keyFilter(f, "industry_id", "job_id").Distinct("job_id", "industry_id")
	return out, report(f, out, "processed %d job-industry pairs", out.Len()), nil
}

func cleanJobSkills(f *model.Frame) (*model.Frame, CleanReport, error) {
	if err := requireColumns(f, "skill_abr"); err != nil {
		return nil, CleanReport{Input: f.Len()}, err
	}
	out := keyFilter(f, "skill_abr", "job_id").Distinct("job_id", "skill_abr")
	return out, report(f, out, "found %d job-skill pairs ready for mapping", out.Len()), nil
}

func cleanCompanyIndustries(f *model.Frame) (*model.Frame, CleanReport, error) {
	if err := requireColumns(f, "industry", "company_id"); err != nil {
		return nil, CleanReport{Input: f.Len()}, err
	}
	out := keyFilter(f, "industry", "company_id")
	return out, report(f, out, "found %d company-industry pairs ready for mapping", out.Len()), nil
}
