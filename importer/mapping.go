package importer

import (
	"context"
	"fmt"
	"strings"

	"careerflow/errors"
	"careerflow/model"
)

// lookup 从查询结果构建 lower(name) -> id 的映射
func lookup(f *model.Frame, idCol, nameCol string) map[string]any {
	m := make(map[string]any, f.Len())
	for i := 0; i < f.Len(); i++ {
		id := f.Value(i, idCol)
		name := f.Value(i, nameCol)
		if id == nil || name == nil {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(model.FormatCell(name)))
		if _, dup := m[key]; !dup {
			m[key] = id
		}
	}
	return m
}

// remap 按 keyCol 查映射，得到 (pairCol, idCol) 两列；未命中的行丢弃
func remap(f *model.Frame, pairCol, keyCol, idCol string, mapping map[string]any) *model.Frame {
	out := model.NewFrame(pairCol, idCol)
	pi, ki := f.Index(pairCol), f.Index(keyCol)
	for _, row := range f.Rows {
		if ki >= len(row) || row[ki] == nil {
			continue
		}
		id, ok := mapping[strings.ToLower(strings.TrimSpace(model.FormatCell(row[ki])))]
		if !ok {
			continue
		}
		var pair any
		if pi >= 0 && pi < len(row) {
			pair = row[pi]
		}
		out.Append(pair, id)
	}
	return out.Distinct()
}

// importCompanyIndustries 行业名称 -> industry_id 映射后写入 company_industries
func (im *Importer) importCompanyIndustries(ctx context.Context) TableReport {
	const table = "company_industries"
	fmt.Fprintf(im.out, "\nMapping %s (industry -> industry_id)...\n", table)

	f, _, err := im.load(companyIndustriesFile)
	if err != nil {
		return failed(table, companyIndustriesFile, err)
	}
	cleaned, _, err := im.cleaners[table].Clean(f)
	if err != nil {
		return failed(table, companyIndustriesFile, err)
	}

	industries, err := im.store.Query(ctx, "SELECT industry_id, industry_name FROM industries")
	if err != nil {
		return failed(table, companyIndustriesFile, errors.Backend("load industry mapping", err))
	}
	mapping := lookup(industries, "industry_id", "industry_name")
	fmt.Fprintf(im.out, "  %d industries available for mapping\n", len(mapping))

	out := remap(cleaned, "company_id", "industry", "industry_id", mapping)
	fmt.Fprintf(im.out, "  mapped %d of %d records\n", out.Len(), cleaned.Len())
	if out.Len() == 0 {
		return failed(table, companyIndustriesFile, errors.DataQuality("no industry names matched the industries table", nil))
	}
	if err := im.store.ReplaceTable(ctx, table, out); err != nil {
		return failed(table, companyIndustriesFile, errors.Backend("replace table "+table, err))
	}
	return TableReport{Table: table, File: companyIndustriesFile, Status: StatusOK, Rows: out.Len(), Dropped: f.Len() - out.Len()}
}

// finalizeJobSkills skill_abr -> skill_id 映射后重写 job_skills
func (im *Importer) finalizeJobSkills(ctx context.Context) TableReport {
	const table, label = "job_skills", "job_skills (mapping)"
	fmt.Fprintf(im.out, "\nMapping %s (skill_abr -> skill_id)...\n", table)

	exists, err := im.store.TableExists(ctx, "skills")
	if err != nil {
		return failed(label, jobSkillsFile, errors.Backend("check skills table", err))
	}
	if !exists {
		return failed(label, jobSkillsFile, errors.DataQuality("skills table does not exist, import skills.csv first", nil))
	}
	skills, err := im.store.Query(ctx, "SELECT skill_id, skill_abr FROM skills")
	if err != nil {
		return failed(label, jobSkillsFile, errors.Backend("load skill mapping", err))
	}
	if skills.Empty() {
		return failed(label, jobSkillsFile, errors.DataQuality("skills table is empty, nothing to map against", nil))
	}

	f, _, err := im.load(jobSkillsFile)
	if err != nil {
		return failed(label, jobSkillsFile, err)
	}
	cleaned, _, err := im.cleaners[table].Clean(f)
	if err != nil {
		return failed(label, jobSkillsFile, err)
	}
	mapping := lookup(skills, "skill_id", "skill_abr")
	fmt.Fprintf(im.out, "  %d skills available for mapping\n", len(mapping))

	out := remap(cleaned, "job_id", "skill_abr", "skill_id", mapping)
	fmt.Fprintf(im.out, "  mapped %d of %d records\n", out.Len(), cleaned.Len())
	if out.Len() == 0 {
		return failed(label, jobSkillsFile, errors.DataQuality("no skill abbreviations matched the skills table", nil))
	}
	if err := im.store.ReplaceTable(ctx, table, out); err != nil {
		return failed(label, jobSkillsFile, errors.Backend("replace table "+table, err))
	}
	return TableReport{Table: label, File: jobSkillsFile, Status: StatusOK, Rows: out.Len(), Dropped: f.Len() - out.Len()}
}
