package importer

import (
	"testing"

	"careerflow/errors"
	"careerflow/model"
)

func TestCleanSkillsScenario(t *testing.T) {
	f := &model.Frame{
		Columns: []string{"skill_abr", "skill_name"},
		Rows: [][]any{
			{"Data Eng", "Data Engineering"},
			{"Data Eng", "Data Engineering"},
			{"PY", nil},
		},
	}
	out, rep, err := DefaultCleaners()["skills"].Clean(f)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("rows = %d, want 1", out.Len())
	}
	if got := out.Text(0, "skill_id"); got != "data_eng" {
		t.Fatalf("skill_id = %q, want data_eng", got)
	}
	if len(out.Columns) != 3 || out.Columns[0] != "skill_id" {
		t.Fatalf("columns = %v", out.Columns)
	}
	if rep.Input != 3 || rep.Output != 1 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestCleanSkillsDedupesDerivedIDs(t *testing.T) {
	f := &model.Frame{
		Columns: []string{"skill_abr", "skill_name"},
		Rows: [][]any{
			{"ML", "Machine Learning"},
			{"ml", "machine learning"},
			{"skill_abr", "skill_name"},
		},
	}
	out, _, err := DefaultCleaners()["skills"].Clean(f)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if out.Len() != 1 || out.Text(0, "skill_abr") != "ML" {
		t.Fatalf("rows = %v", out.Rows)
	}
}

func TestCleanSkillsMissingColumn(t *testing.T) {
	f := &model.Frame{Columns: []string{"abbr", "skill_name"}, Rows: [][]any{{"IT", "Information Technology"}}}
	_, _, err := DefaultCleaners()["skills"].Clean(f)
	if errors.KindOf(err) != errors.KindSchema {
		t.Fatalf("kind = %s, want %s (err %v)", errors.KindOf(err), errors.KindSchema, err)
	}
}

func TestCleanJobs(t *testing.T) {
	f := &model.Frame{
		Columns: []string{"job_id", "title", "views", "applies", "remote_allowed", "original_listed_time"},
		Rows: [][]any{
			{"1", "Engineer", "10.7", "-2", "1.0", "1700000000"},
			{"2", "Analyst", "x", nil, nil, nil},
			{nil, "Ghost", "1", "1", "True", nil},
			{"job_id", "title", "views", "applies", "remote_allowed", nil},
		},
	}
	out, _, err := DefaultCleaners()["jobs"].Clean(f)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if out.Has("original_listed_time") {
		t.Fatalf("column outside whitelist kept: %v", out.Columns)
	}
	if out.Len() != 2 {
		t.Fatalf("rows = %d, want 2", out.Len())
	}
	if out.Value(0, "views") != int64(10) || out.Value(0, "applies") != int64(0) {
		t.Fatalf("counts = %#v %#v", out.Value(0, "views"), out.Value(0, "applies"))
	}
	if out.Value(0, "remote_allowed") != true || out.Value(1, "remote_allowed") != false {
		t.Fatalf("remote_allowed = %#v %#v", out.Value(0, "remote_allowed"), out.Value(1, "remote_allowed"))
	}
	if out.Value(1, "views") != int64(0) {
		t.Fatalf("unparsable views = %#v", out.Value(1, "views"))
	}
}

func TestCleanBenefitsUniquePerJob(t *testing.T) {
	f := &model.Frame{
		Columns: []string{"job_id", "type"},
		Rows:    [][]any{{"1", "401k"}, {"1", "Medical"}, {"2", "Dental"}},
	}
	out, _, err := DefaultCleaners()["benefits"].Clean(f)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if out.Len() != 2 || out.Text(0, "type") != "401k" {
		t.Fatalf("rows = %v", out.Rows)
	}
}

func TestCleanSalariesAmounts(t *testing.T) {
	f := &model.Frame{
		Columns: []string{"salary_id", "job_id", "max_salary", "med_salary", "min_salary"},
		Rows:    [][]any{{"1", "10", "150000", nil, "n/a"}},
	}
	out, _, err := DefaultCleaners()["salaries"].Clean(f)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if out.Value(0, "max_salary") != 150000.0 || out.Value(0, "med_salary") != 0.0 || out.Value(0, "min_salary") != 0.0 {
		t.Fatalf("row = %v", out.Rows[0])
	}
}

func TestCleanJobIndustriesDedupesPairs(t *testing.T) {
	f := &model.Frame{
		Columns: []string{"job_id", "industry_id"},
		Rows:    [][]any{{"1", "10"}, {"1", "10"}, {"1", nil}, {"2", "10"}},
	}
	out, _, err := DefaultCleaners()["job_industries"].Clean(f)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if out.Len() != 2 {
		t.Fatalf("rows = %d, want 2", out.Len())
	}
}
