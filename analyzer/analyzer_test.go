package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"careerflow/errors"
	"careerflow/model"
	"careerflow/store"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

// seedDB 造一份能让全部查询都有结果的小数据集：一家公司 60 个职位
func seedDB(t *testing.T) *store.DB {
	t.Helper()
	ctx := context.Background()
	db, err := store.Open(ctx, filepath.Join(t.TempDir(), "jobs.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	companies := model.NewFrame("company_id", "name", "city", "country")
	companies.Append(int64(1), "Acme", "Boston", "US")

	industries := model.NewFrame("industry_id", "industry_name")
	industries.Append(int64(10), "Software Development")

	skills := model.NewFrame("skill_id", "skill_abr", "skill_name")
	skills.Append("it", "IT", "Information Technology")
	skills.Append("eng", "ENG", "Engineering")

	jobs := model.NewFrame("job_id", "company_id", "title", "location", "views", "applies", "remote_allowed", "formatted_experience_level")
	salaries := model.NewFrame("salary_id", "job_id", "max_salary", "med_salary", "min_salary")
	jobIndustries := model.NewFrame("job_id", "industry_id")
	jobSkills := model.NewFrame("job_id", "skill_id")
	levels := []string{"Entry level", "Mid-Senior level", "Internship"}
	for i := 0; i < 60; i++ {
		id := int64(1000 + i)
		jobs.Append(id, int64(1), fmt.Sprintf("Job %d", i), "Boston, MA", int64(100+i), int64(5+i%3), i%4 == 0, levels[i%3])
		salaries.Append(int64(i+1), id, 150000.0, float64(80000+i*100), 60000.0)
		jobIndustries.Append(id, int64(10))
		jobSkills.Append(id, "it")
		if i%2 == 0 {
			jobSkills.Append(id, "eng")
		}
	}

	for name, f := range map[string]*model.Frame{
		"companies": companies, "industries": industries, "skills": skills, "jobs": jobs,
		"salaries": salaries, "job_industries": jobIndustries, "job_skills": jobSkills,
	} {
		if err := db.ReplaceTable(ctx, name, f); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
	return db
}

func newTestAnalyzer(t *testing.T, db DB, xlsx bool) (*Analyzer, *bytes.Buffer, Options) {
	t.Helper()
	root := t.TempDir()
	opts := Options{ResultsDir: filepath.Join(root, "results"), ChartsDir: filepath.Join(root, "charts"), XLSX: xlsx}
	a := New(db, opts, zap.NewNop())
	a.now = func() time.Time { return fixedNow }
	var out bytes.Buffer
	a.SetOutput(&out)
	return a, &out, opts
}

func TestRunFullCatalog(t *testing.T) {
	db := seedDB(t)
	a, out, opts := newTestAnalyzer(t, db, true)

	sum := a.Run(context.Background())
	if sum.Total != len(Catalog) || sum.Succeeded != len(Catalog) {
		for _, r := range sum.Results {
			t.Logf("%s: rows=%d err=%v", r.Query.Title, r.Frame.Len(), r.Err)
		}
		t.Fatalf("tally = %d/%d", sum.Succeeded, sum.Total)
	}
	if sum.CSVFiles != len(Catalog) || sum.ChartFiles != len(Catalog) {
		t.Fatalf("files csv=%d png=%d", sum.CSVFiles, sum.ChartFiles)
	}
	for _, r := range sum.Results {
		if !strings.HasPrefix(filepath.Base(r.CSVPath), SafeFilename(r.Query.Title)+"_20240501_093000") {
			t.Fatalf("csv name = %s", r.CSVPath)
		}
	}

	top := sum.Lookup(TitleTopSkills)
	if top.Text(0, "skill") != "Information Technology" {
		t.Fatalf("top skill = %q", top.Text(0, "skill"))
	}
	if n, _ := top.Float(0, "job_count"); n != 60 {
		t.Fatalf("job_count = %v", n)
	}
	if len(sum.Highlights) != 3 || !strings.Contains(sum.Highlights[0], "Information Technology") {
		t.Fatalf("highlights = %v", sum.Highlights)
	}
	if sum.Stats == nil || sum.Stats.Jobs != 60 || !sum.Stats.HasSalary {
		t.Fatalf("stats = %+v", sum.Stats)
	}

	if sum.Workbook == "" {
		t.Fatalf("workbook not written")
	}
	wb, err := excelize.OpenFile(sum.Workbook)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()
	sheets := wb.GetSheetList()
	if len(sheets) != len(Catalog)+1 || sheets[0] != "Overview" {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := wb.GetRows(TitleTopSkills)
	if err != nil || len(rows) != top.Len()+1 {
		t.Fatalf("skills sheet rows = %d, %v", len(rows), err)
	}

	text := out.String()
	for _, want := range []string{"QUERY: " + TitleTopSkills, "First 5 rows:", "Successful queries: 7/7", "Most active employer: 'Acme'"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q", want)
		}
	}
	if _, err := os.Stat(opts.ChartsDir); err != nil {
		t.Fatalf("charts dir: %v", err)
	}
}

func TestRunContinuesAfterQueryFailure(t *testing.T) {
	db := seedDB(t)
	a, _, opts := newTestAnalyzer(t, db, false)
	a.SetCatalog([]Query{
		{Title: "Broken", SQL: "SELECT nope FROM missing_table", Persist: true},
		{Title: "Job Count", SQL: "SELECT title, views FROM jobs ORDER BY job_id LIMIT 3", Persist: true},
	})

	sum := a.Run(context.Background())
	if sum.Succeeded != 1 || sum.Total != 2 {
		t.Fatalf("tally = %d/%d", sum.Succeeded, sum.Total)
	}
	broken := sum.Results[0]
	if broken.Err == nil || !broken.Frame.Empty() || errors.KindOf(broken.Err) != errors.KindBackend {
		t.Fatalf("broken result = %+v", broken)
	}
	if sum.Lookup("Broken") != nil {
		t.Fatalf("failed query returned by Lookup")
	}
	if countFiles(opts.ResultsDir, "*.csv") != 1 {
		t.Fatalf("csv files = %d, want 1", countFiles(opts.ResultsDir, "*.csv"))
	}
	if sum.Results[1].Chart.Metric != "views" || sum.Results[1].ChartPath == "" {
		t.Fatalf("line chart not rendered: %+v", sum.Results[1].Chart)
	}
	if len(sum.Highlights) != 0 {
		t.Fatalf("highlights without source queries: %v", sum.Highlights)
	}
}

func TestRunSkipsChartForUnsupportedShape(t *testing.T) {
	db := seedDB(t)
	a, out, opts := newTestAnalyzer(t, db, false)
	a.SetCatalog([]Query{{Title: "Names", SQL: "SELECT name, city FROM companies", Persist: true}})

	sum := a.Run(context.Background())
	if sum.Results[0].ChartPath != "" || countFiles(opts.ChartsDir, "*.png") != 0 {
		t.Fatalf("chart written for text-only result")
	}
	if !strings.Contains(out.String(), "unsupported for automatic visualization") {
		t.Fatalf("missing unsupported notice")
	}
}

func TestRunInterrupted(t *testing.T) {
	db := seedDB(t)
	a, out, _ := newTestAnalyzer(t, db, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum := a.Run(ctx)
	if !sum.Interrupted || len(sum.Results) != 0 {
		t.Fatalf("interrupted=%v results=%d", sum.Interrupted, len(sum.Results))
	}
	if sum.Stats == nil || sum.Stats.Jobs != 60 {
		t.Fatalf("stats after interrupt = %+v", sum.Stats)
	}
	if strings.Contains(out.String(), "Statistics unavailable") {
		t.Fatalf("summary skipped statistics:\n%s", out.String())
	}
}

func TestTestConnection(t *testing.T) {
	db := seedDB(t)
	a, _, _ := newTestAnalyzer(t, db, false)
	n, err := a.TestConnection(context.Background())
	if err != nil || n != 60 {
		t.Fatalf("TestConnection = %d, %v", n, err)
	}

	empty, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "empty.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer empty.Close()
	b, _, _ := newTestAnalyzer(t, empty, false)
	if _, err := b.TestConnection(context.Background()); errors.KindOf(err) != errors.KindBackend {
		t.Fatalf("err = %v, want backend error", err)
	}
}

func TestQueryTextPerDialect(t *testing.T) {
	for _, q := range Catalog {
		if q.Text(store.SQLite) == "" || q.Text(store.Postgres) == "" {
			t.Fatalf("%s has empty SQL", q.Title)
		}
	}
	var regional Query
	for _, q := range Catalog {
		if q.Title == TitleRegionalSalaries {
			regional = q
		}
	}
	if !strings.Contains(regional.Text(store.Postgres), "STRPOS") || !strings.Contains(regional.Text(store.SQLite), "INSTR") {
		t.Fatalf("regional query not dialect specific")
	}
}

func TestValueRangeAndPreview(t *testing.T) {
	f := model.NewFrame("name", "score")
	f.Append("a", int64(10))
	f.Append("b", nil)
	f.Append("c", 2.5)
	lo, hi, ok := valueRange(f)
	if !ok || lo != "2.5" || hi != "10" {
		t.Fatalf("valueRange = %q %q %v", lo, hi, ok)
	}

	var buf bytes.Buffer
	writePreview(&buf, f, 2)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || !strings.Contains(lines[2], "NULL") {
		t.Fatalf("preview = %q", buf.String())
	}
}
