package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"careerflow/errors"
	"careerflow/logging"
	"careerflow/model"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Step 一张表的导入步骤
type Step struct {
	Table      string
	File       string
	DedupeByID bool // 清洗后按 job_id 再去重一次
}

// Steps 导入顺序：维表在前，关联表在后
var Steps = []Step{
	{Table: "companies", File: "companies.csv"},
	{Table: "industries", File: "industries.csv"},
	{Table: "skills", File: "skills.csv"},
	{Table: "jobs", File: "job_postings.csv"},
	{Table: "benefits", File: "benefits.csv", DedupeByID: true},
	{Table: "salaries", File: "salaries.csv", DedupeByID: true},
	{Table: "employee_counts", File: "employee_counts.csv"},
	{Table: "company_specialities", File: "company_specialities.csv"},
	{Table: "job_industries", File: "job_industries.csv"},
	{Table: "job_skills", File: "job_skills.csv"},
}

const (
	companyIndustriesFile = "company_industries.csv"
	jobSkillsFile         = "job_skills.csv"
)

// Store 导入需要的存储能力
type Store interface {
	ReplaceTable(ctx context.Context, name string, f *model.Frame) error
	Query(ctx context.Context, query string) (*model.Frame, error)
	TableExists(ctx context.Context, name string) (bool, error)
}

// Status 单元处理结果
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// TableReport 单张表（或一次映射）的导入结果
type TableReport struct {
	Table   string
	File    string
	Status  Status
	Rows    int
	Dropped int
	Note    string
	Err     error
}

func (r TableReport) OK() bool { return r.Status == StatusOK }

// Summary 一次导入的汇总
type Summary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Reports    []TableReport
	Succeeded  int
	Total      int
}

// Snapshot 转为上报用的快照
func (s *Summary) Snapshot() *model.RunSnapshot {
	snap := &model.RunSnapshot{
		RunID:      s.RunID,
		Stage:      model.StageImport,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		Succeeded:  s.Succeeded,
		Total:      s.Total,
	}
	for _, r := range s.Reports {
		msg := r.Note
		if r.Err != nil {
			msg = r.Err.Error()
		}
		snap.Units = append(snap.Units, model.UnitSnapshot{Name: r.Table, Status: string(r.Status), Rows: r.Rows, Message: msg})
	}
	return snap
}

// Importer 把源目录下的 CSV 清洗后整体替换进数据库
type Importer struct {
	store     Store
	sourceDir string
	steps     []Step
	cleaners  map[string]Cleaner
	out       io.Writer
	logger    *zap.Logger
}

func New(store Store, sourceDir string, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{
		store:     store,
		sourceDir: sourceDir,
		steps:     Steps,
		cleaners:  DefaultCleaners(),
		out:       io.Discard,
		logger:    logger,
	}
}

// SetOutput 控制台进度输出位置，默认丢弃
func (im *Importer) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	im.out = w
}

// Run 依次导入全部表，再做 company_industries 与 job_skills 两次映射。
// 单元失败只记录，不中断后续单元；ctx 取消后剩余单元记为 skipped。
func (im *Importer) Run(ctx context.Context) *Summary {
	sum := &Summary{RunID: uuid.NewString(), StartedAt: time.Now()}
	fmt.Fprintf(im.out, "Starting import from: %s\n", im.sourceDir)

	units := make([]func(context.Context) TableReport, 0, len(im.steps)+2)
	names := make([]string, 0, len(im.steps)+2)
	for _, step := range im.steps {
		units = append(units, func(ctx context.Context) TableReport { return im.ImportTable(ctx, step) })
		names = append(names, step.Table)
	}
	units = append(units, im.importCompanyIndustries, im.finalizeJobSkills)
	names = append(names, "company_industries", "job_skills (mapping)")

	for i, unit := range units {
		var rep TableReport
		if err := ctx.Err(); err != nil {
			rep = TableReport{Table: names[i], Status: StatusSkipped, Err: err}
		} else {
			rep = unit(ctx)
		}
		im.record(rep)
		sum.Reports = append(sum.Reports, rep)
		if rep.OK() {
			sum.Succeeded++
		}
	}
	sum.Total = len(units)
	sum.FinishedAt = time.Now()

	fmt.Fprintf(im.out, "\n%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(im.out, "Import finished: %d/%d units succeeded in %s\n", sum.Succeeded, sum.Total, sum.FinishedAt.Sub(sum.StartedAt).Round(time.Millisecond))
	im.logger.Info("import finished",
		zap.String("run_id", sum.RunID),
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("total", sum.Total))
	return sum
}

func (im *Importer) record(rep TableReport) {
	switch rep.Status {
	case StatusOK:
		fmt.Fprintf(im.out, "✓ %s: %s rows imported\n", rep.Table, humanize.Comma(int64(rep.Rows)))
	case StatusSkipped:
		fmt.Fprintf(im.out, "- %s: skipped (%v)\n", rep.Table, rep.Err)
	default:
		fmt.Fprintf(im.out, "✗ %s: %v\n", rep.Table, rep.Err)
		im.logger.Error("table import failed",
			zap.String("table", rep.Table),
			zap.String("file", rep.File),
			zap.String("kind", string(errors.KindOf(rep.Err))),
			zap.Error(rep.Err),
			logging.Stack(errors.StackOf(rep.Err)))
	}
}

func failed(table, file string, err error) TableReport {
	return TableReport{Table: table, File: file, Status: StatusFailed, Err: err}
}

// load 读取并预处理源文件：缺文件为 MissingInput，解析失败为 DataQuality
func (im *Importer) load(file string) (*model.Frame, int, error) {
	path := filepath.Join(im.sourceDir, file)
	if _, err := os.Stat(path); err != nil {
		return nil, 0, errors.MissingInput(fmt.Sprintf("file %s not found", file), err)
	}
	raw, err := ReadCSV(path)
	if err != nil {
		return nil, 0, errors.DataQuality(fmt.Sprintf("parse %s", file), err)
	}
	fmt.Fprintf(im.out, "  source columns: %v\n", raw.Columns)
	fmt.Fprintf(im.out, "  source rows: %s\n", humanize.Comma(int64(raw.Len())))
	f, dropped := prepare(raw)
	if dropped > 0 {
		fmt.Fprintf(im.out, "  dropped %d header/empty rows\n", dropped)
	}
	return f, dropped, nil
}

// ImportTable 导入单张表
func (im *Importer) ImportTable(ctx context.Context, step Step) TableReport {
	fmt.Fprintf(im.out, "\n%s\nImporting %s from %s\n%s\n", strings.Repeat("=", 60), step.Table, step.File, strings.Repeat("=", 60))

	f, dropped, err := im.load(step.File)
	if err != nil {
		return failed(step.Table, step.File, err)
	}
	cleaner, ok := im.cleaners[step.Table]
	if !ok {
		return failed(step.Table, step.File, errors.Schema(fmt.Sprintf("no cleaner registered for %s", step.Table), nil))
	}
	cleaned, rep, err := cleaner.Clean(f)
	if err != nil {
		return failed(step.Table, step.File, err)
	}
	fmt.Fprintf(im.out, "  %s\n", rep.Note)
	dropped += rep.Input - rep.Output

	if step.Table == "skills" && cleaned.Len() == 0 {
		return failed(step.Table, step.File, errors.DataQuality("skills table is empty after cleaning", nil))
	}
	if step.DedupeByID && cleaned.Has("job_id") {
		before := cleaned.Len()
		cleaned = cleaned.Distinct("job_id")
		if n := before - cleaned.Len(); n > 0 {
			fmt.Fprintf(im.out, "  removed %d duplicates by job_id\n", n)
			dropped += n
		}
	}

	if err := im.store.ReplaceTable(ctx, step.Table, cleaned); err != nil {
		return failed(step.Table, step.File, errors.Backend(fmt.Sprintf("replace table %s", step.Table), err))
	}
	return TableReport{Table: step.Table, File: step.File, Status: StatusOK, Rows: cleaned.Len(), Dropped: dropped, Note: rep.Note}
}
