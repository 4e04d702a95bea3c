package analyzer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"careerflow/chart"
	"careerflow/errors"
	"careerflow/logging"
	"careerflow/model"
	"careerflow/store"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultPreviewRows = 5

// DB 分析阶段需要的存储能力
type DB interface {
	Query(ctx context.Context, query string) (*model.Frame, error)
	Dialect() store.Dialect
}

// Options 输出相关配置
type Options struct {
	ResultsDir  string
	ChartsDir   string
	XLSX        bool // 额外导出一个 xlsx 汇总
	PreviewRows int
}

// Result 单条查询的执行结果
type Result struct {
	Query     Query
	Frame     *model.Frame
	Err       error
	CSVPath   string
	ChartPath string
	Chart     chart.Selection
}

// OK 查询成功且有数据
func (r *Result) OK() bool { return r.Err == nil && !r.Frame.Empty() }

// Analyzer 依次执行查询目录，打印预览，保存 CSV/PNG，最后输出汇总
type Analyzer struct {
	db       DB
	opts     Options
	catalog  []Query
	renderer *chart.Renderer
	out      io.Writer
	logger   *zap.Logger
	now      func() time.Time
}

func New(db DB, opts Options, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = defaultPreviewRows
	}
	return &Analyzer{
		db:       db,
		opts:     opts,
		catalog:  Catalog,
		renderer: chart.NewRenderer(logger),
		out:      io.Discard,
		logger:   logger,
		now:      time.Now,
	}
}

// SetOutput 控制台输出位置，默认丢弃
func (a *Analyzer) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	a.out = w
}

// SetCatalog 替换查询目录
func (a *Analyzer) SetCatalog(queries []Query) { a.catalog = queries }

// TestConnection 检查库可用且 jobs 表可查询，返回职位总数
func (a *Analyzer) TestConnection(ctx context.Context) (int64, error) {
	f, err := a.db.Query(ctx, connectionQuery)
	if err != nil {
		return 0, errors.Backend("connection test failed", err)
	}
	n, _ := f.Float(0, "total_jobs")
	fmt.Fprintf(a.out, "Connection OK: database contains %s jobs\n", humanize.Comma(int64(n)))
	fmt.Fprintln(a.out, "Output folders:")
	fmt.Fprintf(a.out, "   CSV: %s\n", absPath(a.opts.ResultsDir))
	fmt.Fprintf(a.out, "   PNG: %s\n", absPath(a.opts.ChartsDir))
	return int64(n), nil
}

// Execute 执行单条查询。失败时返回空结果与错误，调用方据此继续后续查询。
func (a *Analyzer) Execute(ctx context.Context, q Query) (*model.Frame, error) {
	f, err := a.db.Query(ctx, q.Text(a.db.Dialect()))
	if err != nil {
		return model.NewFrame(), errors.Backend(fmt.Sprintf("query %q", q.Title), err)
	}
	return f, nil
}

// Run 执行全部查询并汇总；ctx 取消后不再开始新的查询
func (a *Analyzer) Run(ctx context.Context) *Summary {
	sum := &Summary{RunID: uuid.NewString(), StartedAt: a.now(), Total: len(a.catalog)}
	fmt.Fprintf(a.out, "\nStarting full analysis (%d queries)\n%s\n", len(a.catalog), strings.Repeat("=", 80))

	var wb *Workbook
	if a.opts.XLSX {
		wb = NewWorkbook()
		defer wb.Close()
	}

	for i, q := range a.catalog {
		if err := ctx.Err(); err != nil {
			sum.Interrupted = true
			a.logger.Warn("analysis interrupted", zap.Int("completed", i), zap.Int("total", len(a.catalog)))
			break
		}
		fmt.Fprintf(a.out, "\nRunning query %d/%d...\n", i+1, len(a.catalog))
		res := a.runQuery(ctx, q)
		if res.OK() {
			sum.Succeeded++
			if wb != nil && q.Persist {
				if err := wb.AddResult(q.Title, res.Frame, res.CSVPath); err != nil {
					a.logger.Warn("failed to add workbook sheet", zap.String("query", q.Title), zap.Error(err))
				}
			}
		}
		sum.Results = append(sum.Results, res)
	}

	if wb != nil && wb.Len() > 0 {
		path := OutputPath(a.opts.ResultsDir, "analysis", "xlsx", a.now())
		if err := wb.Save(path); err != nil {
			err = errors.Backend("save workbook", err)
			a.logger.Error("failed to save workbook", zap.String("path", path), zap.Error(err), logging.Stack(errors.StackOf(err)))
			fmt.Fprintf(a.out, "Workbook not saved: %v\n", err)
		} else {
			sum.Workbook = path
			fmt.Fprintf(a.out, "\nWorkbook saved: %s\n", path)
		}
	}

	// 中断后仍输出统计
	a.summarize(context.WithoutCancel(ctx), sum)
	sum.FinishedAt = a.now()
	return sum
}

func (a *Analyzer) runQuery(ctx context.Context, q Query) *Result {
	res := &Result{Query: q}
	bar := strings.Repeat("=", 80)
	fmt.Fprintf(a.out, "\n%s\nQUERY: %s\n%s\n", bar, q.Title, bar)

	start := time.Now()
	res.Frame, res.Err = a.Execute(ctx, q)
	if res.Err != nil {
		fmt.Fprintf(a.out, "Query failed: %v\n", res.Err)
		a.logger.Error("query failed",
			zap.String("query", q.Title),
			zap.String("kind", string(errors.KindOf(res.Err))),
			zap.Error(res.Err),
			logging.Stack(errors.StackOf(res.Err)))
		return res
	}
	a.logger.Debug("query executed", zap.String("query", q.Title), zap.Int("rows", res.Frame.Len()), zap.Duration("took", time.Since(start)))

	f := res.Frame
	fmt.Fprintf(a.out, "Rows: %s\n", humanize.Comma(int64(f.Len())))
	fmt.Fprintf(a.out, "Columns: %d\n", len(f.Columns))
	if lo, hi, ok := valueRange(f); ok {
		fmt.Fprintf(a.out, "Value range: %s - %s\n", lo, hi)
	}
	fmt.Fprintf(a.out, "\nFirst %d rows:\n", a.opts.PreviewRows)
	writePreview(a.out, f, a.opts.PreviewRows)

	if !q.Persist || f.Empty() {
		return res
	}
	at := a.now()
	path := OutputPath(a.opts.ResultsDir, q.Title, "csv", at)
	if err := WriteFrameCSV(path, f); err != nil {
		err = errors.Backend("write csv", err)
		fmt.Fprintf(a.out, "CSV not saved: %v\n", err)
		a.logger.Error("failed to write csv", zap.String("path", path), zap.Error(err), logging.Stack(errors.StackOf(err)))
	} else {
		res.CSVPath = path
		fmt.Fprintf(a.out, "CSV saved: %s\n", path)
	}
	a.renderChart(res, at)
	return res
}

func (a *Analyzer) renderChart(res *Result, at time.Time) {
	res.Chart = chart.Classify(chart.ShapeOf(res.Frame))
	if res.Chart.Kind == chart.KindNone {
		fmt.Fprintln(a.out, "Chart skipped: result shape is unsupported for automatic visualization")
		return
	}
	path := OutputPath(a.opts.ChartsDir, res.Query.Title, "png", at)
	if err := a.renderer.Render(path, res.Query.Title, res.Frame, res.Chart); err != nil {
		fmt.Fprintf(a.out, "Chart not created for %q: %v\n", res.Query.Title, err)
		a.logger.Warn("chart render failed",
			zap.String("query", res.Query.Title),
			zap.String("kind", res.Chart.Kind.String()),
			zap.Error(err),
			logging.Stack(errors.StackOf(err)))
		return
	}
	res.ChartPath = path
	fmt.Fprintf(a.out, "PNG saved (%s): %s\n", res.Chart.Kind, path)
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
