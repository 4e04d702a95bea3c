package chart

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"careerflow/errors"
	"careerflow/model"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Renderer 把分类后的结果集画成 PNG
type Renderer struct {
	width  vg.Length
	height vg.Length
	logger *zap.Logger
}

func NewRenderer(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{width: 12 * vg.Inch, height: 8 * vg.Inch, logger: logger}
}

// series 类别标签与取值，保持结果集原有的行顺序
type series struct {
	labels []string
	values []float64
}

// seriesOf 取前 limit 行：首列作类别，metric 列作取值；limit<=0 表示全部
func seriesOf(f *model.Frame, metric string, limit int) series {
	n := f.Len()
	if limit > 0 && n > limit {
		n = limit
	}
	var s series
	label := ""
	if len(f.Columns) > 0 {
		label = f.Columns[0]
	}
	for i := 0; i < n; i++ {
		v, ok := f.Float(i, metric)
		if !ok || math.IsInf(v, 0) {
			v = 0
		}
		s.labels = append(s.labels, f.Text(i, label))
		s.values = append(s.values, v)
	}
	return s
}

// Render 按 sel 绘图并写到 path。图片先完整编码到内存，再经临时文件改名落盘，
// 失败时不会留下残缺文件。
func (r *Renderer) Render(path, title string, f *model.Frame, sel Selection) (err error) {
	if sel.Kind == KindNone {
		return errors.Render("result shape is unsupported for automatic visualization", nil)
	}
	if f.Empty() {
		return errors.Render("no data to plot", nil)
	}
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Render(fmt.Sprintf("plot %s", title), fmt.Errorf("panic: %v", rec))
		}
	}()

	p, err := r.build(title, f, sel)
	if err != nil {
		return errors.Render(fmt.Sprintf("build %s chart", sel.Kind), err)
	}
	wt, err := p.WriterTo(r.width, r.height, "png")
	if err != nil {
		return errors.Render("encode png", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return errors.Render("encode png", err)
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return errors.Render("write png", err)
	}
	r.logger.Debug("chart rendered",
		zap.String("kind", sel.Kind.String()),
		zap.String("path", path),
		zap.Int("bytes", buf.Len()),
		zap.Duration("took", time.Since(start)))
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".chart-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (r *Renderer) build(title string, f *model.Frame, sel Selection) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Analysis: " + title
	p.Title.TextStyle.Font.Size = vg.Points(14)

	switch sel.Kind {
	case KindRankedBar:
		return p, rankedBars(p, seriesOf(f, sel.Metric, rankedBarLimit))
	case KindGroupedBar:
		return p, groupedBars(p, sel.Metric, seriesOf(f, sel.Metric, groupedBarLimit))
	case KindPie:
		return p, pieChart(p, seriesOf(f, sel.Metric, pieSlices))
	case KindLine:
		return p, lineChart(p, sel.Metric, seriesOf(f, sel.Metric, 0))
	}
	return nil, fmt.Errorf("unknown chart kind %d", sel.Kind)
}

// rankedBars 横向条形图，第一名在最上方
func rankedBars(p *plot.Plot, s series) error {
	n := len(s.values)
	vals := make(plotter.Values, n)
	names := make([]string, n)
	labels := plotter.XYLabels{XYs: make(plotter.XYs, n), Labels: make([]string, n)}
	for i := 0; i < n; i++ {
		j := n - 1 - i
		vals[i] = s.values[j]
		names[i] = s.labels[j]
		labels.XYs[i] = plotter.XY{X: s.values[j], Y: float64(i)}
		labels.Labels[i] = humanize.Commaf(s.values[j])
	}
	bars, err := plotter.NewBarChart(vals, vg.Points(18))
	if err != nil {
		return err
	}
	bars.Horizontal = true
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0

	vl, err := plotter.NewLabels(labels)
	if err != nil {
		return err
	}
	for i := range vl.TextStyle {
		vl.TextStyle[i].YAlign = draw.YCenter
	}
	vl.Offset = vg.Point{X: vg.Points(4)}

	p.Add(plotter.NewGrid(), bars, vl)
	p.NominalY(names...)
	p.X.Label.Text = "Number of jobs"
	p.X.Min = 0
	p.X.Max = maxOf(s.values) * 1.12
	return nil
}

// groupedBars 纵向柱状图，柱顶标注 $N
func groupedBars(p *plot.Plot, metric string, s series) error {
	n := len(s.values)
	vals := make(plotter.Values, n)
	labels := plotter.XYLabels{XYs: make(plotter.XYs, n), Labels: make([]string, n)}
	for i, v := range s.values {
		vals[i] = v
		labels.XYs[i] = plotter.XY{X: float64(i), Y: v}
		labels.Labels[i] = "$" + humanize.Comma(int64(math.Round(v)))
	}
	bars, err := plotter.NewBarChart(vals, vg.Points(30))
	if err != nil {
		return err
	}
	bars.Color = plotutil.Color(2)
	bars.LineStyle.Width = 0

	vl, err := plotter.NewLabels(labels)
	if err != nil {
		return err
	}
	for i := range vl.TextStyle {
		vl.TextStyle[i].XAlign = draw.XCenter
	}
	vl.Offset = vg.Point{Y: vg.Points(4)}

	p.Add(plotter.NewGrid(), bars, vl)
	p.NominalX(s.labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Label.Text = metric + " ($)"
	p.Y.Min = 0
	p.Y.Max = maxOf(s.values) * 1.1
	return nil
}

func pieChart(p *plot.Plot, s series) error {
	pc, err := newPie(s.values)
	if err != nil {
		return err
	}
	p.Add(pc)
	for i, label := range s.labels {
		p.Legend.Add(fmt.Sprintf("%s (%.1f%%)", label, pc.share(i)), swatch{pc.colors[i]})
	}
	p.Legend.Top = true
	p.HideAxes()
	return nil
}

// lineChart 按行序画首个数值列，最多约 10 个 x 轴标签
func lineChart(p *plot.Plot, metric string, s series) error {
	n := len(s.values)
	pts := make(plotter.XYs, n)
	for i, v := range s.values {
		pts[i] = plotter.XY{X: float64(i), Y: v}
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	line.Width = vg.Points(2)
	line.Color = plotutil.Color(0)
	points.Shape = draw.CircleGlyph{}
	points.Color = plotutil.Color(0)

	step := n / lineLabelCount
	if step < 1 {
		step = 1
	}
	var ticks []plot.Tick
	for i := 0; i < n; i += step {
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: s.labels[i]})
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.Y.Label.Text = metric
	p.Add(plotter.NewGrid(), line, points)
	return nil
}

func maxOf(vs []float64) float64 {
	m := 0.0
	for _, v := range vs {
		if v > m {
			m = v
		}
	}
	if m == 0 {
		return 1
	}
	return m
}
