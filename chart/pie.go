package chart

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// pie 饼图 plotter：数据坐标固定为单位圆，从 12 点方向逆时针排列扇区
type pie struct {
	values []float64
	total  float64
	colors []color.Color
}

func newPie(values []float64) (*pie, error) {
	pc := &pie{values: make([]float64, len(values)), colors: make([]color.Color, len(values))}
	for i, v := range values {
		if v < 0 || math.IsNaN(v) {
			v = 0
		}
		pc.values[i] = v
		pc.total += v
		pc.colors[i] = plotutil.Color(i)
	}
	if pc.total <= 0 {
		return nil, fmt.Errorf("pie values sum to zero")
	}
	return pc, nil
}

// share 第 i 个扇区的百分比
func (pc *pie) share(i int) float64 {
	return pc.values[i] / pc.total * 100
}

func (pc *pie) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	center := vg.Point{X: trX(0), Y: trY(0)}
	radius := trX(1) - center.X
	if ry := trY(1) - center.Y; ry < radius {
		radius = ry
	}

	angle := math.Pi / 2
	for i, v := range pc.values {
		if v == 0 {
			continue
		}
		sweep := 2 * math.Pi * v / pc.total
		var path vg.Path
		path.Move(center)
		path.Arc(center, radius, angle, sweep)
		path.Close()
		c.SetColor(pc.colors[i])
		c.Fill(path)
		angle += sweep
	}
}

func (pc *pie) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -1.1, 1.1, -1.1, 1.1
}

// swatch 图例中的色块
type swatch struct{ color color.Color }

func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.color, pts)
}
