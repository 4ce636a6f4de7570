// Package chart renders view chart specs as SVG. Bar, line, scatter and heatmap charts
// are drawn with gonum/plot; pie and calendar time series charts with go-chart.
package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"finsight/domain/view"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Size of a rendered chart
type Size struct {
	Width  vg.Length
	Height vg.Length
}

// DefaultSize fits the dashboard column
var DefaultSize = Size{Width: 8 * vg.Inch, Height: 4.5 * vg.Inch}

// SVG renders c at the default size
func SVG(c view.Chart) ([]byte, error) {
	return RenderSVG(c, DefaultSize)
}

// RenderSVG renders c as an SVG document
func RenderSVG(c view.Chart, size Size) ([]byte, error) {
	switch c.Kind {
	case view.ChartPie:
		return renderPie(c, size)
	case view.ChartTimeSeries:
		return renderTimeSeries(c, size)
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel

	var err error
	switch c.Kind {
	case view.ChartBar, view.ChartGroupedBar:
		err = addBars(p, c)
	case view.ChartLine:
		err = addLines(p, c)
	case view.ChartScatter:
		err = addScatter(p, c)
	case view.ChartHeatmap:
		err = addHeatmap(p, c)
	default:
		err = fmt.Errorf("unsupported chart kind %q", c.Kind)
	}
	if err != nil {
		return nil, err
	}

	w, err := p.WriterTo(size.Width, size.Height, "svg")
	if err != nil {
		return nil, fmt.Errorf("failed to create svg canvas: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write svg: %w", err)
	}
	return buf.Bytes(), nil
}

func addBars(p *plot.Plot, c view.Chart) error {
	if len(c.Series) == 0 {
		return fmt.Errorf("bar chart %q has no series", c.Title)
	}
	width := vg.Points(40 / float64(len(c.Series)))
	if width < vg.Points(4) {
		width = vg.Points(4)
	}
	for i, s := range c.Series {
		values := make(plotter.Values, len(s.Y))
		for j, v := range s.Y {
			if !finite(v) {
				v = 0
			}
			values[j] = v
		}
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return fmt.Errorf("bar series %q: %w", s.Name, err)
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = width * vg.Length(float64(i)-float64(len(c.Series)-1)/2)
		p.Add(bars)
		if len(c.Series) > 1 {
			p.Legend.Add(s.Name, bars)
		}
	}
	p.Legend.Top = true
	if len(c.Categories) > 0 {
		p.NominalX(c.Categories...)
	}
	return nil
}

func addLines(p *plot.Plot, c view.Chart) error {
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, s := range c.Series {
		pts := points(s)
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("line series %q: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(2)
		if s.Dashed {
			line.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		}
		marks, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("line series %q: %w", s.Name, err)
		}
		marks.GlyphStyle.Color = plotutil.Color(i)
		marks.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(line, marks)
		p.Legend.Add(s.Name, line)
		for _, pt := range pts {
			lo, hi = math.Min(lo, pt.Y), math.Max(hi, pt.Y)
		}
	}
	if math.IsInf(lo, 1) {
		return fmt.Errorf("line chart %q has no data", c.Title)
	}

	for _, d := range c.Dividers {
		divider, err := plotter.NewLine(plotter.XYs{{X: d.X, Y: lo}, {X: d.X, Y: hi}})
		if err != nil {
			return err
		}
		divider.Color = color.Gray{Y: 120}
		divider.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
		label, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    []plotter.XY{{X: d.X, Y: hi}},
			Labels: []string{d.Label},
		})
		if err != nil {
			return err
		}
		p.Add(divider, label)
	}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return nil
}

func addScatter(p *plot.Plot, c view.Chart) error {
	for i, s := range c.Series {
		pts := points(s)
		if len(pts) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("scatter series %q: %w", s.Name, err)
		}
		sc.GlyphStyle.Color = plotutil.Color(i)
		sc.GlyphStyle.Shape = plotutil.Shape(i)
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add(s.Name, sc)
	}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return nil
}

// matrixGrid exposes a square matrix with row 0 drawn at the top
type matrixGrid struct {
	m [][]float64
}

func (g matrixGrid) Dims() (c, r int) { return len(g.m), len(g.m) }

func (g matrixGrid) Z(c, r int) float64 { return g.m[len(g.m)-1-r][c] }

func (g matrixGrid) X(c int) float64 { return float64(c) }

func (g matrixGrid) Y(r int) float64 { return float64(r) }

func addHeatmap(p *plot.Plot, c view.Chart) error {
	n := len(c.Matrix)
	if n == 0 || len(c.Categories) != n {
		return fmt.Errorf("heatmap %q needs a square matrix matching its categories", c.Title)
	}
	for _, row := range c.Matrix {
		if len(row) != n {
			return fmt.Errorf("heatmap %q matrix is not square", c.Title)
		}
	}

	heat := plotter.NewHeatMap(matrixGrid{m: c.Matrix}, palette.Heat(24, 1))
	heat.Min, heat.Max = -1, 1
	heat.NaN = color.Gray{Y: 200}
	p.Add(heat)

	var xys plotter.XYs
	var labels []string
	for r := 0; r < n; r++ {
		for col := 0; col < n; col++ {
			v := c.Matrix[r][col]
			xys = append(xys, plotter.XY{X: float64(col), Y: float64(n - 1 - r)})
			if finite(v) {
				labels = append(labels, fmt.Sprintf("%.2f", v))
			} else {
				labels = append(labels, "n/a")
			}
		}
	}
	annotations, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return err
	}
	p.Add(annotations)

	reversed := make([]string, n)
	for i, name := range c.Categories {
		reversed[n-1-i] = name
	}
	p.NominalX(c.Categories...)
	p.NominalY(reversed...)
	return nil
}

// points returns the finite X/Y pairs of s; a series without X uses positions 0..n-1
func points(s view.Series) plotter.XYs {
	var pts plotter.XYs
	for i, y := range s.Y {
		x := float64(i)
		if i < len(s.X) {
			x = s.X[i]
		}
		if !finite(x) || !finite(y) {
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	return pts
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
