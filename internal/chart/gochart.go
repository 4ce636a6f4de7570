package chart

import (
	"bytes"
	"fmt"

	"finsight/domain/view"

	gochart "github.com/wcharczuk/go-chart/v2"
)

const pointsPerInch = 72

func pixels(size Size) (int, int) {
	return int(size.Width.Points() * 96 / pointsPerInch), int(size.Height.Points() * 96 / pointsPerInch)
}

func renderPie(c view.Chart, size Size) ([]byte, error) {
	if len(c.Series) == 0 {
		return nil, fmt.Errorf("pie chart %q has no series", c.Title)
	}
	s := c.Series[0]
	var values []gochart.Value
	for i, v := range s.Y {
		if !finite(v) || v <= 0 || i >= len(c.Categories) {
			continue
		}
		values = append(values, gochart.Value{Value: v, Label: c.Categories[i]})
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("pie chart %q has no positive values", c.Title)
	}

	width, height := pixels(size)
	if height < width {
		width = height
	}
	pie := gochart.PieChart{
		Title:  c.Title,
		Width:  width,
		Height: height,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(gochart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render pie chart: %w", err)
	}
	return buf.Bytes(), nil
}

func renderTimeSeries(c view.Chart, size Size) ([]byte, error) {
	width, height := pixels(size)
	graph := gochart.Chart{
		Title:  c.Title,
		Width:  width,
		Height: height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:           c.XLabel,
			ValueFormatter: gochart.TimeValueFormatterWithFormat("2006-01"),
		},
		YAxis: gochart.YAxis{
			Name: c.YLabel,
		},
	}

	for _, s := range c.Series {
		ts := gochart.TimeSeries{Name: s.Name}
		for i, y := range s.Y {
			if i >= len(s.Times) || !finite(y) {
				continue
			}
			ts.XValues = append(ts.XValues, s.Times[i])
			ts.YValues = append(ts.YValues, y)
		}
		if len(ts.XValues) == 0 {
			continue
		}
		if s.Dashed {
			ts.Style = gochart.Style{StrokeDashArray: []float64{5, 5}, StrokeWidth: 2}
		}
		graph.Series = append(graph.Series, ts)
	}
	if len(graph.Series) == 0 {
		return nil, fmt.Errorf("time series chart %q has no data", c.Title)
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(gochart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render time series chart: %w", err)
	}
	return buf.Bytes(), nil
}
