package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Line is y = Intercept + Slope*x
type Line struct {
	Intercept float64
	Slope     float64
}

// At evaluates the line
func (l Line) At(x float64) float64 {
	return l.Intercept + l.Slope*x
}

// FitIndexLine fits ordinary least squares of series against its position (0, 1, 2, ...).
// NaN entries are skipped but keep their position.
func FitIndexLine(series []float64) (Line, error) {
	var xs, ys []float64
	for i, v := range series {
		if math.IsNaN(v) {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, v)
	}
	if len(xs) < 2 {
		return Line{}, fmt.Errorf("need at least 2 observations to fit a trend, have %d", len(xs))
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return Line{Intercept: alpha, Slope: beta}, nil
}

// Extrapolate evaluates the line at positions from, from+1, ... for horizon steps.
func (l Line) Extrapolate(from, horizon int) []float64 {
	out := make([]float64, horizon)
	for i := range out {
		out[i] = l.At(float64(from + i))
	}
	return out
}
