package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

const daysPerYear = 365.25

// Decomposition models a series as linear trend plus yearly Fourier seasonality.
// Seasonal coefficients are ridge-penalised so the model stays determined on a few points.
type Decomposition struct {
	FourierOrder int
	Ridge        float64
}

// NewDecomposition creates a model with yearly seasonality of order 3
func NewDecomposition() *Decomposition {
	return &Decomposition{FourierOrder: 3, Ridge: 10}
}

func (m *Decomposition) Name() string {
	return "Trend + Seasonality"
}

// Forecast fits trend and seasonality on s and evaluates them over the next horizon months
func (m *Decomposition) Forecast(ctx context.Context, s Series, horizon int) ([]float64, error) {
	if err := validate(s, 2, horizon); err != nil {
		return nil, err
	}
	if len(s.Dates) != s.Len() {
		return nil, fmt.Errorf("series has %d dates for %d values", len(s.Dates), s.Len())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	origin := s.Dates[0]
	scale := 0.0
	for _, v := range s.Values {
		scale = math.Max(scale, math.Abs(v))
	}
	if scale == 0 {
		scale = 1
	}

	p := 2 + 2*m.FourierOrder
	n := s.Len()
	x := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	for i, d := range s.Dates {
		x.SetRow(i, m.features(origin, d))
		y.SetVec(i, s.Values[i]/scale)
	}

	// (X'X + L) b = X'y, L penalises seasonal terms only
	var a mat.Dense
	a.Mul(x.T(), x)
	for j := 2; j < p; j++ {
		a.Set(j, j, a.At(j, j)+m.Ridge)
	}

	var b mat.VecDense
	b.MulVec(x.T(), y)

	var beta mat.VecDense
	if err := beta.SolveVec(&a, &b); err != nil {
		return nil, fmt.Errorf("decomposition least squares failed: %w", err)
	}
	coef := make([]float64, p)
	for j := range coef {
		coef[j] = beta.AtVec(j)
	}

	out := make([]float64, horizon)
	for h, d := range s.NextDates(horizon) {
		f := m.features(origin, d)
		v := 0.0
		for j, c := range coef {
			v += c * f[j]
		}
		out[h] = v * scale
	}
	return out, nil
}

// features returns [1, t, sin(2πkt), cos(2πkt) ...] with t in years since origin
func (m *Decomposition) features(origin, d time.Time) []float64 {
	t := d.Sub(origin).Hours() / 24 / daysPerYear
	row := make([]float64, 0, 2+2*m.FourierOrder)
	row = append(row, 1, t)
	for k := 1; k <= m.FourierOrder; k++ {
		angle := 2 * math.Pi * float64(k) * t
		row = append(row, math.Sin(angle), math.Cos(angle))
	}
	return row
}
