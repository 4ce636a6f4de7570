package forecast

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// ARIMA is an ARIMA(1,1,1) model without constant, fitted by conditional sum of squares.
//
// With d_t = y_t - y_{t-1}, the model is d_t = phi*d_{t-1} + e_t + theta*e_{t-1}.
// phi and theta are optimised through tanh so both stay inside (-1, 1).
// Fitted coefficients live only for the duration of a Forecast call, so one
// value can serve concurrent requests.
type ARIMA struct{}

// NewARIMA creates the model
func NewARIMA() *ARIMA {
	return &ARIMA{}
}

func (m *ARIMA) Name() string {
	return "ARIMA(1,1,1)"
}

// Forecast fits the model to s and projects horizon steps
func (m *ARIMA) Forecast(ctx context.Context, s Series, horizon int) ([]float64, error) {
	if err := validate(s, 3, horizon); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	diffs := make([]float64, s.Len()-1)
	for i := 1; i < s.Len(); i++ {
		diffs[i-1] = s.Values[i] - s.Values[i-1]
	}

	phi, theta, err := fitARIMA(diffs)
	if err != nil {
		return nil, err
	}

	_, residuals := cssResiduals(diffs, phi, theta)
	lastDiff := diffs[len(diffs)-1]
	lastErr := residuals[len(residuals)-1]

	out := make([]float64, horizon)
	level := s.Values[s.Len()-1]
	for h := 0; h < horizon; h++ {
		next := phi * lastDiff
		if h == 0 {
			next += theta * lastErr
		}
		level += next
		out[h] = level
		lastDiff = next
	}
	return out, nil
}

// fitARIMA minimises the conditional sum of squares over the differenced series
func fitARIMA(diffs []float64) (phi, theta float64, err error) {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			sse, _ := cssResiduals(diffs, math.Tanh(x[0]), math.Tanh(x[1]))
			return sse
		},
	}
	result, err := optimize.Minimize(problem, []float64{0, 0}, &optimize.Settings{
		FuncEvaluations: 2000,
	}, &optimize.NelderMead{})
	if result == nil {
		return 0, 0, fmt.Errorf("ARIMA optimisation failed: %w", err)
	}
	return math.Tanh(result.X[0]), math.Tanh(result.X[1]), nil
}

// cssResiduals returns the conditional sum of squares and the residuals,
// conditioning on the first difference with a zero initial error.
func cssResiduals(diffs []float64, phi, theta float64) (float64, []float64) {
	residuals := make([]float64, len(diffs))
	sse := 0.0
	for t := 1; t < len(diffs); t++ {
		residuals[t] = diffs[t] - phi*diffs[t-1] - theta*residuals[t-1]
		sse += residuals[t] * residuals[t]
	}
	return sse, residuals
}
