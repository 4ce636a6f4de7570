// Package analysis holds the numeric routines behind the analysis pages: pairwise
// correlation, standardisation, k-means clustering, PCA projection and least squares lines.
package analysis

import (
	"math"

	"finsight/domain/finance"

	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix is a symmetric Pearson matrix over Columns.
// Values[i][j] is NaN when the pair has fewer than two complete rows or a constant member.
type CorrelationMatrix struct {
	Columns []string
	Values  [][]float64
}

// At returns the coefficient for two named columns
func (m *CorrelationMatrix) At(a, b string) (float64, bool) {
	i, j := m.indexOf(a), m.indexOf(b)
	if i < 0 || j < 0 {
		return math.NaN(), false
	}
	return m.Values[i][j], true
}

func (m *CorrelationMatrix) indexOf(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Correlate computes pairwise-complete Pearson correlations between the given numeric
// columns of t. Each pair uses only the rows where both values are present.
func Correlate(t *finance.Table, columns []string) (*CorrelationMatrix, error) {
	if err := t.Require(columns...); err != nil {
		return nil, err
	}

	data := make([][]float64, len(columns))
	for i, c := range columns {
		values, err := t.Numbers(c)
		if err != nil {
			return nil, err
		}
		data[i] = values
	}

	n := len(columns)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		values[i][i] = 1
		for j := i + 1; j < n; j++ {
			r := pairwisePearson(data[i], data[j])
			values[i][j] = r
			values[j][i] = r
		}
	}
	return &CorrelationMatrix{Columns: append([]string(nil), columns...), Values: values}, nil
}

// pairwisePearson correlates x and y over rows where both are present.
func pairwisePearson(x, y []float64) float64 {
	var xs, ys []float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 || constant(xs) || constant(ys) {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	// clamp rounding drift so |r| never exceeds 1
	return math.Max(-1, math.Min(1, r))
}

func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
