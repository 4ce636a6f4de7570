package analysis

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// Scaler holds per-feature means and scales of a standardised matrix
type Scaler struct {
	Means  []float64
	Scales []float64
}

// Standardize rescales every column of rows to zero mean and unit population variance.
// A column with zero variance keeps scale 1, so it becomes all zeros.
func Standardize(rows [][]float64) ([][]float64, *Scaler, error) {
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("no rows to standardise")
	}
	d := len(rows[0])
	scaler := &Scaler{Means: make([]float64, d), Scales: make([]float64, d)}

	for j := 0; j < d; j++ {
		column := make(stats.Float64Data, len(rows))
		for i, row := range rows {
			if len(row) != d {
				return nil, nil, fmt.Errorf("row %d has %d features, expected %d", i, len(row), d)
			}
			column[i] = row[j]
		}
		mean, err := column.Mean()
		if err != nil {
			return nil, nil, err
		}
		sd, err := column.StandardDeviationPopulation()
		if err != nil {
			return nil, nil, err
		}
		if sd == 0 {
			sd = 1
		}
		scaler.Means[j] = mean
		scaler.Scales[j] = sd
	}

	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = make([]float64, d)
		for j, v := range row {
			out[i][j] = (v - scaler.Means[j]) / scaler.Scales[j]
		}
	}
	return out, scaler, nil
}
