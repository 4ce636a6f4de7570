package forecast

import "fmt"

// LinearProjection extends three observed months by their average monthly change.
type LinearProjection struct {
	Delta  float64
	Values []float64
}

// Years groups Values into rows of 12
func (p *LinearProjection) Years() [][]float64 {
	var years [][]float64
	for i := 0; i < len(p.Values); i += 12 {
		end := i + 12
		if end > len(p.Values) {
			end = len(p.Values)
		}
		years = append(years, p.Values[i:end])
	}
	return years
}

// LinearExtrapolation computes the average monthly change between month 1 and month 3,
// delta = (m3 - m1) / 2, and adds it repeatedly to month 3 for the given number of months.
// Month 2 does not affect the average.
func LinearExtrapolation(m1, m3 float64, months int) (*LinearProjection, error) {
	if months < 1 {
		return nil, fmt.Errorf("months must be positive, got %d", months)
	}
	delta := (m3 - m1) / 2
	values := make([]float64, months)
	current := m3
	for i := range values {
		current += delta
		values[i] = current
	}
	return &LinearProjection{Delta: delta, Values: values}, nil
}
