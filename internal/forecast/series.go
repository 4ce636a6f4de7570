package forecast

import (
	"fmt"
	"time"
)

// Series is a monthly time series
type Series struct {
	Dates  []time.Time
	Values []float64
}

// Len returns the number of observations
func (s Series) Len() int {
	return len(s.Values)
}

// NextDates returns the horizon month starts following the last observation
func (s Series) NextDates(horizon int) []time.Time {
	last := time.Now()
	if len(s.Dates) > 0 {
		last = s.Dates[len(s.Dates)-1]
	}
	out := make([]time.Time, horizon)
	for i := range out {
		out[i] = last.AddDate(0, i+1, 0)
	}
	return out
}

// BuildSeries builds a monthly series from a seed value followed by cumulative changes:
// value[0] = seed, value[i] = value[i-1] + changes[i-1]. Dates start at start and
// advance one month per point.
func BuildSeries(seed float64, changes []float64, start time.Time) (Series, error) {
	if start.IsZero() {
		return Series{}, fmt.Errorf("start month is required")
	}
	start = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)

	s := Series{
		Dates:  make([]time.Time, 0, len(changes)+1),
		Values: make([]float64, 0, len(changes)+1),
	}
	current := seed
	s.Dates = append(s.Dates, start)
	s.Values = append(s.Values, current)
	for i, change := range changes {
		current += change
		s.Dates = append(s.Dates, start.AddDate(0, i+1, 0))
		s.Values = append(s.Values, current)
	}
	return s, nil
}
