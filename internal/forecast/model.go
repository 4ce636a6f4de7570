package forecast

import (
	"context"
	"fmt"
	"math"
)

// Forecaster projects a monthly series horizon steps ahead
type Forecaster interface {
	Name() string
	Forecast(ctx context.Context, s Series, horizon int) ([]float64, error)
}

func validate(s Series, minLen, horizon int) error {
	if horizon < 1 {
		return fmt.Errorf("horizon must be positive, got %d", horizon)
	}
	if s.Len() < minLen {
		return fmt.Errorf("need at least %d observations, have %d", minLen, s.Len())
	}
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("observation %d is not a finite number", i+1)
		}
	}
	return nil
}
