package forecast

import (
	"context"
	"fmt"
	"log"
	"time"

	"finsight/internal/errors"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Result is the outcome of one forecaster. Err is set when that model failed;
// the other results are unaffected.
type Result struct {
	Model   string
	Dates   []time.Time
	Values  []float64
	Err     error
	Elapsed time.Duration
}

// Runner fits several forecasters concurrently. The semaphore is shared by every
// Run call so the number of simultaneous fits stays bounded across requests.
type Runner struct {
	models []Forecaster
	sem    *semaphore.Weighted
}

// NewRunner creates a runner allowing maxConcurrent fits at once
func NewRunner(maxConcurrent int64, models ...Forecaster) *Runner {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Runner{models: models, sem: semaphore.NewWeighted(maxConcurrent)}
}

// DefaultModels returns the ARIMA, LSTM and decomposition forecasters
func DefaultModels() []Forecaster {
	return []Forecaster{NewARIMA(), NewLSTM(), NewDecomposition()}
}

// Run fits every model on s and returns one result per model in model order.
// It returns only after all fits have finished.
func (r *Runner) Run(ctx context.Context, s Series, horizon int) []Result {
	results := make([]Result, len(r.models))
	dates := s.NextDates(horizon)

	g, gctx := errgroup.WithContext(ctx)
	for i, model := range r.models {
		i, model := i, model
		results[i] = Result{Model: model.Name(), Dates: dates}
		g.Go(func() error {
			if err := r.sem.Acquire(gctx, 1); err != nil {
				results[i].Err = errors.ModelFailure(model.Name(), err)
				return nil
			}
			defer r.sem.Release(1)

			start := time.Now()
			values, err := fit(gctx, model, s, horizon)
			results[i].Elapsed = time.Since(start)
			if err != nil {
				log.Printf("[Forecast] %s failed after %v: %v", model.Name(), results[i].Elapsed, err)
				results[i].Err = errors.ModelFailure(model.Name(), err)
				return nil
			}
			log.Printf("[Forecast] %s fitted in %v", model.Name(), results[i].Elapsed)
			results[i].Values = values
			return nil
		})
	}
	// fits report failures through their result, never through the group
	_ = g.Wait()
	return results
}

// fit converts a panicking model into an error
func fit(ctx context.Context, model Forecaster, s Series, horizon int) (values []float64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	values, err = model.Forecast(ctx, s, horizon)
	if err == nil && len(values) != horizon {
		err = fmt.Errorf("returned %d values for horizon %d", len(values), horizon)
	}
	return values, err
}
