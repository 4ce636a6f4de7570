// Package pages implements the analysis pages. Each page is a pure function of the
// published table and the widget inputs, returning a view made of independent sections.
package pages

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"finsight/domain/finance"
	"finsight/domain/view"
	"finsight/internal/config"
	"finsight/internal/errors"
	"finsight/internal/forecast"
	"finsight/internal/session"
)

// Env carries the settings and shared services every page render uses
type Env struct {
	Strategy    finance.SavingsStrategy
	Headroom    float64
	ClusterSeed int64
	Runner      *forecast.Runner
	Now         func() time.Time
}

// NewEnv builds the page environment from configuration
func NewEnv(cfg *config.Config) *Env {
	return &Env{
		Strategy:    cfg.Analysis.SavingsStrategy,
		Headroom:    cfg.Analysis.GoalHeadroom,
		ClusterSeed: cfg.Analysis.ClusterSeed,
		Runner:      forecast.NewRunner(int64(cfg.Analysis.MaxConcurrentFits), forecast.DefaultModels()...),
		Now:         time.Now,
	}
}

// DefaultEnv is used by tests and the CLI
func DefaultEnv() *Env {
	return &Env{
		Strategy:    finance.SavingsDirect,
		Headroom:    5000,
		ClusterSeed: 42,
		Runner:      forecast.NewRunner(2, forecast.DefaultModels()...),
		Now:         time.Now,
	}
}

type renderFunc func(ctx context.Context, env *Env, t *finance.Table, in Inputs) view.Page

// Definition names a page and its renderer
type Definition struct {
	Name   string
	Title  string
	render renderFunc
}

var definitions = []Definition{
	{Name: "correlation", Title: "Correlation Analysis", render: renderCorrelation},
	{Name: "clustering", Title: "Expense Clustering", render: renderClustering},
	{Name: "eda", Title: "Exploratory Data Analysis", render: renderEDA},
	{Name: "decision", Title: "Decision-Making Support", render: renderDecision},
	{Name: "forecast", Title: "Salary Prediction & Forecasting", render: renderForecast},
}

// All returns the page definitions in navigation order
func All() []Definition {
	return append([]Definition(nil), definitions...)
}

// Lookup finds a page by name
func Lookup(name string) (Definition, bool) {
	for _, d := range definitions {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// Render renders the named page against the current upload. It fails with NO_DATA
// when nothing is published and NOT_FOUND for an unknown page; every other failure
// is reported inside the page's sections.
func (e *Env) Render(ctx context.Context, store *session.Store, name string, in Inputs) (*view.Page, error) {
	def, ok := Lookup(name)
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("page %q", name))
	}
	snap, err := store.Current()
	if err != nil {
		return nil, err
	}
	return e.RenderTable(ctx, def, snap.Table, in), nil
}

// RenderTable renders a page against an explicit table
func (e *Env) RenderTable(ctx context.Context, def Definition, t *finance.Table, in Inputs) *view.Page {
	start := time.Now()
	page := def.render(ctx, e, t, in)
	page.Name = def.Name
	page.Title = def.Title
	log.Printf("[Pages] Rendered %s in %v (%d sections, %d failed)", def.Name, time.Since(start), len(page.Sections), len(page.Failed()))
	return &page
}

// runSection executes one section body. Errors and panics end up in the section's
// Err arm and never reach sibling sections.
func runSection(title string, body func(s *view.Section) error) (s view.Section) {
	s.Title = title
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[Pages] Section %q panicked: %v\n%s", title, rec, debug.Stack())
			s.Err = &view.SectionError{
				Kind:    errors.CodeModelFailure,
				Message: fmt.Sprintf("%s could not be computed: %v", title, rec),
			}
		}
	}()
	if err := body(&s); err != nil {
		s.Err = sectionError(err)
	}
	return s
}

// sectionError classifies err into an error kind and user-visible message
func sectionError(err error) *view.SectionError {
	var colErr *finance.ColumnError
	if stderrors.As(err, &colErr) {
		missing := errors.MissingColumn(colErr.Column)
		if colErr.Reason != "missing" {
			missing.Message = fmt.Sprintf("column %q is %s", colErr.Column, colErr.Reason)
		}
		return &view.SectionError{Kind: missing.Code, Message: missing.Message}
	}

	code := errors.GetCode(err)
	message := err.Error()
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && code != errors.CodeModelFailure {
		message = appErr.Message
	}
	switch code {
	case errors.CodeInsufficientSelection, errors.CodeInvalidInput, errors.CodeNoData:
		return &view.SectionError{Kind: code, Message: message, Warning: true}
	case "UNKNOWN":
		code = errors.CodeModelFailure
	}
	return &view.SectionError{Kind: code, Message: message}
}

// availableColumns keeps the candidates that exist as numeric columns in t
func availableColumns(t *finance.Table, candidates []string) []string {
	var out []string
	for _, c := range candidates {
		if t.IsNumeric(c) {
			out = append(out, c)
		}
	}
	return out
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}
