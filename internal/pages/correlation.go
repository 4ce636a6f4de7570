package pages

import (
	"context"
	"fmt"
	"math"
	"sort"

	"finsight/domain/finance"
	"finsight/domain/view"
	"finsight/internal/analysis"
	"finsight/internal/errors"
)

const (
	strongCorrelation     = 0.5
	suggestionCorrelation = 0.3
	defaultCorrelationSet = 5
)

func renderCorrelation(ctx context.Context, env *Env, t *finance.Table, in Inputs) view.Page {
	available := availableColumns(t, finance.CorrelationColumns)
	selected := in.List("columns")
	if !in.Has("columns") {
		selected = available
		if len(selected) > defaultCorrelationSet {
			selected = selected[:defaultCorrelationSet]
		}
	}

	page := view.Page{Controls: []view.Control{{
		Name:    "columns",
		Label:   "Select categories for correlation analysis",
		Type:    view.ControlMultiSelect,
		Options: available,
		Values:  selected,
	}}}

	var matrix *analysis.CorrelationMatrix
	heatmap := runSection("Correlation Heatmap", func(s *view.Section) error {
		if len(selected) < 2 {
			return errors.InsufficientSelection("Please select at least two categories for correlation analysis.")
		}
		m, err := analysis.Correlate(t, selected)
		if err != nil {
			return err
		}
		matrix = m

		labels := make([]string, len(m.Columns))
		for i, c := range m.Columns {
			labels[i] = finance.ShortName(c)
		}
		s.AddChart(view.Chart{
			Kind:       view.ChartHeatmap,
			Title:      "Correlation Heatmap",
			Categories: labels,
			Matrix:     m.Values,
		})
		return nil
	})
	page.Add(heatmap)
	if matrix == nil {
		return page
	}

	page.Add(runSection("Correlation Insights", func(s *view.Section) error {
		for i := range matrix.Columns {
			for j := i + 1; j < len(matrix.Columns); j++ {
				a, b := matrix.Columns[i], matrix.Columns[j]
				r := matrix.Values[i][j]
				if math.IsNaN(r) || math.Abs(r) <= strongCorrelation {
					continue
				}
				kind := "strong positive"
				if r < 0 {
					kind = "strong negative"
				}
				s.Info(fmt.Sprintf("**%s** and **%s** have a %s correlation (%.2f).", a, b, kind, r))

				if a != finance.ColSavings && b != finance.ColSavings {
					continue
				}
				other := a
				if a == finance.ColSavings {
					other = b
				}
				if r > 0 {
					s.Success(fmt.Sprintf("Consider maintaining or increasing %s to potentially boost savings.", other))
				} else {
					s.Warn(fmt.Sprintf("Consider reducing %s to potentially increase savings.", other))
				}
			}
		}
		if len(s.Messages) == 0 {
			s.Info("No pair of selected categories is strongly correlated (|r| > 0.5).")
		}
		return nil
	}))

	page.Add(runSection("Optimization Suggestions", func(s *view.Section) error {
		if !contains(matrix.Columns, finance.ColSavings) {
			s.Info(fmt.Sprintf("Please include '%s' in your selection to see optimization suggestions.", finance.ColSavings))
			return nil
		}
		ranked := rankBySavings(matrix)
		s.Info("To potentially increase savings, consider:")
		suggested := 0
		for _, rc := range ranked {
			switch {
			case rc.r > suggestionCorrelation:
				s.Success(fmt.Sprintf("- Increasing %s", rc.column))
				suggested++
			case rc.r < -suggestionCorrelation:
				s.Warn(fmt.Sprintf("- Reducing %s", rc.column))
				suggested++
			}
		}
		if suggested == 0 {
			s.Info("No selected category is correlated with savings beyond ±0.3.")
		}

		table := view.DataTable{Caption: "Correlation with savings", Columns: []string{"Category", "Correlation"}}
		for _, rc := range ranked {
			table.Rows = append(table.Rows, []string{rc.column, formatCoefficient(rc.r)})
		}
		s.AddTable(table)
		return nil
	}))

	return page
}

type rankedColumn struct {
	column string
	r      float64
}

// rankBySavings orders the non-savings columns by correlation with savings, descending.
// Undefined correlations sort last.
func rankBySavings(m *analysis.CorrelationMatrix) []rankedColumn {
	var out []rankedColumn
	for _, c := range m.Columns {
		if c == finance.ColSavings {
			continue
		}
		r, _ := m.At(finance.ColSavings, c)
		out = append(out, rankedColumn{column: c, r: r})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if math.IsNaN(out[j].r) {
			return !math.IsNaN(out[i].r)
		}
		return out[i].r > out[j].r
	})
	return out
}

func formatCoefficient(r float64) string {
	if math.IsNaN(r) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", r)
}
