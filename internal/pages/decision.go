package pages

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"finsight/domain/finance"
	"finsight/domain/view"
	"finsight/internal/errors"
)

// Contributions split a shortfall into equal installments over one year
type Contributions struct {
	Monthly float64
	Weekly  float64
	Daily   float64
}

// Amortize splits shortfall linearly, without compounding
func Amortize(shortfall float64) Contributions {
	return Contributions{
		Monthly: shortfall / 12,
		Weekly:  shortfall / 52,
		Daily:   shortfall / 365,
	}
}

// Suggestion is a discretionary category worth reducing
type Suggestion struct {
	Column   string
	Mean     float64
	Spenders int // rows with a positive spend
	Records  int // all rows of the table
}

// LatestSavings returns the last non-missing savings figure in table order
func LatestSavings(t *finance.Table, strategy finance.SavingsStrategy) (float64, error) {
	if err := t.Require(strategy.RequiredColumns()...); err != nil {
		return 0, err
	}
	for r := t.Len() - 1; r >= 0; r-- {
		if v := strategy.Savings(t, r); !math.IsNaN(v) {
			return v, nil
		}
	}
	return 0, errors.NoData("No savings values are recorded in the uploaded data.")
}

// DiscretionarySuggestions reports, for each discretionary category present, the mean
// spend among rows with a positive value and how many rows spend on it. Each row is
// one employee record, so an employee with several months counts once per month.
func DiscretionarySuggestions(t *finance.Table) []Suggestion {
	var out []Suggestion
	for _, c := range finance.DiscretionaryColumns {
		if !t.IsNumeric(c) {
			continue
		}
		sum, n := 0.0, 0
		for r := 0; r < t.Len(); r++ {
			v := t.Value(r, c)
			if math.IsNaN(v) || v <= 0 {
				continue
			}
			sum += v
			n++
		}
		if n == 0 {
			continue
		}
		out = append(out, Suggestion{Column: c, Mean: sum / float64(n), Spenders: n, Records: t.Len()})
	}
	return out
}

func renderDecision(ctx context.Context, env *Env, t *finance.Table, in Inputs) view.Page {
	page := view.Page{}

	baseline, baseErr := LatestSavings(t, env.Strategy)
	ceiling := math.Floor(baseline + env.Headroom)
	if ceiling < 0 {
		ceiling = 0
	}
	page.Controls = []view.Control{
		{Name: "goal", Label: "Set Your Savings Target (£)", Type: view.ControlNumber, Value: in.Get("goal"), Min: 0, Step: 100},
		{Name: "current", Label: "Adjust Current Savings (£)", Type: view.ControlSlider, Value: in.Get("current"), Min: 0, Max: ceiling, Step: 1},
	}

	page.Add(runSection("Current Savings Analysis", func(s *view.Section) error {
		if baseErr != nil {
			return baseErr
		}
		s.Info(fmt.Sprintf("Latest recorded savings: %s", finance.FormatMoney(baseline)))
		return nil
	}))
	if baseErr != nil {
		return page
	}

	met := true
	page.Add(runSection("Savings Goal", func(s *view.Section) error {
		goal, err := in.Float("goal", 0)
		if err != nil {
			return err
		}
		if goal < 0 {
			return errors.InvalidInput("The savings target must not be negative.")
		}
		current, err := in.Float("current", math.Max(0, math.Floor(baseline)))
		if err != nil {
			return err
		}
		if current < 0 || current > ceiling {
			s.Warn(fmt.Sprintf("Current savings adjusted into the range %s to %s.", finance.FormatMoney(0), finance.FormatMoney(ceiling)))
			current = math.Min(math.Max(current, 0), ceiling)
		}
		page.Controls[1].Value = strconv.FormatFloat(current, 'f', -1, 64)

		if current >= goal {
			s.Success("Updated Goal Status: Met")
			s.Success("You have met your adjusted savings goal!")
			return nil
		}
		met = false
		shortfall := goal - current
		s.Info("Updated Goal Status: Not Met")
		s.Warn(fmt.Sprintf("You still need to save %s to meet your target.", finance.FormatMoney(shortfall)))

		c := Amortize(shortfall)
		s.Info(fmt.Sprintf("To meet your adjusted goal in one year, save an additional %s per month.", finance.FormatMoney(c.Monthly)))
		s.Info(fmt.Sprintf("To meet your adjusted goal in one year, save an additional %s per week.", finance.FormatMoney(c.Weekly)))
		s.Info(fmt.Sprintf("To meet your adjusted goal in one year, save an additional %s per day.", finance.FormatMoney(c.Daily)))
		s.AddTable(view.DataTable{
			Caption: "Contribution needed within one year",
			Columns: []string{"Period", "Contribution"},
			Rows: [][]string{
				{"Month", finance.FormatMoney(c.Monthly)},
				{"Week", finance.FormatMoney(c.Weekly)},
				{"Day", finance.FormatMoney(c.Daily)},
			},
		})
		return nil
	}))
	if met {
		return page
	}

	page.Add(runSection("Consider the following to save money", func(s *view.Section) error {
		suggestions := DiscretionarySuggestions(t)
		if len(suggestions) == 0 {
			s.Info("No discretionary spending was found to cut back on.")
			return nil
		}
		for _, sg := range suggestions {
			s.Info(fmt.Sprintf("- %s (%s/month)  \nApplies to %d out of %d employees",
				finance.ShortName(sg.Column), finance.FormatMoney(sg.Mean), sg.Spenders, sg.Records))
		}
		return nil
	}))
	return page
}
