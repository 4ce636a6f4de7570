package pages

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"finsight/domain/finance"
	"finsight/domain/view"
	"finsight/internal/errors"
	"finsight/internal/forecast"
)

// Forecast modes
const (
	ModeLadder = "ladder"
	ModeLinear = "linear"
	ModeModels = "models"

	changeMonths = 5
	modelHorizon = 6
	linearMonths = 48
	monthLayout  = "2006-01"
)

var forecastModes = []string{ModeLadder, ModeLinear, ModeModels}

func renderForecast(ctx context.Context, env *Env, t *finance.Table, in Inputs) view.Page {
	page := view.Page{}
	mode := in.Get("mode")
	if mode == "" {
		mode = ModeLadder
	}
	employees := t.Employees()
	employee := in.Get("employee")
	if employee == "" && len(employees) > 0 {
		employee = employees[0]
	}
	page.Controls = []view.Control{
		{Name: "mode", Label: "Forecast", Type: view.ControlRadio, Options: forecastModes, Value: mode},
		{Name: "employee", Label: "Select Employee for Prediction", Type: view.ControlSelect, Options: employees, Value: employee},
	}

	var rows []int
	var income float64
	setup := runSection("Current Income", func(s *view.Section) error {
		if err := t.Require(finance.ColEmployee, finance.ColIncome); err != nil {
			return err
		}
		rows = t.RowsFor(employee)
		if len(rows) == 0 {
			return errors.InsufficientSelection("No data found for the selected employee.")
		}
		income = t.Value(rows[0], finance.ColIncome)
		if math.IsNaN(income) {
			return errors.NoData(fmt.Sprintf("No monthly income is recorded for %s.", employee))
		}
		s.Info(fmt.Sprintf("Current Monthly Income for %s: %s", employee, finance.FormatMoney(income)))
		return nil
	})
	page.Add(setup)
	if !setup.OK() {
		return page
	}

	switch mode {
	case ModeLadder:
		ladderSections(&page, employee, income, in)
	case ModeLinear:
		linearSections(&page, employee, income, in)
	case ModeModels:
		modelSections(ctx, &page, env, t, employee, rows[0], in)
	default:
		page.Add(runSection("Forecast", func(s *view.Section) error {
			return errors.InvalidInput(fmt.Sprintf("unknown forecast mode %q", mode))
		}))
	}
	return page
}

func ladderSections(page *view.Page, employee string, income float64, in Inputs) {
	for m := 1; m <= forecast.FirstYearMonths; m++ {
		name := "increase_" + strconv.Itoa(m)
		page.Controls = append(page.Controls, view.Control{
			Name: name, Label: fmt.Sprintf("Increase Amount for Month %d (£)", m),
			Type: view.ControlNumber, Value: in.Get(name), Min: 0, Step: 1,
		})
	}

	page.Add(runSection("Salary Forecast", func(s *view.Section) error {
		custom := make(map[int]float64)
		for m := 1; m <= forecast.FirstYearMonths; m++ {
			v, err := in.Float("increase_"+strconv.Itoa(m), 0)
			if err != nil {
				return err
			}
			if v < 0 {
				return errors.InvalidInput(fmt.Sprintf("Increase for month %d must not be negative.", m))
			}
			if v > 0 {
				custom[m] = v
			}
		}
		ladder, err := forecast.SalaryLadder(income, custom)
		if err != nil {
			return errors.InvalidInput(err.Error())
		}

		s.AddChart(view.Chart{
			Kind:   view.ChartLine,
			Title:  fmt.Sprintf("Forecasted Monthly Salaries for %s", employee),
			XLabel: "Month",
			YLabel: "Salary (£)",
			Series: []view.Series{
				{Name: "Forecast (Next 12 Months)", X: positions(1, len(ladder.FirstYear)), Y: ladder.FirstYear},
				{Name: "Forecast (Next 4 Years)", X: positions(1+len(ladder.FirstYear), len(ladder.Extended)), Y: ladder.Extended, Dashed: true},
			},
		})

		s.Info(fmt.Sprintf("Forecasted Monthly Salaries for %s:", employee))
		for i, v := range ladder.FirstYear {
			s.Info(fmt.Sprintf("Month %d: %s", i+1, finance.FormatMoney(v)))
		}
		if len(custom) > 0 {
			s.Info("Custom increases apply to their own month only; the salary returns to its previous level the month after.")
		}
		s.Success(fmt.Sprintf("Total Salary Including Current Month Bonus: %s", finance.FormatMoney(ladder.Bonus)))
		return nil
	}))
}

func linearSections(page *view.Page, employee string, income float64, in Inputs) {
	page.Controls = append(page.Controls,
		view.Control{Name: "month2", Label: "Income for Month 2 (£)", Type: view.ControlNumber, Value: in.Get("month2"), Min: 0, Step: 1},
		view.Control{Name: "month3", Label: "Income for Month 3 (£)", Type: view.ControlNumber, Value: in.Get("month3"), Min: 0, Step: 1},
	)

	page.Add(runSection("Linear Income Projection", func(s *view.Section) error {
		m2, err := in.Float("month2", income)
		if err != nil {
			return err
		}
		m3, err := in.Float("month3", m2)
		if err != nil {
			return err
		}
		projection, err := forecast.LinearExtrapolation(income, m3, linearMonths)
		if err != nil {
			return errors.InvalidInput(err.Error())
		}

		s.Info(fmt.Sprintf("Months 1-3 for %s: %s, %s, %s", employee,
			finance.FormatMoney(income), finance.FormatMoney(m2), finance.FormatMoney(m3)))
		s.Info(fmt.Sprintf("Average monthly change: %s", finance.FormatMoney(projection.Delta)))

		years := projection.Years()
		table := view.DataTable{Caption: "Projected monthly income", Columns: []string{"Month"}}
		for y := range years {
			table.Columns = append(table.Columns, fmt.Sprintf("Year %d", y+1))
		}
		for m := 0; m < 12; m++ {
			row := []string{strconv.Itoa(m + 1)}
			for _, year := range years {
				cell := ""
				if m < len(year) {
					cell = finance.FormatMoney(year[m])
				}
				row = append(row, cell)
			}
			table.Rows = append(table.Rows, row)
		}
		s.AddTable(table)

		s.AddChart(view.Chart{
			Kind:   view.ChartLine,
			Title:  fmt.Sprintf("Projected Monthly Income for %s", employee),
			XLabel: "Month",
			YLabel: "Income (£)",
			Series: []view.Series{
				{Name: "Entered", X: positions(1, 3), Y: []float64{income, m2, m3}},
				{Name: "Projection", X: positions(4, len(projection.Values)), Y: projection.Values, Dashed: true},
			},
		})
		return nil
	}))
}

func modelSections(ctx context.Context, page *view.Page, env *Env, t *finance.Table, employee string, first int, in Inputs) {
	start := in.Get("start")
	if start == "" {
		start = env.Now().Format(monthLayout)
	}
	page.Controls = append(page.Controls, view.Control{Name: "start", Label: "First month", Type: view.ControlMonth, Value: start})
	for m := 1; m <= changeMonths; m++ {
		for _, prefix := range []string{"savings_change_", "expense_change_"} {
			name := prefix + strconv.Itoa(m)
			label := fmt.Sprintf("Savings change for month %d (£)", m)
			if prefix == "expense_change_" {
				label = fmt.Sprintf("Expenses change for month %d (£)", m)
			}
			page.Controls = append(page.Controls, view.Control{Name: name, Label: label, Type: view.ControlNumber, Value: in.Get(name), Step: 1})
		}
	}

	var savings forecast.Series
	history := runSection("Savings and Expenses History", func(s *view.Section) error {
		if err := t.Require(env.Strategy.RequiredColumns()...); err != nil {
			return err
		}
		startMonth, err := time.Parse(monthLayout, start)
		if err != nil {
			return errors.InvalidInput(fmt.Sprintf("First month must look like 2024-01, got %q", start))
		}
		seed := env.Strategy.Savings(t, first)
		if math.IsNaN(seed) {
			return errors.NoData(fmt.Sprintf("No savings figure is recorded for %s.", employee))
		}
		expenseSeed := finance.TotalExpenses(t, first)

		savingsChanges, err := changes(in, "savings_change_")
		if err != nil {
			return err
		}
		expenseChanges, err := changes(in, "expense_change_")
		if err != nil {
			return err
		}
		savings, err = forecast.BuildSeries(seed, savingsChanges, startMonth)
		if err != nil {
			return errors.InvalidInput(err.Error())
		}
		expenses, err := forecast.BuildSeries(expenseSeed, expenseChanges, startMonth)
		if err != nil {
			return errors.InvalidInput(err.Error())
		}

		table := view.DataTable{Columns: []string{"Month", "Savings", "Expenses"}}
		for i, d := range savings.Dates {
			table.Rows = append(table.Rows, []string{
				d.Format(monthLayout),
				finance.FormatMoney(savings.Values[i]),
				finance.FormatMoney(expenses.Values[i]),
			})
		}
		s.AddTable(table)
		s.AddChart(view.Chart{
			Kind:   view.ChartTimeSeries,
			Title:  fmt.Sprintf("Savings and Expenses for %s", employee),
			XLabel: "Month",
			YLabel: "£",
			Series: []view.Series{
				{Name: finance.DerivedSavings, Times: savings.Dates, Y: savings.Values},
				{Name: finance.DerivedTotalExpenses, Times: expenses.Dates, Y: expenses.Values},
			},
		})
		return nil
	})
	page.Add(history)
	if !history.OK() {
		return
	}

	results := env.Runner.Run(ctx, savings, modelHorizon)
	comparison := view.Chart{
		Kind:   view.ChartTimeSeries,
		Title:  "Savings Forecast Comparison",
		XLabel: "Month",
		YLabel: "Savings (£)",
		Series: []view.Series{{Name: "History", Times: savings.Dates, Y: savings.Values}},
	}
	for _, res := range results {
		page.Add(runSection(res.Model+" Forecast", func(s *view.Section) error {
			if res.Err != nil {
				return res.Err
			}
			table := view.DataTable{Columns: []string{"Month", "Forecast"}}
			for i, d := range res.Dates {
				table.Rows = append(table.Rows, []string{d.Format(monthLayout), finance.FormatMoney(res.Values[i])})
			}
			s.AddTable(table)
			s.Info(fmt.Sprintf("Fitted in %v.", res.Elapsed.Round(time.Millisecond)))
			comparison.Series = append(comparison.Series, view.Series{Name: res.Model, Times: res.Dates, Y: res.Values, Dashed: true})
			return nil
		}))
	}

	page.Add(runSection("Savings Forecast Comparison", func(s *view.Section) error {
		if len(comparison.Series) == 1 {
			return errors.ModelFailure("every forecaster", fmt.Errorf("no model produced a forecast"))
		}
		s.AddChart(comparison)
		s.Info("Forecasts are shown side by side as produced; they are not combined.")
		return nil
	}))
}

// changes reads prefix1..prefix5; empty inputs count as no change
func changes(in Inputs, prefix string) ([]float64, error) {
	out := make([]float64, changeMonths)
	for m := 1; m <= changeMonths; m++ {
		v, err := in.Float(prefix+strconv.Itoa(m), 0)
		if err != nil {
			return nil, err
		}
		out[m-1] = v
	}
	return out, nil
}
