package pages

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"finsight/domain/finance"
	"finsight/domain/view"
	"finsight/internal/analysis"
	"finsight/internal/errors"
)

// EDA views
const (
	ViewTrends        = "trends"
	ViewDistributions = "distributions"
	ViewIncome        = "income"

	defaultEmployeeFilter = 5
	maxExtraMonths        = 2
)

var edaViews = []string{ViewTrends, ViewDistributions, ViewIncome}

func renderEDA(ctx context.Context, env *Env, t *finance.Table, in Inputs) view.Page {
	page := view.Page{}
	if !t.HasColumn(finance.ColEmployee) {
		page.Add(runSection("Filters", func(s *view.Section) error {
			return errors.MissingColumn(finance.ColEmployee)
		}))
		return page
	}

	employees := t.Employees()
	selected := in.List("employees")
	if !in.Has("employees") {
		selected = employees
		if len(selected) > defaultEmployeeFilter {
			selected = selected[:defaultEmployeeFilter]
		}
	}
	mode := in.Get("view")
	if mode == "" {
		mode = ViewTrends
	}

	filtered := t.FilterEmployees(selected)
	focus := in.Get("employee")
	if focus == "" && len(filtered.Employees()) > 0 {
		focus = filtered.Employees()[0]
	}
	expense := in.Get("expense")
	if expense == "" {
		expense = finance.ExpenseColumns[0]
	}

	page.Controls = []view.Control{
		{Name: "employees", Label: "Filter by Employees", Type: view.ControlMultiSelect, Options: employees, Values: selected},
		{Name: "view", Label: "Select Visualization", Type: view.ControlRadio, Options: edaViews, Value: mode},
		{Name: "employee", Label: "Select Employee", Type: view.ControlSelect, Options: filtered.Employees(), Value: focus},
	}
	if mode == ViewTrends {
		horizon := in.Get("horizon")
		if horizon == "" {
			horizon = "3"
		}
		page.Controls = append(page.Controls,
			view.Control{Name: "expense", Label: "Select Expense Category", Type: view.ControlSelect, Options: finance.ExpenseColumns, Value: expense},
			view.Control{Name: "next1", Label: "Next month expense (£)", Type: view.ControlNumber, Value: in.Get("next1"), Min: 0, Step: 0.01},
			view.Control{Name: "next2", Label: "Second month expense (£)", Type: view.ControlNumber, Value: in.Get("next2"), Min: 0, Step: 0.01},
			view.Control{Name: "horizon", Label: "Predict expenses for next n months", Type: view.ControlSlider, Value: horizon, Min: 1, Max: 12, Step: 1},
		)
	}

	if len(selected) == 0 || filtered.Len() == 0 {
		page.Add(runSection("Filters", func(s *view.Section) error {
			return errors.InsufficientSelection("Select at least one employee to explore.")
		}))
		return page
	}

	switch mode {
	case ViewTrends:
		page.Add(runSection("Spending Trends", func(s *view.Section) error {
			return spendingTrends(s, filtered, expense)
		}))
		page.Add(runSection("Expense Prediction for Individual Employee", func(s *view.Section) error {
			return expensePrediction(s, filtered, focus, expense, in)
		}))
	case ViewDistributions:
		page.Add(runSection("Overall Expense Distribution", func(s *view.Section) error {
			return overallDistribution(s, filtered)
		}))
		page.Add(runSection("Employee Expense Breakdown", func(s *view.Section) error {
			return employeeBreakdown(s, filtered, focus)
		}))
	case ViewIncome:
		page.Add(runSection("Income vs Expenses", func(s *view.Section) error {
			return incomeVsExpenses(s, filtered, env.Strategy)
		}))
	default:
		page.Add(runSection("Visualization", func(s *view.Section) error {
			return errors.InvalidInput(fmt.Sprintf("unknown view %q", mode))
		}))
	}
	return page
}

func spendingTrends(s *view.Section, t *finance.Table, expense string) error {
	if !finance.IsExpenseColumn(expense) {
		return errors.InvalidInput(fmt.Sprintf("%q is not an expense category", expense))
	}
	if err := t.Require(expense); err != nil {
		return err
	}

	employees := t.Employees()
	totals := make([]float64, len(employees))
	for i, e := range employees {
		for _, r := range t.RowsFor(e) {
			if v := t.Value(r, expense); !math.IsNaN(v) {
				totals[i] += v
			}
		}
	}
	s.AddChart(view.Chart{
		Kind:       view.ChartBar,
		Title:      fmt.Sprintf("%s by Employee", expense),
		XLabel:     finance.ColEmployee,
		YLabel:     expense,
		Categories: employees,
		Series:     []view.Series{{Name: expense, Y: totals}},
	})
	return nil
}

func expensePrediction(s *view.Section, t *finance.Table, employee, expense string, in Inputs) error {
	if employee == "" {
		return errors.InsufficientSelection("It is necessary to select at least one employee to proceed.")
	}
	if err := t.Require(expense); err != nil {
		return err
	}
	rows := t.RowsFor(employee)
	if len(rows) == 0 {
		return errors.InvalidInput(fmt.Sprintf("employee %q is not in the current filter", employee))
	}
	horizon, err := in.Int("horizon", 3, 1, 12)
	if err != nil {
		return err
	}

	history := make([]float64, len(rows))
	for i, r := range rows {
		history[i] = t.Value(r, expense)
	}
	s.Info(fmt.Sprintf("First Month's %s: %s", expense, finance.FormatMoney(history[0])))

	var extra []float64
	for i := 1; i <= maxExtraMonths; i++ {
		v, ok, err := in.OptionalFloat("next" + strconv.Itoa(i))
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if v < 0 {
			return errors.InvalidInput("expected expenses must not be negative")
		}
		extra = append(extra, v)
	}

	training := append(append([]float64(nil), history...), extra...)
	line, err := analysis.FitIndexLine(training)
	if err != nil {
		return errors.InvalidInput(fmt.Sprintf("Not enough %s values for %s to fit a trend: %v", expense, employee, err))
	}
	predictions := line.Extrapolate(len(training), horizon)

	chart := view.Chart{
		Kind:   view.ChartLine,
		Title:  fmt.Sprintf("%s Trend and Prediction for %s", expense, employee),
		XLabel: "Month",
		YLabel: expense,
		Series: []view.Series{{Name: "Bill Months Given", X: positions(0, len(history)), Y: history}},
		Dividers: []view.Divider{
			{X: float64(len(history) - 1), Label: "Bill Months Given"},
			{X: float64(len(training) - 1), Label: "Predictions"},
		},
	}
	if len(extra) > 0 {
		chart.Series = append(chart.Series, view.Series{Name: "Expected", X: positions(len(history), len(extra)), Y: extra})
	}
	chart.Series = append(chart.Series, view.Series{
		Name:   "Prediction",
		X:      positions(len(training), horizon),
		Y:      predictions,
		Dashed: true,
	})
	s.AddChart(chart)

	s.Info(fmt.Sprintf("Predicted %s for %s for the next %d months:", expense, employee, horizon))
	for i, p := range predictions {
		s.Info(fmt.Sprintf("Month %d: %s", i+1, finance.FormatMoney(p)))
	}
	return nil
}

func overallDistribution(s *view.Section, t *finance.Table) error {
	columns := finance.PresentExpenseColumns(t)
	if len(columns) == 0 {
		return errors.MissingColumn(finance.ExpenseColumns[0])
	}
	totals := make([]float64, len(columns))
	labels := make([]string, len(columns))
	for j, c := range columns {
		labels[j] = finance.ShortName(c)
		for r := 0; r < t.Len(); r++ {
			if v := t.Value(r, c); !math.IsNaN(v) {
				totals[j] += v
			}
		}
	}
	s.AddChart(view.Chart{
		Kind:       view.ChartPie,
		Title:      "Overall Expense Distribution",
		Categories: labels,
		Series:     []view.Series{{Name: "Total", Y: totals}},
	})
	return nil
}

func employeeBreakdown(s *view.Section, t *finance.Table, employee string) error {
	rows := t.RowsFor(employee)
	if len(rows) == 0 {
		return errors.InsufficientSelection("Select an employee for a detailed breakdown.")
	}
	columns := finance.PresentExpenseColumns(t)
	if len(columns) == 0 {
		return errors.MissingColumn(finance.ExpenseColumns[0])
	}
	values := make([]float64, len(columns))
	labels := make([]string, len(columns))
	for j, c := range columns {
		labels[j] = finance.ShortName(c)
		values[j] = t.Value(rows[0], c)
	}
	s.AddChart(view.Chart{
		Kind:       view.ChartPie,
		Title:      fmt.Sprintf("Expense Distribution for %s", employee),
		Categories: labels,
		Series:     []view.Series{{Name: employee, Y: values}},
	})
	return nil
}

// incomeVsExpenses compares income, expenses and savings row by row; derived values
// stay local to this render
func incomeVsExpenses(s *view.Section, t *finance.Table, strategy finance.SavingsStrategy) error {
	if err := t.Require(finance.ColIncome); err != nil {
		return err
	}
	if err := t.Require(strategy.RequiredColumns()...); err != nil {
		return err
	}

	n := t.Len()
	labels := rowLabels(t)
	income := make([]float64, n)
	expenses := make([]float64, n)
	savings := make([]float64, n)
	var percentages []float64
	for r := 0; r < n; r++ {
		income[r] = t.Value(r, finance.ColIncome)
		expenses[r] = finance.TotalExpenses(t, r)
		savings[r] = strategy.Savings(t, r)
		if income[r] > 0 && !math.IsNaN(savings[r]) {
			percentages = append(percentages, savings[r]/income[r]*100)
		}
	}

	s.AddChart(view.Chart{
		Kind:       view.ChartGroupedBar,
		Title:      "Income vs Expenses and Savings by Employee",
		XLabel:     finance.ColEmployee,
		YLabel:     "£ per month",
		Categories: labels,
		Series: []view.Series{
			{Name: finance.ColIncome, Y: income},
			{Name: finance.DerivedTotalExpenses, Y: expenses},
			{Name: finance.DerivedSavings, Y: savings},
		},
	})

	if len(percentages) == 0 {
		s.Warn("Average Savings Percentage is unavailable: no row has a positive income.")
		return nil
	}
	avg := 0.0
	for _, p := range percentages {
		avg += p
	}
	avg /= float64(len(percentages))
	s.Info(fmt.Sprintf("Average %s: %.2f%%", finance.DerivedSavingsPercentage, avg))
	return nil
}

// rowLabels names each row by employee, numbering the rows of employees that appear more than once
func rowLabels(t *finance.Table) []string {
	names, _ := t.Strings(finance.ColEmployee)
	counts := make(map[string]int)
	for _, n := range names {
		counts[n]++
	}
	seen := make(map[string]int)
	labels := make([]string, t.Len())
	for r := range labels {
		name := ""
		if r < len(names) {
			name = names[r]
		}
		if counts[name] > 1 {
			seen[name]++
			name = fmt.Sprintf("%s #%d", name, seen[name])
		}
		labels[r] = name
	}
	return labels
}

func positions(from, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(from + i)
	}
	return out
}
