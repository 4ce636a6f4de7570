package pages

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"finsight/domain/finance"
	"finsight/domain/view"
	"finsight/internal/dataset"
	"finsight/internal/errors"
	"finsight/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullCSV = `Employee,Monthly Income (£),Electricity Bill (£),Gas Bill (£),Water Bill (£),Groceries (£),Transportation (£),Sky Sports (£),Netflix (£),Amazon Prime (£),Other Expenses (£),Monthly Outing (£),Savings for Property (£)
Alice,2000,60,40,20,200,100,0,10,8,50,80,300
Alice,2000,62,42,21,210,100,0,10,8,55,90,320
Bob,3000,80,55,30,300,150,25,10,0,70,120,600
Bob,3000,82,57,31,310,150,25,10,0,75,110,640
Cara,1500,40,30,15,150,60,0,0,8,20,40,100
Cara,1500,41,31,16,155,60,0,0,8,25,35,110
Dev,2500,70,50,25,250,120,25,10,8,60,100,450
Dev,2500,71,52,26,260,125,25,10,8,65,95,470
`

func loadTable(t *testing.T, csv string) *finance.Table {
	t.Helper()
	table, err := dataset.Parse(strings.NewReader(csv), "finance.csv")
	require.NoError(t, err)
	return table
}

func render(t *testing.T, name string, table *finance.Table, in Inputs) *view.Page {
	t.Helper()
	def, ok := Lookup(name)
	require.True(t, ok)
	env := DefaultEnv()
	env.Now = func() time.Time { return time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC) }
	return env.RenderTable(context.Background(), def, table, in)
}

func section(t *testing.T, page *view.Page, title string) view.Section {
	t.Helper()
	s, ok := page.Section(title)
	require.True(t, ok, "section %q not rendered", title)
	return s
}

func texts(s view.Section) string {
	var b strings.Builder
	for _, m := range s.Messages {
		b.WriteString(m.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func TestRender_NoUpload(t *testing.T) {
	_, err := DefaultEnv().Render(context.Background(), session.NewStore(), "correlation", nil)
	assert.Equal(t, errors.CodeNoData, errors.GetCode(err))

	store := session.NewStore()
	store.Replace(session.DefaultKey, &session.Snapshot{Table: loadTable(t, fullCSV)})
	_, err = DefaultEnv().Render(context.Background(), store, "unknown", nil)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	page, err := DefaultEnv().Render(context.Background(), store, "correlation", nil)
	require.NoError(t, err)
	assert.Equal(t, "Correlation Analysis", page.Title)
}

func TestCorrelation_DefaultSelection(t *testing.T) {
	page := render(t, "correlation", loadTable(t, fullCSV), Inputs{})

	assert.Len(t, page.Controls[0].Values, 5)
	heatmap := section(t, page, "Correlation Heatmap")
	require.True(t, heatmap.OK())
	require.Len(t, heatmap.Charts, 1)
	chart := heatmap.Charts[0]
	for i := range chart.Matrix {
		assert.Equal(t, 1.0, chart.Matrix[i][i])
		for j := range chart.Matrix {
			assert.Equal(t, chart.Matrix[i][j], chart.Matrix[j][i])
		}
	}

	suggestions := section(t, page, "Optimization Suggestions")
	assert.Contains(t, texts(suggestions), "Please include 'Savings for Property (£)'")
}

func TestCorrelation_SavingsInsights(t *testing.T) {
	in := Inputs{"columns": {finance.ColIncome, finance.ColGroceries, finance.ColSavings}}
	page := render(t, "correlation", loadTable(t, fullCSV), in)

	insights := texts(section(t, page, "Correlation Insights"))
	assert.Contains(t, insights, "strong positive")
	assert.Contains(t, insights, "Consider maintaining or increasing Monthly Income (£) to potentially boost savings.")

	suggestions := section(t, page, "Optimization Suggestions")
	assert.Contains(t, texts(suggestions), "- Increasing Monthly Income (£)")
	require.Len(t, suggestions.Tables, 1)
	assert.Len(t, suggestions.Tables[0].Rows, 2)
}

func TestCorrelation_TooFewColumns(t *testing.T) {
	page := render(t, "correlation", loadTable(t, fullCSV), Inputs{"columns": {finance.ColIncome}})

	require.Len(t, page.Sections, 1)
	heatmap := page.Sections[0]
	require.NotNil(t, heatmap.Err)
	assert.True(t, heatmap.Err.Warning)
	assert.Equal(t, errors.CodeInsufficientSelection, heatmap.Err.Kind)
	assert.Empty(t, heatmap.Charts)
}

func TestCorrelation_MissingColumn(t *testing.T) {
	page := render(t, "correlation", loadTable(t, fullCSV), Inputs{"columns": {finance.ColIncome, "Pension (£)"}})
	heatmap := section(t, page, "Correlation Heatmap")
	require.NotNil(t, heatmap.Err)
	assert.Equal(t, errors.CodeMissingColumn, heatmap.Err.Kind)
	assert.False(t, heatmap.Err.Warning)
}

func TestClustering(t *testing.T) {
	table := loadTable(t, fullCSV)
	page := render(t, "clustering", table, Inputs{"k": {"2"}})

	clusters := section(t, page, "Expense Clusters")
	require.True(t, clusters.OK(), "%+v", clusters.Err)
	require.Len(t, clusters.Charts, 1)
	points := 0
	for _, s := range clusters.Charts[0].Series {
		points += len(s.X)
		for _, h := range s.Hover {
			assert.NotEmpty(t, h[finance.ColEmployee])
		}
	}
	assert.Equal(t, table.Len(), points)

	descriptions := section(t, page, "Cluster Descriptions")
	require.Len(t, descriptions.Tables, 1)
	assert.Len(t, descriptions.Tables[0].Rows, 2)

	again := render(t, "clustering", table, Inputs{"k": {"2"}})
	assert.Equal(t, clusters.Charts[0].Series, section(t, again, "Expense Clusters").Charts[0].Series)
}

func TestClustering_InvalidK(t *testing.T) {
	page := render(t, "clustering", loadTable(t, fullCSV), Inputs{"k": {"11"}})
	clusters := section(t, page, "Expense Clusters")
	require.NotNil(t, clusters.Err)
	assert.Equal(t, errors.CodeInvalidInput, clusters.Err.Kind)

	page = render(t, "clustering", loadTable(t, fullCSV), Inputs{"k": {"10"}})
	clusters = section(t, page, "Expense Clusters")
	require.NotNil(t, clusters.Err, "8 rows cannot form 10 clusters")
}

func TestClustering_MissingColumn(t *testing.T) {
	page := render(t, "clustering", loadTable(t, "Employee,Gas Bill (£)\nAlice,10\n"), Inputs{})
	clusters := section(t, page, "Expense Clusters")
	require.NotNil(t, clusters.Err)
	assert.Equal(t, errors.CodeMissingColumn, clusters.Err.Kind)
}

func TestEDA_TrendsPrediction(t *testing.T) {
	in := Inputs{
		"employee": {"Alice"},
		"expense":  {finance.ColGas},
		"next1":    {"44"},
		"next2":    {"46"},
		"horizon":  {"2"},
	}
	page := render(t, "eda", loadTable(t, fullCSV), in)

	assert.Equal(t, []string{"Alice", "Bob", "Cara", "Dev"}, page.Controls[0].Values)
	trends := section(t, page, "Spending Trends")
	require.True(t, trends.OK())
	assert.Equal(t, []float64{82, 112, 61, 102}, trends.Charts[0].Series[0].Y)

	prediction := section(t, page, "Expense Prediction for Individual Employee")
	require.True(t, prediction.OK(), "%+v", prediction.Err)
	chart := prediction.Charts[0]
	assert.Equal(t, []view.Divider{{X: 1, Label: "Bill Months Given"}, {X: 3, Label: "Predictions"}}, chart.Dividers)
	predicted := chart.Series[len(chart.Series)-1]
	assert.Equal(t, []float64{4, 5}, predicted.X)
	assert.InDeltaSlice(t, []float64{48, 50}, predicted.Y, 1e-9)
	assert.Contains(t, texts(prediction), "Month 1: £48.00")
}

func TestEDA_DefaultFilterAndEmptySelection(t *testing.T) {
	csv := "Employee,Gas Bill (£)\nA,1\nB,2\nC,3\nD,4\nE,5\nF,6\n"
	page := render(t, "eda", loadTable(t, csv), Inputs{})
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, page.Controls[0].Values)

	page = render(t, "eda", loadTable(t, csv), Inputs{"employees": {""}})
	filters := section(t, page, "Filters")
	require.NotNil(t, filters.Err)
	assert.Equal(t, errors.CodeInsufficientSelection, filters.Err.Kind)
}

func TestEDA_Distributions(t *testing.T) {
	page := render(t, "eda", loadTable(t, fullCSV), Inputs{"view": {ViewDistributions}, "employee": {"Cara"}})

	overall := section(t, page, "Overall Expense Distribution")
	require.True(t, overall.OK())
	assert.Equal(t, view.ChartPie, overall.Charts[0].Kind)
	assert.Len(t, overall.Charts[0].Categories, len(finance.ExpenseColumns))

	breakdown := section(t, page, "Employee Expense Breakdown")
	require.True(t, breakdown.OK())
	assert.Equal(t, "Expense Distribution for Cara", breakdown.Charts[0].Title)
	assert.Equal(t, 40.0, breakdown.Charts[0].Series[0].Y[0])
}

func TestEDA_IncomeVsExpensesLeavesTableUntouched(t *testing.T) {
	table := loadTable(t, fullCSV)
	headers := table.Headers()
	page := render(t, "eda", table, Inputs{"view": {ViewIncome}})

	income := section(t, page, "Income vs Expenses")
	require.True(t, income.OK(), "%+v", income.Err)
	chart := income.Charts[0]
	assert.Equal(t, view.ChartGroupedBar, chart.Kind)
	require.Len(t, chart.Series, 3)
	require.Len(t, chart.Categories, 8)
	assert.Equal(t, "Alice #1", chart.Categories[0])
	assert.Equal(t, 300.0, chart.Series[2].Y[0])
	assert.Equal(t, 320.0, chart.Series[2].Y[1])
	assert.Contains(t, texts(income), "Average Savings Percentage:")

	assert.Equal(t, headers, table.Headers())
	assert.False(t, table.HasColumn(finance.DerivedTotalExpenses))
}

func TestEDA_SavingsPercentageAveragesRows(t *testing.T) {
	csv := "Employee,Monthly Income (£),Gas Bill (£),Savings for Property (£)\nAlice,1000,40,100\nAlice,3000,40,900\n"
	page := render(t, "eda", loadTable(t, csv), Inputs{"view": {ViewIncome}})

	income := section(t, page, "Income vs Expenses")
	require.True(t, income.OK(), "%+v", income.Err)
	assert.Equal(t, []string{"Alice #1", "Alice #2"}, income.Charts[0].Categories)
	assert.Contains(t, texts(income), "Average Savings Percentage: 20.00%")
}

func TestDiscretionarySuggestions_CountsRows(t *testing.T) {
	csv := "Employee,Monthly Income (£),Netflix (£),Sky Sports (£),Savings for Property (£)\nAlice,2000,10,0,100\nAlice,2000,10,0,100\nAlice,2000,12,0,100\nBob,3000,0,0,200\n"
	suggestions := DiscretionarySuggestions(loadTable(t, csv))

	require.Len(t, suggestions, 1)
	assert.Equal(t, finance.ColNetflix, suggestions[0].Column)
	assert.InDelta(t, 32.0/3, suggestions[0].Mean, 1e-9)
	assert.Equal(t, 3, suggestions[0].Spenders)
	assert.Equal(t, 4, suggestions[0].Records)
}

func TestDecision_Amortization(t *testing.T) {
	c := Amortize(5200)
	assert.Equal(t, 5200.0/12, c.Monthly)
	assert.Equal(t, 100.0, c.Weekly)
	assert.Equal(t, 5200.0/365, c.Daily)
}

func TestDecision_GoalNotMet(t *testing.T) {
	page := render(t, "decision", loadTable(t, fullCSV), Inputs{"goal": {"1000"}})

	assert.Contains(t, texts(section(t, page, "Current Savings Analysis")), "£470.00")
	assert.Equal(t, 5470.0, page.Controls[1].Max)

	goal := section(t, page, "Savings Goal")
	require.True(t, goal.OK())
	text := texts(goal)
	assert.Contains(t, text, "Not Met")
	assert.Contains(t, text, "You still need to save £530.00 to meet your target.")
	assert.Contains(t, text, "£44.17 per month")
	assert.Contains(t, text, "£10.19 per week")
	assert.Contains(t, text, "£1.45 per day")

	suggestions := texts(section(t, page, "Consider the following to save money"))
	assert.Contains(t, suggestions, "Sky Sports (£25.00/month)")
	assert.Contains(t, suggestions, "Applies to 4 out of 8 employees")
	assert.Contains(t, suggestions, "Netflix (£10.00/month)")
}

func TestDecision_GoalMetAndClamp(t *testing.T) {
	page := render(t, "decision", loadTable(t, fullCSV), Inputs{"goal": {"400"}, "current": {"999999"}})
	goal := section(t, page, "Savings Goal")
	require.True(t, goal.OK())
	assert.Contains(t, texts(goal), "You have met your adjusted savings goal!")
	assert.Equal(t, "5470", page.Controls[1].Value)
	_, found := page.Section("Consider the following to save money")
	assert.False(t, found)
}

func TestDecision_NegativeGoal(t *testing.T) {
	page := render(t, "decision", loadTable(t, fullCSV), Inputs{"goal": {"-5"}})
	goal := section(t, page, "Savings Goal")
	require.NotNil(t, goal.Err)
	assert.True(t, goal.Err.Warning)
}

func TestForecast_Ladder(t *testing.T) {
	in := Inputs{"employee": {"Alice"}, "increase_6": {"100"}}
	page := render(t, "forecast", loadTable(t, fullCSV), in)

	ladder := section(t, page, "Salary Forecast")
	require.True(t, ladder.OK(), "%+v", ladder.Err)
	text := texts(ladder)
	assert.Contains(t, text, "Month 6: £2100.00")
	assert.Contains(t, text, "Month 7: £2000.00")
	assert.Contains(t, text, "Month 12: £2060.00")
	require.Len(t, ladder.Charts[0].Series, 2)
	assert.Len(t, ladder.Charts[0].Series[1].Y, 48)
}

func TestForecast_Linear(t *testing.T) {
	in := Inputs{"mode": {ModeLinear}, "employee": {"Bob"}, "month2": {"3050"}, "month3": {"3200"}}
	page := render(t, "forecast", loadTable(t, fullCSV), in)

	projection := section(t, page, "Linear Income Projection")
	require.True(t, projection.OK(), "%+v", projection.Err)
	table := projection.Tables[0]
	assert.Equal(t, []string{"Month", "Year 1", "Year 2", "Year 3", "Year 4"}, table.Columns)
	assert.Len(t, table.Rows, 12)
	assert.Equal(t, "£3300.00", table.Rows[0][1])
	assert.Contains(t, texts(projection), "Average monthly change: £100.00")
}

func TestForecast_Models(t *testing.T) {
	in := Inputs{
		"mode":             {ModeModels},
		"employee":         {"Dev"},
		"start":            {"2024-01"},
		"savings_change_1": {"20"},
		"savings_change_2": {"30"},
		"savings_change_3": {"10"},
		"savings_change_4": {"25"},
		"savings_change_5": {"15"},
	}
	page := render(t, "forecast", loadTable(t, fullCSV), in)

	history := section(t, page, "Savings and Expenses History")
	require.True(t, history.OK(), "%+v", history.Err)
	assert.Equal(t, []string{"2024-01", "£450.00", "£718.00"}, history.Tables[0].Rows[0])
	assert.Equal(t, "£550.00", history.Tables[0].Rows[5][1])

	for _, title := range []string{"ARIMA(1,1,1) Forecast", "LSTM Forecast", "Trend + Seasonality Forecast"} {
		s := section(t, page, title)
		require.True(t, s.OK(), "%s: %+v", title, s.Err)
		require.Len(t, s.Tables[0].Rows, 6)
		assert.Equal(t, "2024-07", s.Tables[0].Rows[0][0])
	}
	comparison := section(t, page, "Savings Forecast Comparison")
	require.True(t, comparison.OK())
	assert.Len(t, comparison.Charts[0].Series, 4)
}

func TestForecast_UnknownEmployee(t *testing.T) {
	page := render(t, "forecast", loadTable(t, fullCSV), Inputs{"employee": {"Zed"}})
	require.Len(t, page.Sections, 1)
	assert.Equal(t, errors.CodeInsufficientSelection, page.Sections[0].Err.Kind)
}

func TestRunSection_RecoversPanic(t *testing.T) {
	s := runSection("Boom", func(s *view.Section) error {
		var m map[string]int
		m["x"] = 1
		return nil
	})
	require.NotNil(t, s.Err)
	assert.Equal(t, errors.CodeModelFailure, s.Err.Kind)
}

// Upload a 3-row, 2-employee table with one missing water bill: the imputed file holds the
// mean of the other rows, and the correlation page with one column warns without a heatmap.
func TestEndToEnd_UploadImputeCorrelate(t *testing.T) {
	csv := "Employee,Monthly Income (£),Water Bill (£),Gas Bill (£)\nAlice,2000,20,40\nAlice,2000,,42\nBob,3000,30,55\n"

	store := session.NewStore()
	loader := dataset.NewLoader(store)
	_, err := loader.Load(context.Background(), strings.NewReader(csv), "finance.csv")
	require.NoError(t, err)

	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	out := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(in, []byte(csv), 0644))
	_, err = dataset.ImputeFile(in, out)
	require.NoError(t, err)

	filled, err := os.ReadFile(out)
	require.NoError(t, err)
	imputed := loadTable(t, string(filled))
	assert.Equal(t, 25.0, imputed.Value(1, finance.ColWater))

	page, err := DefaultEnv().Render(context.Background(), store, "correlation", Inputs{"columns": {finance.ColIncome}})
	require.NoError(t, err)
	require.Len(t, page.Sections, 1)
	assert.True(t, page.Sections[0].Err.Warning)
	assert.Empty(t, page.Sections[0].Charts)
}
