package finance

import "strings"

// Column names as they appear in the uploaded CSV header. They must match exactly.
const (
	ColEmployee       = "Employee"
	ColIncome         = "Monthly Income (£)"
	ColElectricity    = "Electricity Bill (£)"
	ColGas            = "Gas Bill (£)"
	ColWater          = "Water Bill (£)"
	ColGroceries      = "Groceries (£)"
	ColTransportation = "Transportation (£)"
	ColSkySports      = "Sky Sports (£)"
	ColNetflix        = "Netflix (£)"
	ColAmazonPrime    = "Amazon Prime (£)"
	ColOtherExpenses  = "Other Expenses (£)"
	ColMonthlyOuting  = "Monthly Outing (£)"
	ColSavings        = "Savings for Property (£)"
)

// Derived, page-local column labels. Never stored in a Table.
const (
	DerivedTotalExpenses     = "Total Expenses"
	DerivedSavings           = "Savings"
	DerivedSavingsPercentage = "Savings Percentage"
)

// ExpenseColumns lists every expense category in display order.
var ExpenseColumns = []string{
	ColElectricity,
	ColGas,
	ColNetflix,
	ColAmazonPrime,
	ColGroceries,
	ColTransportation,
	ColWater,
	ColSkySports,
	ColOtherExpenses,
	ColMonthlyOuting,
}

// ClusterColumns are the expense features used for k-means clustering.
var ClusterColumns = []string{
	ColElectricity,
	ColGas,
	ColGroceries,
	ColTransportation,
	ColWater,
	ColSkySports,
	ColOtherExpenses,
	ColMonthlyOuting,
}

// CorrelationColumns are the columns offered on the correlation page.
var CorrelationColumns = []string{
	ColIncome,
	ColElectricity,
	ColGas,
	ColGroceries,
	ColTransportation,
	ColSkySports,
	ColOtherExpenses,
	ColSavings,
	ColMonthlyOuting,
}

// DiscretionaryColumns are the categories suggested for reduction.
var DiscretionaryColumns = []string{
	ColSkySports,
	ColNetflix,
	ColAmazonPrime,
	ColMonthlyOuting,
}

// ShortName drops the currency suffix, "Sky Sports (£)" -> "Sky Sports".
func ShortName(column string) string {
	return strings.TrimSpace(strings.TrimSuffix(column, "(£)"))
}

// IsExpenseColumn reports whether column is one of ExpenseColumns.
func IsExpenseColumn(column string) bool {
	for _, c := range ExpenseColumns {
		if c == column {
			return true
		}
	}
	return false
}
