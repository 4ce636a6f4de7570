package finance

import (
	"fmt"
	"math"
	"strings"
)

// SavingsStrategy selects how a row's savings figure is obtained.
// The uploaded data carries a measured savings column, but savings can also be
// derived as income minus the sum of expenses. Every page uses the one configured strategy.
type SavingsStrategy string

const (
	// SavingsDirect reads the "Savings for Property (£)" column.
	SavingsDirect SavingsStrategy = "direct"
	// SavingsDerived computes income minus total expenses.
	SavingsDerived SavingsStrategy = "derived"
)

// ParseSavingsStrategy validates a strategy name
func ParseSavingsStrategy(s string) (SavingsStrategy, error) {
	switch SavingsStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case SavingsDirect:
		return SavingsDirect, nil
	case SavingsDerived:
		return SavingsDerived, nil
	}
	return "", fmt.Errorf("unknown savings strategy %q (want direct or derived)", s)
}

// RequiredColumns lists the columns the strategy reads
func (s SavingsStrategy) RequiredColumns() []string {
	if s == SavingsDerived {
		return []string{ColIncome}
	}
	return []string{ColSavings}
}

// Savings returns the savings figure of one row. NaN means unknown.
func (s SavingsStrategy) Savings(t *Table, row int) float64 {
	if s == SavingsDerived {
		income := t.Value(row, ColIncome)
		if math.IsNaN(income) {
			return math.NaN()
		}
		return income - TotalExpenses(t, row)
	}
	return t.Value(row, ColSavings)
}

// TotalExpenses sums the expense categories present in the table for one row.
// Missing cells count as zero.
func TotalExpenses(t *Table, row int) float64 {
	total := 0.0
	for _, col := range ExpenseColumns {
		v := t.Value(row, col)
		if !math.IsNaN(v) {
			total += v
		}
	}
	return total
}

// PresentExpenseColumns returns the numeric expense columns available in t.
func PresentExpenseColumns(t *Table) []string {
	var out []string
	for _, col := range ExpenseColumns {
		if t.IsNumeric(col) {
			out = append(out, col)
		}
	}
	return out
}
