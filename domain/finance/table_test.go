package finance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	headers := []string{ColEmployee, ColIncome, ColWater, ColNetflix, ColSavings, "Notes"}
	records := [][]string{
		{"Alice", "2000", "30", "10", "400", "first"},
		{"Bob", "3000", "", "0", "600", "x"},
		{"Alice", "2100", "32", "10", "NaN", "second"},
	}
	table, err := NewTable(headers, records)
	require.NoError(t, err)
	return table
}

func TestNewTable_Coercion(t *testing.T) {
	table := sampleTable(t)

	assert.Equal(t, 3, table.Len())
	assert.True(t, table.IsNumeric(ColIncome))
	assert.True(t, table.IsNumeric(ColWater))
	assert.False(t, table.IsNumeric(ColEmployee))
	assert.False(t, table.IsNumeric("Notes"))
	assert.Equal(t, []string{ColIncome, ColWater, ColNetflix, ColSavings}, table.NumericColumns())

	water, err := table.Numbers(ColWater)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(water[1]))
	assert.Equal(t, 32.0, water[2])
}

func TestNewTable_Errors(t *testing.T) {
	_, err := NewTable(nil, nil)
	assert.Error(t, err)

	_, err = NewTable([]string{"a", "a"}, nil)
	assert.Error(t, err)

	_, err = NewTable([]string{"a"}, [][]string{{"1", "2"}})
	assert.Error(t, err)
}

func TestTable_EmployeesAndRows(t *testing.T) {
	table := sampleTable(t)

	assert.Equal(t, []string{"Alice", "Bob"}, table.Employees())
	assert.Equal(t, []int{0, 2}, table.RowsFor("Alice"))

	filtered := table.FilterEmployees([]string{"Alice"})
	assert.Equal(t, 2, filtered.Len())
	assert.Equal(t, 2100.0, filtered.Value(1, ColIncome))
	// the source table is untouched
	assert.Equal(t, 3, table.Len())
}

func TestTable_NumbersReturnsCopy(t *testing.T) {
	table := sampleTable(t)
	income, err := table.Numbers(ColIncome)
	require.NoError(t, err)
	income[0] = -1

	assert.Equal(t, 2000.0, table.Value(0, ColIncome))
}

func TestTable_Require(t *testing.T) {
	table := sampleTable(t)

	assert.NoError(t, table.Require(ColIncome, ColEmployee))

	err := table.Require(ColGas)
	var colErr *ColumnError
	require.ErrorAs(t, err, &colErr)
	assert.Equal(t, ColGas, colErr.Column)

	assert.Error(t, table.Require("Notes"))
}

func TestSavingsStrategy(t *testing.T) {
	table := sampleTable(t)

	assert.Equal(t, 400.0, SavingsDirect.Savings(table, 0))
	assert.True(t, math.IsNaN(SavingsDirect.Savings(table, 2)))

	// 2000 - (30 + 10)
	assert.Equal(t, 1960.0, SavingsDerived.Savings(table, 0))
	// missing water counts as zero
	assert.Equal(t, 3000.0, SavingsDerived.Savings(table, 1))

	_, err := ParseSavingsStrategy("other")
	assert.Error(t, err)
	s, err := ParseSavingsStrategy(" Derived ")
	require.NoError(t, err)
	assert.Equal(t, SavingsDerived, s)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "£2100.00", FormatMoney(2100))
	assert.Equal(t, "£8.33", FormatMoney(100.0/12))
	assert.Equal(t, "£-12.50", FormatMoney(-12.5))
	assert.Equal(t, "£n/a", FormatMoney(math.NaN()))
	assert.Equal(t, 8.33, RoundMoney(100.0/12))
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "Sky Sports", ShortName(ColSkySports))
	assert.Equal(t, "Employee", ShortName(ColEmployee))
}
