package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"finsight/domain/finance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const financeCSV = `Employee,Monthly Income (£),Water Bill (£),Monthly Outing (£),Sky Sports (£),Other Expenses (£),Savings for Property (£),Gas Bill (£)
Alice,2000,20,50,,15,300,
Alice,2000,,NA,25,,N/A,
Bob,3000,35,70,30,null,500,
`

func TestImpute_MeanAndZeroFill(t *testing.T) {
	data := parseRecords(t, financeCSV)

	report, err := Impute(data.headers, data.records, DefaultFillRules)
	require.NoError(t, err)

	water := col(t, data.headers, finance.ColWater)
	assert.Equal(t, "27.5", data.records[1][water], "mean of present values only")
	assert.Equal(t, "20", data.records[0][water], "present values untouched")

	outing := col(t, data.headers, finance.ColMonthlyOuting)
	assert.Equal(t, "60", data.records[1][outing])

	for _, name := range []string{finance.ColSkySports, finance.ColOtherExpenses, finance.ColSavings} {
		c := col(t, data.headers, name)
		for _, rec := range data.records {
			assert.False(t, finance.IsMissing(rec[c]), "%s still missing", name)
		}
	}
	assert.Equal(t, "0", data.records[0][col(t, data.headers, finance.ColSkySports)])
	assert.Equal(t, "0", data.records[2][col(t, data.headers, finance.ColOtherExpenses)])

	// Gas is not part of the policy
	assert.Equal(t, "", data.records[0][col(t, data.headers, finance.ColGas)])

	assert.Equal(t, 3, report.Rows)
	assert.Equal(t, 6, report.TotalFilled())
	assert.Equal(t, 27.5, report.Columns[0].Value)
}

func TestImpute_SkipsAbsentAndEmptyColumns(t *testing.T) {
	headers := []string{finance.ColEmployee, finance.ColWater}
	records := [][]string{{"Alice", ""}, {"Bob", "NaN"}}

	report, err := Impute(headers, records, DefaultFillRules)
	require.NoError(t, err)

	assert.Equal(t, "no values to average", report.Columns[0].Skipped)
	assert.Equal(t, "", records[0][1])
	for _, c := range report.Columns[1:] {
		assert.Equal(t, "column not present", c.Skipped, c.Column)
	}
	assert.Zero(t, report.TotalFilled())
}

func TestImputeFile_Idempotent(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	first := filepath.Join(dir, "first.csv")
	second := filepath.Join(dir, "second.csv")
	require.NoError(t, os.WriteFile(in, []byte(financeCSV), 0644))

	report, err := ImputeFile(in, first)
	require.NoError(t, err)
	assert.Positive(t, report.TotalFilled())

	report, err = ImputeFile(first, second)
	require.NoError(t, err)
	assert.Zero(t, report.TotalFilled())

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestImputeFile_MissingInput(t *testing.T) {
	_, err := ImputeFile(filepath.Join(t.TempDir(), "absent.csv"), filepath.Join(t.TempDir(), "out.csv"))
	assert.Error(t, err)
}

type rawData struct {
	headers []string
	records [][]string
}

func parseRecords(t *testing.T, text string) rawData {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(text), "\n")
	data := rawData{headers: strings.Split(lines[0], ",")}
	for _, line := range lines[1:] {
		data.records = append(data.records, strings.Split(line, ","))
	}
	return data
}

func col(t *testing.T, headers []string, name string) int {
	t.Helper()
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	t.Fatalf("column %q not found", name)
	return -1
}
