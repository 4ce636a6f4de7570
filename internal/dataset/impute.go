package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"finsight/adapters/excel"
	"finsight/domain/finance"
	"finsight/internal/errors"

	"github.com/montanaflynn/stats"
)

// FillStrategy is how a column's missing cells are filled
type FillStrategy string

const (
	FillMean FillStrategy = "mean"
	FillZero FillStrategy = "zero"
)

// FillRule binds a column to a fill strategy
type FillRule struct {
	Column   string
	Strategy FillStrategy
}

// DefaultFillRules: utility bills regress toward the population mean, discretionary
// categories default to "did not spend".
var DefaultFillRules = []FillRule{
	{Column: finance.ColWater, Strategy: FillMean},
	{Column: finance.ColMonthlyOuting, Strategy: FillMean},
	{Column: finance.ColSkySports, Strategy: FillZero},
	{Column: finance.ColOtherExpenses, Strategy: FillZero},
	{Column: finance.ColSavings, Strategy: FillZero},
}

// ColumnFill is the outcome for one rule
type ColumnFill struct {
	Column   string       `json:"column"`
	Strategy FillStrategy `json:"strategy"`
	Value    float64      `json:"value"`
	Filled   int          `json:"filled"`
	Skipped  string       `json:"skipped,omitempty"`
}

// ImputeReport lists what each rule did
type ImputeReport struct {
	Rows    int          `json:"rows"`
	Columns []ColumnFill `json:"columns"`
}

// TotalFilled sums the filled cells over all columns
func (r *ImputeReport) TotalFilled() int {
	total := 0
	for _, c := range r.Columns {
		total += c.Filled
	}
	return total
}

// Impute fills missing cells of the rule columns in place. Cells that are not missing
// are never rewritten, so running Impute on its own output changes nothing.
func Impute(headers []string, records [][]string, rules []FillRule) (*ImputeReport, error) {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[h] = i
	}

	report := &ImputeReport{Rows: len(records)}
	for _, rule := range rules {
		fill := ColumnFill{Column: rule.Column, Strategy: rule.Strategy}
		col, ok := index[rule.Column]
		if !ok {
			fill.Skipped = "column not present"
			report.Columns = append(report.Columns, fill)
			continue
		}

		switch rule.Strategy {
		case FillZero:
			fill.Value = 0
		case FillMean:
			mean, ok, err := columnMean(records, col)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to average %s", rule.Column)
			}
			if !ok {
				fill.Skipped = "no values to average"
				report.Columns = append(report.Columns, fill)
				continue
			}
			fill.Value = mean
		default:
			return nil, errors.InvalidInput(fmt.Sprintf("unknown fill strategy %q", rule.Strategy))
		}

		text := strconv.FormatFloat(fill.Value, 'f', -1, 64)
		for _, rec := range records {
			if col >= len(rec) {
				continue
			}
			if finance.IsMissing(rec[col]) {
				rec[col] = text
				fill.Filled++
			}
		}
		report.Columns = append(report.Columns, fill)
	}
	return report, nil
}

// columnMean averages the present, numeric cells of one column
func columnMean(records [][]string, col int) (float64, bool, error) {
	var values stats.Float64Data
	for _, rec := range records {
		if col >= len(rec) {
			continue
		}
		if v, ok := finance.ParseNumber(rec[col]); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return 0, false, nil
	}
	mean, err := values.Mean()
	if err != nil {
		return 0, false, err
	}
	return mean, true, nil
}

// ImputeFile runs the imputation pass over the file at in and writes the result to out.
func ImputeFile(in, out string) (*ImputeReport, error) {
	data, err := excel.NewDataReader(in).ReadFile()
	if err != nil {
		return nil, errors.ParseFailure(fmt.Sprintf("could not read %s", in), err)
	}

	report, err := Impute(data.Headers, data.Records, DefaultFillRules)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(out)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", out)
	}
	defer f.Close()

	if err := WriteCSV(f, data.Headers, data.Records); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", out)
	}

	for _, c := range report.Columns {
		if c.Skipped != "" {
			log.Printf("[Impute] %s skipped: %s", c.Column, c.Skipped)
			continue
		}
		log.Printf("[Impute] %s: filled %d cells with %s (%s)", c.Column, c.Filled, strconv.FormatFloat(c.Value, 'f', -1, 64), c.Strategy)
	}
	log.Printf("[Impute] Wrote %s (%d rows, %d cells filled)", out, report.Rows, report.TotalFilled())
	return report, nil
}

// WriteCSV writes a header and records as comma-separated text
func WriteCSV(w io.Writer, headers []string, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}
