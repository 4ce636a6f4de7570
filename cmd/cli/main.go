package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"

	"finsight/domain/finance"
	"finsight/internal/config"
	"finsight/internal/container"
	"finsight/internal/dataset"
	"finsight/internal/migration"

	"github.com/joho/godotenv"
	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "finsight-cli",
		Short: "Finsight tools for preparing and inspecting finance files",
	}

	rootCmd.AddCommand(
		newImputeCmd(),
		newSummaryCmd(),
		newHistoryCmd(),
		newMigrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newImputeCmd() *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "impute",
		Short: "Fill missing cells of the employee finance file",
		Long: `Fill missing cells of the employee finance file and write a cleaned copy.

Water and Monthly Outing are filled with the column mean; Sky Sports, Other
Expenses and Savings for Property are filled with 0.

Example: finsight-cli impute --in personal_finance_employees_V1.csv --out personal_finance_employees_filled.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := dataset.ImputeFile(in, out)
			if err != nil {
				return err
			}
			printImputeReport(report)
			return nil
		},
	}

	cfg := imputeDefaults()
	cmd.Flags().StringVar(&in, "in", cfg.InputPath, "Input CSV or XLSX file")
	cmd.Flags().StringVar(&out, "out", cfg.OutputPath, "Output CSV file")

	return cmd
}

// imputeDefaults falls back to the built-in paths when the environment is unusable
func imputeDefaults() config.ImputeConfig {
	cfg, err := config.Load()
	if err != nil {
		return config.ImputeConfig{
			InputPath:  "personal_finance_employees_V1.csv",
			OutputPath: "personal_finance_employees_filled.csv",
		}
	}
	return cfg.Impute
}

func printImputeReport(report *dataset.ImputeReport) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Column", "Strategy", "Value", "Filled", "Note"})
	for _, c := range report.Columns {
		value := ""
		if c.Skipped == "" {
			value = strconv.FormatFloat(c.Value, 'f', 2, 64)
		}
		table.Append([]string{c.Column, string(c.Strategy), value, strconv.Itoa(c.Filled), c.Skipped})
	}
	table.Render()
	fmt.Printf("%d rows, %d cells filled\n", report.Rows, report.TotalFilled())
}

func newSummaryCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print per-column statistics of a finance file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			t, err := dataset.Parse(f, file)
			if err != nil {
				return err
			}
			return printSummary(t)
		},
	}

	cmd.Flags().StringVar(&file, "file", imputeDefaults().OutputPath, "CSV or XLSX file to summarise")

	return cmd
}

func printSummary(t *finance.Table) error {
	fmt.Printf("%d rows, %d columns, %d employees\n", t.Len(), len(t.Headers()), len(t.Employees()))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Column", "Count", "Missing", "Mean", "Median", "Std", "Min", "Max"})
	for _, name := range t.NumericColumns() {
		values, err := t.Numbers(name)
		if err != nil {
			return err
		}
		var present stats.Float64Data
		for _, v := range values {
			if !math.IsNaN(v) {
				present = append(present, v)
			}
		}
		row := []string{name, strconv.Itoa(len(present)), strconv.Itoa(len(values) - len(present))}
		if len(present) == 0 {
			row = append(row, "", "", "", "", "")
			table.Append(row)
			continue
		}
		mean, _ := present.Mean()
		median, _ := present.Median()
		std, _ := present.StandardDeviationPopulation()
		lo, _ := present.Min()
		hi, _ := present.Max()
		for _, v := range []float64{mean, median, std, lo, hi} {
			row = append(row, strconv.FormatFloat(v, 'f', 2, 64))
		}
		table.Append(row)
	}
	table.Render()
	return nil
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded uploads",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of uploads to list")

	return cmd
}

func runHistory(ctx context.Context, limit int) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c, err := container.New(cfg)
	if err != nil {
		return err
	}
	defer c.Shutdown(ctx)

	db, err := container.OpenDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	if err := c.InitWithDatabase(db); err != nil {
		return err
	}

	uploads, err := c.Loader.History(ctx, limit)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "File", "Rows", "Employees", "Uploaded"})
	for _, u := range uploads {
		table.Append([]string{
			u.ID,
			u.Filename,
			strconv.Itoa(u.RowCount),
			strconv.Itoa(u.EmployeeCount),
			u.UploadedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	table.Render()
	return nil
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the upload history schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// OpenDatabase applies the schema
			db, err := container.OpenDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Printf("Schema %s applied to %s database\n", migration.NewRunner().Version(), db.DriverName())
			return nil
		},
	}
	return cmd
}
