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

	"github.com/montanaflynn/stats"
)

const (
	minClusters     = 2
	maxClusters     = 10
	defaultClusters = 3
)

func renderClustering(ctx context.Context, env *Env, t *finance.Table, in Inputs) view.Page {
	page := view.Page{}
	k, kErr := in.Int("k", defaultClusters, minClusters, maxClusters)
	page.Controls = []view.Control{{
		Name:  "k",
		Label: "Number of Clusters",
		Type:  view.ControlSlider,
		Value: strconv.Itoa(k),
		Min:   minClusters,
		Max:   maxClusters,
		Step:  1,
	}}

	var (
		rows    []int
		labels  []int
		members [][]float64
	)
	page.Add(runSection("Expense Clusters", func(s *view.Section) error {
		if kErr != nil {
			return kErr
		}
		if err := t.Require(finance.ClusterColumns...); err != nil {
			return err
		}

		rows, members = completeRows(t, finance.ClusterColumns)
		if excluded := t.Len() - len(rows); excluded > 0 {
			s.Warn(fmt.Sprintf("%d of %d rows have a missing expense value and were left out of clustering.", excluded, t.Len()))
		}
		if len(rows) < k {
			return errors.InvalidInput(fmt.Sprintf("Clustering into %d groups needs at least %d complete rows, found %d.", k, k, len(rows)))
		}

		z, _, err := analysis.Standardize(members)
		if err != nil {
			return err
		}
		result, err := analysis.KMeans(z, k, env.ClusterSeed)
		if err != nil {
			return err
		}
		labels = result.Labels

		proj, err := analysis.ProjectPCA(z)
		if err != nil {
			return err
		}

		series := make([]view.Series, k)
		for c := range series {
			series[c].Name = fmt.Sprintf("Cluster %d", c)
		}
		for i, row := range rows {
			c := labels[i]
			series[c].X = append(series[c].X, proj.Points[i][0])
			series[c].Y = append(series[c].Y, proj.Points[i][1])
			series[c].Hover = append(series[c].Hover, map[string]string{
				finance.ColEmployee: t.Cell(row, finance.ColEmployee),
				finance.ColIncome:   finance.FormatMoney(t.Value(row, finance.ColIncome)),
			})
		}
		s.AddChart(view.Chart{
			Kind:   view.ChartScatter,
			Title:  "Expense Clusters",
			XLabel: "Expense Dimension 1",
			YLabel: "Expense Dimension 2",
			Series: series,
		})
		s.Info(fmt.Sprintf("The two dimensions explain %.1f%% and %.1f%% of the variance in spending.",
			proj.Explained[0]*100, proj.Explained[1]*100))
		return nil
	}))
	if labels == nil {
		return page
	}

	page.Add(runSection("Cluster Descriptions", func(s *view.Section) error {
		columns := []string{"Cluster", "Members"}
		for _, c := range finance.ClusterColumns {
			columns = append(columns, finance.ShortName(c))
		}
		table := view.DataTable{Caption: "Mean spend per cluster", Columns: columns}

		for c := 0; c < k; c++ {
			var group [][]float64
			for i, l := range labels {
				if l == c {
					group = append(group, members[i])
				}
			}
			row := []string{strconv.Itoa(c), strconv.Itoa(len(group))}
			for j := range finance.ClusterColumns {
				column := make(stats.Float64Data, len(group))
				for i, m := range group {
					column[i] = m[j]
				}
				mean, err := column.Mean()
				if err != nil {
					mean = math.NaN()
				}
				row = append(row, finance.FormatMoney(mean))
			}
			table.Rows = append(table.Rows, row)
		}
		s.AddTable(table)
		return nil
	}))
	return page
}

// completeRows returns the indices of rows with every column present, and their values
func completeRows(t *finance.Table, columns []string) ([]int, [][]float64) {
	var rows []int
	var values [][]float64
	for r := 0; r < t.Len(); r++ {
		row := make([]float64, len(columns))
		complete := true
		for j, c := range columns {
			row[j] = t.Value(r, c)
			if math.IsNaN(row[j]) {
				complete = false
				break
			}
		}
		if complete {
			rows = append(rows, r)
			values = append(values, row)
		}
	}
	return rows, values
}
