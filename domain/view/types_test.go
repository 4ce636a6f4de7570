package view

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChart_MarshalJSON_NaNBecomesNull(t *testing.T) {
	chart := Chart{
		Kind:       ChartHeatmap,
		Title:      "Correlation Heatmap",
		Categories: []string{"a", "b"},
		Matrix:     [][]float64{{1, math.NaN()}, {math.NaN(), 1}},
		Series:     []Series{{Name: "s", Y: []float64{1, math.Inf(1)}}},
	}

	raw, err := json.Marshal(chart)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	matrix := decoded["matrix"].([]interface{})
	assert.Nil(t, matrix[0].([]interface{})[1])
	assert.Equal(t, 1.0, matrix[1].([]interface{})[1])

	series := decoded["series"].([]interface{})[0].(map[string]interface{})
	assert.Nil(t, series["y"].([]interface{})[1])
	assert.Equal(t, "heatmap", decoded["kind"])
}

func TestPage_FailedAndLookup(t *testing.T) {
	page := Page{Name: "correlation"}
	ok := Section{Title: "Insights"}
	ok.Info("fine")
	page.Add(ok)
	page.Add(Section{Title: "Heatmap", Err: &SectionError{Kind: "INSUFFICIENT_SELECTION", Message: "pick two", Warning: true}})

	failed := page.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "Heatmap", failed[0].Title)

	s, found := page.Section("Insights")
	require.True(t, found)
	assert.True(t, s.OK())
	assert.Equal(t, LevelInfo, s.Messages[0].Level)
}

func TestControl_Selected(t *testing.T) {
	c := Control{Value: "a", Values: []string{"b", "c"}}
	assert.True(t, c.Selected("a"))
	assert.True(t, c.Selected("c"))
	assert.False(t, c.Selected("d"))
}
