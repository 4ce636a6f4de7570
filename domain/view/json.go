package view

import (
	"encoding/json"
	"math"
	"time"
)

// nullable converts NaN and infinities to JSON null
func nullable(values []float64) []*float64 {
	if values == nil {
		return nil
	}
	out := make([]*float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		v := v
		out[i] = &v
	}
	return out
}

// MarshalJSON encodes undefined values (NaN) as null
func (s Series) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name   string              `json:"name"`
		X      []*float64          `json:"x,omitempty"`
		Y      []*float64          `json:"y"`
		Times  []time.Time         `json:"times,omitempty"`
		Hover  []map[string]string `json:"hover,omitempty"`
		Dashed bool                `json:"dashed,omitempty"`
	}{
		Name:   s.Name,
		X:      nullable(s.X),
		Y:      nullable(s.Y),
		Times:  s.Times,
		Hover:  s.Hover,
		Dashed: s.Dashed,
	})
}

// MarshalJSON encodes undefined matrix cells (NaN) as null
func (c Chart) MarshalJSON() ([]byte, error) {
	type alias Chart
	var matrix [][]*float64
	for _, row := range c.Matrix {
		matrix = append(matrix, nullable(row))
	}
	return json.Marshal(struct {
		alias
		Matrix [][]*float64 `json:"matrix,omitempty"`
	}{
		alias:  alias(c),
		Matrix: matrix,
	})
}
