// Package view holds the render output of a page: sections of messages, charts and
// tables, each section either succeeded or failed with an error kind. Pages build
// views; the dashboard and the JSON API only present them.
package view

import "time"

// Level classifies a message for presentation
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Message is a markdown text line shown to the user
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// SectionError is the Err arm of a section: a kind (error code) and a user-visible message.
type SectionError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Warning bool   `json:"warning"`
}

// Section is one independently computed block of a page.
type Section struct {
	Title    string        `json:"title"`
	Messages []Message     `json:"messages,omitempty"`
	Charts   []Chart       `json:"charts,omitempty"`
	Tables   []DataTable   `json:"tables,omitempty"`
	Err      *SectionError `json:"error,omitempty"`
}

// OK reports whether the section rendered successfully
func (s *Section) OK() bool {
	return s.Err == nil
}

func (s *Section) Info(text string) {
	s.Messages = append(s.Messages, Message{Level: LevelInfo, Text: text})
}

func (s *Section) Success(text string) {
	s.Messages = append(s.Messages, Message{Level: LevelSuccess, Text: text})
}

func (s *Section) Warn(text string) {
	s.Messages = append(s.Messages, Message{Level: LevelWarning, Text: text})
}

func (s *Section) AddChart(c Chart) {
	s.Charts = append(s.Charts, c)
}

func (s *Section) AddTable(t DataTable) {
	s.Tables = append(s.Tables, t)
}

// Page is the complete output of one page render
type Page struct {
	Name     string    `json:"name"`
	Title    string    `json:"title"`
	Controls []Control `json:"controls,omitempty"`
	Sections []Section `json:"sections"`
}

// Add appends a section
func (p *Page) Add(s Section) {
	p.Sections = append(p.Sections, s)
}

// Failed returns the sections that ended in error
func (p *Page) Failed() []Section {
	var out []Section
	for _, s := range p.Sections {
		if !s.OK() {
			out = append(out, s)
		}
	}
	return out
}

// Section looks a section up by title
func (p *Page) Section(title string) (Section, bool) {
	for _, s := range p.Sections {
		if s.Title == title {
			return s, true
		}
	}
	return Section{}, false
}

// ControlType is the widget used to collect an input
type ControlType string

const (
	ControlSelect      ControlType = "select"
	ControlMultiSelect ControlType = "multiselect"
	ControlRadio       ControlType = "radio"
	ControlSlider      ControlType = "slider"
	ControlNumber      ControlType = "number"
	ControlMonth       ControlType = "month"
)

// Control describes one widget and its current value so a page can be re-rendered
type Control struct {
	Name    string      `json:"name"`
	Label   string      `json:"label"`
	Type    ControlType `json:"type"`
	Options []string    `json:"options,omitempty"`
	Value   string      `json:"value,omitempty"`
	Values  []string    `json:"values,omitempty"`
	Min     float64     `json:"min,omitempty"`
	Max     float64     `json:"max,omitempty"`
	Step    float64     `json:"step,omitempty"`
}

// Selected reports whether option is part of the control's current value
func (c Control) Selected(option string) bool {
	if c.Value == option {
		return true
	}
	for _, v := range c.Values {
		if v == option {
			return true
		}
	}
	return false
}

// DataTable is a small tabular result shown alongside charts
type DataTable struct {
	Caption string     `json:"caption,omitempty"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ChartKind selects the chart renderer
type ChartKind string

const (
	ChartBar        ChartKind = "bar"
	ChartGroupedBar ChartKind = "grouped_bar"
	ChartLine       ChartKind = "line"
	ChartPie        ChartKind = "pie"
	ChartScatter    ChartKind = "scatter"
	ChartHeatmap    ChartKind = "heatmap"
	ChartTimeSeries ChartKind = "time_series"
)

// Chart is a renderer-independent chart description
type Chart struct {
	Kind       ChartKind   `json:"kind"`
	Title      string      `json:"title"`
	XLabel     string      `json:"x_label,omitempty"`
	YLabel     string      `json:"y_label,omitempty"`
	Categories []string    `json:"categories,omitempty"`
	Series     []Series    `json:"series,omitempty"`
	Matrix     [][]float64 `json:"matrix,omitempty"`
	Dividers   []Divider   `json:"dividers,omitempty"`
}

// Series is one named set of values. Bar and pie charts use Y against Categories,
// line and scatter charts use X/Y, time series use Times/Y.
type Series struct {
	Name   string              `json:"name"`
	X      []float64           `json:"x,omitempty"`
	Y      []float64           `json:"y"`
	Times  []time.Time         `json:"times,omitempty"`
	Hover  []map[string]string `json:"hover,omitempty"`
	Dashed bool                `json:"dashed,omitempty"`
}

// Divider is a vertical marker on a line chart
type Divider struct {
	X     float64 `json:"x"`
	Label string  `json:"label"`
}
