package finance

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ColumnKind is the coerced type of a column
type ColumnKind string

const (
	KindNumeric ColumnKind = "numeric"
	KindText    ColumnKind = "text"
)

// missingMarkers are the literal cell values treated as absent, in addition to the empty string.
var missingMarkers = map[string]bool{
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
	"None": true,
}

// IsMissing reports whether a raw cell value represents a missing entry.
func IsMissing(raw string) bool {
	s := strings.TrimSpace(raw)
	return s == "" || missingMarkers[s]
}

// ParseNumber parses a raw cell as float64. ok is false for missing or non-numeric cells.
func ParseNumber(raw string) (float64, bool) {
	if IsMissing(raw) {
		return 0, false
	}
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "£")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Column is a single typed column. Numbers holds NaN for missing cells.
type Column struct {
	Name    string
	Kind    ColumnKind
	Raw     []string
	Numbers []float64
}

// Table is the row-oriented FinanceTable: one row per (employee, month) observation.
// Row order is the CSV order and is the implicit month index per employee.
// A Table is immutable after construction; accessors return copies.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewTable builds a table from a header and raw records, coercing each column to numeric
// when every non-missing cell parses as a number. The Employee column is always text.
func NewTable(headers []string, records [][]string) (*Table, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("table has no columns")
	}

	t := &Table{
		columns: make([]*Column, len(headers)),
		index:   make(map[string]int, len(headers)),
		rows:    len(records),
	}

	for i, h := range headers {
		name := strings.TrimSpace(h)
		if name == "" {
			return nil, fmt.Errorf("column %d has an empty header", i+1)
		}
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		t.index[name] = i
		t.columns[i] = &Column{Name: name, Raw: make([]string, len(records))}
	}

	for r, rec := range records {
		if len(rec) > len(headers) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", r+1, len(rec), len(headers))
		}
		for c := range headers {
			if c < len(rec) {
				t.columns[c].Raw[r] = strings.TrimSpace(rec[c])
			}
		}
	}

	for _, col := range t.columns {
		coerce(col)
	}

	return t, nil
}

func coerce(col *Column) {
	col.Kind = KindText
	if col.Name == ColEmployee {
		return
	}

	numbers := make([]float64, len(col.Raw))
	for i, raw := range col.Raw {
		if IsMissing(raw) {
			numbers[i] = math.NaN()
			continue
		}
		v, ok := ParseNumber(raw)
		if !ok {
			return
		}
		numbers[i] = v
	}
	col.Kind = KindNumeric
	col.Numbers = numbers
}

// Len returns the number of rows
func (t *Table) Len() int {
	return t.rows
}

// Headers returns column names in file order
func (t *Table) Headers() []string {
	out := make([]string, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.Name
	}
	return out
}

// HasColumn reports whether the named column exists
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Kind returns the coerced kind of a column
func (t *Table) Kind(name string) (ColumnKind, bool) {
	i, ok := t.index[name]
	if !ok {
		return "", false
	}
	return t.columns[i].Kind, true
}

// IsNumeric reports whether the column exists and is numeric
func (t *Table) IsNumeric(name string) bool {
	kind, ok := t.Kind(name)
	return ok && kind == KindNumeric
}

// NumericColumns returns the numeric column names in file order
func (t *Table) NumericColumns() []string {
	var out []string
	for _, c := range t.columns {
		if c.Kind == KindNumeric {
			out = append(out, c.Name)
		}
	}
	return out
}

// Numbers returns a copy of a numeric column with NaN for missing cells.
func (t *Table) Numbers(name string) ([]float64, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, &ColumnError{Column: name, Reason: "missing"}
	}
	col := t.columns[i]
	if col.Kind != KindNumeric {
		return nil, &ColumnError{Column: name, Reason: "not numeric"}
	}
	out := make([]float64, len(col.Numbers))
	copy(out, col.Numbers)
	return out, nil
}

// Strings returns a copy of the raw text of a column
func (t *Table) Strings(name string) ([]string, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, &ColumnError{Column: name, Reason: "missing"}
	}
	out := make([]string, t.rows)
	copy(out, t.columns[i].Raw)
	return out, nil
}

// Value returns the numeric value at (row, column), NaN when missing or not numeric.
func (t *Table) Value(row int, name string) float64 {
	i, ok := t.index[name]
	if !ok || row < 0 || row >= t.rows || t.columns[i].Kind != KindNumeric {
		return math.NaN()
	}
	return t.columns[i].Numbers[row]
}

// Cell returns the raw text at (row, column)
func (t *Table) Cell(row int, name string) string {
	i, ok := t.index[name]
	if !ok || row < 0 || row >= t.rows {
		return ""
	}
	return t.columns[i].Raw[row]
}

// Employees returns distinct employee names in first-appearance order.
func (t *Table) Employees() []string {
	i, ok := t.index[ColEmployee]
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, name := range t.columns[i].Raw {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// RowsFor returns the row indices of one employee in table order.
func (t *Table) RowsFor(employee string) []int {
	i, ok := t.index[ColEmployee]
	if !ok {
		return nil
	}
	var rows []int
	for r, name := range t.columns[i].Raw {
		if name == employee {
			rows = append(rows, r)
		}
	}
	return rows
}

// Select returns a new table holding only the given rows, in the given order.
func (t *Table) Select(rows []int) *Table {
	out := &Table{
		columns: make([]*Column, len(t.columns)),
		index:   make(map[string]int, len(t.index)),
		rows:    len(rows),
	}
	for name, i := range t.index {
		out.index[name] = i
	}
	for i, col := range t.columns {
		nc := &Column{Name: col.Name, Kind: col.Kind, Raw: make([]string, len(rows))}
		if col.Kind == KindNumeric {
			nc.Numbers = make([]float64, len(rows))
		}
		for j, r := range rows {
			nc.Raw[j] = col.Raw[r]
			if col.Kind == KindNumeric {
				nc.Numbers[j] = col.Numbers[r]
			}
		}
		out.columns[i] = nc
	}
	return out
}

// FilterEmployees returns a new table with the rows of the given employees, table order kept.
func (t *Table) FilterEmployees(employees []string) *Table {
	want := make(map[string]bool, len(employees))
	for _, e := range employees {
		want[e] = true
	}
	var rows []int
	for r := 0; r < t.rows; r++ {
		if want[t.Cell(r, ColEmployee)] {
			rows = append(rows, r)
		}
	}
	return t.Select(rows)
}

// Require checks that every named column exists and is numeric.
func (t *Table) Require(columns ...string) error {
	for _, name := range columns {
		kind, ok := t.Kind(name)
		if !ok {
			return &ColumnError{Column: name, Reason: "missing"}
		}
		if kind != KindNumeric && name != ColEmployee {
			return &ColumnError{Column: name, Reason: "not numeric"}
		}
	}
	return nil
}

// ColumnError describes an absent or unusable column
type ColumnError struct {
	Column string
	Reason string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("column %q is %s", e.Column, e.Reason)
}
