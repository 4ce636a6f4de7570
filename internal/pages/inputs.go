package pages

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"finsight/internal/errors"
)

// Inputs are the widget values of one render, keyed by control name.
// Both the dashboard form and the API query string decode into it.
type Inputs url.Values

// Has reports whether the control was submitted at all, even with an empty value
func (in Inputs) Has(name string) bool {
	_, ok := in[name]
	return ok
}

// Get returns the first value of a control, "" when absent
func (in Inputs) Get(name string) string {
	if values := in[name]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

// List returns the non-empty values of a multi-valued control
func (in Inputs) List(name string) []string {
	var out []string
	for _, v := range in[name] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Float parses a numeric control; def is used when the control is absent or empty
func (in Inputs) Float(name string, def float64) (float64, error) {
	raw := in.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(strings.TrimPrefix(raw, "£"), 64)
	if err != nil {
		return 0, errors.InvalidInput(fmt.Sprintf("%s must be a number, got %q", name, raw))
	}
	return v, nil
}

// Int parses an integer control within [min, max]
func (in Inputs) Int(name string, def, min, max int) (int, error) {
	raw := in.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.InvalidInput(fmt.Sprintf("%s must be a whole number, got %q", name, raw))
	}
	if v < min || v > max {
		return 0, errors.InvalidInput(fmt.Sprintf("%s must be between %d and %d, got %d", name, min, max, v))
	}
	return v, nil
}

// OptionalFloat parses a numeric control, ok is false when it was left empty
func (in Inputs) OptionalFloat(name string) (float64, bool, error) {
	if in.Get(name) == "" {
		return 0, false, nil
	}
	v, err := in.Float(name, 0)
	return v, err == nil, err
}
