// Package models defines the core data structures used throughout finlookup.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// NotAvailable is the sentinel rendered for metrics that could not be resolved.
const NotAvailable = "N/A"

// Metric is a numeric value or "not available".
// The zero value is not available.
type Metric struct {
	Value float64
	Valid bool
}

// NA is the unavailable metric.
var NA = Metric{}

// Num returns an available metric. NaN and ±Inf are treated as unavailable.
func Num(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NA
	}
	return Metric{Value: v, Valid: true}
}

// Available reports whether the metric holds a number.
func (m Metric) Available() bool { return m.Valid }

func (m Metric) String() string {
	if !m.Valid {
		return NotAvailable
	}
	return formatNumber(m.Value)
}

// MarshalJSON renders a number, or the "N/A" string when unavailable.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte(`"` + NotAvailable + `"`), nil
	}
	return []byte(formatNumber(m.Value)), nil
}

// UnmarshalJSON accepts a number, null, or any string (treated as unavailable).
func (m *Metric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) || data[0] == '"' {
		*m = NA
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("metric: %w", err)
	}
	*m = Num(v)
	return nil
}

// formatNumber prints whole values without a fraction so large statement
// figures stay readable.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e18 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MetricQuery names a statement row, the aliases to try after it, and an
// optional fiscal year.
type MetricQuery struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Year    string   `json:"year,omitempty"`
}

// Labels returns the name followed by its aliases.
func (q MetricQuery) Labels() []string {
	labels := make([]string, 0, 1+len(q.Aliases))
	labels = append(labels, q.Name)
	return append(labels, q.Aliases...)
}

// ForYear returns a copy of the query targeting year.
func (q MetricQuery) ForYear(year string) MetricQuery {
	q.Year = year
	return q
}

// DerivedRatio is numerator / denominator with a not-available guard.
type DerivedRatio struct {
	Numerator   Metric `json:"numerator"`
	Denominator Metric `json:"denominator"`
}
