// Package fundamental resolves statement metrics and derived ratios from
// provider financial tables.
package fundamental

import (
	"math"
	"strings"

	"github.com/seenimoa/finlookup/pkg/models"
)

// ExtractMetric returns the value of row name from table.
//
// With year == "" the first column (the table's own ordering, typically most
// recent) is used. Otherwise the first column whose label contains year is
// used; when no column matches the result is N/A, there is no fallback to
// the latest column. Present cells are truncated to whole units.
func ExtractMetric(table *models.FinancialTable, name, year string) models.Metric {
	if table.Empty() || !table.HasRow(name) {
		return models.NA
	}

	column, ok := pickColumn(table.Columns(), year)
	if !ok {
		return models.NA
	}

	v, ok := table.Cell(name, column)
	if !ok {
		return models.NA
	}
	m := models.Num(v)
	if !m.Valid {
		return models.NA
	}
	return models.Num(math.Trunc(v))
}

// ResolveWithFallback tries each candidate row in order and returns the
// first available value.
func ResolveWithFallback(table *models.FinancialTable, candidates []string, year string) models.Metric {
	for _, name := range candidates {
		if m := ExtractMetric(table, name, year); m.Valid {
			return m
		}
	}
	return models.NA
}

// Resolve evaluates a MetricQuery against table.
func Resolve(table *models.FinancialTable, q models.MetricQuery) models.Metric {
	return ResolveWithFallback(table, q.Labels(), q.Year)
}

// SafeRatio divides numerator by denominator rounded to 2 decimals.
// Either operand unavailable, or a zero denominator, yields N/A.
func SafeRatio(numerator, denominator models.Metric) models.Metric {
	if !numerator.Valid || !denominator.Valid || denominator.Value == 0 {
		return models.NA
	}
	return models.Num(round2(numerator.Value / denominator.Value))
}

// Ratio evaluates a DerivedRatio.
func Ratio(r models.DerivedRatio) models.Metric {
	return SafeRatio(r.Numerator, r.Denominator)
}

// ColumnFor returns the column a lookup for year would read.
func ColumnFor(table *models.FinancialTable, year string) (string, bool) {
	if table.Empty() {
		return "", false
	}
	return pickColumn(table.Columns(), year)
}

func pickColumn(columns []string, year string) (string, bool) {
	if len(columns) == 0 {
		return "", false
	}
	if year == "" {
		return columns[0], true
	}
	for _, c := range columns {
		if strings.Contains(c, year) {
			return c, true
		}
	}
	return "", false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
