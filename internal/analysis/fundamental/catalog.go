package fundamental

import (
	"regexp"
	"sort"

	"github.com/seenimoa/finlookup/pkg/models"
)

// Statement row names as they appear in Yahoo income statements, with the
// alternates different issuers report under.
var (
	QueryRevenue = models.MetricQuery{
		Name:    "Total Revenue",
		Aliases: []string{"Operating Revenue", "Revenue"},
	}
	QueryEBITDA = models.MetricQuery{
		Name:    "EBITDA",
		Aliases: []string{"Normalized EBITDA"},
	}
	QueryEBIT = models.MetricQuery{
		Name:    "EBIT",
		Aliases: []string{"Operating Income"},
	}
	QueryGrossProfit = models.MetricQuery{
		Name: "Gross Profit",
	}
	QueryNetIncome = models.MetricQuery{
		Name: "Net Income",
		Aliases: []string{
			"Net Income Common Stockholders",
			"Net Income From Continuing Operation Net Minority Interest",
			"Net Income Including Noncontrolling Interests",
		},
	}
)

// Catalog returns the named queries served by the lookup API.
func Catalog() map[string]models.MetricQuery {
	return map[string]models.MetricQuery{
		"revenue":      QueryRevenue,
		"ebitda":       QueryEBITDA,
		"ebit":         QueryEBIT,
		"gross_profit": QueryGrossProfit,
		"net_income":   QueryNetIncome,
	}
}

// StatementRows returns every row name referenced by the catalog, sorted.
func StatementRows() []string {
	seen := make(map[string]bool)
	var rows []string
	for _, q := range Catalog() {
		for _, l := range q.Labels() {
			if !seen[l] {
				seen[l] = true
				rows = append(rows, l)
			}
		}
	}
	sort.Strings(rows)
	return rows
}

var yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

// Years returns the distinct four-digit years found in the table's column
// labels, in column order, at most limit (limit <= 0 means all).
func Years(table *models.FinancialTable, limit int) []string {
	var years []string
	seen := make(map[string]bool)
	for _, c := range table.Columns() {
		y := yearPattern.FindString(c)
		if y == "" || seen[y] {
			continue
		}
		seen[y] = true
		years = append(years, y)
		if limit > 0 && len(years) == limit {
			break
		}
	}
	return years
}

// PeriodMetrics resolves the catalog for one period. An empty year selects
// the latest column. marketCap and enterpriseValue feed the valuation
// ratios.
func PeriodMetrics(table *models.FinancialTable, year string, marketCap, enterpriseValue models.Metric) models.PeriodMetrics {
	pm := models.PeriodMetrics{
		Year:        year,
		Revenue:     Resolve(table, QueryRevenue.ForYear(year)),
		EBITDA:      Resolve(table, QueryEBITDA.ForYear(year)),
		EBIT:        Resolve(table, QueryEBIT.ForYear(year)),
		GrossProfit: Resolve(table, QueryGrossProfit.ForYear(year)),
		NetIncome:   Resolve(table, QueryNetIncome.ForYear(year)),
	}
	if col, ok := ColumnFor(table, year); ok {
		pm.Period = col
	}
	pm.PERatio = SafeRatio(marketCap, pm.NetIncome)
	pm.EVToEBITDA = SafeRatio(enterpriseValue, pm.EBITDA)
	pm.EBITDAMargin = SafeRatio(pm.EBITDA, pm.Revenue)
	pm.NetMargin = SafeRatio(pm.NetIncome, pm.Revenue)
	return pm
}
