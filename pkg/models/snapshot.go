package models

import "time"

// PeriodMetrics holds the resolved statement metrics and derived ratios for
// one reporting period.
type PeriodMetrics struct {
	Year         string `json:"year,omitempty"`
	Period       string `json:"period,omitempty"`
	Revenue      Metric `json:"revenue"`
	EBITDA       Metric `json:"ebitda"`
	EBIT         Metric `json:"ebit"`
	GrossProfit  Metric `json:"gross_profit"`
	NetIncome    Metric `json:"net_income"`
	PERatio      Metric `json:"pe_ratio"`
	EVToEBITDA   Metric `json:"ev_ebitda"`
	EBITDAMargin Metric `json:"ebitda_margin"`
	NetMargin    Metric `json:"net_margin"`
}

// Snapshot is the response body for one company lookup.
type Snapshot struct {
	Company         string          `json:"company,omitempty"`
	Ticker          string          `json:"ticker"`
	ShortName       string          `json:"short_name,omitempty"`
	Currency        string          `json:"currency,omitempty"`
	PeriodType      string          `json:"period_type"`
	MarketCap       Metric          `json:"market_cap"`
	EnterpriseValue Metric          `json:"enterprise_value"`
	TrailingPE      Metric          `json:"trailing_pe"`
	PERatio         Metric          `json:"pe_ratio"`
	Price           Metric          `json:"price"`
	Latest          PeriodMetrics   `json:"latest"`
	Years           []PeriodMetrics `json:"years"`
	FetchedAt       time.Time       `json:"fetched_at"`
}

// Year returns the metrics for year, if present.
func (s *Snapshot) Year(year string) (PeriodMetrics, bool) {
	for _, y := range s.Years {
		if y.Year == year {
			return y, true
		}
	}
	return PeriodMetrics{}, false
}
