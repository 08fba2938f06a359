package yfinance

import (
	"encoding/json"
	"fmt"
)

// --- Yahoo Finance API response types ---

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *yfError) Error() string {
	return fmt.Sprintf("yahoo: %s: %s", e.Code, e.Description)
}

// yfFinVal is Yahoo's {raw, fmt} number wrapper. Missing values arrive as
// {} so Raw is a pointer.
type yfFinVal struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

// yfQuoteSummaryResponse wraps the v10 quoteSummary API response.
type yfQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []yfQuoteSummaryResult `json:"result"`
		Error  *yfError               `json:"error"`
	} `json:"quoteSummary"`
}

type yfQuoteSummaryResult struct {
	Price                *yfPrice                `json:"price"`
	SummaryDetail        *yfSummaryDetail        `json:"summaryDetail"`
	DefaultKeyStatistics *yfDefaultKeyStatistics `json:"defaultKeyStatistics"`
	FinancialData        *yfFinancialData        `json:"financialData"`
}

type yfPrice struct {
	Symbol             string   `json:"symbol"`
	ShortName          string   `json:"shortName"`
	LongName           string   `json:"longName"`
	Currency           string   `json:"currency"`
	Exchange           string   `json:"exchangeName"`
	RegularMarketPrice yfFinVal `json:"regularMarketPrice"`
	MarketCap          yfFinVal `json:"marketCap"`
}

type yfSummaryDetail struct {
	MarketCap  yfFinVal `json:"marketCap"`
	TrailingPE yfFinVal `json:"trailingPE"`
	ForwardPE  yfFinVal `json:"forwardPE"`
	Currency   string   `json:"currency"`
}

type yfDefaultKeyStatistics struct {
	EnterpriseValue   yfFinVal `json:"enterpriseValue"`
	ForwardPE         yfFinVal `json:"forwardPE"`
	SharesOutstanding yfFinVal `json:"sharesOutstanding"`
}

type yfFinancialData struct {
	CurrentPrice  yfFinVal `json:"currentPrice"`
	TotalRevenue  yfFinVal `json:"totalRevenue"`
	EBITDA        yfFinVal `json:"ebitda"`
	FinancialCurr string   `json:"financialCurrency"`
}

// yfTimeseriesResponse wraps the fundamentals-timeseries response. Each
// result carries one series under a dynamic key named by meta.type[0].
type yfTimeseriesResponse struct {
	Timeseries struct {
		Result []yfTimeseriesResult `json:"result"`
		Error  *yfError             `json:"error"`
	} `json:"timeseries"`
}

type yfTimeseriesMeta struct {
	Symbol []string `json:"symbol"`
	Type   []string `json:"type"`
}

type yfTimeseriesPoint struct {
	AsOfDate      string   `json:"asOfDate"`
	PeriodType    string   `json:"periodType"`
	CurrencyCode  string   `json:"currencyCode"`
	ReportedValue yfFinVal `json:"reportedValue"`
}

type yfTimeseriesResult struct {
	Meta   yfTimeseriesMeta
	Points []*yfTimeseriesPoint
}

func (r *yfTimeseriesResult) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if m, ok := raw["meta"]; ok {
		if err := json.Unmarshal(m, &r.Meta); err != nil {
			return fmt.Errorf("meta: %w", err)
		}
	}
	if len(r.Meta.Type) == 0 {
		return nil
	}
	if pts, ok := raw[r.Meta.Type[0]]; ok {
		if err := json.Unmarshal(pts, &r.Points); err != nil {
			return fmt.Errorf("%s: %w", r.Meta.Type[0], err)
		}
	}
	return nil
}
