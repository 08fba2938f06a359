package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Common CompanyInfo keys (Yahoo naming).
const (
	InfoShortName          = "shortName"
	InfoLongName           = "longName"
	InfoCurrency           = "currency"
	InfoMarketCap          = "marketCap"
	InfoTrailingPE         = "trailingPE"
	InfoForwardPE          = "forwardPE"
	InfoEnterpriseValue    = "enterpriseValue"
	InfoEBITDA             = "ebitda"
	InfoTotalRevenue       = "totalRevenue"
	InfoRegularMarketPrice = "regularMarketPrice"
	InfoSharesOutstanding  = "sharesOutstanding"
	InfoExchange           = "exchange"
)

// CompanyInfo is a flat key/value view of a company's quote and summary
// data. Values are float64, string, or absent.
type CompanyInfo map[string]any

// Number returns key as a metric. Numeric strings are parsed; anything else
// is unavailable.
func (c CompanyInfo) Number(key string) Metric {
	v, ok := c[key]
	if !ok || v == nil {
		return NA
	}
	switch n := v.(type) {
	case float64:
		return Num(n)
	case float32:
		return Num(float64(n))
	case int:
		return Num(float64(n))
	case int64:
		return Num(float64(n))
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return NA
		}
		return Num(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return NA
		}
		return Num(f)
	}
	return NA
}

// String returns key as a string, or "" when absent or not a string.
func (c CompanyInfo) String(key string) string {
	s, _ := c[key].(string)
	return s
}

// SetNumber stores a number; NaN and ±Inf are dropped.
func (c CompanyInfo) SetNumber(key string, v float64) {
	if m := Num(v); m.Valid {
		c[key] = v
	}
}

// SetString stores a non-empty string.
func (c CompanyInfo) SetString(key, v string) {
	if strings.TrimSpace(v) != "" {
		c[key] = v
	}
}

// Merge copies keys from other that are missing in c.
func (c CompanyInfo) Merge(other CompanyInfo) {
	for k, v := range other {
		if _, ok := c[k]; !ok {
			c[k] = v
		}
	}
}

// Name returns the short name, falling back to the long name.
func (c CompanyInfo) Name() string {
	if s := c.String(InfoShortName); s != "" {
		return s
	}
	return c.String(InfoLongName)
}
