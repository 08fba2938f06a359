package provider

// ModelType names a standard data model a fetcher can produce.
type ModelType string

const (
	// ModelFinancialStatement yields a *models.FinancialTable: statement
	// line items by reporting period, most recent period first.
	ModelFinancialStatement ModelType = "FinancialStatement"

	// ModelCompanyInfo yields a models.CompanyInfo: the flat
	// quote-summary mapping (marketCap, trailingPE, shortName, ...).
	ModelCompanyInfo ModelType = "CompanyInfo"
)

// AllModels returns every known model type.
func AllModels() []ModelType {
	return []ModelType{ModelFinancialStatement, ModelCompanyInfo}
}

// Valid reports whether m is a known model type.
func (m ModelType) Valid() bool {
	switch m {
	case ModelFinancialStatement, ModelCompanyInfo:
		return true
	}
	return false
}

// Statement periods accepted by FinancialStatement fetchers.
const (
	PeriodAnnual    = "annual"
	PeriodQuarterly = "quarterly"
	PeriodTrailing  = "trailing"
)

// ValidPeriod reports whether p is a supported statement period.
func ValidPeriod(p string) bool {
	switch p {
	case PeriodAnnual, PeriodQuarterly, PeriodTrailing:
		return true
	}
	return false
}
