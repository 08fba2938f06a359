package lookup

import (
	"context"
	"fmt"

	"github.com/seenimoa/finlookup/internal/provider"
	"github.com/seenimoa/finlookup/pkg/models"
)

// Source supplies the two upstream datasets a lookup needs.
type Source interface {
	CompanyInfo(ctx context.Context, ticker string) (models.CompanyInfo, error)
	FinancialTable(ctx context.Context, ticker, period string) (*models.FinancialTable, error)
}

// RegistrySource adapts a provider registry to Source, falling back across
// providers per model.
type RegistrySource struct {
	Registry *provider.Registry
}

// NewRegistrySource wraps reg.
func NewRegistrySource(reg *provider.Registry) *RegistrySource {
	return &RegistrySource{Registry: reg}
}

func (s *RegistrySource) CompanyInfo(ctx context.Context, ticker string) (models.CompanyInfo, error) {
	res, err := s.Registry.FetchWithFallback(ctx, provider.ModelCompanyInfo, provider.QueryParams{
		provider.ParamSymbol: ticker,
	})
	if err != nil {
		return nil, err
	}
	info, ok := res.Data.(models.CompanyInfo)
	if !ok {
		return nil, fmt.Errorf("provider %s returned %T for %s", res.Provider, res.Data, res.Model)
	}
	return info, nil
}

func (s *RegistrySource) FinancialTable(ctx context.Context, ticker, period string) (*models.FinancialTable, error) {
	res, err := s.Registry.FetchWithFallback(ctx, provider.ModelFinancialStatement, provider.QueryParams{
		provider.ParamSymbol: ticker,
		provider.ParamPeriod: period,
	})
	if err != nil {
		return nil, err
	}
	table, ok := res.Data.(*models.FinancialTable)
	if !ok {
		return nil, fmt.Errorf("provider %s returned %T for %s", res.Provider, res.Data, res.Model)
	}
	return table, nil
}
