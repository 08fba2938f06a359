package yfinance

import (
	"context"
	"fmt"
	"net/url"

	"github.com/seenimoa/finlookup/internal/provider"
	"github.com/seenimoa/finlookup/pkg/models"
)

const infoModules = "price,summaryDetail,defaultKeyStatistics,financialData"

type companyInfoFetcher struct {
	provider.BaseFetcher
	sess *session
}

func newCompanyInfoFetcher(sess *session, opts provider.FetcherOptions) *companyInfoFetcher {
	return &companyInfoFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelCompanyInfo,
			"Company quote and key statistics from Yahoo quoteSummary",
			[]string{provider.ParamSymbol},
			nil,
			opts,
		),
		sess: sess,
	}
}

func (f *companyInfoFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := toYFTicker(params[provider.ParamSymbol])

	cacheKey := provider.CacheKey(f.ModelType(), provider.QueryParams{provider.ParamSymbol: symbol})
	var cached models.CompanyInfo
	if f.CacheGet(ctx, cacheKey, &cached) {
		return newCachedResult(cached), nil
	}

	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	var resp yfQuoteSummaryResponse
	q := url.Values{"modules": {infoModules}}
	if err := f.sess.getJSON(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(symbol), q, true, &resp); err != nil {
		return nil, fmt.Errorf("fetch info %s: %w", symbol, err)
	}
	if resp.QuoteSummary.Error != nil {
		return nil, resp.QuoteSummary.Error
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("info %s: %w", symbol, provider.ErrNoData)
	}

	info := flattenQuoteSummary(resp.QuoteSummary.Result[0])
	if len(info) == 0 {
		return nil, fmt.Errorf("info %s: %w", symbol, provider.ErrNoData)
	}

	_ = f.CacheSet(ctx, cacheKey, info)
	return newResult(info), nil
}

// flattenQuoteSummary maps the quoteSummary modules onto CompanyInfo keys.
// Earlier modules win when several carry the same field.
func flattenQuoteSummary(r yfQuoteSummaryResult) models.CompanyInfo {
	info := models.CompanyInfo{}
	str := func(key, v string) {
		if _, ok := info[key]; !ok && v != "" {
			info.SetString(key, v)
		}
	}
	num := func(key string, v yfFinVal) {
		if _, ok := info[key]; !ok && v.Raw != nil {
			info.SetNumber(key, *v.Raw)
		}
	}

	if sd := r.SummaryDetail; sd != nil {
		num(models.InfoMarketCap, sd.MarketCap)
		num(models.InfoTrailingPE, sd.TrailingPE)
		num(models.InfoForwardPE, sd.ForwardPE)
		str(models.InfoCurrency, sd.Currency)
	}
	if p := r.Price; p != nil {
		str(models.InfoShortName, p.ShortName)
		str(models.InfoLongName, p.LongName)
		str(models.InfoCurrency, p.Currency)
		str(models.InfoExchange, p.Exchange)
		num(models.InfoRegularMarketPrice, p.RegularMarketPrice)
		num(models.InfoMarketCap, p.MarketCap)
	}
	if ks := r.DefaultKeyStatistics; ks != nil {
		num(models.InfoEnterpriseValue, ks.EnterpriseValue)
		num(models.InfoForwardPE, ks.ForwardPE)
		num(models.InfoSharesOutstanding, ks.SharesOutstanding)
	}
	if fd := r.FinancialData; fd != nil {
		num(models.InfoTotalRevenue, fd.TotalRevenue)
		num(models.InfoEBITDA, fd.EBITDA)
		num(models.InfoRegularMarketPrice, fd.CurrentPrice)
		str(models.InfoCurrency, fd.FinancialCurr)
	}
	return info
}
