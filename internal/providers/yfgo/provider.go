// Package yfgo registers a CompanyInfo provider backed by the yf-go
// client. It only reads the quoteSummary price module, so it serves as a
// thinner fallback when the primary Yahoo provider fails.
package yfgo

import (
	"context"
	"fmt"
	"strings"
	"time"

	yfgo "github.com/komsit37/yf-go"

	"github.com/seenimoa/finlookup/internal/provider"
	"github.com/seenimoa/finlookup/pkg/models"
)

const providerName = "yfgo"

// priceQuote is the subset of the price module this provider maps.
type priceQuote struct {
	ShortName string
	LongName  string
	Price     *float64
}

type priceLookup func(ctx context.Context, symbol string) (priceQuote, error)

// Options configures the provider.
type Options struct {
	Timeout time.Duration
	Fetcher provider.FetcherOptions
}

// Provider implements provider.Provider over yf-go.
type Provider struct {
	provider.BaseProvider
}

// New creates the provider with a fresh yf-go client.
func New(opts Options) *Provider {
	client := yfgo.NewClient()
	lookup := func(ctx context.Context, symbol string) (priceQuote, error) {
		res, err := client.QuoteSummaryTyped(ctx, symbol, []yfgo.QuoteSummaryModule{yfgo.ModulePrice})
		if err != nil {
			return priceQuote{}, err
		}
		if res.Price == nil {
			return priceQuote{}, fmt.Errorf("no price module for %s: %w", symbol, provider.ErrNoData)
		}
		return priceQuote{
			ShortName: res.Price.ShortName,
			LongName:  res.Price.LongName,
			Price:     res.Price.RegularMarketPrice.Raw,
		}, nil
	}
	return newProvider(opts, lookup)
}

func newProvider(opts Options, lookup priceLookup) *Provider {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Yahoo Finance price module via yf-go",
			"https://github.com/komsit37/yf-go",
			nil,
		),
	}
	p.RegisterFetcher(&infoFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelCompanyInfo,
			"Company name and market price from the quoteSummary price module",
			[]string{provider.ParamSymbol},
			nil,
			opts.Fetcher,
		),
		lookup:  lookup,
		timeout: opts.Timeout,
	})
	return p
}

type infoFetcher struct {
	provider.BaseFetcher
	lookup  priceLookup
	timeout time.Duration
}

func (f *infoFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := strings.ToUpper(strings.TrimSpace(params[provider.ParamSymbol]))

	key := providerName + ":" + provider.CacheKey(f.ModelType(), provider.QueryParams{provider.ParamSymbol: symbol})
	var cached models.CompanyInfo
	if f.CacheGet(ctx, key, &cached) {
		return &provider.FetchResult{Data: cached, FetchedAt: time.Now(), Cached: true}, nil
	}

	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	cctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	q, err := f.lookup(cctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("yf-go quote %s: %w", symbol, err)
	}

	info := models.CompanyInfo{}
	info.SetString(models.InfoShortName, q.ShortName)
	info.SetString(models.InfoLongName, q.LongName)
	if q.Price != nil {
		info.SetNumber(models.InfoRegularMarketPrice, *q.Price)
	}
	if len(info) == 0 {
		return nil, fmt.Errorf("yf-go quote %s: %w", symbol, provider.ErrNoData)
	}

	_ = f.CacheSet(ctx, key, info)
	return &provider.FetchResult{Data: info, FetchedAt: time.Now()}, nil
}
