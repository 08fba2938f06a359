// Package yfinance implements the Yahoo Finance data provider over the
// public fundamentals-timeseries and v10 quoteSummary endpoints.
//
// Yahoo Finance needs no API key but does require a session cookie and
// crumb for quoteSummary; both are managed internally.
package yfinance

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/finlookup/internal/infra"
	"github.com/seenimoa/finlookup/internal/provider"
)

const (
	providerName     = "yfinance"
	defaultBaseURL   = "https://query2.finance.yahoo.com"
	defaultCookieURL = "https://fc.yahoo.com"
)

// Options configures the provider. Zero values select Yahoo's public hosts.
type Options struct {
	BaseURL   string
	CookieURL string
	UserAgent string
	Timeout   time.Duration
	Fetcher   provider.FetcherOptions
	Logger    zerolog.Logger
	// Now is the clock used for timeseries windows.
	Now func() time.Time
}

// Provider implements provider.Provider for Yahoo Finance.
type Provider struct {
	provider.BaseProvider
	sess *session
}

// New creates the Yahoo provider and registers its fetchers.
func New(opts Options) *Provider {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.CookieURL == "" {
		opts.CookieURL = defaultCookieURL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	client := infra.NewHTTPClient(infra.HTTPOptions{
		Timeout:   opts.Timeout,
		UserAgent: opts.UserAgent,
		CookieJar: true,
	})
	log := opts.Logger.With().Str("provider", providerName).Logger()

	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Yahoo Finance - free global financial data",
			"https://finance.yahoo.com",
			nil,
		),
		sess: newSession(client, opts.BaseURL, opts.CookieURL, log),
	}

	p.RegisterFetcher(newStatementFetcher(p.sess, opts.Fetcher, opts.Now))
	p.RegisterFetcher(newCompanyInfoFetcher(p.sess, opts.Fetcher))
	return p
}

// Ping checks connectivity to Yahoo Finance.
func (p *Provider) Ping(ctx context.Context) error {
	var resp yfQuoteSummaryResponse
	q := url.Values{"modules": {"price"}}
	if err := p.sess.getJSON(ctx, "/v10/finance/quoteSummary/AAPL", q, true, &resp); err != nil {
		return fmt.Errorf("yfinance ping: %w", err)
	}
	return nil
}

// --- Shared helpers ---

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// toYFTicker normalises a symbol for Yahoo: trimmed and upper-cased, with
// the exchange suffix (".KS", ".KQ") upper-cased too.
func toYFTicker(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// newResult creates a FetchResult with the current timestamp.
func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
	}
}

// newCachedResult creates a FetchResult marked as cached.
func newCachedResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
		Cached:    true,
	}
}
