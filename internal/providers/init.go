// Package providers creates the concrete data providers and registers them
// with a provider registry.
package providers

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/finlookup/internal/provider"
	"github.com/seenimoa/finlookup/internal/providers/yfgo"
	"github.com/seenimoa/finlookup/internal/providers/yfinance"
)

// Settings selects and tunes the registered providers.
type Settings struct {
	// Default names the preferred company-info provider: "yfinance" or
	// "yfgo". Statements always default to yfinance, the only provider
	// serving them.
	Default string
	// Fallback registers yf-go as a second company-info source.
	Fallback  bool
	UserAgent string
	Fetcher   provider.FetcherOptions
	Timeout   time.Duration
	Logger    zerolog.Logger
}

// RegisterAllTo registers yfinance and, when fallback is enabled or it is
// the default, yf-go.
func RegisterAllTo(reg *provider.Registry, s Settings) error {
	// --- YFinance (free, no API key) ---
	yf := yfinance.New(yfinance.Options{
		UserAgent: s.UserAgent,
		Timeout:   s.Timeout,
		Fetcher:   s.Fetcher,
		Logger:    s.Logger,
	})
	if err := reg.Register(yf); err != nil {
		return err
	}

	// --- yf-go (company info only) ---
	if s.Fallback || s.Default == "yfgo" {
		yg := yfgo.New(yfgo.Options{
			Timeout: s.Timeout,
			Fetcher: s.Fetcher,
		})
		if err := reg.Register(yg); err != nil {
			return err
		}
	}
	if s.Default == "yfgo" {
		return reg.SetDefault(provider.ModelCompanyInfo, "yfgo")
	}
	return nil
}
