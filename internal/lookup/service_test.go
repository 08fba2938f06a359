package lookup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/finlookup/internal/directory"
	"github.com/seenimoa/finlookup/internal/infra"
	"github.com/seenimoa/finlookup/internal/provider"
	"github.com/seenimoa/finlookup/internal/providers/yfinance"
	"github.com/seenimoa/finlookup/pkg/models"
)

// mockSource serves canned data per ticker.
type mockSource struct {
	mu      sync.Mutex
	info    map[string]models.CompanyInfo
	tables  map[string]*models.FinancialTable
	infoErr error
	calls   []string
	periods []string
}

func (m *mockSource) CompanyInfo(_ context.Context, ticker string) (models.CompanyInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "info:"+ticker)
	if m.infoErr != nil {
		return nil, m.infoErr
	}
	info, ok := m.info[ticker]
	if !ok {
		return nil, provider.ErrNoData
	}
	return info, nil
}

func (m *mockSource) FinancialTable(_ context.Context, ticker, period string) (*models.FinancialTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "table:"+ticker)
	m.periods = append(m.periods, period)
	t, ok := m.tables[ticker]
	if !ok {
		return nil, provider.ErrNoData
	}
	return t, nil
}

func appleTable() *models.FinancialTable {
	t := models.NewFinancialTable("2024-09-30", "2023-09-30", "2022-09-24")
	t.Set("Total Revenue", "2024-09-30", 400_000)
	t.Set("Total Revenue", "2023-09-30", 380_000)
	t.Set("Net Income", "2024-09-30", 100_000)
	t.Set("Net Income", "2023-09-30", 80_000)
	t.Set("EBITDA", "2024-09-30", 140_000)
	t.Set("Total Revenue", "2022-09-24", 390_000)
	return t
}

func newMockSource() *mockSource {
	return &mockSource{
		info: map[string]models.CompanyInfo{
			"AAPL": {
				models.InfoShortName:       "Apple Inc.",
				models.InfoCurrency:        "USD",
				models.InfoMarketCap:       2_000_000.0,
				models.InfoEnterpriseValue: 2_100_000.0,
				models.InfoTrailingPE:      30.1,
			},
		},
		tables: map[string]*models.FinancialTable{"AAPL": appleTable()},
	}
}

func newTestService(src Source, opts ...Option) *Service {
	fixed := func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	opts = append([]Option{WithClock(fixed), WithLogger(zerolog.Nop())}, opts...)
	return NewService(src, directory.New(directory.Builtin()...), Config{MaxYears: 2}, opts...)
}

func TestLookupByCompany(t *testing.T) {
	src := newMockSource()
	svc := newTestService(src)

	snap, err := svc.Lookup(context.Background(), Request{Company: "Apple"})
	require.NoError(t, err)

	assert.Equal(t, "Apple", snap.Company)
	assert.Equal(t, "AAPL", snap.Ticker)
	assert.Equal(t, "Apple Inc.", snap.ShortName)
	assert.Equal(t, "USD", snap.Currency)
	assert.Equal(t, "annual", snap.PeriodType)
	assert.Equal(t, models.Num(2_000_000), snap.MarketCap)
	assert.Equal(t, models.Num(30.1), snap.TrailingPE)
	assert.Equal(t, models.Num(20), snap.PERatio, "market cap / net income")
	assert.False(t, snap.Price.Available())
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), snap.FetchedAt)

	assert.Equal(t, "2024-09-30", snap.Latest.Period)
	assert.Equal(t, models.Num(400_000), snap.Latest.Revenue)
	assert.Equal(t, models.Num(15), snap.Latest.EVToEBITDA)
	assert.Equal(t, models.Num(0.35), snap.Latest.EBITDAMargin)
	assert.False(t, snap.Latest.GrossProfit.Available())

	require.Len(t, snap.Years, 2, "limited to MaxYears")
	assert.Equal(t, "2024", snap.Years[0].Year)
	assert.Equal(t, "2023", snap.Years[1].Year)
	assert.Equal(t, models.Num(25), snap.Years[1].PERatio)
	assert.False(t, snap.Years[1].EBITDA.Available())
}

func TestLookupByTickerWithYears(t *testing.T) {
	src := newMockSource()
	svc := newTestService(src)

	snap, err := svc.Lookup(context.Background(), Request{Ticker: " aapl ", Years: []string{"2022", "2019"}})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", snap.Ticker)
	assert.Empty(t, snap.Company)

	y2022, ok := snap.Year("2022")
	require.True(t, ok)
	assert.Equal(t, models.Num(390_000), y2022.Revenue)
	assert.False(t, y2022.NetIncome.Available())

	y2019, ok := snap.Year("2019")
	require.True(t, ok)
	assert.False(t, y2019.Revenue.Available(), "no fallback to the latest column")
	assert.Empty(t, y2019.Period)
}

func TestLookupErrors(t *testing.T) {
	tests := []struct {
		name  string
		req   Request
		check func(t *testing.T, err error)
	}{
		{
			name: "unknown company",
			req:  Request{Company: "Nvidia"},
			check: func(t *testing.T, err error) {
				var nf *NotFoundError
				require.ErrorAs(t, err, &nf)
				assert.Equal(t, "Nvidia", nf.Company)
			},
		},
		{
			name:  "missing query",
			req:   Request{},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrMissingQuery) },
		},
		{
			name: "bad period",
			req:  Request{Ticker: "AAPL", Period: "monthly"},
			check: func(t *testing.T, err error) {
				var re *RequestError
				require.ErrorAs(t, err, &re)
				assert.Equal(t, "period", re.Param)
			},
		},
		{
			name: "bad year",
			req:  Request{Ticker: "AAPL", Years: []string{"24"}},
			check: func(t *testing.T, err error) {
				var re *RequestError
				require.ErrorAs(t, err, &re)
				assert.Equal(t, "years", re.Param)
			},
		},
		{
			name: "year outside fiscal range",
			req:  Request{Ticker: "AAPL", Years: []string{"0930"}},
			check: func(t *testing.T, err error) {
				var re *RequestError
				require.ErrorAs(t, err, &re)
				assert.Equal(t, "years", re.Param)
			},
		},
		{
			name: "provider failure",
			req:  Request{Ticker: "MSFT"},
			check: func(t *testing.T, err error) {
				var pe *ProviderError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, "MSFT", pe.Ticker)
				assert.ErrorIs(t, err, provider.ErrNoData)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestService(newMockSource()).Lookup(context.Background(), tt.req)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestLookupInfoFailureIsProviderError(t *testing.T) {
	src := newMockSource()
	src.infoErr = errors.New("HTTP 500")
	_, err := newTestService(src).Lookup(context.Background(), Request{Ticker: "AAPL"})

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestLookupWithoutStatement(t *testing.T) {
	src := newMockSource()
	src.info["SPY"] = models.CompanyInfo{
		models.InfoShortName: "SPDR S&P 500 ETF",
		models.InfoMarketCap: 3_000_000.0,
	}

	snap, err := newTestService(src).Lookup(context.Background(), Request{Ticker: "spy", Years: []string{"2023"}})
	require.NoError(t, err)

	assert.Equal(t, "SPY", snap.Ticker)
	assert.Equal(t, models.Num(3_000_000), snap.MarketCap)
	assert.Equal(t, models.NA, snap.PERatio)
	assert.Equal(t, models.NA, snap.Latest.Revenue)
	assert.Equal(t, models.NA, snap.Latest.NetIncome)
	require.Len(t, snap.Years, 1)
	assert.Equal(t, models.NA, snap.Years[0].EBITDA)
}

func TestLookupWithoutStatementFromYahoo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/seed", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "A3", Value: "session", Path: "/"})
	})
	mux.HandleFunc("/v1/test/getcrumb", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("crumb123"))
	})
	mux.HandleFunc("/v10/finance/quoteSummary/SPY", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary":{"result":[{"price":{"symbol":"SPY","shortName":"SPDR S&P 500 ETF","currency":"USD"},"summaryDetail":{"marketCap":{"raw":2000000}}}],"error":null}}`))
	})
	mux.HandleFunc("/ws/fundamentals-timeseries/v1/finance/timeseries/SPY", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"timeseries":{"result":[{"meta":{"type":["annualTotalRevenue"]}}],"error":null}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	reg := provider.NewRegistry()
	require.NoError(t, reg.Register(yfinance.New(yfinance.Options{
		BaseURL:   srv.URL,
		CookieURL: srv.URL + "/seed",
		Timeout:   2 * time.Second,
		Logger:    zerolog.Nop(),
		Fetcher:   provider.FetcherOptions{RateLimit: -1},
	})))

	snap, err := newTestService(NewRegistrySource(reg)).Lookup(context.Background(), Request{Ticker: "SPY"})
	require.NoError(t, err)
	assert.Equal(t, "SPDR S&P 500 ETF", snap.ShortName)
	assert.Equal(t, models.Num(2_000_000), snap.MarketCap)
	assert.Equal(t, models.NA, snap.PERatio)
	assert.Equal(t, models.NA, snap.Latest.Revenue)
	assert.Empty(t, snap.Years)
}

func TestLookupPeriodPassedToSource(t *testing.T) {
	src := newMockSource()
	_, err := newTestService(src).Lookup(context.Background(), Request{Ticker: "AAPL", Period: "quarterly"})
	require.NoError(t, err)
	assert.Equal(t, []string{"quarterly"}, src.periods)
}

func TestLookupMetrics(t *testing.T) {
	m := infra.NewMetrics(prometheus.NewRegistry())
	svc := newTestService(newMockSource(), WithMetrics(m))

	_, _ = svc.Lookup(context.Background(), Request{Ticker: "AAPL"})
	_, _ = svc.Lookup(context.Background(), Request{Company: "Nobody"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("not_found")))
}

func TestAssembleEmptyTable(t *testing.T) {
	snap := Assemble(models.CompanyInfo{models.InfoMarketCap: 1e6}, nil, nil)
	assert.False(t, snap.PERatio.Available())
	assert.False(t, snap.Latest.Revenue.Available())
	assert.Empty(t, snap.Years)
}

func TestParseYears(t *testing.T) {
	assert.Equal(t, []string{"2023", "2024"}, ParseYears(" 2023, 2024 ,"))
	assert.Nil(t, ParseYears(""))
}
