package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/finlookup/internal/config"
	"github.com/seenimoa/finlookup/internal/directory"
	"github.com/seenimoa/finlookup/internal/provider"
	"github.com/seenimoa/finlookup/pkg/models"
)

func TestBuildRequest(t *testing.T) {
	dir := directory.New(directory.Builtin()...)

	assert.Equal(t, "Apple", buildRequest(dir, "Apple", false).Company)
	assert.Equal(t, "NVDA", buildRequest(dir, "NVDA", false).Ticker, "unknown names are tickers")
	req := buildRequest(dir, "Apple", true)
	assert.Empty(t, req.Company)
	assert.Equal(t, "Apple", req.Ticker)
}

func TestBuildProviders(t *testing.T) {
	cfg := config.Default()
	reg, err := buildProviders(cfg, nil, nil, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []string{"yfgo", "yfinance"}, providerNames(reg))
	def, _ := reg.DefaultProvider(provider.ModelCompanyInfo)
	assert.Equal(t, "yfinance", def)
	def, _ = reg.DefaultProvider(provider.ModelFinancialStatement)
	assert.Equal(t, "yfinance", def)
	assert.Equal(t, []string{"yfinance"}, reg.ProvidersFor(provider.ModelFinancialStatement))

	cfg.Provider.Fallback = false
	reg, err = buildProviders(cfg, nil, nil, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"yfinance"}, providerNames(reg))

	cfg.Provider.Default = "yfgo"
	reg, err = buildProviders(cfg, nil, nil, zerolog.Nop())
	require.NoError(t, err)
	def, _ = reg.DefaultProvider(provider.ModelCompanyInfo)
	assert.Equal(t, "yfgo", def)
	def, _ = reg.DefaultProvider(provider.ModelFinancialStatement)
	assert.Equal(t, "yfinance", def)
}

func TestNewApp(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Backend = "none"

	a, err := newApp(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "none", a.store.Name())
	assert.Equal(t, len(directory.Builtin()), a.dir.Len())
	assert.Same(t, a.dir, a.svc.Directory())

	families, err := a.promReg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewAppBadDirectory(t *testing.T) {
	cfg := config.Default()
	cfg.Directory.File = t.TempDir() + "/missing.yaml"

	_, err := newApp(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestRenderSnapshot(t *testing.T) {
	snap := &models.Snapshot{
		Ticker:     "AAPL",
		ShortName:  "Apple Inc.",
		Currency:   "USD",
		MarketCap:  models.Num(2_000_000),
		PERatio:    models.Num(20),
		TrailingPE: models.NA,
		Latest: models.PeriodMetrics{
			Period:    "2024-09-30",
			Revenue:   models.Num(400_000),
			NetIncome: models.Num(100_000),
			PERatio:   models.Num(20),
		},
		Years: []models.PeriodMetrics{
			{Year: "2023", NetIncome: models.Num(80_000), PERatio: models.Num(25)},
		},
	}

	var buf bytes.Buffer
	renderSnapshot(&buf, snap)
	out := buf.String()

	assert.Contains(t, out, "Apple Inc. (AAPL)")
	assert.Contains(t, out, "LATEST 2024-09-30")
	assert.Contains(t, out, "2023")
	assert.Contains(t, out, "Net Income")
	assert.Contains(t, out, models.NotAvailable)
}

func TestWriteSnapshotJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSnapshotJSON(&buf, &models.Snapshot{Ticker: "AAPL", PERatio: models.NA}))
	assert.Contains(t, buf.String(), `"pe_ratio": "N/A"`)
}

func TestRenderCompanies(t *testing.T) {
	var buf bytes.Buffer
	renderCompanies(&buf, directory.New(directory.Builtin()...).Entries())
	out := buf.String()

	assert.Contains(t, out, "COMPANY")
	assert.Contains(t, out, "Apple")
	assert.Contains(t, out, "005930.KS")
}

func TestShowConfigRedactsSecrets(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.RedisURL = "redis://:hunter2hunter2@cache:6379/0"

	var buf bytes.Buffer
	require.NoError(t, showConfig(&buf, cfg))
	out := buf.String()

	assert.NotContains(t, out, "hunter2hunter2")
	assert.Contains(t, out, "backend: memory")
	assert.True(t, strings.Contains(out, "Redis URL:"), out)
}
