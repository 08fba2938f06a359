package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/seenimoa/finlookup/internal/config"
	"github.com/seenimoa/finlookup/internal/directory"
	"github.com/seenimoa/finlookup/internal/infra"
	"github.com/seenimoa/finlookup/internal/lookup"
	"github.com/seenimoa/finlookup/internal/provider"
	"github.com/seenimoa/finlookup/internal/providers"
)

// app holds the wired components shared by serve and lookup.
type app struct {
	store     infra.Store
	promReg   *prometheus.Registry
	metrics   *infra.Metrics
	providers *provider.Registry
	dir       *directory.Directory
	svc       *lookup.Service
}

// newApp wires the cache store, providers, directory and lookup service
// from cfg. The caller must Close the app.
func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	store, err := infra.OpenStore(ctx, infra.StoreConfig{
		Backend:   cfg.Cache.Backend,
		RedisURL:  cfg.Cache.RedisURL,
		BadgerDir: cfg.Cache.BadgerDir,
		TTL:       cfg.Cache.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", cfg.Cache.Backend, err)
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := infra.NewMetrics(promReg)

	reg, err := buildProviders(cfg, store, metrics, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	dir := directory.New(directory.Builtin()...)
	if cfg.Directory.File != "" {
		if dir, err = directory.Load(cfg.Directory.File); err != nil {
			store.Close()
			return nil, err
		}
	}

	svc := lookup.NewService(lookup.NewRegistrySource(reg), dir,
		lookup.Config{
			MaxYears: cfg.Lookup.MaxYears,
			Period:   cfg.Lookup.Period,
			Timeout:  cfg.Lookup.Timeout,
		},
		lookup.WithLogger(log),
		lookup.WithMetrics(metrics),
	)

	log.Debug().
		Str("cache", store.Name()).
		Int("companies", dir.Len()).
		Strs("providers", providerNames(reg)).
		Msg("app wired")

	return &app{
		store:     store,
		promReg:   promReg,
		metrics:   metrics,
		providers: reg,
		dir:       dir,
		svc:       svc,
	}, nil
}

// Close releases the cache store.
func (a *app) Close() error {
	return a.store.Close()
}

// buildProviders registers the configured providers on a new registry.
func buildProviders(cfg *config.Config, store infra.Store, metrics *infra.Metrics, log zerolog.Logger) (*provider.Registry, error) {
	rateLimit := cfg.Provider.RateLimit
	if rateLimit == 0 {
		rateLimit = -1 // unlimited
	}

	reg := provider.NewRegistry(provider.WithMetrics(metrics))
	err := providers.RegisterAllTo(reg, providers.Settings{
		Default:   cfg.Provider.Default,
		Fallback:  cfg.Provider.Fallback,
		UserAgent: cfg.Provider.UserAgent,
		Timeout:   cfg.Provider.HTTPTimeout,
		Logger:    log,
		Fetcher: provider.FetcherOptions{
			Store:     store,
			CacheTTL:  cfg.Cache.TTL,
			RateLimit: rateLimit,
			Metrics:   metrics,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("register providers: %w", err)
	}
	return reg, nil
}

func providerNames(reg *provider.Registry) []string {
	var names []string
	for _, p := range reg.List() {
		names = append(names, p.Name)
	}
	return names
}
