package provider

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/seenimoa/finlookup/internal/infra"
)

// FetcherOptions configures the shared cache and rate limiter of a
// BaseFetcher. Zero values select the defaults.
type FetcherOptions struct {
	Store      infra.Store
	CacheTTL   time.Duration
	RateLimit  int
	RateWindow time.Duration
	Metrics    *infra.Metrics
}

func (o FetcherOptions) withDefaults() FetcherOptions {
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
	if o.Store == nil {
		o.Store = infra.NewMemoryStore(o.CacheTTL)
	}
	if o.RateLimit == 0 {
		o.RateLimit = 10
	}
	if o.RateWindow <= 0 {
		o.RateWindow = time.Second
	}
	return o
}

// BaseFetcher provides caching and rate limiting for fetcher
// implementations. Embed it in concrete fetchers.
type BaseFetcher struct {
	model       ModelType
	description string
	required    []string
	optional    []string
	store       infra.Store
	ttl         time.Duration
	limiter     *infra.RateLimiter
	metrics     *infra.Metrics
}

// NewBaseFetcher creates a base fetcher.
func NewBaseFetcher(model ModelType, desc string, required, optional []string, opts FetcherOptions) BaseFetcher {
	opts = opts.withDefaults()
	return BaseFetcher{
		model:       model,
		description: desc,
		required:    required,
		optional:    optional,
		store:       opts.Store,
		ttl:         opts.CacheTTL,
		limiter:     infra.NewRateLimiter(opts.RateLimit, opts.RateWindow),
		metrics:     opts.Metrics,
	}
}

func (b *BaseFetcher) ModelType() ModelType     { return b.model }
func (b *BaseFetcher) Description() string      { return b.description }
func (b *BaseFetcher) RequiredParams() []string { return b.required }
func (b *BaseFetcher) OptionalParams() []string { return b.optional }

// CacheGet decodes a cached JSON payload into dest. Store errors and
// undecodable payloads count as misses.
func (b *BaseFetcher) CacheGet(ctx context.Context, key string, dest any) bool {
	data, ok, err := b.store.Get(ctx, key)
	if err != nil || !ok {
		b.metrics.ObserveCache(b.store.Name(), false)
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		b.metrics.ObserveCache(b.store.Name(), false)
		return false
	}
	b.metrics.ObserveCache(b.store.Name(), true)
	return true
}

// CacheSet stores value as JSON with the fetcher's TTL.
func (b *BaseFetcher) CacheSet(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return b.store.Set(ctx, key, data, b.ttl)
}

// RateLimit waits until a request slot is available.
func (b *BaseFetcher) RateLimit(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}

// CacheKey builds a deterministic cache key from the model type and query
// parameters. The provider override is not part of the key.
func CacheKey(model ModelType, params QueryParams) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == ParamProvider {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(string(model))
	for _, k := range keys {
		sb.WriteString(":" + k + "=" + params[k])
	}
	return sb.String()
}

// BaseProvider provides common functionality for provider implementations.
type BaseProvider struct {
	info        ProviderInfo
	fetchers    map[ModelType]Fetcher
	credentials map[string]string
}

// NewBaseProvider creates a base provider.
func NewBaseProvider(name, description, website string, creds []ProviderCredential) BaseProvider {
	return BaseProvider{
		info: ProviderInfo{
			Name:        name,
			Description: description,
			Website:     website,
			Credentials: creds,
		},
		fetchers:    make(map[ModelType]Fetcher),
		credentials: make(map[string]string),
	}
}

func (bp *BaseProvider) Info() ProviderInfo { return bp.info }

func (bp *BaseProvider) Init(credentials map[string]string) error {
	for _, cred := range bp.info.Credentials {
		if !cred.Required {
			continue
		}
		if v, ok := credentials[cred.Name]; !ok || v == "" {
			return &ErrInvalidCredentials{
				Provider: bp.info.Name,
				Detail:   "missing required credential: " + cred.Name,
			}
		}
	}
	bp.credentials = credentials
	return nil
}

func (bp *BaseProvider) Fetcher(model ModelType) Fetcher {
	return bp.fetchers[model]
}

// SupportedModels returns the registered model types in sorted order.
func (bp *BaseProvider) SupportedModels() []ModelType {
	models := make([]ModelType, 0, len(bp.fetchers))
	for m := range bp.fetchers {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool { return models[i] < models[j] })
	return models
}

// Ping is a no-op; concrete providers override it.
func (bp *BaseProvider) Ping(ctx context.Context) error {
	return nil
}

// RegisterFetcher adds a fetcher to this provider.
func (bp *BaseProvider) RegisterFetcher(f Fetcher) {
	bp.fetchers[f.ModelType()] = f
	bp.info.Models = bp.SupportedModels()
}

// Credential returns a stored credential value.
func (bp *BaseProvider) Credential(name string) string {
	return bp.credentials[name]
}
