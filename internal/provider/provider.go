// Package provider defines the data provider abstraction: a Provider
// exposes one Fetcher per standard model type, and a Registry routes
// requests to providers with per-model defaults and fallback.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ProviderCredential describes a credential a provider may need.
type ProviderCredential struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	EnvVar      string `json:"env_var"`
}

// ProviderInfo holds metadata about a registered provider.
type ProviderInfo struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Website     string               `json:"website"`
	Credentials []ProviderCredential `json:"credentials,omitempty"`
	Models      []ModelType          `json:"models"`
}

// Provider is implemented by every data source.
type Provider interface {
	// Info returns metadata about this provider.
	Info() ProviderInfo

	// Init configures the provider. Returns an error if a required
	// credential is missing.
	Init(credentials map[string]string) error

	// Fetcher returns the fetcher for model, or nil if unsupported.
	Fetcher(model ModelType) Fetcher

	// SupportedModels returns all model types this provider can fetch.
	SupportedModels() []ModelType

	// Ping verifies connectivity.
	Ping(ctx context.Context) error
}

// QueryParams is the generic parameter map passed to fetchers.
type QueryParams map[string]string

// Common query parameter keys.
const (
	ParamSymbol   = "symbol"
	ParamPeriod   = "period"
	ParamProvider = "provider"
)

// FetchResult wraps a fetcher result with metadata.
type FetchResult struct {
	Provider  string    `json:"provider"`
	Model     ModelType `json:"model"`
	Data      any       `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
	Cached    bool      `json:"cached"`
}

// Fetcher fetches a single model type.
type Fetcher interface {
	ModelType() ModelType
	Description() string
	RequiredParams() []string
	OptionalParams() []string

	// Fetch retrieves data for params. Data is *models.FinancialTable for
	// FinancialStatement and models.CompanyInfo for CompanyInfo.
	Fetch(ctx context.Context, params QueryParams) (*FetchResult, error)
}

// ErrNoData is returned when a provider answered but had nothing for the
// requested symbol.
var ErrNoData = errors.New("no data returned")

// ErrProviderNotFound is returned when a requested provider is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return fmt.Sprintf("provider %q not found", e.Name)
}

// ErrModelNotSupported is returned when a provider doesn't support a model type.
type ErrModelNotSupported struct {
	Provider string
	Model    ModelType
}

func (e *ErrModelNotSupported) Error() string {
	return fmt.Sprintf("provider %q does not support model %q", e.Provider, e.Model)
}

// ErrMissingParam is returned when a required query parameter is missing.
type ErrMissingParam struct {
	Param string
}

func (e *ErrMissingParam) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Param)
}

// ErrInvalidCredentials is returned when provider credentials are invalid.
type ErrInvalidCredentials struct {
	Provider string
	Detail   string
}

func (e *ErrInvalidCredentials) Error() string {
	return fmt.Sprintf("invalid credentials for provider %q: %s", e.Provider, e.Detail)
}

// ValidateParams checks that all required parameters are present in params.
func ValidateParams(params QueryParams, required []string) error {
	for _, key := range required {
		if v, ok := params[key]; !ok || v == "" {
			return &ErrMissingParam{Param: key}
		}
	}
	return nil
}
