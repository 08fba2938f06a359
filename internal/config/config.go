// Package config handles configuration loading for finlookup.
// It supports YAML config files, a .env file, and environment variable
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. FINLOOKUP_API_PORT.
const EnvPrefix = "FINLOOKUP"

// Config represents the complete application configuration.
type Config struct {
	API       APIConfig       `mapstructure:"api"       yaml:"api"       json:"api"`
	Provider  ProviderConfig  `mapstructure:"provider"  yaml:"provider"  json:"provider"`
	Cache     CacheConfig     `mapstructure:"cache"     yaml:"cache"     json:"cache"`
	Directory DirectoryConfig `mapstructure:"directory" yaml:"directory" json:"directory"`
	Lookup    LookupConfig    `mapstructure:"lookup"    yaml:"lookup"    json:"lookup"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"   json:"logging"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-" yaml:"-" json:"file,omitempty"`
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Host           string        `mapstructure:"host"            yaml:"host"            json:"host"`
	Port           int           `mapstructure:"port"            yaml:"port"            json:"port"            validate:"min=1,max=65535"`
	CORSOrigins    []string      `mapstructure:"cors_origins"    yaml:"cors_origins"    json:"cors_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout" json:"request_timeout" validate:"gt=0"`
}

// ProviderConfig holds upstream data provider settings.
type ProviderConfig struct {
	Default     string        `mapstructure:"default"      yaml:"default"      json:"default"      validate:"oneof=yfinance yfgo"`
	Fallback    bool          `mapstructure:"fallback"     yaml:"fallback"     json:"fallback"`
	UserAgent   string        `mapstructure:"user_agent"   yaml:"user_agent"   json:"user_agent"`
	RateLimit   int           `mapstructure:"rate_limit"   yaml:"rate_limit"   json:"rate_limit"   validate:"gte=0"` // requests per second, 0 = unlimited
	HTTPTimeout time.Duration `mapstructure:"http_timeout" yaml:"http_timeout" json:"http_timeout" validate:"gt=0"`
}

// CacheConfig holds provider payload cache settings.
type CacheConfig struct {
	Backend         string        `mapstructure:"backend"          yaml:"backend"          json:"backend"          validate:"oneof=memory redis badger none"`
	TTL             time.Duration `mapstructure:"ttl"              yaml:"ttl"              json:"ttl"              validate:"gte=0"`
	RedisURL        string        `mapstructure:"redis_url"        yaml:"redis_url"        json:"-"                validate:"required_if=Backend redis"`
	BadgerDir       string        `mapstructure:"badger_dir"       yaml:"badger_dir"       json:"badger_dir"`
	WarmSchedule    string        `mapstructure:"warm_schedule"    yaml:"warm_schedule"    json:"warm_schedule"`
	WarmConcurrency int           `mapstructure:"warm_concurrency" yaml:"warm_concurrency" json:"warm_concurrency" validate:"gte=0"`
}

// DirectoryConfig points at an optional company directory file.
type DirectoryConfig struct {
	File string `mapstructure:"file" yaml:"file" json:"file"`
}

// LookupConfig holds lookup service settings.
type LookupConfig struct {
	MaxYears int           `mapstructure:"max_years" yaml:"max_years" json:"max_years" validate:"gte=0"`
	Period   string        `mapstructure:"period"    yaml:"period"    json:"period"    validate:"oneof=annual quarterly trailing"`
	Timeout  time.Duration `mapstructure:"timeout"   yaml:"timeout"   json:"timeout"   validate:"gt=0"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  json:"level"  validate:"oneof=trace debug info warn error"` // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format" validate:"oneof=text json"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.finlookup/config.yaml (home directory)
//  3. /etc/finlookup/config.yaml (system)
//
// A .env file in the working directory is loaded first; real environment
// variables win over it. Environment variables override config file
// values. Format: FINLOOKUP_<SECTION>_<KEY>, e.g. FINLOOKUP_CACHE_BACKEND.
func Load() (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".finlookup"))
	v.AddConfigPath("/etc/finlookup")

	// Config file is optional.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

// Default returns the built-in defaults without reading files or the
// environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// SaveToFile writes cfg as YAML, creating parent directories.
func SaveToFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})
	v.SetDefault("api.request_timeout", 30*time.Second)

	// Provider defaults
	v.SetDefault("provider.default", "yfinance")
	v.SetDefault("provider.fallback", true)
	v.SetDefault("provider.user_agent", "")
	v.SetDefault("provider.rate_limit", 5)
	v.SetDefault("provider.http_timeout", 15*time.Second)

	// Cache defaults
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", 15*time.Minute)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.badger_dir", filepath.Join(homeDir(), ".finlookup", "cache"))
	v.SetDefault("cache.warm_schedule", "")
	v.SetDefault("cache.warm_concurrency", 2)

	// Directory defaults
	v.SetDefault("directory.file", "")

	// Lookup defaults
	v.SetDefault("lookup.max_years", 4)
	v.SetDefault("lookup.period", "annual")
	v.SetDefault("lookup.timeout", 20*time.Second)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// loadDotEnv loads ./.env if present. Existing variables are not replaced.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
