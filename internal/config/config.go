// Package config handles configuration loading for Propfolio.
// It supports YAML config files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/seenimoa/propfolio/internal/news"
	"github.com/seenimoa/propfolio/internal/rates"
)

// Config represents the complete application configuration.
type Config struct {
	Portfolio PortfolioConfig `mapstructure:"portfolio" yaml:"portfolio" json:"portfolio"`
	Storage   StorageConfig   `mapstructure:"storage"   yaml:"storage"   json:"storage"`
	Cache     CacheConfig     `mapstructure:"cache"     yaml:"cache"     json:"cache"`
	Rates     RatesConfig     `mapstructure:"rates"     yaml:"rates"     json:"rates"`
	News      NewsConfig      `mapstructure:"news"      yaml:"news"      json:"news"`
	Sharing   SharingConfig   `mapstructure:"sharing"   yaml:"sharing"   json:"sharing"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"       json:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"   json:"logging"`
}

// PortfolioConfig holds portfolio file and projection settings.
type PortfolioConfig struct {
	Path         string `mapstructure:"path"          yaml:"path"          json:"path"`          // portfolio JSON file
	HorizonYears int    `mapstructure:"horizon_years" yaml:"horizon_years" json:"horizon_years"` // default projection horizon
}

// StorageConfig selects the portfolio persistence backend. The DSN is
// excluded from JSON: it reaches the config API neither way, only the
// file and the environment carry it.
type StorageConfig struct {
	Backend     string `mapstructure:"backend"      yaml:"backend"      json:"backend"` // "file" or "postgres"
	PostgresDSN string `mapstructure:"postgres_dsn" yaml:"postgres_dsn" json:"-"`
}

// CacheConfig selects the cache backend for market data.
type CacheConfig struct {
	Backend       string `mapstructure:"backend"        yaml:"backend"        json:"backend"` // "memory" or "redis"
	RedisAddr     string `mapstructure:"redis_addr"     yaml:"redis_addr"     json:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" yaml:"redis_password" json:"-"`
	RedisDB       int    `mapstructure:"redis_db"       yaml:"redis_db"       json:"redis_db"`
}

// RatesConfig holds mortgage rate intake settings.
type RatesConfig struct {
	CacheTTL int                  `mapstructure:"cache_ttl" yaml:"cache_ttl" json:"cache_ttl"` // seconds
	Sources  []rates.SourceConfig `mapstructure:"sources"   yaml:"sources"   json:"sources"`   // empty means built-ins
}

// NewsConfig holds news feed intake settings.
type NewsConfig struct {
	CacheTTL int                 `mapstructure:"cache_ttl" yaml:"cache_ttl" json:"cache_ttl"` // seconds
	Sources  []news.SourceConfig `mapstructure:"sources"   yaml:"sources"   json:"sources"`   // empty means built-ins
}

// SharingConfig holds snapshot sharing settings.
type SharingConfig struct {
	TTLHours int    `mapstructure:"ttl_hours" yaml:"ttl_hours" json:"ttl_hours"` // snapshot lifetime
	BaseURL  string `mapstructure:"base_url"  yaml:"base_url"  json:"base_url"`  // prefix for share links
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"         json:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"         json:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  json:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.propfolio/config.yaml (home directory)
//  3. /etc/propfolio/config.yaml (system)
//
// Environment variables override config file values.
// Format: PROPFOLIO_<SECTION>_<KEY>, e.g., PROPFOLIO_STORAGE_POSTGRES_DSN
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".propfolio"))
	v.AddConfigPath("/etc/propfolio")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file anywhere on the search path: defaults plus
		// env cover everything.
	}
	return finish(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return finish(v)
}

// newViper returns a viper instance with defaults and env binding in
// place, ready for a config source.
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("PROPFOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Portfolio defaults
	v.SetDefault("portfolio.path", filepath.Join(homeDir(), ".propfolio", "portfolio.json"))
	v.SetDefault("portfolio.horizon_years", 30)

	// Storage defaults
	v.SetDefault("storage.backend", "file")

	// Cache defaults
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)

	// Intake defaults
	v.SetDefault("rates.cache_ttl", 900) // 15 minutes
	v.SetDefault("news.cache_ttl", 600)  // 10 minutes

	// Sharing defaults
	v.SetDefault("sharing.ttl_hours", 720) // 30 days
	v.SetDefault("sharing.base_url", "http://localhost:8080")

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// ConfigFilePath returns the path the config API writes to. Updates
// always land in the home-directory file, regardless of which search
// path the active config was loaded from.
func ConfigFilePath() string {
	return filepath.Join(homeDir(), ".propfolio", "config.yaml")
}

// SaveToFile writes the configuration as YAML, creating the parent
// directory as needed. The file is written 0600: it can hold a
// Postgres DSN or a Redis password.
func SaveToFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	for _, bind := range []struct {
		env string
		dst *string
	}{
		{"PROPFOLIO_STORAGE_POSTGRES_DSN", &cfg.Storage.PostgresDSN},
		{"PROPFOLIO_CACHE_REDIS_ADDR", &cfg.Cache.RedisAddr},
		{"PROPFOLIO_CACHE_REDIS_PASSWORD", &cfg.Cache.RedisPassword},
	} {
		if val := os.Getenv(bind.env); val != "" {
			*bind.dst = val
		}
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
