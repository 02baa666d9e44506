// Package config loads and validates addon configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig      `mapstructure:"server"`
	Scrape  ScrapeConfig      `mapstructure:"scrape"`
	Catalog CatalogConfig     `mapstructure:"catalog"`
	TMDB    TMDBConfig        `mapstructure:"tmdb"`
	Streams map[string]string `mapstructure:"streams"`
	Logging LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// ScrapeConfig governs the fetch orchestrator.
type ScrapeConfig struct {
	Pages             []string `mapstructure:"pages"`
	RateLimitMs       int      `mapstructure:"rate_limit_ms"`
	NavTimeoutSeconds int      `mapstructure:"nav_timeout_seconds"`
	UserAgent         string   `mapstructure:"user_agent"`
}

// RateLimit returns the minimum inter-fetch interval.
func (c ScrapeConfig) RateLimit() time.Duration {
	return time.Duration(c.RateLimitMs) * time.Millisecond
}

// NavTimeout returns the per-navigation-attempt timeout.
func (c ScrapeConfig) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutSeconds) * time.Second
}

// CatalogConfig governs the catalog response cache.
type CatalogConfig struct {
	CacheTTLMin int `mapstructure:"cache_ttl_min"`
}

// TTL returns the catalog cache lifetime.
func (c CatalogConfig) TTL() time.Duration {
	return time.Duration(c.CacheTTLMin) * time.Minute
}

// TMDBConfig controls the optional IMDb-ID enrichment client.
type TMDBConfig struct {
	APIKey          string `mapstructure:"api_key"`
	Enabled         bool   `mapstructure:"enabled"`
	RateLimitPerSec int    `mapstructure:"rate_limit_per_sec"`
	CacheTTLDays    int    `mapstructure:"cache_ttl_days"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MUSORTV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 7000)
	v.SetDefault("scrape.rate_limit_ms", 30000)
	v.SetDefault("scrape.nav_timeout_seconds", 90)
	v.SetDefault("scrape.user_agent",
		"Mozilla/5.0 (compatible; StremioHU/1.0; +https://github.com/radamhu/stremio-musortv)")
	v.SetDefault("catalog.cache_ttl_min", 10)
	v.SetDefault("tmdb.enabled", true)
	v.SetDefault("tmdb.rate_limit_per_sec", 40)
	v.SetDefault("tmdb.cache_ttl_days", 7)
	v.SetDefault("logging.development", true)
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Scrape.RateLimitMs < 0 {
		return fmt.Errorf("scrape rate limit must be >= 0, got %d", c.Scrape.RateLimitMs)
	}
	if c.Scrape.NavTimeoutSeconds <= 0 {
		return fmt.Errorf("scrape nav timeout must be > 0, got %d", c.Scrape.NavTimeoutSeconds)
	}
	if c.Catalog.CacheTTLMin <= 0 {
		return fmt.Errorf("catalog cache ttl must be > 0, got %d", c.Catalog.CacheTTLMin)
	}
	if c.TMDB.Enabled && c.TMDB.RateLimitPerSec <= 0 {
		return fmt.Errorf("tmdb rate limit must be > 0, got %d", c.TMDB.RateLimitPerSec)
	}
	return nil
}
