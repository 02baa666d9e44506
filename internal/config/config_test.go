package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 7000, cfg.Server.Port)
	require.Equal(t, 30*time.Second, cfg.Scrape.RateLimit())
	require.Equal(t, 90*time.Second, cfg.Scrape.NavTimeout())
	require.Equal(t, 10*time.Minute, cfg.Catalog.TTL())
	require.True(t, cfg.TMDB.Enabled)
	require.Equal(t, 7, cfg.TMDB.CacheTTLDays)
	require.True(t, cfg.Logging.Development)
	require.Empty(t, cfg.Scrape.Pages)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MUSORTV_SERVER_PORT", "8123")
	t.Setenv("MUSORTV_SCRAPE_RATE_LIMIT_MS", "5000")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 8123, cfg.Server.Port)
	require.Equal(t, 5*time.Second, cfg.Scrape.RateLimit())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9000
scrape:
  pages:
    - https://musor.tv/most/tvben
streams:
  rtl: https://example.com/rtl.m3u8
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, []string{"https://musor.tv/most/tvben"}, cfg.Scrape.Pages)
	require.Equal(t, "https://example.com/rtl.m3u8", cfg.Streams["rtl"])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() Config {
		return Config{
			Server:  ServerConfig{Port: 7000},
			Scrape:  ScrapeConfig{RateLimitMs: 30000, NavTimeoutSeconds: 90},
			Catalog: CatalogConfig{CacheTTLMin: 10},
			TMDB:    TMDBConfig{Enabled: true, RateLimitPerSec: 40},
		}
	}

	require.NoError(t, base().Validate())

	bad := base()
	bad.Server.Port = 0
	require.Error(t, bad.Validate())

	bad = base()
	bad.Scrape.RateLimitMs = -1
	require.Error(t, bad.Validate())

	bad = base()
	bad.Catalog.CacheTTLMin = 0
	require.Error(t, bad.Validate())

	bad = base()
	bad.TMDB.RateLimitPerSec = 0
	require.Error(t, bad.Validate())

	disabled := base()
	disabled.TMDB.Enabled = false
	disabled.TMDB.RateLimitPerSec = 0
	require.NoError(t, disabled.Validate())
}
