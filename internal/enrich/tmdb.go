// Package enrich resolves listing titles to IMDb IDs through TMDB, so
// stream-provider addons can match catalog entries. Lookups are rate
// limited, cached (negatives included) and coalesced per title; failures
// degrade to "no ID" and never surface to the catalog.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/radamhu/stremio-musortv/internal/metrics"
	"github.com/radamhu/stremio-musortv/internal/normalize"
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"
	requestTimeout = 5 * time.Second
	cacheMaxSize   = 1000
)

// Config controls the TMDB client.
type Config struct {
	APIKey          string
	BaseURL         string
	RateLimitPerSec int
	CacheTTL        time.Duration
	HTTPClient      *http.Client
}

// Client implements catalog.Enricher against the TMDB API.
type Client struct {
	apiKey  string
	baseURL string
	bearer  bool
	http    *http.Client
	limiter *rate.Limiter
	group   singleflight.Group
	cache   *expirable.LRU[string, string] // "" caches a failed lookup
	logger  *zap.Logger
}

// New constructs a Client. Returns nil when no API key is configured;
// callers treat a nil *Client as enrichment disabled.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.APIKey == "" {
		return nil
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.RateLimitPerSec <= 0 {
		cfg.RateLimitPerSec = 40
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 7 * 24 * time.Hour
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		bearer:  strings.HasPrefix(cfg.APIKey, "eyJ"), // JWT access tokens
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitPerSec), 1),
		cache:   expirable.NewLRU[string, string](cacheMaxSize, nil, cfg.CacheTTL),
		logger:  logger,
	}
}

// IMDbID resolves a title. ok=false means no ID is known, whether because
// TMDB has none or because the lookup failed.
func (c *Client) IMDbID(ctx context.Context, title string) (string, bool) {
	key := normalizeTitle(title)
	if key == "" {
		return "", false
	}

	if id, ok := c.cache.Get(key); ok {
		metrics.ObserveTMDBLookup("cache")
		return id, id != ""
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		id, err := c.lookup(ctx, title)
		if err != nil {
			return "", err
		}
		// Negative results are cached too, so a title TMDB does not know
		// costs one request per TTL rather than one per catalog build.
		c.cache.Add(key, id)
		return id, nil
	})
	if err != nil {
		metrics.ObserveTMDBLookup("error")
		c.logger.Warn("imdb lookup failed", zap.String("title", title), zap.Error(err))
		return "", false
	}

	id := v.(string)
	if id == "" {
		metrics.ObserveTMDBLookup("miss")
		return "", false
	}
	metrics.ObserveTMDBLookup("hit")
	return id, true
}

func (c *Client) lookup(ctx context.Context, title string) (string, error) {
	tmdbID, err := c.searchMovie(ctx, title, "hu-HU")
	if err != nil {
		return "", err
	}
	if tmdbID == 0 {
		// Hungarian titles often index under the English release name.
		if tmdbID, err = c.searchMovie(ctx, title, "en-US"); err != nil {
			return "", err
		}
	}
	if tmdbID == 0 {
		return "", nil
	}
	return c.externalIMDbID(ctx, tmdbID)
}

type searchResponse struct {
	Results []struct {
		ID int `json:"id"`
	} `json:"results"`
}

func (c *Client) searchMovie(ctx context.Context, title, language string) (int, error) {
	params := url.Values{
		"query":    {title},
		"language": {language},
	}
	var resp searchResponse
	if err := c.get(ctx, "/search/movie", params, &resp); err != nil {
		return 0, err
	}
	if len(resp.Results) == 0 {
		return 0, nil
	}
	return resp.Results[0].ID, nil
}

type externalIDsResponse struct {
	IMDbID string `json:"imdb_id"`
}

func (c *Client) externalIMDbID(ctx context.Context, tmdbID int) (string, error) {
	var resp externalIDsResponse
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/external_ids", tmdbID), url.Values{}, &resp); err != nil {
		return "", err
	}
	return resp.IMDbID, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("tmdb rate limit wait: %w", err)
	}

	if !c.bearer {
		params.Set("api_key", c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build tmdb request: %w", err)
	}
	if c.bearer {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb status %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tmdb response: %w", err)
	}
	return nil
}

func normalizeTitle(title string) string {
	return normalize.StripDiacritics(strings.ToLower(strings.TrimSpace(title)))
}
