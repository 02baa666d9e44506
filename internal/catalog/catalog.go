package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/radamhu/stremio-musortv/internal/musor"
	"github.com/radamhu/stremio-musortv/internal/normalize"
)

const cacheSize = 64

// Service builds catalog responses from the orchestrator's listings.
type Service struct {
	fetcher  Fetcher
	enricher Enricher
	clock    musor.Clock
	logger   *zap.Logger
	cache    *expirable.LRU[string, []MetaPreview]
}

// NewService constructs a Service. enricher may be nil.
func NewService(fetcher Fetcher, enricher Enricher, clock musor.Clock, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{
		fetcher:  fetcher,
		enricher: enricher,
		clock:    clock,
		logger:   logger,
		cache:    expirable.NewLRU[string, []MetaPreview](cacheSize, nil, ttl),
	}
}

// Catalog serves one catalog request. Scrape failures degrade to an empty
// catalog; they are never cached, so the next request retries.
func (s *Service) Catalog(ctx context.Context, contentType, catalogID string, preset Preset, search string) []MetaPreview {
	if contentType != ContentType || catalogID != CatalogID {
		return []MetaPreview{}
	}
	if preset == "" {
		preset = PresetNow
	}

	cacheKey := "catalog:" + string(preset)
	metas, ok := s.cache.Get(cacheKey)
	if !ok {
		metas = s.build(ctx, preset)
		if metas != nil {
			s.cache.Add(cacheKey, metas)
		}
	}

	if search = strings.TrimSpace(search); search != "" {
		needle := strings.ToLower(normalize.StripDiacritics(search))
		filtered := make([]MetaPreview, 0, len(metas))
		for _, m := range metas {
			if strings.Contains(strings.ToLower(normalize.StripDiacritics(m.Name)), needle) {
				filtered = append(filtered, m)
			}
		}
		metas = filtered
	}

	if metas == nil {
		metas = []MetaPreview{}
	}
	return metas
}

// build returns nil on scrape failure so the caller can skip caching.
func (s *Service) build(ctx context.Context, preset Preset) []MetaPreview {
	raw, err := s.fetcher.Fetch(ctx, false)
	if err != nil {
		s.logger.Error("catalog fetch failed", zap.Error(err))
		return nil
	}

	window := ComputeWindow(preset, s.clock.Now())
	metas := make([]MetaPreview, 0, len(raw))
	for _, l := range raw {
		if !normalize.IsProbablyFilm(l.Category) || !window.Contains(l.Start) {
			continue
		}
		metas = append(metas, s.preview(ctx, l))
	}
	s.logger.Info("catalog built",
		zap.String("preset", string(preset)),
		zap.Int("listings", len(raw)),
		zap.Int("metas", len(metas)),
	)
	return metas
}

func (s *Service) preview(ctx context.Context, l musor.Listing) MetaPreview {
	id := MetaID(l)
	if s.enricher != nil {
		if imdbID, ok := s.enricher.IMDbID(ctx, l.Title); ok {
			id = imdbID
		}
	}
	return MetaPreview{
		ID:          id,
		Type:        ContentType,
		Name:        l.Title,
		ReleaseInfo: normalize.FormatClock(l.Start) + " • " + l.Channel,
		Poster:      l.Poster,
		Genres:      normalize.Genres(l.Category),
	}
}
