// Package catalog turns scraped listings into Stremio catalog and meta
// responses, with a TTL cache in front of the fetch orchestrator.
package catalog

import (
	"context"

	"github.com/radamhu/stremio-musortv/internal/musor"
)

// MetaPreview is the Stremio catalog entry format.
type MetaPreview struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	ReleaseInfo string   `json:"releaseInfo,omitempty"`
	Poster      string   `json:"poster,omitempty"`
	Background  string   `json:"background,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Meta is the detailed Stremio metadata format.
type Meta struct {
	MetaPreview
	Runtime string `json:"runtime,omitempty"`
}

// ContentType and CatalogID identify the single catalog this addon serves.
const (
	ContentType = "movie"
	CatalogID   = "hu-live"
)

// Fetcher is the orchestrator surface the catalog depends on.
type Fetcher interface {
	Fetch(ctx context.Context, force bool) ([]musor.Listing, error)
}

// Enricher resolves a title to an IMDb ID; implementations may answer from
// cache or an external service. A nil Enricher disables enrichment.
type Enricher interface {
	IMDbID(ctx context.Context, title string) (string, bool)
}
