package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/radamhu/stremio-musortv/internal/musor"
	"github.com/radamhu/stremio-musortv/internal/normalize"
)

// Meta serves one meta request. It accepts both IMDb IDs handed out by the
// enriched catalog and the addon's own content IDs. A nil result means the
// item is unknown.
func (s *Service) Meta(ctx context.Context, contentType, id string) *Meta {
	if contentType != ContentType {
		return nil
	}

	if IsIMDbID(id) {
		// The enriched catalog already carries everything we know.
		for _, m := range s.Catalog(ctx, ContentType, CatalogID, PresetNow, "") {
			if m.ID == id {
				return &Meta{MetaPreview: m}
			}
		}
		s.logger.Debug("no catalog entry for imdb id", zap.String("id", id))
		return nil
	}

	parsed, err := ParseID(id)
	if err != nil {
		s.logger.Warn("meta request with malformed id", zap.String("id", id), zap.Error(err))
		return nil
	}

	raw, err := s.fetcher.Fetch(ctx, false)
	if err != nil {
		s.logger.Error("meta fetch failed", zap.Error(err))
		return nil
	}

	for _, l := range raw {
		if !normalize.IsProbablyFilm(l.Category) || !parsed.Matches(l) {
			continue
		}
		return s.detail(id, l)
	}
	s.logger.Debug("no listing matches meta id", zap.String("id", id))
	return nil
}

func (s *Service) detail(id string, l musor.Listing) *Meta {
	start, _ := time.ParseInLocation(musor.StartLayout, l.Start, time.Local)
	timeStr := start.Format("15:04")
	dateStr := start.Format("2006.01.02")

	var description strings.Builder
	fmt.Fprintf(&description, "Csatorna: %s\n", l.Channel)
	fmt.Fprintf(&description, "Kezdés: %s %s\n", dateStr, timeStr)
	if l.Category != "" {
		fmt.Fprintf(&description, "Műfaj: %s\n", l.Category)
	}
	description.WriteString("Élő adás a magyar TV-ből")

	return &Meta{MetaPreview: MetaPreview{
		ID:          id,
		Type:        ContentType,
		Name:        l.Title,
		ReleaseInfo: dateStr + " • " + timeStr,
		Poster:      l.Poster,
		Background:  l.Poster,
		Genres:      normalize.Genres(l.Category),
		Description: description.String(),
	}}
}
