package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/radamhu/stremio-musortv/internal/catalog"
)

// Version is the addon manifest version.
const Version = "1.2.0"

type manifestCatalogExtra struct {
	Name    string   `json:"name"`
	Options []string `json:"options,omitempty"`
}

type manifestCatalog struct {
	Type  string                 `json:"type"`
	ID    string                 `json:"id"`
	Name  string                 `json:"name"`
	Extra []manifestCatalogExtra `json:"extra,omitempty"`
}

type manifest struct {
	ID            string            `json:"id"`
	Version       string            `json:"version"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Resources     []string          `json:"resources"`
	Types         []string          `json:"types"`
	IDPrefixes    []string          `json:"idPrefixes"`
	Catalogs      []manifestCatalog `json:"catalogs"`
	BehaviorHints map[string]bool   `json:"behaviorHints,omitempty"`
}

func (s *Server) manifest(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, manifest{
		ID:          "hu.live.movies",
		Version:     Version,
		Name:        "Mozifilmek a TV-ben",
		Description: "Magyar TV-csatornákon éppen futó és hamarosan kezdődő mozifilmek a musor.tv műsorújság alapján.",
		Resources:   []string{"catalog", "meta", "stream"},
		Types:       []string{catalog.ContentType},
		IDPrefixes:  []string{"musortv", "tt"},
		Catalogs: []manifestCatalog{{
			Type: catalog.ContentType,
			ID:   catalog.CatalogID,
			Name: "Mozifilmek a TV-ben",
			Extra: []manifestCatalogExtra{
				{Name: "search"},
				{Name: "time", Options: []string{
					string(catalog.PresetNow),
					string(catalog.PresetNext2h),
					string(catalog.PresetTonight),
				}},
			},
		}},
		BehaviorHints: map[string]bool{"configurable": false},
	})
}

func (s *Server) catalogHandler(w http.ResponseWriter, r *http.Request) {
	contentType := chi.URLParam(r, "type")
	catalogID := chi.URLParam(r, "id")
	preset, search := parseExtra(chi.URLParam(r, "extra"))

	if contentType != catalog.ContentType || catalogID != catalog.CatalogID {
		s.writeError(w, http.StatusNotFound, "unknown catalog")
		return
	}

	metas := s.catalog.Catalog(r.Context(), contentType, catalogID, preset, search)
	s.writeJSON(w, http.StatusOK, map[string]any{"metas": metas})
}

func (s *Server) metaHandler(w http.ResponseWriter, r *http.Request) {
	contentType := chi.URLParam(r, "type")
	id := chi.URLParam(r, "id")

	meta := s.catalog.Meta(r.Context(), contentType, id)
	if meta == nil {
		// Stremio treats an empty meta as "not ours", letting other addons
		// answer for the same ID.
		s.writeJSON(w, http.StatusOK, map[string]any{"meta": nil})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"meta": meta})
}

func (s *Server) streamHandler(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "type") != catalog.ContentType {
		s.writeJSON(w, http.StatusOK, map[string]any{"streams": []any{}})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"streams": s.streams.Streams(chi.URLParam(r, "id")),
	})
}

// parseExtra splits a Stremio extra path segment such as
// "search=m%C3%A1trix&time=next2h" into the known properties.
func parseExtra(extra string) (catalog.Preset, string) {
	if extra == "" {
		return "", ""
	}
	if unescaped, err := url.PathUnescape(extra); err == nil {
		extra = unescaped
	}
	values, err := url.ParseQuery(extra)
	if err != nil {
		return "", ""
	}
	// Unknown time values would each earn a cache entry, so only the
	// advertised presets pass through.
	preset := catalog.Preset(values.Get("time"))
	switch preset {
	case catalog.PresetNow, catalog.PresetNext2h, catalog.PresetTonight:
	default:
		preset = ""
	}
	return preset, values.Get("search")
}
