// Package streams maps channel slugs to playable stream URLs. The map is
// operator supplied: a base set from the config file, overridable per
// channel through STREAM_<NAME> environment variables.
package streams

import (
	"os"
	"strings"

	"github.com/radamhu/stremio-musortv/internal/catalog"
	"github.com/radamhu/stremio-musortv/internal/normalize"
)

// Stream is a Stremio stream object.
type Stream struct {
	URL           string         `json:"url"`
	Name          string         `json:"name,omitempty"`
	Title         string         `json:"title,omitempty"`
	Description   string         `json:"description,omitempty"`
	BehaviorHints *BehaviorHints `json:"behaviorHints,omitempty"`
}

// BehaviorHints carries Stremio player hints.
type BehaviorHints struct {
	BingeGroup string `json:"bingeGroup,omitempty"`
}

// Resolver answers stream requests for catalog meta IDs.
type Resolver struct {
	urls map[string]string // channel slug -> stream URL
}

// New builds a Resolver from the configured channel map, then applies
// STREAM_<NAME> environment overrides (STREAM_RTL_KLUB covers the
// "rtl-klub" slug).
func New(configured map[string]string) *Resolver {
	urls := make(map[string]string, len(configured))
	for channel, u := range configured {
		if u == "" {
			continue
		}
		urls[normalize.Slugify(channel)] = u
	}
	for _, env := range os.Environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || value == "" {
			continue
		}
		channel, ok := strings.CutPrefix(name, "STREAM_")
		if !ok || channel == "" {
			continue
		}
		urls[normalize.Slugify(strings.ReplaceAll(channel, "_", " "))] = value
	}
	return &Resolver{urls: urls}
}

// Channels reports how many channels have a mapped stream.
func (r *Resolver) Channels() int { return len(r.urls) }

// Streams resolves the streams for a meta ID. IMDb IDs and unmapped
// channels yield an empty list; Stremio then falls through to other
// installed addons.
func (r *Resolver) Streams(id string) []Stream {
	if catalog.IsIMDbID(id) {
		return []Stream{}
	}
	parsed, err := catalog.ParseID(id)
	if err != nil {
		return []Stream{}
	}
	u, ok := r.urls[parsed.ChannelSlug]
	if !ok {
		return []Stream{}
	}
	return []Stream{{
		URL:         u,
		Name:        "Élő adás",
		Title:       channelName(parsed.ChannelSlug),
		Description: "Élő közvetítés: " + channelName(parsed.ChannelSlug),
		BehaviorHints: &BehaviorHints{
			BingeGroup: "channel-" + parsed.ChannelSlug,
		},
	}}
}

func channelName(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
