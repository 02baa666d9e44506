package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/radamhu/stremio-musortv/internal/musor"
	"github.com/radamhu/stremio-musortv/internal/normalize"
)

const idPrefix = "musortv"

// MetaID derives the addon's content ID for a listing:
// musortv:<channel-slug>:<unix-start>:<title-slug>.
func MetaID(l musor.Listing) string {
	ts := int64(0)
	if t, err := time.ParseInLocation(musor.StartLayout, l.Start, time.Local); err == nil {
		ts = t.Unix()
	}
	return fmt.Sprintf("%s:%s:%d:%s", idPrefix, normalize.Slugify(l.Channel), ts, normalize.Slugify(l.Title))
}

// ParsedID holds the components of an addon content ID.
type ParsedID struct {
	ChannelSlug string
	Unix        int64
	TitleSlug   string
}

// ParseID splits an addon content ID back into its components.
func ParseID(id string) (ParsedID, error) {
	parts := strings.Split(id, ":")
	if len(parts) != 4 || parts[0] != idPrefix {
		return ParsedID{}, fmt.Errorf("malformed content id %q", id)
	}
	ts, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return ParsedID{}, fmt.Errorf("malformed timestamp in content id %q", id)
	}
	return ParsedID{ChannelSlug: parts[1], Unix: ts, TitleSlug: parts[3]}, nil
}

// IsIMDbID reports whether id looks like an IMDb identifier (tt1234567).
func IsIMDbID(id string) bool {
	if !strings.HasPrefix(id, "tt") || len(id) <= 2 {
		return false
	}
	for _, r := range id[2:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Matches reports whether a listing corresponds to the parsed ID.
func (p ParsedID) Matches(l musor.Listing) bool {
	t, err := time.ParseInLocation(musor.StartLayout, l.Start, time.Local)
	if err != nil {
		return false
	}
	return normalize.Slugify(l.Channel) == p.ChannelSlug &&
		t.Unix() == p.Unix &&
		normalize.Slugify(l.Title) == p.TitleSlug
}
