// Package normalize contains the pure record-normalization functions applied
// to scraped listing fields: whitespace cleanup, URL absolutization,
// start-instant inference and deduplication.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/radamhu/stremio-musortv/internal/musor"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	fullDateTime  = regexp.MustCompile(`(\d{4})\.(\d{2})\.(\d{2})\s+(\d{1,2}):(\d{2})`)
	clockOnly     = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

// Cleanup collapses whitespace runs to single spaces and trims the ends.
func Cleanup(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Absolutize resolves a possibly-relative image URL against the source
// origin. Already-absolute URLs pass through unchanged.
func Absolutize(src string) string {
	if src == "" {
		return ""
	}
	if strings.HasPrefix(src, "http") {
		return src
	}
	if strings.HasPrefix(src, "/") {
		return musor.Origin + src
	}
	return musor.Origin + "/" + src
}

// InferStart resolves the source's time text into an ISO-8601 local datetime.
//
// Full "YYYY.MM.DD HH:MM" stamps are taken verbatim. Bare "HH:MM" stamps are
// combined with today's date; if that naive candidate lies strictly more than
// 12 hours in the past it is advanced one day, since the schedule lists
// late-night programs under "today" even when they start after midnight.
// Text with no recognizable time at all falls back to now.
func InferStart(text string, now time.Time) string {
	if m := fullDateTime.FindStringSubmatch(text); m != nil {
		d := time.Date(atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3]),
			atoi(m[4]), atoi(m[5]), 0, 0, now.Location())
		return d.Format(musor.StartLayout)
	}

	if m := clockOnly.FindStringSubmatch(text); m != nil {
		d := time.Date(now.Year(), now.Month(), now.Day(),
			atoi(m[1]), atoi(m[2]), 0, 0, now.Location())
		if d.Sub(now) < -12*time.Hour {
			d = d.AddDate(0, 0, 1)
		}
		return d.Format(musor.StartLayout)
	}

	return now.Format(musor.StartLayout)
}

// DedupeListings drops near-identical listings, keeping the first occurrence
// of each key and the original order. The key truncates the start instant to
// minute granularity so seconds never split otherwise-identical entries.
func DedupeListings(in []musor.Listing) []musor.Listing {
	seen := make(map[string]struct{}, len(in))
	out := make([]musor.Listing, 0, len(in))
	for _, l := range in {
		key := DedupeKey(l)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, l)
	}
	return out
}

// DedupeKey derives the identity used by DedupeListings.
func DedupeKey(l musor.Listing) string {
	start := l.Start
	if len(start) > 16 {
		start = start[:16]
	}
	return l.Title + "|" + l.Channel + "|" + start
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
