package normalize

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/radamhu/stremio-musortv/internal/musor"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
	edgeDashes   = regexp.MustCompile(`(^-|-$)`)
)

// diacriticFold maps the accented letters that occur in Hungarian program
// titles (plus the handful of western-European ones the source mixes in) to
// their base letters. The source corpus is closed, so a table beats pulling
// in a Unicode normalization dependency.
var diacriticFold = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ö", "o", "ő", "o",
	"ú", "u", "ü", "u", "ű", "u",
	"Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ö", "O", "Ő", "O",
	"Ú", "U", "Ü", "U", "Ű", "U",
	"à", "a", "â", "a", "ä", "a", "ç", "c", "è", "e", "ê", "e",
	"ë", "e", "î", "i", "ï", "i", "ô", "o", "û", "u", "ù", "u", "ñ", "n",
	"À", "A", "Â", "A", "Ä", "A", "Ç", "C", "È", "E", "Ê", "E",
	"Ë", "E", "Î", "I", "Ï", "I", "Ô", "O", "Û", "U", "Ù", "U", "Ñ", "N",
)

// StripDiacritics removes accent marks so searches and slugs compare on base
// letters.
func StripDiacritics(s string) string {
	return diacriticFold.Replace(s)
}

// Slugify converts a title or channel name to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(StripDiacritics(s))
	s = nonSlugChars.ReplaceAllString(s, "-")
	return edgeDashes.ReplaceAllString(s, "")
}

// IsProbablyFilm reports whether the category text describes a film rather
// than a series or other programming.
func IsProbablyFilm(category string) bool {
	if category == "" {
		return false
	}
	c := strings.ToLower(category)
	if strings.Contains(c, "sorozat") {
		return false
	}
	return strings.Contains(c, "film")
}

// genreMap pairs Hungarian category keywords with genre labels. Order
// matters: the first matching keyword wins.
var genreMap = []struct {
	keyword string
	label   string
}{
	{"akció", "Akció"},
	{"vígjáték", "Vígjáték"},
	{"dráma", "Dráma"},
	{"thriller", "Thriller"},
	{"horror", "Horror"},
	{"sci-fi", "Sci-Fi"},
	{"fantasy", "Fantasy"},
	{"kaland", "Kaland"},
	{"romantikus", "Romantikus"},
	{"bűnügyi", "Bűnügyi"},
	{"western", "Western"},
	{"háborús", "Háborús"},
	{"dokumentum", "Dokumentumfilm"},
	{"animáció", "Animáció"},
	{"családi", "Családi"},
}

// Genres maps the source's Hungarian category text onto a genre list. Only
// the part before the first comma is considered; categories outside the map
// pass through title-cased.
func Genres(category string) []string {
	if category == "" {
		return nil
	}
	base := category
	if i := strings.Index(base, ","); i >= 0 {
		base = base[:i]
	}
	lc := strings.ToLower(base)
	for _, g := range genreMap {
		if strings.Contains(lc, g.keyword) {
			return []string{g.label}
		}
	}
	return []string{titleCase(strings.TrimSpace(base))}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		for j := 1; j < len(r); j++ {
			r[j] = unicode.ToLower(r[j])
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// FormatClock renders an ISO start instant as HH:MM for release info lines.
func FormatClock(start string) string {
	t, err := time.Parse(musor.StartLayout, start)
	if err != nil {
		return ""
	}
	return t.Format("15:04")
}
