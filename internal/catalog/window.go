package catalog

import (
	"time"

	"github.com/radamhu/stremio-musortv/internal/musor"
)

// Preset names a relative viewing window.
type Preset string

// Supported time presets.
const (
	PresetNow     Preset = "now"
	PresetNext2h  Preset = "next2h"
	PresetTonight Preset = "tonight"
)

// Window is an inclusive time range in the process-local zone.
type Window struct {
	Start time.Time
	End   time.Time
}

// ComputeWindow resolves a preset relative to now. Unknown presets behave
// like "now".
func ComputeWindow(preset Preset, now time.Time) Window {
	switch preset {
	case PresetNext2h:
		return Window{Start: now, End: now.Add(2 * time.Hour)}
	case PresetTonight:
		y, m, d := now.Date()
		return Window{
			Start: time.Date(y, m, d, 18, 0, 0, 0, now.Location()),
			End:   time.Date(y, m, d, 23, 59, 59, 0, now.Location()),
		}
	default:
		return Window{Start: now, End: now.Add(90 * time.Minute)}
	}
}

// Contains reports whether the listing's start instant falls inside the
// window. Malformed instants are excluded rather than erroring.
func (w Window) Contains(start string) bool {
	t, err := time.ParseInLocation(musor.StartLayout, start, w.Start.Location())
	if err != nil {
		return false
	}
	return !t.Before(w.Start) && !t.After(w.End)
}
