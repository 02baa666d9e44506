// Package system provides a real clock implementation.
package system

import "time"

// Clock implements musor.Clock using time.Now.
//
// Timestamps are process-local on purpose: the schedule source prints wall
// times in its own zone and the reference deployment pins TZ to match, so the
// midnight-crossing heuristic has to compare local wall clocks.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current local time.
func (Clock) Now() time.Time {
	return time.Now()
}
