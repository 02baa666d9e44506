// Package fixed provides a settable clock for tests.
package fixed

import (
	"sync"
	"time"
)

// Clock implements musor.Clock with a manually controlled instant.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// At creates a clock frozen at t.
func At(t time.Time) *Clock {
	return &Clock{now: t}
}

// Now returns the configured instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
