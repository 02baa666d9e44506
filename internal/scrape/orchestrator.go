// Package scrape implements the stateful fetch orchestrator: it owns the
// renderer, coalesces concurrent callers onto a single extraction run,
// enforces the minimum inter-fetch interval and tracks health counters.
package scrape

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radamhu/stremio-musortv/internal/metrics"
	"github.com/radamhu/stremio-musortv/internal/musor"
)

// Config controls orchestrator behavior.
type Config struct {
	Pages          []string
	RateLimit      time.Duration // minimum interval between genuine extractions
	NavTimeout     time.Duration // per navigation attempt
	MaxNavAttempts int
	RetryBaseDelay time.Duration // exponential backoff base
	SettleDelay    time.Duration // wait after consent for dynamic content
	ConsentTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if len(c.Pages) == 0 {
		c.Pages = musor.DefaultPages
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 30 * time.Second
	}
	if c.NavTimeout <= 0 {
		c.NavTimeout = 90 * time.Second
	}
	if c.MaxNavAttempts <= 0 {
		c.MaxNavAttempts = 3
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = 2 * time.Second
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 2 * time.Second
	}
	if c.ConsentTimeout <= 0 {
		c.ConsentTimeout = 2 * time.Second
	}
}

// run is the shared handle for one extraction; every coalesced caller waits
// on done and then reads the same result.
type run struct {
	done        chan struct{}
	listings    []musor.Listing
	err         error
	pagesFailed int
}

func (r *run) await(ctx context.Context) ([]musor.Listing, error) {
	select {
	case <-r.done:
		return r.listings, r.err
	case <-ctx.Done():
		// The run itself keeps going; other coalesced callers may still
		// depend on it.
		return nil, ctx.Err()
	}
}

type health struct {
	lastSuccessAt   time.Time
	lastErrorAt     time.Time
	lastError       string
	totalErrors     int
	consecutive     int
	lastPagesFailed int
}

// Orchestrator coordinates extraction runs against the schedule source.
// It is safe for concurrent use; at most one run is ever in flight.
type Orchestrator struct {
	cfg      Config
	renderer musor.Renderer
	clock    musor.Clock
	logger   *zap.Logger

	mu          sync.Mutex
	lastFetchAt time.Time
	active      *run
	last        *run // most recent successful run, reused inside the window
	health      health
	closed      bool
}

// New constructs an Orchestrator. The renderer is exclusively owned by the
// orchestrator from this point on.
func New(cfg Config, renderer musor.Renderer, clock musor.Clock, logger *zap.Logger) *Orchestrator {
	cfg.applyDefaults()
	return &Orchestrator{
		cfg:      cfg,
		renderer: renderer,
		clock:    clock,
		logger:   logger,
	}
}

// Fetch returns the current listing set. Non-forced callers join an active
// run when one exists, reuse the previous result inside the rate-limit
// window, and otherwise wait out the remaining window before a fresh
// extraction starts. Forced callers ignore the window but still wait for any
// active run to finish before starting their own; at most one extraction is
// ever in flight.
func (o *Orchestrator) Fetch(ctx context.Context, force bool) ([]musor.Listing, error) {
	for {
		o.mu.Lock()
		if o.closed {
			o.mu.Unlock()
			return nil, musor.ErrRendererUnavailable
		}

		if r := o.active; r != nil {
			o.mu.Unlock()
			if !force {
				return r.await(ctx)
			}
			// A forced refresh still honors single-flight: wait for the
			// active run to finish, then loop back and start a fresh one.
			_, _ = r.await(ctx)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		if !force {
			if remaining := o.windowRemaining(); remaining > 0 {
				if r := o.last; r != nil {
					o.mu.Unlock()
					return r.listings, nil
				}
				o.mu.Unlock()
				if err := sleepCtx(ctx, remaining); err != nil {
					return nil, err
				}
				// Re-examine: another caller may have launched meanwhile.
				continue
			}
		}

		r := &run{done: make(chan struct{})}
		o.active = r
		o.mu.Unlock()

		go o.execute(r)
		return r.await(ctx)
	}
}

// windowRemaining must be called with o.mu held.
func (o *Orchestrator) windowRemaining() time.Duration {
	if o.lastFetchAt.IsZero() {
		return 0
	}
	return o.cfg.RateLimit - o.clock.Now().Sub(o.lastFetchAt)
}

// execute performs one extraction on a detached context: callers abandoning
// their wait must not cancel work other waiters share.
func (o *Orchestrator) execute(r *run) {
	start := time.Now()
	listings, pagesFailed, err := o.runExtraction(context.Background())

	now := o.clock.Now()
	o.mu.Lock()
	r.listings, r.pagesFailed, r.err = listings, pagesFailed, err
	if err != nil {
		o.health.lastErrorAt = now
		o.health.lastError = err.Error()
		o.health.totalErrors++
		o.health.consecutive++
		// A failed run leaves nothing worth serving inside the window;
		// the next caller waits the window out and refetches.
		o.last = nil
	} else {
		o.lastFetchAt = now
		o.health.lastSuccessAt = now
		o.health.consecutive = 0
		o.health.lastPagesFailed = pagesFailed
		o.last = r
	}
	if o.active == r {
		o.active = nil
	}
	o.mu.Unlock()
	close(r.done)

	outcome := "success"
	if err != nil {
		outcome = "error"
		o.logger.Error("extraction run failed", zap.Error(err), zap.Duration("took", time.Since(start)))
	} else {
		o.logger.Info("extraction run complete",
			zap.Int("listings", len(listings)),
			zap.Int("pages_failed", pagesFailed),
			zap.Duration("took", time.Since(start)),
		)
	}
	metrics.ObserveRun(outcome, len(listings), pagesFailed, time.Since(start))
}

// Status returns a read-only snapshot of the orchestrator's health counters.
func (o *Orchestrator) Status() musor.HealthSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := musor.HealthSnapshot{
		Healthy:           o.health.consecutive < 3,
		Initialized:       true,
		LastError:         o.health.lastError,
		TotalErrors:       o.health.totalErrors,
		ConsecutiveErrors: o.health.consecutive,
		LastPagesFailed:   o.health.lastPagesFailed,
	}
	if !o.health.lastSuccessAt.IsZero() {
		t := o.health.lastSuccessAt
		snap.LastSuccessAt = &t
	}
	if !o.health.lastErrorAt.IsZero() {
		t := o.health.lastErrorAt
		snap.LastErrorAt = &t
	}
	return snap
}

// Close shuts the orchestrator down and releases the browser. Subsequent
// Fetch calls fail with ErrRendererUnavailable.
func (o *Orchestrator) Close(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	o.mu.Unlock()

	return o.renderer.Close(ctx)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
