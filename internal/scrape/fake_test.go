package scrape

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/radamhu/stremio-musortv/internal/musor"
)

// fakeElement serves canned text/attribute values per selector.
type fakeElement struct {
	texts map[string]string
	attrs map[string]string // selector + "|" + name
	errs  map[string]error
}

func (e *fakeElement) Text(_ context.Context, selector string) (string, error) {
	if err, ok := e.errs[selector]; ok {
		return "", err
	}
	return e.texts[selector], nil
}

func (e *fakeElement) Attribute(_ context.Context, selector, name string) (string, bool, error) {
	key := selector + "|" + name
	if err, ok := e.errs[key]; ok {
		return "", false, err
	}
	v, ok := e.attrs[key]
	return v, ok, nil
}

// fakeDoc is one page worth of canned behavior.
type fakeDoc struct {
	navFailures int // first N navigations fail
	navErr      error
	navGate     chan struct{} // when set, Navigate blocks until closed
	elements    []musor.Element
	queryErr    error

	navCalls int32
	closed   atomic.Bool
}

func (d *fakeDoc) Navigate(ctx context.Context, _ string, _ time.Duration) error {
	n := atomic.AddInt32(&d.navCalls, 1)
	if d.navGate != nil {
		select {
		case <-d.navGate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if int(n) <= d.navFailures {
		if d.navErr != nil {
			return d.navErr
		}
		return errors.New("nav failed")
	}
	return nil
}

func (d *fakeDoc) AcceptConsent(context.Context, time.Duration) error { return nil }

func (d *fakeDoc) Query(context.Context, string) ([]musor.Element, error) {
	if d.queryErr != nil {
		return nil, d.queryErr
	}
	return d.elements, nil
}

func (d *fakeDoc) Close() error {
	d.closed.Store(true)
	return nil
}

// fakeRenderer hands out docs in order, cycling when exhausted.
type fakeRenderer struct {
	mu       sync.Mutex
	docs     []*fakeDoc
	next     int
	newErr   error
	docCalls int32
	closed   bool
}

func (r *fakeRenderer) NewDocument(context.Context) (musor.Document, error) {
	atomic.AddInt32(&r.docCalls, 1)
	if r.newErr != nil {
		return nil, r.newErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.docs) == 0 {
		return &fakeDoc{}, nil
	}
	d := r.docs[r.next%len(r.docs)]
	r.next++
	return d, nil
}

func (r *fakeRenderer) Close(context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

func listingElement(title, timeText, channel, category, poster string) *fakeElement {
	el := &fakeElement{
		texts: map[string]string{
			musor.SelectorTitle:    title,
			musor.SelectorTime:     timeText,
			musor.SelectorCategory: category,
		},
		attrs: map[string]string{},
		errs:  map[string]error{},
	}
	if channel != "" {
		el.attrs[musor.SelectorChannel+"|alt"] = channel
	}
	if poster != "" {
		el.attrs[musor.SelectorPoster+"|src"] = poster
	}
	return el
}

func fastConfig(pages ...string) Config {
	return Config{
		Pages:          pages,
		RateLimit:      time.Hour, // tests opt in to shorter windows explicitly
		NavTimeout:     time.Second,
		MaxNavAttempts: 3,
		RetryBaseDelay: time.Millisecond,
		SettleDelay:    time.Millisecond,
		ConsentTimeout: time.Millisecond,
	}
}
