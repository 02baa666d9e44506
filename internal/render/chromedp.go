// Package render implements the renderer adapter on headless Chrome via
// chromedp. One browser is shared across runs; each Document is a tab.
package render

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/radamhu/stremio-musortv/internal/musor"
)

// Config controls browser behavior.
type Config struct {
	UserAgent string
}

// Chromedp implements musor.Renderer.
type Chromedp struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	logger        *zap.Logger
}

// NewChromedp launches and warms up a headless browser.
func NewChromedp(cfg Config, logger *zap.Logger) (*Chromedp, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-first-run", true),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	logger.Info("headless browser initialized")
	return &Chromedp{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		logger:        logger,
	}, nil
}

// NewDocument opens a fresh tab.
func (r *Chromedp) NewDocument(_ context.Context) (musor.Document, error) {
	if r.browserCtx.Err() != nil {
		return nil, fmt.Errorf("%w: %v", musor.ErrRendererUnavailable, r.browserCtx.Err())
	}
	tabCtx, tabCancel := chromedp.NewContext(r.browserCtx)
	return &document{ctx: tabCtx, cancel: tabCancel}, nil
}

// Close tears down the browser and allocator contexts.
func (r *Chromedp) Close(_ context.Context) error {
	r.browserCancel()
	r.allocCancel()
	r.logger.Info("headless browser closed")
	return nil
}

const (
	// Budget for element-level CDP round trips.
	queryTimeout = 10 * time.Second
	fieldTimeout = 2 * time.Second
)

type document struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func (d *document) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	navCtx, cancel := context.WithTimeout(d.ctx, timeout)
	defer cancel()
	stop := forwardCancel(ctx, cancel)
	defer stop()

	tasks := chromedp.Tasks{
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if err := chromedp.Run(navCtx, tasks); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// consentClickJS clicks the first button whose label matches the consent
// dialog; CSS alone cannot select on button text.
const consentClickJS = `(() => {
	const labels = ["elfogadom", "accept"];
	for (const b of document.querySelectorAll("button")) {
		const t = (b.textContent || "").trim().toLowerCase();
		if (labels.some((l) => t.includes(l))) {
			b.click();
			return true;
		}
	}
	return false;
})()`

func (d *document) AcceptConsent(ctx context.Context, timeout time.Duration) error {
	clickCtx, cancel := context.WithTimeout(d.ctx, timeout)
	defer cancel()
	stop := forwardCancel(ctx, cancel)
	defer stop()

	var clicked bool
	if err := chromedp.Run(clickCtx, chromedp.Evaluate(consentClickJS, &clicked)); err != nil {
		return fmt.Errorf("consent click: %w", err)
	}
	return nil
}

func (d *document) Query(ctx context.Context, selector string) ([]musor.Element, error) {
	queryCtx, cancel := context.WithTimeout(d.ctx, queryTimeout)
	defer cancel()
	stop := forwardCancel(ctx, cancel)
	defer stop()

	var nodes []*cdp.Node
	err := chromedp.Run(queryCtx,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}

	elements := make([]musor.Element, len(nodes))
	for i, n := range nodes {
		elements[i] = &element{doc: d, xpath: n.FullXPath()}
	}
	return elements, nil
}

func (d *document) Close() error {
	d.cancel()
	return nil
}

type element struct {
	doc   *document
	xpath string
}

// fieldResult carries sub-element lookups back from the page. Absent
// sub-elements are not errors; OK distinguishes "missing" from "empty".
type fieldResult struct {
	OK  bool   `json:"ok"`
	Val string `json:"val"`
}

func (e *element) Text(ctx context.Context, selector string) (string, error) {
	res, err := e.eval(ctx, fmt.Sprintf(`(() => {
		const base = document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		if (!base) return { ok: false, val: "" };
		const el = base.querySelector(%q);
		return el ? { ok: true, val: el.textContent || "" } : { ok: false, val: "" };
	})()`, e.xpath, selector))
	if err != nil {
		return "", err
	}
	return res.Val, nil
}

func (e *element) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	res, err := e.eval(ctx, fmt.Sprintf(`(() => {
		const base = document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		if (!base) return { ok: false, val: "" };
		const el = base.querySelector(%q);
		if (!el || !el.hasAttribute(%q)) return { ok: false, val: "" };
		return { ok: true, val: el.getAttribute(%q) };
	})()`, e.xpath, selector, name, name))
	if err != nil {
		return "", false, err
	}
	return res.Val, res.OK, nil
}

func (e *element) eval(ctx context.Context, expr string) (fieldResult, error) {
	evalCtx, cancel := context.WithTimeout(e.doc.ctx, fieldTimeout)
	defer cancel()
	stop := forwardCancel(ctx, cancel)
	defer stop()

	var res fieldResult
	if err := chromedp.Run(evalCtx, chromedp.Evaluate(expr, &res)); err != nil {
		return fieldResult{}, fmt.Errorf("evaluate field: %w", err)
	}
	return res, nil
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
