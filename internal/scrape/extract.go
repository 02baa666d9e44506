package scrape

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/radamhu/stremio-musortv/internal/musor"
	"github.com/radamhu/stremio-musortv/internal/normalize"
)

// runExtraction scrapes every configured page, tolerating individual page
// failures. The run fails only when no page produced anything, or when the
// renderer itself is gone.
func (o *Orchestrator) runExtraction(ctx context.Context) ([]musor.Listing, int, error) {
	var all []musor.Listing
	pagesFailed := 0
	var lastErr error

	for _, url := range o.cfg.Pages {
		listings, err := o.scrapePage(ctx, url)
		if err != nil {
			if errors.Is(err, musor.ErrRendererUnavailable) {
				return nil, pagesFailed, err
			}
			pagesFailed++
			lastErr = err
			o.logger.Error("page scrape failed", zap.String("url", url), zap.Error(err))
			continue
		}
		o.logger.Info("page scraped", zap.String("url", url), zap.Int("listings", len(listings)))
		all = append(all, listings...)
	}

	if pagesFailed == len(o.cfg.Pages) {
		return nil, pagesFailed, fmt.Errorf("%w: %v", musor.ErrAllPagesFailed, lastErr)
	}
	return normalize.DedupeListings(all), pagesFailed, nil
}

func (o *Orchestrator) scrapePage(ctx context.Context, url string) ([]musor.Listing, error) {
	doc, err := o.renderer.NewDocument(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", musor.ErrRendererUnavailable, err)
	}
	defer func() {
		if closeErr := doc.Close(); closeErr != nil {
			o.logger.Warn("document close failed", zap.String("url", url), zap.Error(closeErr))
		}
	}()

	if err := o.navigateWithRetry(ctx, doc, url); err != nil {
		return nil, err
	}

	if err := doc.AcceptConsent(ctx, o.cfg.ConsentTimeout); err != nil {
		o.logger.Debug("consent click skipped", zap.String("url", url), zap.Error(err))
	}
	if err := sleepCtx(ctx, o.cfg.SettleDelay); err != nil {
		return nil, err
	}

	elements, err := doc.Query(ctx, musor.SelectorListing)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	o.logger.Debug("listing elements found", zap.String("url", url), zap.Int("count", len(elements)))

	listings := make([]musor.Listing, 0, len(elements))
	for i, el := range elements {
		listing, ok, err := o.extractListing(ctx, el)
		if err != nil {
			o.logger.Warn("listing element skipped",
				zap.String("url", url), zap.Int("index", i), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

func (o *Orchestrator) navigateWithRetry(ctx context.Context, doc musor.Document, url string) error {
	var lastErr error
	for attempt := 0; attempt < o.cfg.MaxNavAttempts; attempt++ {
		err := doc.Navigate(ctx, url, o.cfg.NavTimeout)
		if err == nil {
			return nil
		}
		lastErr = err
		o.logger.Warn("navigation attempt failed",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", o.cfg.MaxNavAttempts),
			zap.Error(err),
		)
		if attempt < o.cfg.MaxNavAttempts-1 {
			backoff := o.cfg.RetryBaseDelay * (1 << attempt)
			if err := sleepCtx(ctx, backoff); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("navigate %s after %d attempts: %w", url, o.cfg.MaxNavAttempts, lastErr)
}

// extractListing pulls the raw fields off one listing element. ok=false with
// a nil error means the entry is discarded silently (empty title).
func (o *Orchestrator) extractListing(ctx context.Context, el musor.Element) (musor.Listing, bool, error) {
	title, err := el.Text(ctx, musor.SelectorTitle)
	if err != nil {
		return musor.Listing{}, false, fmt.Errorf("title: %w", err)
	}
	title = normalize.Cleanup(title)
	if title == "" {
		return musor.Listing{}, false, nil
	}

	timeText, err := el.Text(ctx, musor.SelectorTime)
	if err != nil {
		return musor.Listing{}, false, fmt.Errorf("time: %w", err)
	}

	channel, _, err := el.Attribute(ctx, musor.SelectorChannel, "alt")
	if err != nil {
		return musor.Listing{}, false, fmt.Errorf("channel: %w", err)
	}

	category, err := el.Text(ctx, musor.SelectorCategory)
	if err != nil {
		return musor.Listing{}, false, fmt.Errorf("category: %w", err)
	}

	poster, _, err := el.Attribute(ctx, musor.SelectorPoster, "src")
	if err != nil {
		return musor.Listing{}, false, fmt.Errorf("poster: %w", err)
	}

	return musor.Listing{
		Title:    title,
		Start:    normalize.InferStart(normalize.Cleanup(timeText), o.clock.Now()),
		Channel:  normalize.Cleanup(channel),
		Category: normalize.Cleanup(category),
		Poster:   normalize.Absolutize(poster),
	}, true, nil
}
