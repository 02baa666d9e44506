package musor

import (
	"context"
	"errors"
	"time"
)

// ErrRendererUnavailable indicates the browser could not be acquired or has
// been shut down. Fatal to an extraction run.
var ErrRendererUnavailable = errors.New("renderer unavailable")

// ErrAllPagesFailed indicates every configured source page failed to yield
// listings during a run.
var ErrAllPagesFailed = errors.New("all source pages failed")

// Renderer produces navigable rendered documents. The orchestrator owns a
// single Renderer for its whole lifetime and opens one Document per source
// page per run.
type Renderer interface {
	NewDocument(ctx context.Context) (Document, error)
	Close(ctx context.Context) error
}

// Document is an ephemeral rendered-page handle. Callers must Close it on
// both success and failure paths.
type Document interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// AcceptConsent clicks the cookie consent button if one is present.
	// Absence is not an error.
	AcceptConsent(ctx context.Context, timeout time.Duration) error
	Query(ctx context.Context, selector string) ([]Element, error)
	Close() error
}

// Element is a handle to one matched node; sub-queries are scoped to it.
type Element interface {
	Text(ctx context.Context, selector string) (string, error)
	Attribute(ctx context.Context, selector, name string) (string, bool, error)
}
