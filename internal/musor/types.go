// Package musor defines core types shared across the addon subsystems.
package musor

import (
	"time"
)

// Origin is the scheme+host all relative source URLs are resolved against.
const Origin = "https://musor.tv"

// DefaultPages are the schedule pages scraped by the reference deployment.
var DefaultPages = []string{
	Origin + "/most/tvben",
	Origin + "/filmek",
}

// Selectors for the musor.tv listing markup.
const (
	SelectorListing  = "table.showeventtable"
	SelectorTitle    = ".showeventtitle a"
	SelectorTime     = ".showeventtime"
	SelectorChannel  = ".showeventchannel img"
	SelectorCategory = `td[itemprop="description"]`
	SelectorPoster   = "img.showeventimg"
)

// Listing is one scraped program entry. Instances are built once per parsed
// listing element during an extraction pass and never mutated afterwards.
type Listing struct {
	Title    string `json:"title"`
	Start    string `json:"start"` // ISO-8601 local datetime, no offset
	Channel  string `json:"channel"`
	Category string `json:"category,omitempty"`
	Poster   string `json:"poster,omitempty"` // absolute URL when present
}

// StartLayout is the serialization layout for Listing.Start. The first 16
// characters cover date+hour+minute, which is what dedup keys truncate to.
const StartLayout = "2006-01-02T15:04:05"

// HealthSnapshot is a read-only view of the orchestrator's health counters.
type HealthSnapshot struct {
	Healthy           bool       `json:"healthy"`
	Initialized       bool       `json:"initialized"`
	LastSuccessAt     *time.Time `json:"last_success_at,omitempty"`
	LastErrorAt       *time.Time `json:"last_error_at,omitempty"`
	LastError         string     `json:"last_error,omitempty"`
	TotalErrors       int        `json:"total_errors"`
	ConsecutiveErrors int        `json:"consecutive_errors"`
	LastPagesFailed   int        `json:"last_pages_failed"`
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
