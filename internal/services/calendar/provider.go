package calendar

import (
	"context"
	"time"
)

// Row is one raw calendar entry as returned by a provider. Providers with
// different response shapes each normalize into this record so the workflow
// stays provider-agnostic.
type Row struct {
	Date       string         `json:"date"`
	Country    string         `json:"country"`
	Category   string         `json:"category"`
	Event      string         `json:"event"`
	Actual     string         `json:"actual"`
	Consensus  string         `json:"consensus"`
	Previous   string         `json:"previous"`
	Importance string         `json:"importance"`
	Currency   string         `json:"currency"`
	CalendarID string         `json:"calendar_id"`
	SourceURL  string         `json:"source_url"`
	Raw        map[string]any `json:"raw,omitempty"`
}

// Window is an inclusive date range for event queries.
type Window struct {
	From time.Time
	To   time.Time
}

// Provider lists scheduled economic events. Implementations must be
// idempotent and safe to call on every tick.
type Provider interface {
	ListEvents(ctx context.Context, country, importance string, window Window) ([]Row, error)
}
