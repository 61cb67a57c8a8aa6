package analysis

import (
	"sort"

	"macrowatch/internal/store"
)

// HistoricalEntry is one prior published release, reduced to its headline
// numbers for use as analysis context.
type HistoricalEntry struct {
	EventID   string `json:"event_id"`
	Date      string `json:"date"`
	Event     string `json:"event"`
	Actual    string `json:"actual,omitempty"`
	Consensus string `json:"consensus,omitempty"`
	Previous  string `json:"previous,omitempty"`
	Surprise  string `json:"surprise"`
}

// HistoricalEntries collects prior published releases from the document,
// most recent first, capped at limit. The event currently being analyzed is
// excluded.
func HistoricalEntries(doc *store.Document, excludeEventID string, limit int) []HistoricalEntry {
	events := doc.PublishedEvents()
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date > events[j].Date
	})

	var entries []HistoricalEntry
	for i := range events {
		event := &events[i]
		if event.ID == excludeEventID {
			continue
		}
		entries = append(entries, HistoricalEntry{
			EventID:   event.ID,
			Date:      event.Date,
			Event:     event.Event,
			Actual:    event.Actual,
			Consensus: event.Consensus,
			Previous:  event.Previous,
			Surprise:  SurpriseDirection(event),
		})
		if limit > 0 && len(entries) >= limit {
			break
		}
	}
	return entries
}
