package releases

import (
	"time"

	"macrowatch/internal/services/calendar"
	"macrowatch/internal/store"
)

// FromRow builds a new ReleaseEvent from a raw calendar row.
func FromRow(row calendar.Row, now time.Time) store.ReleaseEvent {
	key := ResolveEventKey(row)
	event := store.ReleaseEvent{
		ID:         EventID(key),
		EventKey:   key,
		Date:       row.Date,
		Country:    NormalizeName(row.Country),
		Category:   row.Category,
		Event:      row.Event,
		Importance: row.Importance,
		Currency:   row.Currency,
		Actual:     row.Actual,
		Consensus:  row.Consensus,
		Previous:   row.Previous,
		RawPayload: row.Raw,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	event.ActualValue = ParseNumeric(row.Actual)
	event.ConsensusValue = ParseNumeric(row.Consensus)
	event.PreviousValue = ParseNumeric(row.Previous)
	if row.SourceURL != "" {
		event.SourceURLs = []string{row.SourceURL}
	}
	return event
}

// Merge folds a rediscovered row into an existing event. Populated fields in
// the fresh row win; empty fields never erase previously captured values.
// Source URLs accumulate without duplicates.
func Merge(existing *store.ReleaseEvent, row calendar.Row, now time.Time) {
	if row.Actual != "" {
		existing.Actual = row.Actual
		existing.ActualValue = ParseNumeric(row.Actual)
	}
	if row.Consensus != "" {
		existing.Consensus = row.Consensus
		existing.ConsensusValue = ParseNumeric(row.Consensus)
	}
	if row.Previous != "" {
		existing.Previous = row.Previous
		existing.PreviousValue = ParseNumeric(row.Previous)
	}
	if row.Category != "" {
		existing.Category = row.Category
	}
	if row.Importance != "" {
		existing.Importance = row.Importance
	}
	if row.Currency != "" {
		existing.Currency = row.Currency
	}
	if len(row.Raw) > 0 {
		existing.RawPayload = row.Raw
	}
	if row.SourceURL != "" && !containsString(existing.SourceURLs, row.SourceURL) {
		existing.SourceURLs = append(existing.SourceURLs, row.SourceURL)
	}
	existing.UpdatedAt = now
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
