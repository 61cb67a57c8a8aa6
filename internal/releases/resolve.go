package releases

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"macrowatch/internal/services/calendar"
	"macrowatch/internal/textutil"
)

var lowerCaser = cases.Lower(language.English)

// ResolveEventKey builds the deterministic identity string for a raw calendar
// row: date + normalized country + normalized event name + provider calendar
// id. Rows describing the same real-world release always resolve to the same
// key, across processes and restarts.
func ResolveEventKey(row calendar.Row) string {
	parts := []string{
		strings.TrimSpace(row.Date),
		NormalizeName(row.Country),
		NormalizeName(row.Event),
		strings.TrimSpace(row.CalendarID),
	}
	return strings.Join(parts, "|")
}

// EventID derives the stable short identifier for an event key.
func EventID(eventKey string) string {
	sum := sha256.Sum256([]byte(eventKey))
	return "ev-" + hex.EncodeToString(sum[:6])
}

// NormalizeName lowercases and whitespace-collapses a country or event name
// for identity comparison.
func NormalizeName(name string) string {
	return textutil.NormalizeSpace(lowerCaser.String(name))
}

// ParseNumeric extracts a float from calendar value text such as "0.3%",
// "3,250", "-0.1", or "250K". Returns nil when no number is present.
func ParseNumeric(raw string) *float64 {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.TrimSpace(cleaned)

	multiplier := 1.0
	switch {
	case strings.HasSuffix(cleaned, "K"), strings.HasSuffix(cleaned, "k"):
		multiplier = 1e3
		cleaned = cleaned[:len(cleaned)-1]
	case strings.HasSuffix(cleaned, "M"), strings.HasSuffix(cleaned, "m"):
		multiplier = 1e6
		cleaned = cleaned[:len(cleaned)-1]
	case strings.HasSuffix(cleaned, "B"), strings.HasSuffix(cleaned, "b"):
		multiplier = 1e9
		cleaned = cleaned[:len(cleaned)-1]
	}

	value, err := strconv.ParseFloat(strings.TrimPrefix(cleaned, "+"), 64)
	if err != nil {
		return nil
	}
	value *= multiplier
	return &value
}
