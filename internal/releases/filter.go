package releases

import (
	"macrowatch/internal/config"
	"macrowatch/internal/services/calendar"
	"macrowatch/internal/textutil"
)

// MatchesIndicator reports whether a raw calendar row describes the tracked
// indicator: the country must match the configured target exactly (after
// normalization) and the event or category text must contain one of the
// indicator's name variants, case-insensitively.
func MatchesIndicator(row calendar.Row, indicator config.Indicator) bool {
	if NormalizeName(row.Country) != NormalizeName(indicator.Country) {
		return false
	}
	if textutil.ContainsAnyFold(row.Event, indicator.NameVariants) {
		return true
	}
	return textutil.ContainsAnyFold(row.Category, indicator.NameVariants)
}

// FilterRows keeps only the rows describing the tracked indicator.
func FilterRows(rows []calendar.Row, indicator config.Indicator) []calendar.Row {
	kept := make([]calendar.Row, 0, len(rows))
	for _, row := range rows {
		if MatchesIndicator(row, indicator) {
			kept = append(kept, row)
		}
	}
	return kept
}
