package textutil

import (
	"regexp"
	"strings"
)

// tokenSplitPattern matches non-alphanumeric character sequences for tokenization.
var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

var whitespacePattern = regexp.MustCompile(`\s+`)

// Tokenize splits text into lowercase tokens, filtering tokens shorter than 3 characters.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	raw := tokenSplitPattern.Split(lowered, -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		token = strings.TrimSpace(token)
		if len(token) < 3 {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// NormalizeSpace collapses runs of whitespace into single spaces and trims the result.
func NormalizeSpace(text string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// ContainsFold reports whether text contains substr, case-insensitively.
func ContainsFold(text, substr string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(substr))
}

// ContainsAnyFold reports whether text contains any of the given substrings,
// case-insensitively. Empty substrings never match.
func ContainsAnyFold(text string, substrs []string) bool {
	lowered := strings.ToLower(text)
	for _, substr := range substrs {
		substr = strings.ToLower(strings.TrimSpace(substr))
		if substr == "" {
			continue
		}
		if strings.Contains(lowered, substr) {
			return true
		}
	}
	return false
}

// Truncate returns at most max runes of text, trimming trailing space.
func Truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return strings.TrimSpace(string(runes[:max]))
}
