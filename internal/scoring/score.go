package scoring

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"macrowatch/internal/textutil"
)

// DropReasonTimeWindow is recorded when a candidate is published too far
// from the release instant.
const DropReasonTimeWindow = "time_window>6h"

// DropReasonTitle is recorded when a title names neither the indicator nor
// both country and indicator.
const DropReasonTitle = "title lacks indicator keyword"

var percentPattern = regexp.MustCompile(`\d+(\.\d+)?\s*%`)

var forecastWords = []string{
	"forecast", "expected", "expectations", "consensus", "estimate", "estimates",
}

var preferredSections = map[string]struct{}{
	"markets":   {},
	"economy":   {},
	"economics": {},
	"business":  {},
}

var offTopicSections = map[string]struct{}{
	"world":         {},
	"sports":        {},
	"lifestyle":     {},
	"entertainment": {},
	"technology":    {},
}

// ruleInputs carries the fixed reference data the scoring rules compare
// each candidate against.
type ruleInputs struct {
	releaseMS         int64
	countryKeywords   []string
	indicatorKeywords []string
}

// scoreCandidate applies the rule table to one candidate in place. Rules
// run in a fixed order and each appends one human-readable reason, so the
// audit trail reads the same way for every candidate. The first drop rule
// that fires stops scoring and invalidates the accumulated score.
func scoreCandidate(c *Candidate, in ruleInputs) {
	delta := c.PublishedAtMS - in.releaseMS
	if delta < 0 {
		delta = -delta
	}
	distance := time.Duration(delta) * time.Millisecond

	switch {
	case distance <= 2*time.Hour:
		c.Score += 3
		c.Reasons = append(c.Reasons, "published within 2h of release (+3)")
	case distance <= 6*time.Hour:
		c.Score += 1
		c.Reasons = append(c.Reasons, "published within 6h of release (+1)")
	default:
		drop(c, DropReasonTimeWindow)
		return
	}

	titleCountry := titleMentions(c.Title, in.countryKeywords)
	titleIndicator := titleMentions(c.Title, in.indicatorKeywords)
	switch {
	case titleCountry && titleIndicator:
		c.Score += 3
		c.Reasons = append(c.Reasons, "title names country and indicator (+3)")
	case titleIndicator:
		c.Score += 1
		c.Reasons = append(c.Reasons, "title names indicator (+1)")
	default:
		drop(c, DropReasonTitle)
		return
	}

	features := 0
	if percentPattern.MatchString(c.Preview) || textutil.ContainsFold(c.Preview, "percent") {
		features++
	}
	if textutil.ContainsAnyFold(c.Preview, forecastWords) {
		features++
	}
	if textutil.ContainsAnyFold(c.Preview, in.indicatorKeywords) {
		features++
	}
	switch features {
	case 3:
		c.Score += 2
		c.Reasons = append(c.Reasons, "body carries 3/3 features (+2)")
	case 2:
		c.Score += 1
		c.Reasons = append(c.Reasons, "body carries 2/3 features (+1)")
	}

	section := sectionOf(c.URL)
	if _, ok := preferredSections[section]; ok {
		c.Score += 1
		c.Reasons = append(c.Reasons, "published in "+section+" section (+1)")
	} else if _, ok := offTopicSections[section]; ok {
		c.Score -= 1
		c.Reasons = append(c.Reasons, "published in off-topic "+section+" section (-1)")
	}
}

func drop(c *Candidate, reason string) {
	c.Score = 0
	c.Dropped = true
	c.DropReason = reason
	c.Reasons = append(c.Reasons, "dropped: "+reason)
}

// titleMentions reports whether any keyword appears in the title. Dots are
// stripped before matching so "U.S." and "US" compare equal; keywords of
// three characters or fewer must match a whole word to keep "us" from
// hiding inside "business".
func titleMentions(title string, keywords []string) bool {
	normalized := strings.ToLower(strings.ReplaceAll(title, ".", ""))
	var words map[string]struct{}
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(keyword), ".", ""))
		if keyword == "" {
			continue
		}
		if len(keyword) > 3 || strings.Contains(keyword, " ") {
			if strings.Contains(normalized, keyword) {
				return true
			}
			continue
		}
		if words == nil {
			words = make(map[string]struct{})
			for _, word := range strings.FieldsFunc(normalized, func(r rune) bool {
				return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
			}) {
				words[word] = struct{}{}
			}
		}
		if _, ok := words[keyword]; ok {
			return true
		}
	}
	return false
}

// countryKeywords expands a country name into the forms headlines use.
func countryKeywords(country, currency string) []string {
	keywords := []string{strings.ToLower(strings.TrimSpace(country))}
	if currency = strings.ToLower(strings.TrimSpace(currency)); currency != "" {
		keywords = append(keywords, currency)
	}
	switch strings.ToLower(strings.TrimSpace(country)) {
	case "united states":
		keywords = append(keywords, "us", "u.s.", "american", "america")
	case "united kingdom":
		keywords = append(keywords, "uk", "u.k.", "british", "britain")
	case "euro area", "eurozone":
		keywords = append(keywords, "euro zone", "eurozone", "euro area")
	}
	return keywords
}

// rankCandidates orders the surviving candidates by score descending,
// breaking ties toward the earlier publication time.
func rankCandidates(candidates []Candidate) []Candidate {
	ranked := make([]Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if !candidate.Dropped {
			ranked = append(ranked, candidate)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].PublishedAtMS < ranked[j].PublishedAtMS
	})
	return ranked
}
