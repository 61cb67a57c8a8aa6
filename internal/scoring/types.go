package scoring

import "time"

// Mode is the overall outcome of a discovery pass.
type Mode string

const (
	// ModeOK means a candidate was selected and validated.
	ModeOK Mode = "ok"
	// ModeDegraded means no trustworthy article was found. Degraded is not
	// an error; downstream processing continues with low confidence.
	ModeDegraded Mode = "degraded"
)

// Degraded-mode reasons surfaced to the audit trail.
const (
	ReasonInsufficientCandidates = "insufficient candidates"
	ReasonBelowThreshold         = "best score below threshold"
	ReasonValidationFailed       = "full-text validation failed"
	ReasonFullFetchDisabled      = "full fetch disabled"
	ReasonSearchFetchFailed      = "search fetch failed"
)

// Candidate is one discovered article with its scoring record. Every
// candidate, dropped or not, keeps its numeric score, the ordered list of
// rule reasons applied, and a drop flag with reason when a drop rule fired.
type Candidate struct {
	URL            string   `json:"url"`
	Title          string   `json:"title,omitempty"`
	PublishedAtMS  int64    `json:"published_at_ms,omitempty"`
	PublishedAtISO string   `json:"published_at_iso,omitempty"`
	Preview        string   `json:"preview,omitempty"`
	Score          int      `json:"score"`
	Reasons        []string `json:"reasons,omitempty"`
	Dropped        bool     `json:"dropped"`
	DropReason     string   `json:"drop_reason,omitempty"`
}

// Selected is the validated winning article.
type Selected struct {
	URL            string `json:"url"`
	Title          string `json:"title"`
	PublishedAtMS  int64  `json:"published_at_ms"`
	PublishedAtISO string `json:"published_at_iso"`
	Score          int    `json:"score"`
	Body           string `json:"body"`
	BodyChars      int    `json:"body_chars"`
	ContentHash    string `json:"content_hash"`
}

// Result is the uniform outcome shape for both modes. All timestamps are UTC
// epoch milliseconds with ISO-8601 mirrors so downstream comparisons stay
// numeric and timezone-safe.
type Result struct {
	Mode   Mode   `json:"mode"`
	Reason string `json:"reason,omitempty"`
	Query  string `json:"query"`

	ReleaseTimeMS  int64  `json:"release_time_ms"`
	ReleaseTimeISO string `json:"release_time_iso"`
	ArticleTimeMS  int64  `json:"article_time_ms,omitempty"`
	ArticleTimeISO string `json:"article_time_iso,omitempty"`
	FetchTimeMS    int64  `json:"fetch_time_ms"`
	FetchTimeISO   string `json:"fetch_time_iso"`

	Selected   *Selected   `json:"selected"`
	Alternates []Candidate `json:"alternates,omitempty"`
	Candidates []Candidate `json:"candidates"`
}

func isoFromMS(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
