package store

import (
	"time"
)

// CurrentVersion is the persisted document schema version.
const CurrentVersion = 1

// State represents the lifecycle of a release event in the workflow.
type State string

const (
	StateNew             State = "new"
	StateFetchedOfficial State = "fetched_official"
	StateFetchedMedia    State = "fetched_media"
	StatePreprocessed    State = "preprocessed"
	StateAnalyzed        State = "analyzed"
	StatePublished       State = "published"
	StateFailedTerminal  State = "failed_terminal"
)

var allStates = []State{
	StateNew,
	StateFetchedOfficial,
	StateFetchedMedia,
	StatePreprocessed,
	StateAnalyzed,
	StatePublished,
	StateFailedTerminal,
}

var stateSet = func() map[State]struct{} {
	set := make(map[State]struct{}, len(allStates))
	for _, state := range allStates {
		set[state] = struct{}{}
	}
	return set
}()

// AllStates returns the ordered list of known states.
func AllStates() []State {
	states := make([]State, len(allStates))
	copy(states, allStates)
	return states
}

// Valid reports whether the state is one of the known states.
func (s State) Valid() bool {
	_, ok := stateSet[s]
	return ok
}

// Terminal reports whether no further automatic transition occurs from s.
func (s State) Terminal() bool {
	return s == StatePublished || s == StateFailedTerminal
}

// RunStatus represents the lifecycle of an analysis run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunPublished RunStatus = "published"
	RunFailed    RunStatus = "failed"
)

// ReleaseEvent is one row per unique real-world release of the tracked
// indicator. Rows are created on first discovery and merged on rediscovery;
// they are never deleted.
type ReleaseEvent struct {
	ID         string `json:"id"`
	EventKey   string `json:"event_key"`
	Date       string `json:"date"`
	Country    string `json:"country"`
	Category   string `json:"category,omitempty"`
	Event      string `json:"event"`
	Importance string `json:"importance,omitempty"`
	Currency   string `json:"currency,omitempty"`

	Actual    string `json:"actual,omitempty"`
	Consensus string `json:"consensus,omitempty"`
	Previous  string `json:"previous,omitempty"`

	ActualValue    *float64 `json:"actual_value,omitempty"`
	ConsensusValue *float64 `json:"consensus_value,omitempty"`
	PreviousValue  *float64 `json:"previous_value,omitempty"`

	SourceURLs []string       `json:"source_urls,omitempty"`
	RawPayload map[string]any `json:"raw_payload,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReleaseStatus is the state-machine cursor for one release event. There is
// at most one status row per event id.
type ReleaseStatus struct {
	EventID       string     `json:"event_id"`
	State         State      `json:"state"`
	RetryCount    int        `json:"retry_count"`
	NextAttemptAt *time.Time `json:"next_attempt_at,omitempty"`
	CurrentRunID  string     `json:"current_run_id,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Due reports whether the status is eligible for advancement at now.
func (s *ReleaseStatus) Due(now time.Time) bool {
	if s.State.Terminal() {
		return false
	}
	if s.NextAttemptAt == nil {
		return true
	}
	return !now.Before(*s.NextAttemptAt)
}

// AnalysisRun is one row per attempt-lineage for an event. It is created the
// first time a status row begins executing steps and reused across retries of
// the same pipeline pass.
type AnalysisRun struct {
	RunID          string     `json:"run_id"`
	EventID        string     `json:"event_id"`
	Status         RunStatus  `json:"status"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	ReportPath     string     `json:"report_path,omitempty"`
	ReportHash     string     `json:"report_hash,omitempty"`
	PublishChannel string     `json:"publish_channel,omitempty"`
	ErrorText      string     `json:"error_text,omitempty"`
}

// Document is the complete persisted state for one deployment.
type Document struct {
	Version       int             `json:"version"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	ReleaseEvents []ReleaseEvent  `json:"release_events"`
	ReleaseStatus []ReleaseStatus `json:"release_status"`
	AnalysisRuns  []AnalysisRun   `json:"analysis_runs"`
}

// EmptyDocument returns a schema-valid empty document.
func EmptyDocument() *Document {
	return &Document{
		Version:       CurrentVersion,
		ReleaseEvents: []ReleaseEvent{},
		ReleaseStatus: []ReleaseStatus{},
		AnalysisRuns:  []AnalysisRun{},
	}
}
