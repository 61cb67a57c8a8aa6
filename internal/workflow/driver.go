package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"macrowatch/internal/analysis"
	"macrowatch/internal/config"
	"macrowatch/internal/logging"
	"macrowatch/internal/notify"
	"macrowatch/internal/releases"
	"macrowatch/internal/scoring"
	"macrowatch/internal/services"
	"macrowatch/internal/services/calendar"
	"macrowatch/internal/services/reports"
	"macrowatch/internal/services/webfetch"
	"macrowatch/internal/store"
)

// MediaEngine discovers and scores media coverage for one release.
type MediaEngine interface {
	Discover(ctx context.Context, query string, releaseMS int64) *scoring.Result
}

// VerdictProvider produces the analytical summary for one release.
type VerdictProvider interface {
	Verdict(ctx context.Context, event *store.ReleaseEvent, evidence []analysis.EvidenceCard, claims []analysis.ClaimCard, historical []analysis.HistoricalEntry) analysis.Verdict
}

// Deps are the collaborators the driver coordinates.
type Deps struct {
	Store    *store.Store
	Calendar calendar.Provider
	Reports  reports.Provider
	Fetcher  webfetch.Client
	Media    MediaEngine
	Analyzer VerdictProvider
	Notifier notify.Service
	Logger   *slog.Logger
}

// Driver owns the per-tick work: discovering release events inside the
// configured window and advancing each due event by exactly one state
// transition. All state mutations re-read the persisted document inside the
// store's critical section, so a crash between ticks never loses progress.
type Driver struct {
	cfg      *config.Config
	store    *store.Store
	calendar calendar.Provider
	reports  reports.Provider
	fetcher  webfetch.Client
	media    MediaEngine
	analyzer VerdictProvider
	notifier notify.Service
	logger   *slog.Logger

	now      func() time.Time
	newRunID func(time.Time) string
}

// NewDriver wires a driver from its collaborators.
func NewDriver(cfg *config.Config, deps Deps) *Driver {
	return &Driver{
		cfg:      cfg,
		store:    deps.Store,
		calendar: deps.Calendar,
		reports:  deps.Reports,
		fetcher:  deps.Fetcher,
		media:    deps.Media,
		analyzer: deps.Analyzer,
		notifier: deps.Notifier,
		logger:   logging.NewComponentLogger(deps.Logger, "workflow"),
		now:      time.Now,
		newRunID: defaultRunID,
	}
}

func defaultRunID(now time.Time) string {
	return "run-" + now.UTC().Format("20060102T150405") + "-" + uuid.NewString()[:8]
}

// Tick runs one full pass: discovery, then one transition per due event.
// Discovery failures are logged and do not block advancement.
func (d *Driver) Tick(ctx context.Context) error {
	requestID := uuid.NewString()
	ctx = services.WithRequestID(ctx, requestID)
	logger := d.logger.With(logging.String(logging.FieldCorrelationID, requestID))

	if err := d.discover(ctx); err != nil {
		logger.Warn("discovery failed", logging.Error(err))
	}

	due, err := d.dueEvents()
	if err != nil {
		return err
	}
	for _, eventID := range due {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := d.advanceOne(ctx, eventID); err != nil {
			logger.Error("advance failed",
				logging.String(logging.FieldEventID, eventID),
				logging.Error(err))
		}
	}
	return nil
}

// discover lists calendar events in the configured window, upserts matching
// release events, and creates status rows for newly seen events.
func (d *Driver) discover(ctx context.Context) error {
	now := d.now().UTC()
	window := calendar.Window{
		From: now.AddDate(0, 0, -d.cfg.Workflow.DiscoveryPastDays),
		To:   now.AddDate(0, 0, d.cfg.Workflow.DiscoveryAheadDays),
	}

	rows, err := d.calendar.ListEvents(ctx, d.cfg.Indicator.Country, d.cfg.Indicator.Importance, window)
	if err != nil {
		return err
	}
	matched := releases.FilterRows(rows, d.cfg.Indicator)
	if len(matched) == 0 {
		return nil
	}

	_, err = d.store.Update(ctx, func(doc *store.Document) error {
		for _, row := range matched {
			eventID := releases.EventID(releases.ResolveEventKey(row))
			if existing := doc.FindEvent(eventID); existing != nil {
				releases.Merge(existing, row, now)
			} else {
				doc.ReleaseEvents = append(doc.ReleaseEvents, releases.FromRow(row, now))
				d.logger.Info("release event discovered",
					logging.String(logging.FieldEventID, eventID),
					logging.String("event", row.Event),
					logging.String("date", row.Date))
			}
			if doc.FindStatus(eventID) == nil {
				doc.ReleaseStatus = append(doc.ReleaseStatus, store.ReleaseStatus{
					EventID:   eventID,
					State:     store.StateNew,
					CreatedAt: now,
					UpdatedAt: now,
				})
			}
		}
		return nil
	})
	return err
}

// dueEvents returns the ids of events eligible for advancement, ordered by
// ascending status update time so long-waiting events go first.
func (d *Driver) dueEvents() ([]string, error) {
	doc, err := d.store.Read()
	if err != nil {
		return nil, err
	}
	now := d.now().UTC()

	var due []store.ReleaseStatus
	for _, status := range doc.ReleaseStatus {
		if status.Due(now) {
			due = append(due, status)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].UpdatedAt.Before(due[j].UpdatedAt)
	})

	ids := make([]string, len(due))
	for i, status := range due {
		ids[i] = status.EventID
	}
	return ids, nil
}

// advanceOne executes at most one step for the event and commits the
// resulting transition. The status row is re-read before every mutation, so
// concurrent writers never clobber each other.
func (d *Driver) advanceOne(ctx context.Context, eventID string) error {
	doc, err := d.store.Read()
	if err != nil {
		return err
	}
	status := doc.FindStatus(eventID)
	if status == nil {
		return services.Wrap(services.ErrNotFound, "workflow", "load status", eventID, nil)
	}
	if !status.Due(d.now().UTC()) {
		return nil
	}
	event := doc.FindEvent(eventID)
	if event == nil {
		return services.Wrap(services.ErrNotFound, "workflow", "load event", eventID, nil)
	}

	step, ok := d.stepForState(status.State)
	if !ok {
		return services.Wrap(services.ErrValidation, "workflow", "resolve step", string(status.State), nil)
	}

	runID, err := d.ensureRun(ctx, eventID, status)
	if err != nil {
		if errors.Is(err, errStaleStatus) {
			d.logger.Warn("advance skipped, status changed",
				logging.String(logging.FieldEventID, eventID))
			return nil
		}
		return err
	}

	ctx = services.WithEventID(ctx, eventID)
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithStep(ctx, step.name)
	logger := d.logger.With(
		logging.String(logging.FieldEventID, eventID),
		logging.String(logging.FieldRunID, runID),
		logging.String(logging.FieldStep, step.name))

	logger.Info("step started", logging.String(logging.FieldState, string(status.State)))
	stepErr := step.run(ctx, &stepContext{event: *event, status: *status, runID: runID})

	var commitErr error
	if stepErr != nil {
		logger.Warn("step failed", logging.Error(stepErr))
		commitErr = d.recordFailure(ctx, eventID, runID, status.State, stepErr)
	} else {
		logger.Info("step completed", logging.String(logging.FieldState, string(step.next)))
		commitErr = d.recordSuccess(ctx, eventID, runID, status.State, step.next)
	}
	if errors.Is(commitErr, errStaleStatus) {
		logger.Warn("transition discarded, status changed during step")
		return nil
	}
	return commitErr
}

// ensureRun returns the event's current run id, creating the run row lazily
// on the first step of a pipeline pass.
func (d *Driver) ensureRun(ctx context.Context, eventID string, read *store.ReleaseStatus) (string, error) {
	if read.CurrentRunID != "" {
		return read.CurrentRunID, nil
	}
	runID := d.newRunID(d.now())
	err := d.withFreshStatus(ctx, eventID, read.State, func(doc *store.Document, status *store.ReleaseStatus) error {
		if status.CurrentRunID != "" {
			runID = status.CurrentRunID
			return nil
		}
		status.CurrentRunID = runID
		doc.AnalysisRuns = append(doc.AnalysisRuns, store.AnalysisRun{
			RunID:     runID,
			EventID:   eventID,
			Status:    store.RunRunning,
			StartedAt: d.now().UTC(),
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return runID, nil
}

// recordSuccess commits a forward transition and clears the retry bookkeeping.
func (d *Driver) recordSuccess(ctx context.Context, eventID, runID string, from, next store.State) error {
	now := d.now().UTC()
	return d.withFreshStatus(ctx, eventID, from, func(doc *store.Document, status *store.ReleaseStatus) error {
		status.State = next
		status.RetryCount = 0
		status.LastError = ""
		status.NextAttemptAt = nil
		status.UpdatedAt = now

		if next == store.StatePublished {
			status.PublishedAt = &now
			if run := doc.FindRun(runID); run != nil {
				run.Status = store.RunPublished
				run.CompletedAt = &now
				run.PublishChannel = d.notifier.Target()
			}
		}
		return nil
	})
}

// recordFailure increments the retry count, schedules the next attempt with
// exponential backoff, and terminalizes the event once the retry budget is
// spent.
func (d *Driver) recordFailure(ctx context.Context, eventID, runID string, from store.State, stepErr error) error {
	now := d.now().UTC()
	details := services.Details(stepErr)
	return d.withFreshStatus(ctx, eventID, from, func(doc *store.Document, status *store.ReleaseStatus) error {
		status.RetryCount++
		status.LastError = details.Message
		status.UpdatedAt = now

		if status.RetryCount >= d.cfg.Workflow.MaxRetries {
			status.State = store.StateFailedTerminal
			status.NextAttemptAt = nil
			if run := doc.FindRun(runID); run != nil {
				run.Status = store.RunFailed
				run.CompletedAt = &now
				run.ErrorText = details.Message
			}
			d.logger.Error("event terminalized",
				logging.String(logging.FieldEventID, eventID),
				logging.Int("attempts", status.RetryCount),
				logging.String(logging.FieldErrorKind, details.Kind))
			return nil
		}

		next := NextAttemptAt(d.cfg.Workflow, status.RetryCount, now)
		status.NextAttemptAt = &next
		return nil
	})
}

// errStaleStatus signals that a status row changed between the driver's read
// and the commit, so the prepared mutation must be discarded.
var errStaleStatus = errors.New("status row changed since read")

// withFreshStatus re-reads the document inside the store's critical section
// and hands the caller the live status row for the event. The mutation only
// runs while the row is still in the expected state; a concurrent writer
// (another process, manual intervention) invalidates the commit.
func (d *Driver) withFreshStatus(ctx context.Context, eventID string, expected store.State, fn func(*store.Document, *store.ReleaseStatus) error) error {
	_, err := d.store.Update(ctx, func(doc *store.Document) error {
		status := doc.FindStatus(eventID)
		if status == nil {
			return services.Wrap(services.ErrNotFound, "workflow", "load status", eventID, nil)
		}
		if status.State != expected {
			return errStaleStatus
		}
		return fn(doc, status)
	})
	return err
}
