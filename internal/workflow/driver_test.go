package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"macrowatch/internal/analysis"
	"macrowatch/internal/config"
	"macrowatch/internal/logging"
	"macrowatch/internal/notify"
	"macrowatch/internal/scoring"
	"macrowatch/internal/services/calendar"
	"macrowatch/internal/services/reports"
	"macrowatch/internal/services/webfetch"
	"macrowatch/internal/store"
)

type fakeCalendar struct {
	rows []calendar.Row
	err  error
}

func (f *fakeCalendar) ListEvents(context.Context, string, string, calendar.Window) ([]calendar.Row, error) {
	return f.rows, f.err
}

type fakeReports struct {
	rows  []reports.Report
	err   error
	calls atomic.Int32
	hook  func()
}

func (f *fakeReports) FindReports(context.Context, string, string, reports.Window) ([]reports.Report, error) {
	f.calls.Add(1)
	if f.hook != nil {
		f.hook()
	}
	return f.rows, f.err
}

type fakeMedia struct {
	result *scoring.Result
}

func (f *fakeMedia) Discover(context.Context, string, int64) *scoring.Result {
	if f.result != nil {
		return f.result
	}
	return &scoring.Result{Mode: scoring.ModeDegraded, Reason: scoring.ReasonInsufficientCandidates}
}

type fakeAnalyzer struct{}

func (fakeAnalyzer) Verdict(context.Context, *store.ReleaseEvent, []analysis.EvidenceCard, []analysis.ClaimCard, []analysis.HistoricalEntry) analysis.Verdict {
	return analysis.Verdict{
		Headline:  "CPI above consensus",
		Stance:    analysis.SurpriseAbove,
		KeyPoints: []string{"actual 0.3% vs consensus 0.2%"},
		Source:    analysis.VerdictSourceTemplate,
	}
}

type fakeFetcher struct{}

func (fakeFetcher) FetchHTML(context.Context, string) (string, error) {
	return "<html></html>", nil
}

func (fakeFetcher) FetchText(context.Context, string, int) (webfetch.Extract, error) {
	return webfetch.Extract{Title: "official", Text: "The Consumer Price Index rose 0.3 percent in July."}, nil
}

type harness struct {
	driver   *Driver
	store    *store.Store
	cfg      *config.Config
	clock    *time.Time
	reports  *fakeReports
	calendar *fakeCalendar
}

func cpiRow() calendar.Row {
	return calendar.Row{
		Date:       "2026-08-12",
		Country:    "United States",
		Category:   "Inflation",
		Event:      "Consumer Price Index (MoM)",
		Actual:     "0.3%",
		Consensus:  "0.2%",
		Previous:   "0.2%",
		Importance: "high",
		Currency:   "USD",
		CalendarID: "cal-1",
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Paths.StateFile = filepath.Join(dir, "state.json")
	cfg.Paths.SnapshotDir = filepath.Join(dir, "runs")
	cfg.Notify.Topic = ""

	now := time.Date(2026, 8, 12, 13, 0, 0, 0, time.UTC)
	clock := &now
	st := store.New(cfg.Paths.StateFile)

	cal := &fakeCalendar{rows: []calendar.Row{cpiRow()}}
	rep := &fakeReports{rows: []reports.Report{{
		ReleaseDate:       "2026-08-12",
		Event:             "Consumer Price Index (MoM)",
		OfficialReportURL: "https://www.bls.gov/news.release/cpi.htm",
		Excerpt:           "The Consumer Price Index rose 0.3 percent in July.",
	}}}

	driver := NewDriver(&cfg, Deps{
		Store:    st,
		Calendar: cal,
		Reports:  rep,
		Fetcher:  fakeFetcher{},
		Media:    &fakeMedia{},
		Analyzer: fakeAnalyzer{},
		Notifier: notify.NewService(&cfg),
		Logger:   logging.NewNop(),
	})
	driver.now = func() time.Time { return *clock }

	return &harness{driver: driver, store: st, cfg: &cfg, clock: clock, reports: rep, calendar: cal}
}

func (h *harness) advance(d time.Duration) {
	*h.clock = h.clock.Add(d)
}

func (h *harness) status(t *testing.T) *store.ReleaseStatus {
	t.Helper()
	doc, err := h.store.Read()
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	if len(doc.ReleaseStatus) != 1 {
		t.Fatalf("status rows: %+v", doc.ReleaseStatus)
	}
	return &doc.ReleaseStatus[0]
}

func TestTickAdvancesToPublishedOverFiveTicks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	wantStates := []store.State{
		store.StateFetchedOfficial,
		store.StateFetchedMedia,
		store.StatePreprocessed,
		store.StateAnalyzed,
		store.StatePublished,
	}
	for i, want := range wantStates {
		if err := h.driver.Tick(ctx); err != nil {
			t.Fatalf("tick %d: %v", i+1, err)
		}
		status := h.status(t)
		if status.State != want {
			t.Fatalf("tick %d: state = %s, want %s", i+1, status.State, want)
		}
		if status.RetryCount != 0 || status.LastError != "" {
			t.Fatalf("tick %d: retry bookkeeping dirty: %+v", i+1, status)
		}
		h.advance(time.Minute)
	}

	status := h.status(t)
	if status.PublishedAt == nil {
		t.Fatal("publishedAt not stamped")
	}
	if !strings.HasPrefix(status.CurrentRunID, "run-") {
		t.Fatalf("run id: %q", status.CurrentRunID)
	}

	doc, _ := h.store.Read()
	run := doc.FindRun(status.CurrentRunID)
	if run == nil || run.Status != store.RunPublished || run.CompletedAt == nil {
		t.Fatalf("run row: %+v", run)
	}
	if run.ReportPath == "" || run.ReportHash == "" {
		t.Fatalf("report not recorded on run: %+v", run)
	}

	report, err := os.ReadFile(run.ReportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(report), "CPI above consensus") {
		t.Fatalf("report content:\n%s", report)
	}

	// One more tick must be a no-op for the terminal event.
	if err := h.driver.Tick(ctx); err != nil {
		t.Fatalf("post-terminal tick: %v", err)
	}
	if got := h.status(t).State; got != store.StatePublished {
		t.Fatalf("terminal state moved: %s", got)
	}
}

func TestSnapshotArtifactsWritten(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := h.driver.Tick(ctx); err != nil {
			t.Fatalf("tick: %v", err)
		}
		h.advance(time.Minute)
	}

	status := h.status(t)
	doc, _ := h.store.Read()
	runDir := filepath.Join(h.cfg.Paths.SnapshotDir, doc.ReleaseStatus[0].EventID, status.CurrentRunID)
	for _, name := range []string{
		artifactEvent, artifactOfficial, artifactMedia, artifactCandidates,
		artifactEvidence, artifactClaims, artifactHistorical,
		artifactVerdict, artifactReport, artifactPublish, "manifest.json",
	} {
		if _, err := os.Stat(filepath.Join(runDir, name)); err != nil {
			t.Errorf("artifact %s: %v", name, err)
		}
	}
}

func TestFailingStepTerminalizesAfterMaxRetries(t *testing.T) {
	h := newHarness(t)
	h.cfg.Workflow.MaxRetries = 3
	h.reports.err = errors.New("provider down")
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := h.driver.Tick(ctx); err != nil {
			t.Fatalf("tick: %v", err)
		}
		h.advance(2 * time.Hour)
	}

	status := h.status(t)
	if status.State != store.StateFailedTerminal {
		t.Fatalf("state = %s", status.State)
	}
	if got := h.reports.calls.Load(); got != 3 {
		t.Fatalf("step executed %d times, want exactly maxRetries (3)", got)
	}
	if status.LastError == "" || !strings.Contains(status.LastError, "provider down") {
		t.Fatalf("lastError = %q", status.LastError)
	}

	doc, _ := h.store.Read()
	run := doc.FindRun(status.CurrentRunID)
	if run == nil || run.Status != store.RunFailed || run.ErrorText == "" {
		t.Fatalf("run row: %+v", run)
	}
}

func TestBackoffDefersNextAttempt(t *testing.T) {
	h := newHarness(t)
	h.reports.err = errors.New("provider down")
	ctx := context.Background()

	if err := h.driver.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	status := h.status(t)
	if status.RetryCount != 1 || status.NextAttemptAt == nil {
		t.Fatalf("after first failure: %+v", status)
	}
	if want := h.clock.Add(30 * time.Second); !status.NextAttemptAt.Equal(want) {
		t.Fatalf("nextAttemptAt = %s, want %s", status.NextAttemptAt, want)
	}

	// Before the deadline the event is not retried.
	h.advance(10 * time.Second)
	if err := h.driver.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got := h.reports.calls.Load(); got != 1 {
		t.Fatalf("retried before deadline: %d calls", got)
	}

	h.advance(time.Minute)
	if err := h.driver.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got := h.reports.calls.Load(); got != 2 {
		t.Fatalf("expected retry after deadline, got %d calls", got)
	}
	if h.status(t).RetryCount != 2 {
		t.Fatalf("retry count: %+v", h.status(t))
	}
}

func TestConcurrentTerminalizationDiscardsTransition(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// While the first step runs, another writer terminalizes the event.
	h.reports.hook = func() {
		_, err := h.store.Update(ctx, func(doc *store.Document) error {
			doc.ReleaseStatus[0].State = store.StateFailedTerminal
			return nil
		})
		if err != nil {
			t.Errorf("concurrent update: %v", err)
		}
	}

	if err := h.driver.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}

	status := h.status(t)
	if status.State != store.StateFailedTerminal {
		t.Fatalf("concurrent terminalization overwritten: %s", status.State)
	}
	if status.RetryCount != 0 || status.PublishedAt != nil {
		t.Fatalf("discarded commit touched bookkeeping: %+v", status)
	}

	// The terminal row is no longer due, so nothing executes afterwards.
	h.advance(time.Minute)
	if err := h.driver.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got := h.reports.calls.Load(); got != 1 {
		t.Fatalf("terminal event stepped again: %d calls", got)
	}
}

func TestRediscoveryMergesWithoutDuplicates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.driver.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}

	// Rediscover with a fresher actual value.
	row := cpiRow()
	row.Actual = "0.4%"
	h.calendar.rows = []calendar.Row{row}
	h.advance(time.Minute)
	if err := h.driver.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}

	doc, _ := h.store.Read()
	if len(doc.ReleaseEvents) != 1 {
		t.Fatalf("events duplicated: %+v", doc.ReleaseEvents)
	}
	if doc.ReleaseEvents[0].Actual != "0.4%" {
		t.Fatalf("merge did not take fresher actual: %+v", doc.ReleaseEvents[0])
	}
}
