package workflow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"macrowatch/internal/analysis"
	"macrowatch/internal/logging"
	"macrowatch/internal/scoring"
	"macrowatch/internal/services"
	"macrowatch/internal/services/reports"
	"macrowatch/internal/snapshot"
	"macrowatch/internal/store"
	"macrowatch/internal/textutil"
)

// Artifact names written into each run's snapshot directory.
const (
	artifactEvent      = "event.json"
	artifactOfficial   = "official.json"
	artifactMedia      = "media.json"
	artifactCandidates = "candidates.json"
	artifactEvidence   = "evidence.json"
	artifactClaims     = "claims.json"
	artifactHistorical = "historical.json"
	artifactVerdict    = "verdict.json"
	artifactReport     = "report.md"
	artifactPublish    = "publish.json"
)

const historicalLimit = 12

// stepContext carries row copies into a step. Steps never mutate status
// rows; transitions are committed by the driver afterwards.
type stepContext struct {
	event  store.ReleaseEvent
	status store.ReleaseStatus
	runID  string
}

type step struct {
	name string
	next store.State
	run  func(context.Context, *stepContext) error
}

// stepForState maps each non-terminal state to the step that advances it.
func (d *Driver) stepForState(state store.State) (step, bool) {
	switch state {
	case store.StateNew:
		return step{name: "fetch_official", next: store.StateFetchedOfficial, run: d.stepFetchOfficial}, true
	case store.StateFetchedOfficial:
		return step{name: "fetch_media", next: store.StateFetchedMedia, run: d.stepFetchMedia}, true
	case store.StateFetchedMedia:
		return step{name: "preprocess", next: store.StatePreprocessed, run: d.stepPreprocess}, true
	case store.StatePreprocessed:
		return step{name: "analyze", next: store.StateAnalyzed, run: d.stepAnalyze}, true
	case store.StateAnalyzed:
		return step{name: "publish", next: store.StatePublished, run: d.stepPublish}, true
	default:
		return step{}, false
	}
}

func (d *Driver) writerFor(sc *stepContext) *snapshot.Writer {
	return snapshot.NewWriter(d.cfg.Paths.SnapshotDir, sc.event.ID, sc.runID)
}

// stepFetchOfficial locates the official statistical release for the event
// and captures an excerpt, falling back to a generic page fetch when the
// provider carries no body text.
func (d *Driver) stepFetchOfficial(ctx context.Context, sc *stepContext) error {
	writer := d.writerFor(sc)
	if _, err := writer.WriteJSON(artifactEvent, sc.event); err != nil {
		return err
	}

	date, err := releaseDate(sc.event.Date)
	if err != nil {
		return services.Wrap(services.ErrValidation, "workflow", "parse release date", sc.event.Date, err)
	}
	window := reports.Window{From: date.AddDate(0, 0, -1), To: date.AddDate(0, 0, 1)}
	rows, err := d.reports.FindReports(ctx, sc.event.Country, sc.event.Event, window)
	if err != nil {
		return err
	}
	report := pickReport(rows, sc.event.Date)
	if report == nil {
		return services.Wrap(services.ErrNotFound, "workflow", "fetch official",
			"no official report for "+sc.event.Date, nil)
	}

	excerpt := strings.TrimSpace(report.Excerpt)
	if excerpt == "" {
		extract, fetchErr := d.fetcher.FetchText(ctx, report.OfficialReportURL, d.cfg.Media.BodyCapChars)
		if fetchErr != nil {
			d.logger.Warn("official excerpt fallback failed",
				logging.String(logging.FieldEventID, sc.event.ID),
				logging.Error(fetchErr))
		} else {
			excerpt = extract.Text
		}
	}

	official := analysis.OfficialInput{URL: report.OfficialReportURL, Excerpt: excerpt}
	if excerpt != "" {
		sum := sha256.Sum256([]byte(excerpt))
		official.ContentHash = hex.EncodeToString(sum[:])
	}
	_, err = writer.WriteJSON(artifactOfficial, official)
	return err
}

// stepFetchMedia runs candidate discovery and records the full scoring
// record. A degraded outcome is still a successful step.
func (d *Driver) stepFetchMedia(ctx context.Context, sc *stepContext) error {
	query := textutil.NormalizeSpace(sc.event.Event + " " + sc.event.Date)
	releaseMS, err := releaseTimeMS(sc.event.Date)
	if err != nil {
		return services.Wrap(services.ErrValidation, "workflow", "parse release date", sc.event.Date, err)
	}

	result := d.media.Discover(ctx, query, releaseMS)
	writer := d.writerFor(sc)
	if _, err := writer.WriteJSON(artifactCandidates, result.Candidates); err != nil {
		return err
	}
	_, err = writer.WriteJSON(artifactMedia, result)
	return err
}

// stepPreprocess derives evidence and claim cards from the captured
// artifacts. Missing artifacts reduce the card set instead of failing.
func (d *Driver) stepPreprocess(ctx context.Context, sc *stepContext) error {
	writer := d.writerFor(sc)
	dir := writer.Dir()

	var official *analysis.OfficialInput
	var loaded analysis.OfficialInput
	if ok, err := readJSONArtifact(dir, artifactOfficial, &loaded); err != nil {
		return err
	} else if ok {
		official = &loaded
	}

	var media *scoring.Result
	var mediaLoaded scoring.Result
	if ok, err := readJSONArtifact(dir, artifactMedia, &mediaLoaded); err != nil {
		return err
	} else if ok {
		media = &mediaLoaded
	}

	evidence := analysis.BuildEvidence(&sc.event, official, media)
	claims := analysis.BuildClaims(&sc.event, evidence)

	if _, err := writer.WriteJSON(artifactEvidence, evidence); err != nil {
		return err
	}
	_, err := writer.WriteJSON(artifactClaims, claims)
	return err
}

// stepAnalyze writes the historical context snapshot, obtains a verdict, and
// renders the report, recording its path and hash on the run row.
func (d *Driver) stepAnalyze(ctx context.Context, sc *stepContext) error {
	writer := d.writerFor(sc)
	dir := writer.Dir()

	var evidence []analysis.EvidenceCard
	if _, err := readJSONArtifact(dir, artifactEvidence, &evidence); err != nil {
		return err
	}
	var claims []analysis.ClaimCard
	if _, err := readJSONArtifact(dir, artifactClaims, &claims); err != nil {
		return err
	}

	doc, err := d.store.Read()
	if err != nil {
		return err
	}
	historical := analysis.HistoricalEntries(doc, sc.event.ID, historicalLimit)
	if _, err := writer.WriteJSON(artifactHistorical, historical); err != nil {
		return err
	}

	verdict := d.analyzer.Verdict(ctx, &sc.event, evidence, claims, historical)
	if _, err := writer.WriteJSON(artifactVerdict, verdict); err != nil {
		return err
	}

	rendered, err := analysis.RenderMarkdown(analysis.Report{
		Event:       &sc.event,
		Verdict:     verdict,
		Evidence:    evidence,
		Claims:      claims,
		Historical:  historical,
		GeneratedAt: d.now().UTC(),
	})
	if err != nil {
		return err
	}
	reportPath, err := writer.WriteText(artifactReport, rendered)
	if err != nil {
		return err
	}

	sum := sha256.Sum256([]byte(rendered))
	reportHash := hex.EncodeToString(sum[:])
	_, err = d.store.Update(ctx, func(doc *store.Document) error {
		if run := doc.FindRun(sc.runID); run != nil {
			run.ReportPath = reportPath
			run.ReportHash = reportHash
		}
		return nil
	})
	return err
}

// stepPublish delivers the report summary. An unconfigured channel records a
// skipped delivery and the step still succeeds.
func (d *Driver) stepPublish(ctx context.Context, sc *stepContext) error {
	writer := d.writerFor(sc)

	var verdict analysis.Verdict
	if ok, err := readJSONArtifact(writer.Dir(), artifactVerdict, &verdict); err != nil {
		return err
	} else if !ok {
		return services.Wrap(services.ErrValidation, "workflow", "publish",
			"verdict artifact missing for run "+sc.runID, nil)
	}

	message := verdict.Headline
	if len(verdict.KeyPoints) > 0 {
		message += "\n\n- " + strings.Join(verdict.KeyPoints, "\n- ")
	}
	result, err := d.notifier.Send(ctx, verdict.Headline, message)
	if err != nil {
		return err
	}
	if result.Skipped {
		d.logger.Info("publish skipped",
			logging.String(logging.FieldEventID, sc.event.ID),
			logging.String("reason", result.Reason))
	}
	_, err = writer.WriteJSON(artifactPublish, result)
	return err
}

func pickReport(rows []reports.Report, date string) *reports.Report {
	for i := range rows {
		if rows[i].ReleaseDate == date && rows[i].OfficialReportURL != "" {
			return &rows[i]
		}
	}
	for i := range rows {
		if rows[i].OfficialReportURL != "" {
			return &rows[i]
		}
	}
	return nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func releaseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// releaseTimeMS resolves the release instant. Date-only rows assume the
// customary 08:30 ET slot of US statistical releases.
func releaseTimeMS(raw string) (int64, error) {
	ts, err := releaseDate(raw)
	if err != nil {
		return 0, err
	}
	if ts.Hour() == 0 && ts.Minute() == 0 && len(strings.TrimSpace(raw)) == len("2006-01-02") {
		ts = ts.Add(12*time.Hour + 30*time.Minute)
	}
	return ts.UnixMilli(), nil
}

// readJSONArtifact loads a prior step's artifact. A missing file is reported
// via the boolean, not as an error.
func readJSONArtifact(dir, name string, v any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read artifact %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode artifact %s: %w", name, err)
	}
	return true, nil
}
