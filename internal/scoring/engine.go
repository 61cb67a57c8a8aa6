package scoring

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/url"
	"time"

	"macrowatch/internal/config"
	"macrowatch/internal/logging"
	"macrowatch/internal/services/webfetch"
	"macrowatch/internal/textutil"
)

// minCandidates is the floor below which discovery gives up before any
// article fetches happen.
const minCandidates = 5

// maxAlternates caps the runner-up list carried in the result.
const maxAlternates = 3

// Engine discovers and scores media coverage of a release. Discovery never
// returns an error: any failure along the way produces a degraded result
// so the caller can proceed with reduced confidence.
type Engine struct {
	media     config.Media
	indicator config.Indicator
	fetcher   webfetch.Client
	logger    *slog.Logger
	now       func() time.Time
}

// NewEngine builds a discovery engine over the given fetcher.
func NewEngine(cfg *config.Config, fetcher webfetch.Client, logger *slog.Logger) *Engine {
	return &Engine{
		media:     cfg.Media,
		indicator: cfg.Indicator,
		fetcher:   fetcher,
		logger:    logging.NewComponentLogger(logger, "scoring"),
		now:       time.Now,
	}
}

// Discover runs the full pipeline for one release: search, candidate
// extraction, batched metadata fetches, rule scoring, selection, and
// full-text validation of the winner. releaseMS is the scheduled release
// instant in UTC epoch milliseconds.
func (e *Engine) Discover(ctx context.Context, query string, releaseMS int64) *Result {
	fetchedAt := e.now().UTC().UnixMilli()
	result := &Result{
		Mode:           ModeDegraded,
		Query:          query,
		ReleaseTimeMS:  releaseMS,
		ReleaseTimeISO: isoFromMS(releaseMS),
		FetchTimeMS:    fetchedAt,
		FetchTimeISO:   isoFromMS(fetchedAt),
	}

	searchURL := e.media.SearchURL + url.QueryEscape(query)
	markup, err := e.fetcher.FetchHTML(ctx, searchURL)
	if err != nil {
		result.Reason = ReasonSearchFetchFailed
		e.logger.Warn("media discovery degraded",
			logging.String("reason", result.Reason),
			logging.String("query", query),
			logging.Error(err))
		return result
	}

	urls := ExtractCandidateURLs(webfetch.ParsePage(markup), searchURL, e.media.MaxCandidates)
	if len(urls) < minCandidates {
		result.Reason = ReasonInsufficientCandidates
		for _, candidateURL := range urls {
			result.Candidates = append(result.Candidates, Candidate{URL: candidateURL})
		}
		e.logger.Warn("media discovery degraded",
			logging.String("reason", result.Reason),
			logging.String("query", query),
			logging.Int("candidates", len(urls)))
		return result
	}

	candidates := e.fetchCandidateMetadata(ctx, urls)
	inputs := ruleInputs{
		releaseMS:         releaseMS,
		countryKeywords:   countryKeywords(e.indicator.Country, e.indicator.Currency),
		indicatorKeywords: e.indicator.NameVariants,
	}
	for i := range candidates {
		scoreCandidate(&candidates[i], inputs)
	}
	result.Candidates = candidates

	ranked := rankCandidates(candidates)
	if len(ranked) == 0 || ranked[0].Score < e.media.ScoreThreshold {
		result.Reason = ReasonBelowThreshold
		result.Alternates = alternatesFrom(ranked, 0)
		e.logger.Warn("media discovery degraded",
			logging.String("reason", result.Reason),
			logging.Int("ranked", len(ranked)))
		return result
	}

	best := ranked[0]
	result.Alternates = alternatesFrom(ranked, 1)
	result.ArticleTimeMS = best.PublishedAtMS
	result.ArticleTimeISO = best.PublishedAtISO

	if !e.media.FullFetchEnabled {
		result.Reason = ReasonFullFetchDisabled
		e.logger.Warn("media discovery degraded",
			logging.String("reason", result.Reason),
			logging.String("url", best.URL))
		return result
	}

	extract, err := e.fetcher.FetchText(ctx, best.URL, e.media.BodyCapChars)
	if err != nil {
		result.Reason = ReasonValidationFailed
		e.logger.Warn("media discovery degraded",
			logging.String("reason", result.Reason),
			logging.String("url", best.URL),
			logging.Error(err))
		return result
	}
	if len(extract.Text) <= e.media.MinBodyChars ||
		!textutil.ContainsAnyFold(extract.Text, e.indicator.NameVariants) {
		result.Reason = ReasonValidationFailed
		e.logger.Warn("media discovery degraded",
			logging.String("reason", result.Reason),
			logging.String("url", best.URL),
			logging.Int("body_chars", len(extract.Text)))
		return result
	}

	hash := sha256.Sum256([]byte(extract.Text))
	result.Mode = ModeOK
	result.Selected = &Selected{
		URL:            best.URL,
		Title:          best.Title,
		PublishedAtMS:  best.PublishedAtMS,
		PublishedAtISO: best.PublishedAtISO,
		Score:          best.Score,
		Body:           extract.Text,
		BodyChars:      len(extract.Text),
		ContentHash:    hex.EncodeToString(hash[:]),
	}
	e.logger.Info("media candidate selected",
		logging.String("url", best.URL),
		logging.Int("score", best.Score),
		logging.Int("body_chars", len(extract.Text)))
	return result
}

func alternatesFrom(ranked []Candidate, offset int) []Candidate {
	if offset >= len(ranked) {
		return nil
	}
	rest := ranked[offset:]
	if len(rest) > maxAlternates {
		rest = rest[:maxAlternates]
	}
	out := make([]Candidate, len(rest))
	copy(out, rest)
	return out
}
