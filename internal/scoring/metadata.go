package scoring

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"macrowatch/internal/logging"
	"macrowatch/internal/services/webfetch"
	"macrowatch/internal/textutil"
)

// Metadata fields checked for a title, in priority order. The document
// title is the fallback when none is present.
var titleFields = []string{"og:title", "twitter:title"}

// Metadata fields checked for a publication timestamp, in priority order.
var publishedTimeFields = []string{
	"article:published_time",
	"og:article:published_time",
	"article:modified_time",
	"parsely-pub-date",
	"datePublished",
	"date",
	"dcterms.date",
	"sailthru.date",
}

var publishedTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// fetchCandidateMetadata loads candidate pages in fixed-size concurrent
// batches and fills in title, publication time, and preview text. A
// candidate whose page cannot be fetched, or that carries no usable title
// or timestamp, is removed from the pool; one bad page never aborts the
// batch.
func (e *Engine) fetchCandidateMetadata(ctx context.Context, urls []string) []Candidate {
	batch := e.media.BatchSize
	if batch <= 0 {
		batch = 1
	}

	fetched := make([]*Candidate, len(urls))
	for start := 0; start < len(urls); start += batch {
		end := min(start+batch, len(urls))
		var group errgroup.Group
		for i := start; i < end; i++ {
			i := i
			group.Go(func() error {
				fetched[i] = e.loadCandidate(ctx, urls[i])
				return nil
			})
		}
		group.Wait()
		if ctx.Err() != nil {
			break
		}
	}

	out := make([]Candidate, 0, len(urls))
	for _, candidate := range fetched {
		if candidate != nil {
			out = append(out, *candidate)
		}
	}
	return out
}

func (e *Engine) loadCandidate(ctx context.Context, candidateURL string) *Candidate {
	markup, err := e.fetcher.FetchHTML(ctx, candidateURL)
	if err != nil {
		e.logger.Debug("candidate fetch failed",
			logging.String("url", candidateURL),
			logging.Error(err))
		return nil
	}
	page := webfetch.ParsePage(markup)

	title := firstMeta(page.Meta, titleFields)
	if title == "" {
		title = page.Title
	}
	title = textutil.NormalizeSpace(title)

	publishedMS := publishedTime(page.Meta)
	if title == "" || publishedMS == 0 {
		e.logger.Debug("candidate missing metadata",
			logging.String("url", candidateURL),
			logging.Bool("has_title", title != ""),
			logging.Bool("has_timestamp", publishedMS != 0))
		return nil
	}

	preview := textutil.Truncate(strings.Join(page.Paragraphs, " "), e.media.PreviewChars)
	return &Candidate{
		URL:            candidateURL,
		Title:          title,
		PublishedAtMS:  publishedMS,
		PublishedAtISO: isoFromMS(publishedMS),
		Preview:        preview,
	}
}

func firstMeta(meta map[string]string, fields []string) string {
	for _, field := range fields {
		if value := strings.TrimSpace(meta[field]); value != "" {
			return value
		}
	}
	return ""
}

func publishedTime(meta map[string]string) int64 {
	raw := firstMeta(meta, publishedTimeFields)
	if raw == "" {
		return 0
	}
	for _, layout := range publishedTimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC().UnixMilli()
		}
	}
	return 0
}
