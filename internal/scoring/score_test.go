package scoring

import (
	"testing"
	"time"
)

var testInputs = ruleInputs{
	releaseMS:         time.Date(2026, 8, 12, 12, 30, 0, 0, time.UTC).UnixMilli(),
	countryKeywords:   countryKeywords("united states", "USD"),
	indicatorKeywords: []string{"cpi", "consumer price index", "inflation"},
}

func candidateAt(offset time.Duration, title, preview, url string) Candidate {
	ms := testInputs.releaseMS + offset.Milliseconds()
	return Candidate{
		URL:            url,
		Title:          title,
		PublishedAtMS:  ms,
		PublishedAtISO: isoFromMS(ms),
		Preview:        preview,
	}
}

func TestScoreAllRulesFire(t *testing.T) {
	c := candidateAt(time.Hour,
		"US consumer price index rises in July",
		"Inflation rose 0.3% on the month, above the consensus of economists.",
		"https://news.example.com/markets/us/cpi-rises/")
	scoreCandidate(&c, testInputs)

	// +3 time, +3 title, +2 body (3/3 features), +1 section.
	if c.Score != 9 {
		t.Fatalf("score = %d, reasons %v", c.Score, c.Reasons)
	}
	if c.Dropped {
		t.Fatal("candidate wrongly dropped")
	}
	if len(c.Reasons) != 4 {
		t.Fatalf("reasons = %v", c.Reasons)
	}
}

func TestScoreTwoOfThreeBodyFeatures(t *testing.T) {
	c := candidateAt(time.Hour,
		"US consumer price index rises",
		"Prices rose 0.3% on the month, economists said.",
		"https://news.example.com/markets/x/")
	scoreCandidate(&c, testInputs)
	// +3 time, +3 title, +0 body (1/3 features), +1 section.
	if c.Score != 7 {
		t.Fatalf("score = %d, reasons %v", c.Score, c.Reasons)
	}

	c = candidateAt(time.Hour,
		"US consumer price index rises",
		"Prices rose 0.3% on the month, above consensus.",
		"https://news.example.com/markets/x/")
	scoreCandidate(&c, testInputs)
	// +3 time, +3 title, +1 body (2/3 features), +1 section.
	if c.Score != 8 {
		t.Fatalf("score = %d, reasons %v", c.Score, c.Reasons)
	}
}

func TestScoreTimeWindowDropStopsScoring(t *testing.T) {
	near := candidateAt(5*time.Hour, "Inflation update", "", "https://news.example.com/economy/x/")
	scoreCandidate(&near, testInputs)
	// +1 time, +1 title, +1 section.
	if near.Dropped || near.Score != 3 {
		t.Fatalf("5h candidate: score=%d dropped=%v", near.Score, near.Dropped)
	}

	far := candidateAt(-8*time.Hour,
		"US consumer price index preview",
		"Economists forecast a 0.2% rise in inflation.",
		"https://news.example.com/markets/preview/")
	scoreCandidate(&far, testInputs)
	if !far.Dropped || far.DropReason != DropReasonTimeWindow {
		t.Fatalf("8h candidate: dropped=%v reason=%q", far.Dropped, far.DropReason)
	}
	if far.Score != 0 {
		t.Fatalf("dropped candidate keeps a score: %d", far.Score)
	}
	if len(far.Reasons) != 1 {
		t.Fatalf("scoring must stop at the first drop rule, reasons %v", far.Reasons)
	}
}

func TestScoreTitleDrops(t *testing.T) {
	neither := candidateAt(time.Hour, "Stocks open higher", "", "https://news.example.com/markets/a/")
	scoreCandidate(&neither, testInputs)
	if !neither.Dropped || neither.DropReason != DropReasonTitle {
		t.Fatalf("neither-keyword title: dropped=%v reason=%q", neither.Dropped, neither.DropReason)
	}

	countryOnly := candidateAt(time.Hour, "US stocks open higher", "", "https://news.example.com/markets/b/")
	scoreCandidate(&countryOnly, testInputs)
	if !countryOnly.Dropped {
		t.Fatal("country-only title must be dropped")
	}

	indicatorOnly := candidateAt(time.Hour, "What the consumer price index measures", "", "https://news.example.com/explainers/cpi/")
	scoreCandidate(&indicatorOnly, testInputs)
	if indicatorOnly.Dropped || indicatorOnly.Score != 4 {
		t.Fatalf("indicator-only title: score=%d dropped=%v", indicatorOnly.Score, indicatorOnly.Dropped)
	}
}

func TestScoreOffTopicSectionPenalty(t *testing.T) {
	c := candidateAt(time.Hour, "US inflation and global trade", "", "https://news.example.com/world/trade/")
	scoreCandidate(&c, testInputs)
	// +3 time, +3 title, -1 section.
	if c.Score != 5 {
		t.Fatalf("score = %d, reasons %v", c.Score, c.Reasons)
	}
}

func TestTitleMentionsWholeWordShortKeywords(t *testing.T) {
	keywords := countryKeywords("united states", "USD")
	if titleMentions("Business leaders react to rate decision", keywords) {
		t.Fatal(`"us" must not match inside "business"`)
	}
	if !titleMentions("U.S. inflation cools", keywords) {
		t.Fatal(`"U.S." must match after dot stripping`)
	}
	if !titleMentions("United States consumer prices rise", keywords) {
		t.Fatal("full country name must match")
	}
}

func TestRankCandidatesTieBreaksEarlier(t *testing.T) {
	early := candidateAt(30*time.Minute, "early", "", "https://news.example.com/a/")
	late := candidateAt(90*time.Minute, "late", "", "https://news.example.com/b/")
	early.Score, late.Score = 6, 6
	dropped := candidateAt(time.Minute, "dropped", "", "https://news.example.com/c/")
	dropped.Dropped = true

	ranked := rankCandidates([]Candidate{late, dropped, early})
	if len(ranked) != 2 {
		t.Fatalf("ranked = %+v", ranked)
	}
	if ranked[0].Title != "early" {
		t.Fatalf("tie must break toward earlier publication, got %q first", ranked[0].Title)
	}
}
