package analysis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"macrowatch/internal/logging"
	"macrowatch/internal/services/llm"
)

func TestVerdictFallsBackWhenUnconfigured(t *testing.T) {
	analyzer := NewAnalyzer(llm.NewClient(llm.Config{}), logging.NewNop())
	event := testEvent()
	evidence := BuildEvidence(event, nil, nil)
	claims := BuildClaims(event, evidence)

	verdict := analyzer.Verdict(context.Background(), event, evidence, claims, nil)
	if verdict.Source != VerdictSourceTemplate {
		t.Fatalf("source = %q", verdict.Source)
	}
	if verdict.Stance != SurpriseAbove {
		t.Fatalf("stance = %q", verdict.Stance)
	}
	if !strings.Contains(verdict.Headline, "0.3%") {
		t.Fatalf("headline = %q", verdict.Headline)
	}
	if len(verdict.KeyPoints) == 0 {
		t.Fatal("template verdict must carry the claims as key points")
	}
}

func TestVerdictUsesModelOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":
			"{\"headline\":\"CPI above consensus\",\"stance\":\"hot\",\"key_points\":[\"a\"]}"}}]}`))
	}))
	defer server.Close()

	client := llm.NewClient(
		llm.Config{APIKey: "key", BaseURL: server.URL, Model: "m"},
		llm.WithRetryMaxAttempts(1),
		llm.WithSleeper(func(time.Duration) {}),
	)
	analyzer := NewAnalyzer(client, logging.NewNop())
	event := testEvent()

	verdict := analyzer.Verdict(context.Background(), event, nil, nil, nil)
	if verdict.Source != VerdictSourceModel {
		t.Fatalf("source = %q", verdict.Source)
	}
	if verdict.Headline != "CPI above consensus" || verdict.Stance != "hot" {
		t.Fatalf("verdict: %+v", verdict)
	}
}

func TestVerdictFallsBackOnUnusableModelOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"stance\":\"no headline here\"}"}}]}`))
	}))
	defer server.Close()

	client := llm.NewClient(
		llm.Config{APIKey: "key", BaseURL: server.URL, Model: "m"},
		llm.WithRetryMaxAttempts(1),
		llm.WithSleeper(func(time.Duration) {}),
	)
	analyzer := NewAnalyzer(client, logging.NewNop())
	event := testEvent()
	evidence := BuildEvidence(event, nil, nil)

	verdict := analyzer.Verdict(context.Background(), event, evidence, BuildClaims(event, evidence), nil)
	if verdict.Source != VerdictSourceTemplate {
		t.Fatalf("missing headline must trigger the template fallback, got %+v", verdict)
	}
}

func TestRenderMarkdown(t *testing.T) {
	event := testEvent()
	evidence := BuildEvidence(event, &OfficialInput{URL: "https://www.bls.gov/cpi"}, nil)
	claims := BuildClaims(event, evidence)
	verdict := fallbackVerdict(event, evidence, claims)

	rendered, err := RenderMarkdown(Report{
		Event:       event,
		Verdict:     verdict,
		Evidence:    evidence,
		Claims:      claims,
		GeneratedAt: time.Date(2026, 8, 12, 15, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		"# " + verdict.Headline,
		"| Actual | 0.3% |",
		"ev-official",
		"cl-surprise",
		"2026-08-12T15:00:00Z",
	} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("rendered report missing %q:\n%s", want, rendered)
		}
	}
}
