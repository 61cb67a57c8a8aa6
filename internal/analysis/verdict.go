package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"macrowatch/internal/logging"
	"macrowatch/internal/services/llm"
	"macrowatch/internal/store"
	"macrowatch/internal/textutil"
)

// Verdict sources recorded on the rendered report.
const (
	VerdictSourceModel    = "model"
	VerdictSourceTemplate = "template"
)

const systemPrompt = `You are a macroeconomic analyst. You receive evidence
cards, claim cards, and historical context for one economic release. Respond
with a single JSON object: {"headline": string, "stance": string,
"key_points": [string], "risk_notes": [string]}. State only what the
evidence supports. Keep the headline under 120 characters.`

// Verdict is the analytical summary carried into the report.
type Verdict struct {
	Headline  string   `json:"headline"`
	Stance    string   `json:"stance"`
	KeyPoints []string `json:"key_points"`
	RiskNotes []string `json:"risk_notes,omitempty"`
	Source    string   `json:"source"`
}

// Analyzer produces verdicts, preferring the completion service and falling
// back to deterministic templated content. Analyze never fails: a degenerate
// model response must not block the pipeline.
type Analyzer struct {
	client *llm.Client
	logger *slog.Logger
}

// NewAnalyzer builds an analyzer over the given completion client, which may
// be unconfigured.
func NewAnalyzer(client *llm.Client, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		client: client,
		logger: logging.NewComponentLogger(logger, "analysis"),
	}
}

// Verdict produces the analytical summary for one release.
func (a *Analyzer) Verdict(ctx context.Context, event *store.ReleaseEvent, evidence []EvidenceCard, claims []ClaimCard, historical []HistoricalEntry) Verdict {
	if a.client == nil || !a.client.Configured() {
		a.logger.Info("completion service not configured, using template verdict",
			logging.String(logging.FieldEventID, event.ID))
		return fallbackVerdict(event, evidence, claims)
	}

	prompt, err := buildUserPrompt(event, evidence, claims, historical)
	if err != nil {
		a.logger.Warn("verdict prompt build failed, using template verdict",
			logging.String(logging.FieldEventID, event.ID),
			logging.Error(err))
		return fallbackVerdict(event, evidence, claims)
	}

	content, err := a.client.CompleteJSON(ctx, systemPrompt, prompt)
	if err != nil {
		a.logger.Warn("model verdict failed, using template verdict",
			logging.String(logging.FieldEventID, event.ID),
			logging.Error(err))
		return fallbackVerdict(event, evidence, claims)
	}

	var verdict Verdict
	if err := llm.DecodeJSON(content, &verdict); err != nil || strings.TrimSpace(verdict.Headline) == "" {
		a.logger.Warn("model verdict unusable, using template verdict",
			logging.String(logging.FieldEventID, event.ID),
			logging.Error(err))
		return fallbackVerdict(event, evidence, claims)
	}
	verdict.Source = VerdictSourceModel
	return verdict
}

func buildUserPrompt(event *store.ReleaseEvent, evidence []EvidenceCard, claims []ClaimCard, historical []HistoricalEntry) (string, error) {
	payload := map[string]any{
		"event": map[string]string{
			"date":      event.Date,
			"country":   event.Country,
			"indicator": event.Event,
			"actual":    event.Actual,
			"consensus": event.Consensus,
			"previous":  event.Previous,
		},
		"evidence":   evidence,
		"claims":     claims,
		"historical": historical,
	}
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode verdict prompt: %w", err)
	}
	return string(encoded), nil
}

// fallbackVerdict renders a deterministic verdict straight from the cards.
func fallbackVerdict(event *store.ReleaseEvent, evidence []EvidenceCard, claims []ClaimCard) Verdict {
	direction := SurpriseDirection(event)

	headline := textutil.NormalizeSpace(fmt.Sprintf("%s %s", event.Event, event.Date))
	if event.Actual != "" {
		headline = textutil.NormalizeSpace(fmt.Sprintf("%s: %s, %s", headline, event.Actual, direction))
	}

	points := make([]string, 0, len(claims))
	for _, claim := range claims {
		points = append(points, claim.Claim)
	}

	var risks []string
	for _, card := range evidence {
		if card.Kind == "media" && card.Confidence == ConfidenceLow {
			reason := card.Fields["reason"]
			if reason == "" {
				reason = "media coverage unavailable"
			}
			risks = append(risks, "independent media corroboration degraded: "+reason)
		}
	}
	if direction == SurpriseUnknown {
		risks = append(risks, "actual or consensus figure missing, surprise direction not computed")
	}

	return Verdict{
		Headline:  headline,
		Stance:    direction,
		KeyPoints: points,
		RiskNotes: risks,
		Source:    VerdictSourceTemplate,
	}
}
