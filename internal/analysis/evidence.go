package analysis

import (
	"fmt"

	"macrowatch/internal/scoring"
	"macrowatch/internal/store"
	"macrowatch/internal/textutil"
)

const excerptChars = 500

// Confidence grades how much weight a piece of evidence carries.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// Surprise directions computed from the parsed actual/consensus values.
const (
	SurpriseAbove   = "above consensus"
	SurpriseBelow   = "below consensus"
	SurpriseInLine  = "in line with consensus"
	SurpriseUnknown = "unknown"
)

// EvidenceCard is one sourced fact the report builds on.
type EvidenceCard struct {
	ID          string            `json:"id"`
	Kind        string            `json:"kind"`
	Source      string            `json:"source,omitempty"`
	Excerpt     string            `json:"excerpt,omitempty"`
	ContentHash string            `json:"content_hash,omitempty"`
	Confidence  Confidence        `json:"confidence"`
	Fields      map[string]string `json:"fields,omitempty"`
}

// ClaimCard pairs a claim the report makes with the evidence supporting it.
type ClaimCard struct {
	ID          string   `json:"id"`
	Claim       string   `json:"claim"`
	EvidenceIDs []string `json:"evidence_ids"`
}

// OfficialInput is the official-report artifact handed to evidence building.
type OfficialInput struct {
	URL         string `json:"url"`
	Excerpt     string `json:"excerpt,omitempty"`
	ContentHash string `json:"content_hash,omitempty"`
}

// SurpriseDirection classifies the actual print against consensus using the
// parsed numeric values. Missing numbers yield SurpriseUnknown.
func SurpriseDirection(event *store.ReleaseEvent) string {
	if event.ActualValue == nil || event.ConsensusValue == nil {
		return SurpriseUnknown
	}
	switch {
	case *event.ActualValue > *event.ConsensusValue:
		return SurpriseAbove
	case *event.ActualValue < *event.ConsensusValue:
		return SurpriseBelow
	default:
		return SurpriseInLine
	}
}

// BuildEvidence derives the evidence cards for one release. The figures card
// always exists; official and media cards appear when their artifacts do.
// Official evidence is always high confidence; media confidence follows the
// scoring mode.
func BuildEvidence(event *store.ReleaseEvent, official *OfficialInput, media *scoring.Result) []EvidenceCard {
	cards := []EvidenceCard{{
		ID:         "ev-figures",
		Kind:       "figures",
		Confidence: ConfidenceHigh,
		Fields: map[string]string{
			"actual":    event.Actual,
			"consensus": event.Consensus,
			"previous":  event.Previous,
			"surprise":  SurpriseDirection(event),
		},
	}}

	if official != nil && official.URL != "" {
		cards = append(cards, EvidenceCard{
			ID:          "ev-official",
			Kind:        "official",
			Source:      official.URL,
			Excerpt:     textutil.Truncate(official.Excerpt, excerptChars),
			ContentHash: official.ContentHash,
			Confidence:  ConfidenceHigh,
		})
	}

	if media != nil {
		cards = append(cards, mediaEvidence(media))
	}
	return cards
}

func mediaEvidence(media *scoring.Result) EvidenceCard {
	card := EvidenceCard{
		ID:         "ev-media",
		Kind:       "media",
		Confidence: ConfidenceLow,
		Fields:     map[string]string{"mode": string(media.Mode)},
	}
	if media.Mode == scoring.ModeOK && media.Selected != nil {
		card.Confidence = ConfidenceHigh
		card.Source = media.Selected.URL
		card.Excerpt = textutil.Truncate(media.Selected.Body, excerptChars)
		card.ContentHash = media.Selected.ContentHash
		card.Fields["score"] = fmt.Sprintf("%d", media.Selected.Score)
		card.Fields["title"] = media.Selected.Title
	} else {
		card.Fields["reason"] = media.Reason
	}
	return card
}

// BuildClaims derives the claims the report may state, each tied to the
// evidence cards that support it.
func BuildClaims(event *store.ReleaseEvent, evidence []EvidenceCard) []ClaimCard {
	byID := make(map[string]EvidenceCard, len(evidence))
	for _, card := range evidence {
		byID[card.ID] = card
	}

	var claims []ClaimCard
	if event.Actual != "" {
		claims = append(claims, ClaimCard{
			ID:          "cl-print",
			Claim:       fmt.Sprintf("%s printed %s", event.Event, event.Actual),
			EvidenceIDs: []string{"ev-figures"},
		})
	}
	if direction := SurpriseDirection(event); direction != SurpriseUnknown && event.Consensus != "" {
		claims = append(claims, ClaimCard{
			ID:          "cl-surprise",
			Claim:       fmt.Sprintf("the print came in %s of %s", direction, event.Consensus),
			EvidenceIDs: []string{"ev-figures"},
		})
	}
	if official, ok := byID["ev-official"]; ok {
		claims = append(claims, ClaimCard{
			ID:          "cl-official",
			Claim:       "the figures are confirmed by the official statistical release",
			EvidenceIDs: []string{"ev-figures", official.ID},
		})
	}
	if media, ok := byID["ev-media"]; ok && media.Confidence == ConfidenceHigh {
		claims = append(claims, ClaimCard{
			ID:          "cl-media",
			Claim:       "independent media coverage corroborates the release",
			EvidenceIDs: []string{media.ID},
		})
	}
	return claims
}
