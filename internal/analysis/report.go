package analysis

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"macrowatch/internal/store"
)

// Report is everything the rendered document carries.
type Report struct {
	Event       *store.ReleaseEvent
	Verdict     Verdict
	Evidence    []EvidenceCard
	Claims      []ClaimCard
	Historical  []HistoricalEntry
	GeneratedAt time.Time
}

var reportTemplate = template.Must(template.New("report").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(`# {{.Verdict.Headline}}

**{{.Event.Event}}** ({{.Event.Country}}) on {{.Event.Date}}. Stance: {{.Verdict.Stance}}.

| Figure | Value |
|---|---|
| Actual | {{or .Event.Actual "n/a"}} |
| Consensus | {{or .Event.Consensus "n/a"}} |
| Previous | {{or .Event.Previous "n/a"}} |

## Key points
{{range .Verdict.KeyPoints}}- {{.}}
{{end}}{{if .Verdict.RiskNotes}}
## Risk notes
{{range .Verdict.RiskNotes}}- {{.}}
{{end}}{{end}}
## Evidence
{{range .Evidence}}- [{{.ID}}] {{.Kind}} ({{.Confidence}} confidence){{if .Source}}: {{.Source}}{{end}}
{{end}}
## Claims
{{range .Claims}}- [{{.ID}}] {{.Claim}} (evidence: {{join .EvidenceIDs ", "}})
{{end}}
---
Generated {{.GeneratedAt.UTC.Format "2006-01-02T15:04:05Z07:00"}} by macrowatch ({{.Verdict.Source}} verdict).
`))

// RenderMarkdown renders the report document.
func RenderMarkdown(report Report) (string, error) {
	var b strings.Builder
	if err := reportTemplate.Execute(&b, report); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return b.String(), nil
}
