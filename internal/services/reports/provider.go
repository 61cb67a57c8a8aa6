package reports

import (
	"context"
	"time"
)

// Report is one official-report reference. Excerpt may be empty, in which
// case the caller falls back to fetching OfficialReportURL through the
// generic web-fetch collaborator.
type Report struct {
	ReleaseDate       string `json:"release_date"`
	Event             string `json:"event"`
	OfficialReportURL string `json:"official_report_url"`
	Excerpt           string `json:"excerpt,omitempty"`
}

// Window is an inclusive date range for report queries.
type Window struct {
	From time.Time
	To   time.Time
}

// Provider locates official statistical-agency reports for an indicator.
type Provider interface {
	FindReports(ctx context.Context, country, indicator string, window Window) ([]Report, error)
}
