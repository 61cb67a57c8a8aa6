package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"macrowatch/internal/config"
	"macrowatch/internal/services"
)

// HTTPProvider queries a JSON report index endpoint.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider builds a provider from configuration.
func NewHTTPProvider(cfg *config.Config) *HTTPProvider {
	timeout := time.Duration(cfg.Reports.RequestTimeout) * time.Second
	return &HTTPProvider{
		baseURL: strings.TrimRight(cfg.Reports.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// FindReports lists official report references for the indicator in the window.
func (p *HTTPProvider) FindReports(ctx context.Context, country, indicator string, window Window) ([]Report, error) {
	query := url.Values{}
	query.Set("country", country)
	query.Set("indicator", indicator)
	query.Set("from", window.From.UTC().Format("2006-01-02"))
	query.Set("to", window.To.UTC().Format("2006-01-02"))

	endpoint := p.baseURL + "/reports?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "reports", "build request", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternal, "reports", "find reports", "provider unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, services.Wrap(services.ErrExternal, "reports", "find reports", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrExternal, "reports", "find reports",
			fmt.Sprintf("http %d", resp.StatusCode), nil)
	}

	var parsed struct {
		Reports []Report `json:"reports"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, services.Wrap(services.ErrExternal, "reports", "find reports", "decode response", err)
	}

	kept := make([]Report, 0, len(parsed.Reports))
	for _, report := range parsed.Reports {
		report.OfficialReportURL = strings.TrimSpace(report.OfficialReportURL)
		if report.OfficialReportURL == "" {
			continue
		}
		kept = append(kept, report)
	}
	return kept, nil
}
