package calendar

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

const userAgent = "macrowatch/0.1"

// HTTPProvider queries a JSON calendar API for scheduled events.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider builds a provider from configuration.
func NewHTTPProvider(cfg *config.Config) *HTTPProvider {
	timeout := time.Duration(cfg.Calendar.RequestTimeout) * time.Second
	return &HTTPProvider{
		baseURL: strings.TrimRight(cfg.Calendar.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type calendarResponse struct {
	Events []struct {
		Date       string          `json:"date"`
		Country    string          `json:"country"`
		Category   string          `json:"category"`
		Event      string          `json:"event"`
		Actual     string          `json:"actual"`
		Forecast   string          `json:"forecast"`
		Previous   string          `json:"previous"`
		Importance string          `json:"importance"`
		Currency   string          `json:"currency"`
		ID         string          `json:"id"`
		URL        string          `json:"url"`
		Extra      json.RawMessage `json:"extra"`
	} `json:"events"`
}

// ListEvents fetches calendar rows for the window, already filtered by
// country and minimum importance on the provider side where supported.
func (p *HTTPProvider) ListEvents(ctx context.Context, country, importance string, window Window) ([]Row, error) {
	query := url.Values{}
	query.Set("country", country)
	query.Set("importance", importance)
	query.Set("from", window.From.UTC().Format("2006-01-02"))
	query.Set("to", window.To.UTC().Format("2006-01-02"))

	endpoint := p.baseURL + "/events?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "calendar", "build request", endpoint, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternal, "calendar", "list events", "provider unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, services.Wrap(services.ErrExternal, "calendar", "list events", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrExternal, "calendar", "list events",
			fmt.Sprintf("http %d", resp.StatusCode), nil)
	}

	var parsed calendarResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, services.Wrap(services.ErrExternal, "calendar", "list events", "decode response", err)
	}

	rows := make([]Row, 0, len(parsed.Events))
	for _, ev := range parsed.Events {
		row := Row{
			Date:       strings.TrimSpace(ev.Date),
			Country:    strings.TrimSpace(ev.Country),
			Category:   strings.TrimSpace(ev.Category),
			Event:      strings.TrimSpace(ev.Event),
			Actual:     strings.TrimSpace(ev.Actual),
			Consensus:  strings.TrimSpace(ev.Forecast),
			Previous:   strings.TrimSpace(ev.Previous),
			Importance: strings.ToLower(strings.TrimSpace(ev.Importance)),
			Currency:   strings.ToUpper(strings.TrimSpace(ev.Currency)),
			CalendarID: strings.TrimSpace(ev.ID),
			SourceURL:  strings.TrimSpace(ev.URL),
		}
		if len(ev.Extra) > 0 {
			var extra map[string]any
			if err := json.Unmarshal(ev.Extra, &extra); err == nil {
				row.Raw = extra
			}
		}
		if row.Date == "" || row.Event == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
