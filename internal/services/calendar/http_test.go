package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"macrowatch/internal/config"
)

func TestListEventsNormalizesRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("country"); got != "united states" {
			t.Errorf("country query: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"events":[
			{"date":"2026-08-12","country":"United States","event":"CPI (YoY)","forecast":"2.9%","previous":"3.0%","importance":"High","currency":"usd","id":"cal-1","url":"https://example.com/cpi"},
			{"date":"","country":"United States","event":"broken row"}
		]}`))
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Calendar.BaseURL = server.URL
	cfg.Calendar.RequestTimeout = 5
	provider := NewHTTPProvider(&cfg)

	window := Window{From: time.Now().AddDate(0, 0, -1), To: time.Now().AddDate(0, 0, 1)}
	rows, err := provider.ListEvents(context.Background(), "united states", "high", window)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row (broken row dropped), got %d", len(rows))
	}
	row := rows[0]
	if row.Consensus != "2.9%" {
		t.Fatalf("forecast mapped to consensus: %q", row.Consensus)
	}
	if row.Importance != "high" || row.Currency != "USD" {
		t.Fatalf("normalization failed: %+v", row)
	}
}

func TestListEventsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Calendar.BaseURL = server.URL
	provider := NewHTTPProvider(&cfg)

	if _, err := provider.ListEvents(context.Background(), "united states", "high", Window{From: time.Now(), To: time.Now()}); err == nil {
		t.Fatal("expected error for http 502")
	}
}
