package releases

import (
	"testing"
	"time"

	"macrowatch/internal/config"
	"macrowatch/internal/services/calendar"
)

func sampleRow() calendar.Row {
	return calendar.Row{
		Date:       "2026-08-12",
		Country:    "United States",
		Category:   "Inflation",
		Event:      "CPI (YoY)",
		Consensus:  "2.9%",
		Previous:   "3.0%",
		Importance: "high",
		Currency:   "USD",
		CalendarID: "cal-1",
		SourceURL:  "https://example.com/cpi",
	}
}

func TestResolveEventKeyStable(t *testing.T) {
	a := sampleRow()
	b := sampleRow()
	b.Country = "  UNITED   STATES "
	b.Event = "cpi (yoy)"
	b.Actual = "3.1%" // values do not participate in identity

	if ResolveEventKey(a) != ResolveEventKey(b) {
		t.Fatalf("keys differ: %q vs %q", ResolveEventKey(a), ResolveEventKey(b))
	}
	if EventID(ResolveEventKey(a)) != EventID(ResolveEventKey(b)) {
		t.Fatal("ids differ for identical identity")
	}
}

func TestEventIDDistinguishesRows(t *testing.T) {
	a := sampleRow()
	b := sampleRow()
	b.Date = "2026-09-11"
	if EventID(ResolveEventKey(a)) == EventID(ResolveEventKey(b)) {
		t.Fatal("different dates must yield different ids")
	}
}

func TestParseNumeric(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
		nil_ bool
	}{
		{"0.3%", 0.3, false},
		{"-0.1%", -0.1, false},
		{"+2.9%", 2.9, false},
		{"3,250", 3250, false},
		{"250K", 250000, false},
		{"1.5M", 1500000, false},
		{"", 0, true},
		{"n/a", 0, true},
	}
	for _, tc := range cases {
		got := ParseNumeric(tc.raw)
		if tc.nil_ {
			if got != nil {
				t.Fatalf("%q: expected nil, got %v", tc.raw, *got)
			}
			continue
		}
		if got == nil || *got != tc.want {
			t.Fatalf("%q: got %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestMatchesIndicator(t *testing.T) {
	indicator := config.Indicator{
		Country:      "united states",
		NameVariants: []string{"cpi", "consumer price index"},
	}

	row := sampleRow()
	if !MatchesIndicator(row, indicator) {
		t.Fatal("expected CPI row to match")
	}

	row.Event = "Retail Sales"
	row.Category = "Consumer Price Index"
	if !MatchesIndicator(row, indicator) {
		t.Fatal("expected category fallback to match")
	}

	row.Category = "Retail"
	if MatchesIndicator(row, indicator) {
		t.Fatal("non-CPI row must not match")
	}

	row = sampleRow()
	row.Country = "Canada"
	if MatchesIndicator(row, indicator) {
		t.Fatal("country mismatch must not match")
	}
}

func TestMergePreservesExistingValues(t *testing.T) {
	now := time.Date(2026, 8, 12, 12, 0, 0, 0, time.UTC)
	event := FromRow(sampleRow(), now)
	if event.ActualValue != nil {
		t.Fatal("sample row has no actual yet")
	}

	update := sampleRow()
	update.Actual = "3.1%"
	update.Consensus = ""
	later := now.Add(time.Hour)
	Merge(&event, update, later)

	if event.Actual != "3.1%" || event.ActualValue == nil || *event.ActualValue != 3.1 {
		t.Fatalf("actual not merged: %+v", event)
	}
	if event.Consensus != "2.9%" {
		t.Fatal("empty consensus must not erase existing value")
	}
	if !event.UpdatedAt.Equal(later) {
		t.Fatal("updatedAt not bumped")
	}

	Merge(&event, update, later)
	if len(event.SourceURLs) != 1 {
		t.Fatalf("source URLs must dedupe: %v", event.SourceURLs)
	}
}
