package workflow

import (
	"testing"
	"time"

	"macrowatch/internal/config"
)

func TestBackoffDelaySchedule(t *testing.T) {
	cfg := config.Default().Workflow

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 30 * time.Second},
		{2, 60 * time.Second},
		{3, 2 * time.Minute},
		{4, 4 * time.Minute},
		{5, 8 * time.Minute},
		{6, 16 * time.Minute},
		{7, 32 * time.Minute},
		{8, time.Hour},
		{9, time.Hour},
		{50, time.Hour},
	}
	for _, tc := range cases {
		if got := BackoffDelay(cfg, tc.attempt); got != tc.want {
			t.Errorf("attempt %d: got %s, want %s", tc.attempt, got, tc.want)
		}
	}
}

func TestNextAttemptAtIsAbsolute(t *testing.T) {
	cfg := config.Default().Workflow
	now := time.Date(2026, 8, 12, 13, 0, 0, 0, time.UTC)

	next := NextAttemptAt(cfg, 2, now)
	if want := now.Add(time.Minute); !next.Equal(want) {
		t.Fatalf("next = %s, want %s", next, want)
	}
	if next.Location() != time.UTC {
		t.Fatalf("deadline must be UTC, got %s", next.Location())
	}
}
