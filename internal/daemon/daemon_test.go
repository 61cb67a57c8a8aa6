package daemon

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"macrowatch/internal/config"
	"macrowatch/internal/logging"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateFile = filepath.Join(dir, "state.json")
	cfg.Paths.SnapshotDir = filepath.Join(dir, "runs")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	return &cfg
}

func TestNewBuildsDaemon(t *testing.T) {
	d, err := New(testConfig(t), logging.NewNop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if d.Scheduler() == nil {
		t.Fatal("scheduler not wired")
	}
	if got := d.Scheduler().Interval(); got != 300*time.Second {
		t.Fatalf("interval = %s", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	// Point providers at unroutable endpoints so a tick fails fast instead
	// of hanging on a live network call.
	cfg.Calendar.BaseURL = "http://127.0.0.1:1"
	cfg.Reports.BaseURL = "http://127.0.0.1:1"
	cfg.Media.SearchURL = "http://127.0.0.1:1/?q="

	d, err := New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop on cancel")
	}
}

func TestSecondInstanceRefused(t *testing.T) {
	cfg := testConfig(t)
	cfg.Calendar.BaseURL = "http://127.0.0.1:1"
	cfg.Reports.BaseURL = "http://127.0.0.1:1"

	first, err := New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- first.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	second, err := New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := second.Run(ctx); err == nil {
		t.Fatal("second instance must be refused while the first holds the lock")
	}

	cancel()
	<-done
}
