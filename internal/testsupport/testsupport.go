// Package testsupport provides shared fixtures for package tests: temp-dir
// rooted configurations and pre-seeded stores.
package testsupport

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"macrowatch/internal/config"
	"macrowatch/internal/store"
)

// Config returns the default configuration rooted in a per-test temp dir,
// with no notification target configured.
func Config(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateFile = filepath.Join(dir, "state.json")
	cfg.Paths.SnapshotDir = filepath.Join(dir, "runs")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Notify.Topic = ""
	return &cfg
}

// Store opens a store over a fresh temp state file.
func Store(t *testing.T) (*store.Store, *config.Config) {
	t.Helper()
	cfg := Config(t)
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st, cfg
}

// SeedEvent inserts one release event with a status row in the given state
// and returns the stored event.
func SeedEvent(t *testing.T, st *store.Store, id string, state store.State) store.ReleaseEvent {
	t.Helper()
	now := time.Now().UTC()
	event := store.ReleaseEvent{
		ID:        id,
		EventKey:  "2026-08-12|united states|consumer price index (mom)|" + id,
		Date:      "2026-08-12",
		Country:   "united states",
		Event:     "Consumer Price Index (MoM)",
		Actual:    "0.3%",
		Consensus: "0.2%",
		Previous:  "0.2%",
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := st.Update(context.Background(), func(doc *store.Document) error {
		doc.ReleaseEvents = append(doc.ReleaseEvents, event)
		doc.ReleaseStatus = append(doc.ReleaseStatus, store.ReleaseStatus{
			EventID:   id,
			State:     state,
			CreatedAt: now,
			UpdatedAt: now,
		})
		return nil
	})
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return event
}
