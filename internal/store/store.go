package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"macrowatch/internal/config"
)

// Store manages the persisted release-state document. Every mutation goes
// through Update, which serializes writers via an in-process mutex plus a
// cross-process lock file, re-reads the document inside the critical section,
// and commits with an atomic temp-file-then-rename replace.
type Store struct {
	path     string
	lockPath string

	mu   sync.Mutex
	flk  *flock.Flock
	now  func() time.Time
}

// Open initializes a store for the configured state file, creating parent
// directories as needed.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return New(cfg.Paths.StateFile), nil
}

// New constructs a store for an explicit state-file path.
func New(path string) *Store {
	lockPath := path + ".lock"
	return &Store{
		path:     path,
		lockPath: lockPath,
		flk:      flock.New(lockPath),
		now:      time.Now,
	}
}

// Path returns the state-file path this store manages.
func (s *Store) Path() string {
	return s.path
}

// WithClock overrides the time source (used in tests).
func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

// Read returns the current document. A missing or malformed file yields an
// empty, schema-valid document; Read never fails on bad content.
func (s *Store) Read() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return EmptyDocument(), nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}
	return decodeDocument(data), nil
}

// Update applies mutator to the latest persisted document and commits the
// result atomically. Concurrent updates against the same store are fully
// serialized; if the write fails the mutation is not committed and the error
// is transient. The mutated document is returned on success.
func (s *Store) Update(ctx context.Context, mutator func(*Document) error) (*Document, error) {
	if mutator == nil {
		return nil, errors.New("store update: mutator required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.flk.TryLockContext(ctx, 25*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("store update: acquire lock: %w", err)
	}
	if !locked {
		return nil, errors.New("store update: lock unavailable")
	}
	defer func() {
		_ = s.flk.Unlock()
	}()

	doc, err := s.Read()
	if err != nil {
		return nil, err
	}

	if err := mutator(doc); err != nil {
		return nil, err
	}

	doc.Version = CurrentVersion
	doc.UpdatedAt = s.now().UTC()

	if err := s.writeAtomic(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Store) writeAtomic(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state document: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".state-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp state file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// decodeDocument tolerantly parses persisted state. Unknown fields are
// dropped and collections that are not arrays are coerced to empty arrays, so
// a corrupt file degrades to an empty document instead of an error.
func decodeDocument(data []byte) *Document {
	var raw struct {
		Version       int             `json:"version"`
		UpdatedAt     time.Time       `json:"updatedAt"`
		ReleaseEvents json.RawMessage `json:"release_events"`
		ReleaseStatus json.RawMessage `json:"release_status"`
		AnalysisRuns  json.RawMessage `json:"analysis_runs"`
	}
	doc := EmptyDocument()
	if err := json.Unmarshal(data, &raw); err != nil {
		return doc
	}
	if raw.Version > 0 {
		doc.Version = raw.Version
	}
	doc.UpdatedAt = raw.UpdatedAt
	doc.ReleaseEvents = decodeCollection[ReleaseEvent](raw.ReleaseEvents)
	doc.ReleaseStatus = decodeCollection[ReleaseStatus](raw.ReleaseStatus)
	doc.AnalysisRuns = decodeCollection[AnalysisRun](raw.AnalysisRuns)
	return doc
}

func decodeCollection[T any](raw json.RawMessage) []T {
	if len(raw) == 0 {
		return []T{}
	}
	var rows []T
	if err := json.Unmarshal(raw, &rows); err != nil || rows == nil {
		return []T{}
	}
	return rows
}
