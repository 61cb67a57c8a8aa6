package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const manifestName = "manifest.json"

// Writer provides a scoped write surface for one (event, run) pair. The run
// directory is created lazily on first write, every artifact lands via an
// atomic temp-then-rename replace, and the manifest is merged rather than
// replaced on each update.
type Writer struct {
	baseDir string
	eventID string
	runID   string
	now     func() time.Time
}

// NewWriter scopes a writer to baseDir/<eventID>/<runID>.
func NewWriter(baseDir, eventID, runID string) *Writer {
	return &Writer{
		baseDir: baseDir,
		eventID: eventID,
		runID:   runID,
		now:     time.Now,
	}
}

// WithClock overrides the time source (used in tests).
func (w *Writer) WithClock(now func() time.Time) *Writer {
	if now != nil {
		w.now = now
	}
	return w
}

// Dir returns the run directory path. It may not exist yet.
func (w *Writer) Dir() string {
	return filepath.Join(w.baseDir, w.eventID, w.runID)
}

// WriteJSON marshals v and stores it as the named artifact, recording the
// artifact in the manifest. Returns the artifact path.
func (w *Writer) WriteJSON(name string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode artifact %s: %w", name, err)
	}
	return w.writeArtifact(name, data)
}

// WriteText stores free text as the named artifact, recording it in the
// manifest. Returns the artifact path.
func (w *Writer) WriteText(name, text string) (string, error) {
	return w.writeArtifact(name, []byte(text))
}

func (w *Writer) writeArtifact(name string, data []byte) (string, error) {
	if err := w.ensureDir(); err != nil {
		return "", err
	}
	path := filepath.Join(w.Dir(), name)
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)
	err := w.PatchManifest(map[string]any{
		"artifacts": map[string]any{
			name: map[string]any{
				"path":       path,
				"bytes":      len(data),
				"sha256":     hex.EncodeToString(sum[:]),
				"written_at": w.now().UTC().Format(time.RFC3339),
			},
		},
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// PatchManifest merges patch into the manifest: top-level keys union with the
// existing document, latest value winning on overlap. Map values one level
// deep (such as the artifacts index) are merged key-wise rather than
// replaced. The manifest is re-stamped on every patch.
func (w *Writer) PatchManifest(patch map[string]any) error {
	if err := w.ensureDir(); err != nil {
		return err
	}

	manifest, err := w.ReadManifest()
	if err != nil {
		return err
	}

	for key, value := range patch {
		if nested, ok := value.(map[string]any); ok {
			if existing, ok := manifest[key].(map[string]any); ok {
				for k, v := range nested {
					existing[k] = v
				}
				continue
			}
		}
		manifest[key] = value
	}
	manifest["event_id"] = w.eventID
	manifest["run_id"] = w.runID
	manifest["updated_at"] = w.now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return writeFileAtomic(filepath.Join(w.Dir(), manifestName), data)
}

// ReadManifest returns the current manifest, or an empty map when none exists.
func (w *Writer) ReadManifest() (map[string]any, error) {
	data, err := os.ReadFile(filepath.Join(w.Dir(), manifestName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	manifest := map[string]any{}
	if err := json.Unmarshal(data, &manifest); err != nil {
		// A mangled manifest is rebuilt from scratch; artifacts stay intact.
		return map[string]any{}, nil
	}
	return manifest, nil
}

func (w *Writer) ensureDir() error {
	if err := os.MkdirAll(w.Dir(), 0o755); err != nil {
		return fmt.Errorf("create run directory: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp artifact: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp artifact: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace artifact: %w", err)
	}
	return nil
}
