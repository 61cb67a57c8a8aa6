package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and state-file configuration.
type Paths struct {
	StateFile   string `toml:"state_file"`
	SnapshotDir string `toml:"snapshot_dir"`
	LogDir      string `toml:"log_dir"`
}

// Indicator describes the tracked economic indicator.
type Indicator struct {
	Country      string   `toml:"country"`
	Currency     string   `toml:"currency"`
	NameVariants []string `toml:"name_variants"`
	Importance   string   `toml:"importance"`
}

// Calendar contains configuration for the economic calendar provider.
type Calendar struct {
	BaseURL        string `toml:"base_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Reports contains configuration for the official report provider.
type Reports struct {
	BaseURL        string `toml:"base_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Media contains configuration for media candidate discovery and scoring.
type Media struct {
	SearchURL        string `toml:"search_url"`
	MaxCandidates    int    `toml:"max_candidates"`
	BatchSize        int    `toml:"batch_size"`
	PreviewChars     int    `toml:"preview_chars"`
	BodyCapChars     int    `toml:"body_cap_chars"`
	MinBodyChars     int    `toml:"min_body_chars"`
	ScoreThreshold   int    `toml:"score_threshold"`
	RequestTimeout   int    `toml:"request_timeout"`
	FullFetchEnabled bool   `toml:"full_fetch_enabled"`
}

// LLM contains completion service connection settings.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Notify contains configuration for ntfy push delivery.
type Notify struct {
	Topic          string `toml:"topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Workflow contains daemon timing and retry policy settings.
type Workflow struct {
	TickInterval       int `toml:"tick_interval"`
	MaxRetries         int `toml:"max_retries"`
	RetryBaseSeconds   int `toml:"retry_base_seconds"`
	RetryMaxSeconds    int `toml:"retry_max_seconds"`
	DiscoveryPastDays  int `toml:"discovery_past_days"`
	DiscoveryAheadDays int `toml:"discovery_ahead_days"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for macrowatch.
//
// Configuration sections by subsystem:
//   - Paths: state file, snapshot directory, log directory
//   - Indicator: tracked country/indicator identity and name variants
//   - Calendar: economic calendar provider endpoint
//   - Reports: official report provider endpoint
//   - Media: candidate discovery and scoring knobs
//   - LLM: completion service connection settings
//   - Notify: ntfy push delivery settings
//   - Workflow: tick interval and retry/backoff policy
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Indicator Indicator `toml:"indicator"`
	Calendar  Calendar  `toml:"calendar"`
	Reports   Reports   `toml:"reports"`
	Media     Media     `toml:"media"`
	LLM       LLM       `toml:"llm"`
	Notify    Notify    `toml:"notify"`
	Workflow  Workflow  `toml:"workflow"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/macrowatch/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	projectPath, err := filepath.Abs("macrowatch.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories macrowatch needs at runtime.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Paths.StateFile),
		c.Paths.SnapshotDir,
		c.Paths.LogDir,
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// WriteSample writes the embedded sample configuration to the given path.
// It refuses to overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return filepath.Abs(trimmed)
}
