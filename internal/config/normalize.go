package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeIndicator()
	c.normalizeProviders()
	c.normalizeMedia()
	c.normalizeLLM()
	c.normalizeNotify()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StateFile, err = expandPath(c.Paths.StateFile); err != nil {
		return fmt.Errorf("paths.state_file: %w", err)
	}
	if c.Paths.SnapshotDir, err = expandPath(c.Paths.SnapshotDir); err != nil {
		return fmt.Errorf("paths.snapshot_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeIndicator() {
	c.Indicator.Country = strings.ToLower(strings.TrimSpace(c.Indicator.Country))
	if c.Indicator.Country == "" {
		c.Indicator.Country = defaultCountry
	}
	c.Indicator.Currency = strings.ToUpper(strings.TrimSpace(c.Indicator.Currency))
	if c.Indicator.Currency == "" {
		c.Indicator.Currency = defaultCurrency
	}
	c.Indicator.Importance = strings.ToLower(strings.TrimSpace(c.Indicator.Importance))
	if c.Indicator.Importance == "" {
		c.Indicator.Importance = defaultImportance
	}

	variants := make([]string, 0, len(c.Indicator.NameVariants))
	seen := make(map[string]struct{}, len(c.Indicator.NameVariants))
	for _, variant := range c.Indicator.NameVariants {
		normalized := strings.ToLower(strings.TrimSpace(variant))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		variants = append(variants, normalized)
	}
	if len(variants) == 0 {
		variants = defaultNameVariants()
	}
	c.Indicator.NameVariants = variants
}

func (c *Config) normalizeProviders() {
	c.Calendar.BaseURL = strings.TrimSpace(c.Calendar.BaseURL)
	if c.Calendar.BaseURL == "" {
		c.Calendar.BaseURL = defaultCalendarBaseURL
	}
	if c.Calendar.RequestTimeout <= 0 {
		c.Calendar.RequestTimeout = defaultProviderTimeout
	}
	c.Reports.BaseURL = strings.TrimSpace(c.Reports.BaseURL)
	if c.Reports.BaseURL == "" {
		c.Reports.BaseURL = defaultReportsBaseURL
	}
	if c.Reports.RequestTimeout <= 0 {
		c.Reports.RequestTimeout = defaultProviderTimeout
	}
}

func (c *Config) normalizeMedia() {
	c.Media.SearchURL = strings.TrimSpace(c.Media.SearchURL)
	if c.Media.SearchURL == "" {
		c.Media.SearchURL = defaultSearchURL
	}
	if c.Media.MaxCandidates <= 0 {
		c.Media.MaxCandidates = defaultMaxCandidates
	}
	if c.Media.MaxCandidates < minCandidateCount {
		c.Media.MaxCandidates = minCandidateCount
	}
	if c.Media.BatchSize <= 0 {
		c.Media.BatchSize = defaultBatchSize
	}
	if c.Media.PreviewChars <= 0 {
		c.Media.PreviewChars = defaultPreviewChars
	}
	if c.Media.BodyCapChars <= 0 {
		c.Media.BodyCapChars = defaultBodyCapChars
	}
	if c.Media.MinBodyChars <= 0 {
		c.Media.MinBodyChars = defaultMinBodyChars
	}
	if c.Media.ScoreThreshold <= 0 {
		c.Media.ScoreThreshold = defaultScoreThreshold
	}
	if c.Media.RequestTimeout <= 0 {
		c.Media.RequestTimeout = defaultMediaTimeout
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("MACROWATCH_LLM_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeNotify() {
	c.Notify.Topic = strings.TrimSpace(c.Notify.Topic)
	if c.Notify.RequestTimeout <= 0 {
		c.Notify.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.TickInterval <= 0 {
		c.Workflow.TickInterval = defaultTickInterval
	}
	if c.Workflow.MaxRetries <= 0 {
		c.Workflow.MaxRetries = defaultMaxRetries
	}
	if c.Workflow.RetryBaseSeconds <= 0 {
		c.Workflow.RetryBaseSeconds = defaultRetryBaseSeconds
	}
	if c.Workflow.RetryMaxSeconds <= 0 {
		c.Workflow.RetryMaxSeconds = defaultRetryMaxSeconds
	}
	if c.Workflow.DiscoveryPastDays <= 0 {
		c.Workflow.DiscoveryPastDays = defaultDiscoveryPastDays
	}
	if c.Workflow.DiscoveryAheadDays <= 0 {
		c.Workflow.DiscoveryAheadDays = defaultDiscoveryAheadDays
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
