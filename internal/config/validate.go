package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateIndicator(); err != nil {
		return err
	}
	if err := c.validateProviders(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateFile) == "" {
		return errors.New("paths.state_file must be set")
	}
	if strings.TrimSpace(c.Paths.SnapshotDir) == "" {
		return errors.New("paths.snapshot_dir must be set")
	}
	return nil
}

func (c *Config) validateIndicator() error {
	if c.Indicator.Country == "" {
		return errors.New("indicator.country must be set")
	}
	if len(c.Indicator.NameVariants) == 0 {
		return errors.New("indicator.name_variants must include at least one entry")
	}
	return nil
}

func (c *Config) validateProviders() error {
	for key, raw := range map[string]string{
		"calendar.base_url": c.Calendar.BaseURL,
		"reports.base_url":  c.Reports.BaseURL,
		"media.search_url":  c.Media.SearchURL,
	} {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute URL", key)
		}
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.BatchSize < 1 {
		return errors.New("media.batch_size must be >= 1")
	}
	if c.Media.MaxCandidates < minCandidateCount {
		return fmt.Errorf("media.max_candidates must be >= %d", minCandidateCount)
	}
	if c.Media.ScoreThreshold < 1 {
		return errors.New("media.score_threshold must be >= 1")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.tick_interval":      c.Workflow.TickInterval,
		"workflow.max_retries":        c.Workflow.MaxRetries,
		"workflow.retry_base_seconds": c.Workflow.RetryBaseSeconds,
		"workflow.retry_max_seconds":  c.Workflow.RetryMaxSeconds,
		"calendar.request_timeout":    c.Calendar.RequestTimeout,
		"reports.request_timeout":     c.Reports.RequestTimeout,
		"media.request_timeout":       c.Media.RequestTimeout,
		"notify.request_timeout":      c.Notify.RequestTimeout,
	}); err != nil {
		return err
	}
	if c.Workflow.RetryMaxSeconds < c.Workflow.RetryBaseSeconds {
		return errors.New("workflow.retry_max_seconds must be >= workflow.retry_base_seconds")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
