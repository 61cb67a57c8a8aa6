package workflow

import (
	"time"

	"macrowatch/internal/config"
)

// BackoffDelay returns the wait before retry attempt n (1-based): the base
// delay doubled per prior attempt, capped at the configured maximum.
func BackoffDelay(cfg config.Workflow, attempt int) time.Duration {
	base := time.Duration(cfg.RetryBaseSeconds) * time.Second
	max := time.Duration(cfg.RetryMaxSeconds) * time.Second
	if attempt < 1 {
		attempt = 1
	}
	// 2^30s already exceeds any sane cap; avoid shifting into overflow.
	if attempt > 30 {
		return max
	}
	delay := base << (attempt - 1)
	if delay > max || delay <= 0 {
		return max
	}
	return delay
}

// NextAttemptAt computes the absolute deadline persisted for the next retry.
func NextAttemptAt(cfg config.Workflow, attempt int, now time.Time) time.Time {
	return now.Add(BackoffDelay(cfg, attempt)).UTC()
}
