package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"macrowatch/internal/logging"
)

// Scheduler drives ticks cooperatively: one tick runs at a time, the next
// is armed only after the previous completes, and the interval can be
// changed while running. A tick that panics or errors is logged and never
// stops the loop.
type Scheduler struct {
	tick   func(context.Context) error
	logger *slog.Logger

	mu       sync.Mutex
	interval time.Duration
	rearm    chan struct{}
}

// NewScheduler builds a scheduler around the given tick function.
func NewScheduler(interval time.Duration, tick func(context.Context) error, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		tick:     tick,
		logger:   logging.NewComponentLogger(logger, "scheduler"),
		interval: interval,
		rearm:    make(chan struct{}, 1),
	}
}

// Interval returns the current tick interval.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// SetInterval changes the tick interval. A loop parked on the old interval
// wakes immediately, runs one tick, and arms the next wait with the new
// duration.
func (s *Scheduler) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.mu.Lock()
	s.interval = interval
	s.mu.Unlock()

	select {
	case s.rearm <- struct{}{}:
	default:
	}
	s.logger.Info("tick interval updated", logging.Duration("interval", interval))
}

// Run executes ticks until the context is cancelled. The first tick fires
// immediately.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.safeTick(ctx)

		timer := time.NewTimer(s.Interval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		case <-s.rearm:
			timer.Stop()
		}
	}
}

// safeTick runs one tick, containing panics and logging failures.
func (s *Scheduler) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("tick panicked", logging.Any("panic", r))
		}
	}()
	started := time.Now()
	if err := s.tick(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("tick failed", logging.Error(err))
		return
	}
	s.logger.Debug("tick completed", logging.Duration("elapsed", time.Since(started)))
}
