package daemon

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"macrowatch/internal/analysis"
	"macrowatch/internal/config"
	"macrowatch/internal/logging"
	"macrowatch/internal/notify"
	"macrowatch/internal/scoring"
	"macrowatch/internal/services"
	"macrowatch/internal/services/calendar"
	"macrowatch/internal/services/llm"
	"macrowatch/internal/services/reports"
	"macrowatch/internal/services/webfetch"
	"macrowatch/internal/store"
	"macrowatch/internal/workflow"
)

// Daemon wires the full pipeline together and runs the tick scheduler under
// a single-instance lock.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *store.Store
	driver    *workflow.Driver
	scheduler *workflow.Scheduler
	lock      *flock.Flock
}

// New builds a daemon from configuration. All collaborators are constructed
// here; nothing touches the network until Run.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "daemon", "prepare directories", "", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		return nil, err
	}

	fetcher := webfetch.NewHTTPClient(time.Duration(cfg.Media.RequestTimeout) * time.Second)
	completion := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})

	driver := workflow.NewDriver(cfg, workflow.Deps{
		Store:    st,
		Calendar: calendar.NewHTTPProvider(cfg),
		Reports:  reports.NewHTTPProvider(cfg),
		Fetcher:  fetcher,
		Media:    scoring.NewEngine(cfg, fetcher, logger),
		Analyzer: analysis.NewAnalyzer(completion, logger),
		Notifier: notify.NewService(cfg),
		Logger:   logger,
	})

	interval := time.Duration(cfg.Workflow.TickInterval) * time.Second
	d := &Daemon{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "daemon"),
		store:     st,
		driver:    driver,
		scheduler: workflow.NewScheduler(interval, driver.Tick, logger),
		lock:      flock.New(lockPath(cfg)),
	}
	return d, nil
}

func lockPath(cfg *config.Config) string {
	return filepath.Join(filepath.Dir(cfg.Paths.StateFile), "macrowatch.lock")
}

// Scheduler exposes the tick scheduler for interval reconfiguration.
func (d *Daemon) Scheduler() *workflow.Scheduler {
	return d.scheduler
}

// RunOnce executes a single tick and returns.
func (d *Daemon) RunOnce(ctx context.Context) error {
	return d.driver.Tick(ctx)
}

// Run acquires the single-instance lock and drives the scheduler until the
// context is cancelled or a termination signal arrives. Cancellation is a
// clean shutdown, not an error.
func (d *Daemon) Run(ctx context.Context) error {
	locked, err := d.lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "daemon", "acquire lock", d.lock.Path(), err)
	}
	if !locked {
		return services.Wrap(services.ErrConfiguration, "daemon", "acquire lock",
			"another instance is already running", nil)
	}
	defer func() {
		_ = d.lock.Unlock()
		_ = os.Remove(d.lock.Path())
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	d.logger.Info("daemon started",
		logging.String("state_file", d.cfg.Paths.StateFile),
		logging.Duration("tick_interval", d.scheduler.Interval()))

	err = d.scheduler.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	d.logger.Info("daemon stopped")
	return nil
}
