package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/phrazzld/vocabflow/internal/config"
)

// TaskMaintainer is the part of the task runner the jobs drive.
type TaskMaintainer interface {
	RetryFailed(ctx context.Context) (int, error)
	ResetStuck(ctx context.Context) (int, error)
}

// Config controls how often each job runs.
type Config struct {
	RetryInterval      time.Duration
	StuckCheckInterval time.Duration
	// RunTimeout bounds a single job run.
	RunTimeout time.Duration
}

// ConfigFromTask derives job intervals from the task settings. Stuck tasks
// are checked at half their age threshold.
func ConfigFromTask(cfg config.TaskConfig) Config {
	stuck := time.Duration(cfg.StuckTaskAgeMinutes) * time.Minute / 2
	if stuck < time.Minute {
		stuck = time.Minute
	}
	return Config{
		RetryInterval:      time.Duration(cfg.RetryIntervalMinutes) * time.Minute,
		StuckCheckInterval: stuck,
		RunTimeout:         time.Minute,
	}
}

// Scheduler owns the gocron scheduler for task maintenance.
type Scheduler struct {
	cron       *gocron.Scheduler
	maintainer TaskMaintainer
	logger     *slog.Logger
	timeout    time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// New registers the maintenance jobs. Nothing runs until Start.
func New(maintainer TaskMaintainer, cfg Config, logger *slog.Logger) (*Scheduler, error) {
	if maintainer == nil {
		return nil, errors.New("task maintainer cannot be nil")
	}
	if cfg.RetryInterval <= 0 || cfg.StuckCheckInterval <= 0 {
		return nil, fmt.Errorf("job intervals must be positive: retry=%s stuck=%s",
			cfg.RetryInterval, cfg.StuckCheckInterval)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:       gocron.NewScheduler(time.UTC),
		maintainer: maintainer,
		logger:     logger.With(slog.String("component", "jobs")),
		timeout:    cfg.RunTimeout,
		ctx:        ctx,
		cancel:     cancel,
	}
	s.cron.SingletonModeAll()
	s.cron.WaitForScheduleAll()

	if _, err := s.cron.Every(cfg.RetryInterval).Tag("retry_failed").Do(s.retryFailed); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to schedule retry job: %w", err)
	}
	if _, err := s.cron.Every(cfg.StuckCheckInterval).Tag("reset_stuck").Do(s.resetStuck); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to schedule stuck task job: %w", err)
	}
	return s, nil
}

// Start runs the jobs in the background.
func (s *Scheduler) Start() {
	s.cron.StartAsync()
	s.logger.Info("maintenance jobs started", slog.Int("jobs", s.cron.Len()))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	s.cron.Stop()
	s.logger.Info("maintenance jobs stopped")
}

func (s *Scheduler) retryFailed() {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	n, err := s.maintainer.RetryFailed(ctx)
	if err != nil {
		s.logger.Error("failed to retry failed tasks", slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		s.logger.Info("requeued failed tasks", slog.Int("count", n))
	}
}

func (s *Scheduler) resetStuck() {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	n, err := s.maintainer.ResetStuck(ctx)
	if err != nil {
		s.logger.Error("failed to reset stuck tasks", slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		s.logger.Warn("requeued stuck tasks", slog.Int("count", n))
	}
}
