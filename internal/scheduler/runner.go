// Package scheduler runs the periodic refresh loop. It is a thin timer layer:
// all refresh policy (cool-down, daily caching, coalescing) lives in the
// coordinator, so a tick that overlaps an in-flight refresh simply shares its
// outcome.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"meteopoll/internal/types"
)

// Refresher is the coordinator entry point the runner drives.
type Refresher interface {
	Refresh(ctx context.Context) (*types.WeatherData, error)
}

// Runner triggers a refresh on a fixed interval.
type Runner struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

// RunnerConfig holds the construction parameters for a Runner.
type RunnerConfig struct {
	Refresher Refresher
	Interval  time.Duration
	// Timeout bounds each triggered refresh. Zero means the interval.
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewRunner creates a Runner with the given configuration.
func NewRunner(cfg RunnerConfig) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = cfg.Interval
	}
	return &Runner{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: cfg.Refresher,
		interval:  cfg.Interval,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start schedules the periodic refresh job and starts the underlying
// scheduler in the background.
func (r *Runner) Start() error {
	_, err := r.scheduler.Every(r.interval).Do(r.tick)
	if err != nil {
		return err
	}
	r.scheduler.StartAsync()
	r.logger.Info("refresh runner started",
		"interval", r.interval.String(),
	)
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (r *Runner) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}

// tick runs one scheduled refresh. Failures are logged, never fatal: the next
// tick is the retry.
func (r *Runner) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := time.Now()
	data, err := r.refresher.Refresh(ctx)
	if err != nil {
		if types.IsRateLimited(err) {
			r.logger.WarnContext(ctx, "scheduled refresh skipped by rate limit",
				"error", err,
			)
			return
		}
		r.logger.ErrorContext(ctx, "scheduled refresh failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}

	r.logger.InfoContext(ctx, "scheduled refresh complete",
		"hourly_entries", len(data.Hourly),
		"daily_entries", len(data.Daily),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
