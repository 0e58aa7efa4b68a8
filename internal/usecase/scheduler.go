package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"MoodScanner/internal/ports"
)

// Scheduler wires the interval driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logger.With("component", "scheduler")}
}

// Start registers the pipeline with the provided scheduler. Run errors are
// logged; a failed run never stops later ones.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		s.logger.Info("scheduled run", "trigger", trigger)
		res, err := s.pipeline.Run(ctx, RunOptions{})
		var reportErr *ReportError
		switch {
		case err == nil:
			s.logger.Info("scheduled run finished", "run_id", res.RunID, "articles", len(res.Articles))
		case errors.As(err, &reportErr):
			s.logger.Error("scheduled run produced no report", "run_id", res.RunID, "error", err)
		default:
			s.logger.Error("scheduled run failed", "run_id", res.RunID, "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
