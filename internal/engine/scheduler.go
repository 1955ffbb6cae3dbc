package engine

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Runner runs one round of cycles for all projects.
type Runner interface {
	RunAll(ctx context.Context) ([]ProjectReport, error)
}

// Scheduler runs a Runner on a fixed interval.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *zap.Logger
}

// NewScheduler creates a scheduler.
func NewScheduler(runner Runner, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{runner: runner, interval: interval, logger: logger}
}

// Start runs immediately and then on every tick until ctx is done. It blocks
// and returns nil once ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	start := time.Now()
	reports, err := s.runner.RunAll(ctx)
	fields := []zap.Field{
		zap.Int("projects", len(reports)),
		zap.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		failures := multierr.Errors(err)
		for _, f := range failures {
			s.logger.Warn("project cycle failed", zap.Error(f))
		}
		s.logger.Warn("scheduled round finished with failures", append(fields, zap.Int("failures", len(failures)))...)
		return
	}
	s.logger.Info("scheduled round finished", fields...)
}
