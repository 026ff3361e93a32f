package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Job is one unit of periodic work.
type Job interface {
	RunOnce(ctx context.Context) error
}

// JobFunc adapts a function to Job.
type JobFunc func(ctx context.Context) error

func (f JobFunc) RunOnce(ctx context.Context) error {
	return f(ctx)
}

// Loop runs Job with a fixed delay between the end of one tick and the start
// of the next, so ticks never overlap. A tick that started finishes even if
// ctx is cancelled meanwhile; no tick starts after cancellation.
type Loop struct {
	Name     string
	Job      Job
	Interval time.Duration
	Logger   *slog.Logger
}

func (l Loop) Run(ctx context.Context) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := l.Interval
	if interval <= 0 {
		interval = time.Second
	}

	logger.Info("scheduler loop started",
		"event", "scheduler_loop_started",
		"module", "internal/platform/scheduler",
		"layer", "platform",
		"loop", l.Name,
		"interval", interval.String(),
	)

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler loop stopped",
				"event", "scheduler_loop_stopped",
				"module", "internal/platform/scheduler",
				"layer", "platform",
				"loop", l.Name,
			)
			return nil
		case <-timer.C:
		}
		if ctx.Err() != nil {
			continue
		}

		if err := l.Job.RunOnce(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("scheduler tick failed",
				"event", "scheduler_tick_failed",
				"module", "internal/platform/scheduler",
				"layer", "platform",
				"loop", l.Name,
				"error", err.Error(),
			)
		}
		timer.Reset(interval)
	}
}
