package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper removes expired tickets.
type Sweeper interface {
	CleanupOldTickets(ctx context.Context) (int64, error)
}

// RetentionWorker runs the retention sweep at startup and on a fixed interval.
type RetentionWorker struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *zap.Logger
}

// NewRetentionWorker builds the worker. A zero interval sweeps only once.
func NewRetentionWorker(sweeper Sweeper, interval time.Duration, logger *zap.Logger) *RetentionWorker {
	return &RetentionWorker{sweeper: sweeper, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled. Sweep failures are logged and retried
// on the next tick.
func (w *RetentionWorker) Run(ctx context.Context) {
	w.sweep(ctx)
	if w.interval <= 0 {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *RetentionWorker) sweep(ctx context.Context) {
	removed, err := w.sweeper.CleanupOldTickets(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Warn("retention sweep failed", zap.Error(err))
		}
		return
	}
	w.logger.Debug("retention sweep finished", zap.Int64("removed", removed))
}
