package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"biliticket/sessionstore/internal/metrics"
)

// RunPurgeLoop calls PurgeExpired every interval until ctx is cancelled.
func (s *PGStateStore) RunPurgeLoop(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	purgeLoop(ctx, ticker.C, s.PurgeExpired, logger)
}

func purgeLoop(ctx context.Context, ticks <-chan time.Time, purge func(context.Context) (int64, error), logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			n, err := purge(ctx)
			if err != nil {
				logger.Error("purge expired session states", zap.Error(err))
				continue
			}
			metrics.PurgedTotal.Add(float64(n))
			if n > 0 {
				logger.Debug("purged expired session states", zap.Int64("count", n))
			}
		}
	}
}
