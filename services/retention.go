package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Purger interface {
	PurgeRead(ctx context.Context, cutoff time.Time) (int64, error)
}

// RunRetention deletes read notifications older than period on every tick
// until ctx is cancelled. A non-positive period disables the sweep.
func RunRetention(ctx context.Context, p Purger, period, tick time.Duration, log *zap.Logger) {
	if period <= 0 || tick <= 0 {
		log.Info("notification retention disabled")
		return
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			SweepOnce(ctx, p, now.Add(-period), log)
		}
	}
}

func SweepOnce(ctx context.Context, p Purger, cutoff time.Time, log *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("retention sweep panic", zap.Any("panic", r))
		}
	}()

	n, err := p.PurgeRead(ctx, cutoff)
	if err != nil {
		log.Error("retention sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		log.Info("purged read notifications", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	}
}
