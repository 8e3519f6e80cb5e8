package services

import (
	"time"

	"go.uber.org/zap"
)

// StartSweeper launches the background goroutine that expires stale
// available posts. It runs once immediately, then on every tick for the
// lifetime of the process. A failed sweep is logged and the next tick
// retries; it never escalates. onExpired is invoked after every sweep
// that transitioned at least one post, so the caller can invalidate the
// cached available listing the way the claim path does; nil is allowed.
func StartSweeper(svc *FoodService, interval time.Duration, logger *zap.SugaredLogger, onExpired func(count int64)) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		sweep(svc, logger, onExpired)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			sweep(svc, logger, onExpired)
		}
	}()
	logger.Infof("food expiration sweeper started, interval=%s", interval)
}

func sweep(svc *FoodService, logger *zap.SugaredLogger, onExpired func(count int64)) {
	count, err := svc.SweepExpired(time.Now())
	if err != nil {
		logger.Errorf("expiration sweep failed: %v", err)
		return
	}
	if count > 0 {
		logger.Infof("marked %d food post(s) as expired", count)
		if onExpired != nil {
			onExpired(count)
		}
	}
}
