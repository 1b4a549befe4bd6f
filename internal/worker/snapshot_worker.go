package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/call-console/internal/service"
)

// StartSnapshotRefresher periodically reconciles the projection against the
// snapshot loader, healing drift from dropped events. A zero interval
// disables the worker. The returned stop function is idempotent.
func StartSnapshotRefresher(ctx context.Context, monitor *service.MonitorService, interval time.Duration, logger *zap.Logger) func() {
	if monitor == nil || interval <= 0 {
		return func() {}
	}

	refreshCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-refreshCtx.Done():
				return
			case <-ticker.C:
				if err := monitor.Reconcile(refreshCtx); err != nil {
					logger.Warn("snapshot refresh failed", zap.Error(err))
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
