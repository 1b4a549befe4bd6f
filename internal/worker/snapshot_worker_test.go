package worker

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/call-console/internal/domain"
	"github.com/spec-kit/call-console/internal/events"
	"github.com/spec-kit/call-console/internal/observability"
	"github.com/spec-kit/call-console/internal/repository"
	"github.com/spec-kit/call-console/internal/service"
	"github.com/spec-kit/call-console/internal/store"
)

func TestSnapshotRefresherPicksUpNewCalls(t *testing.T) {
	repo := repository.NewMemoryCallRepository()
	projection := store.New()
	monitor := service.NewMonitorService(service.MonitorDependencies{
		Store:   projection,
		Tracker: store.NewStatusTracker(),
		Repo:    repo,
		Source:  events.NewBus(),
		Metrics: observability.NewMetrics(),
		Logger:  zap.NewNop(),
	})

	stop := StartSnapshotRefresher(context.Background(), monitor, 10*time.Millisecond, zap.NewNop())
	defer stop()

	repo.Seed(domain.Call{
		ID:         "drifted",
		StartedAt:  time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		Status:     domain.CallStatusEnded,
		Direction:  domain.DirectionInbound,
		FromNumber: "+15551234567",
		ToNumber:   "+15559876543",
	})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := projection.ByID("drifted"); ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("refresher never reconciled the new call")
}

func TestSnapshotRefresherDisabledWithZeroInterval(t *testing.T) {
	stop := StartSnapshotRefresher(context.Background(), nil, 0, zap.NewNop())
	stop()
	stop()
}
