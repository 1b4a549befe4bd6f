package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/call-console/internal/domain"
	"github.com/spec-kit/call-console/internal/events"
	"github.com/spec-kit/call-console/internal/observability"
	"github.com/spec-kit/call-console/internal/repository"
	"github.com/spec-kit/call-console/internal/store"
)

// MonitorService owns the realtime subscription lifecycle: a guarded initial
// snapshot load followed by a continuous merge of streamed events into the
// reconciliation store.
type MonitorService struct {
	store   *store.Store
	tracker *store.StatusTracker
	repo    repository.CallRepository
	source  events.Source
	metrics *observability.Metrics
	logger  *zap.Logger

	mu     sync.Mutex
	loaded bool
	stop   func()
}

// MonitorDependencies bundles collaborators for the monitor service.
type MonitorDependencies struct {
	Store   *store.Store
	Tracker *store.StatusTracker
	Repo    repository.CallRepository
	Source  events.Source
	Metrics *observability.Metrics
	Logger  *zap.Logger
}

// NewMonitorService wires the service.
func NewMonitorService(deps MonitorDependencies) *MonitorService {
	return &MonitorService{
		store:   deps.Store,
		tracker: deps.Tracker,
		repo:    deps.Repo,
		source:  deps.Source,
		metrics: deps.Metrics,
		logger:  deps.Logger,
	}
}

// Start performs the initial snapshot load and subscribes to the event
// source. The initial load runs at most once per lifecycle even under rapid
// restart; the guard resets only on a full Stop. Calling Start while already
// running is a no-op.
func (m *MonitorService) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stop != nil {
		return nil
	}

	if !m.loaded {
		m.loaded = true
		if err := m.initialLoad(ctx); err != nil {
			// A failed load leaves the store unchanged; allow a retry.
			m.loaded = false
			return err
		}
	}

	stop, err := m.source.Subscribe(ctx, events.Callbacks{
		OnCallChange:       m.applyCallChange,
		OnSegment:          m.applySegment,
		OnConnectionChange: m.tracker.SetConnected,
	})
	if err != nil {
		m.tracker.SetConnected(false)
		return err
	}
	m.stop = stop
	return nil
}

// Stop tears the subscription down, resets the initial-load guard and flips
// the connection status off. Safe to call twice or with no events received.
func (m *MonitorService) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stop != nil {
		m.stop()
		m.stop = nil
	}
	m.loaded = false
	m.tracker.SetConnected(false)
}

// Reconcile re-fetches the live and ended sets and re-applies them through
// the store, healing any drift from dropped events. Used by the snapshot
// refresh worker.
func (m *MonitorService) Reconcile(ctx context.Context) error {
	return m.loadSnapshots(ctx)
}

func (m *MonitorService) initialLoad(ctx context.Context) error {
	m.tracker.SetLoading(true)
	defer m.tracker.SetLoading(false)

	if err := m.loadSnapshots(ctx); err != nil {
		m.logger.Error("initial snapshot load failed", zap.Error(err))
		return err
	}
	m.tracker.Touch()
	return nil
}

// loadSnapshots fetches live and ended calls as two separate filtered sets,
// the way the backend serves them; LoadSnapshot merges the batches without
// duplicating ids.
func (m *MonitorService) loadSnapshots(ctx context.Context) error {
	live := domain.CallStatusLive
	liveCalls, err := events.FetchAll(ctx, m.repo, &live)
	if err != nil {
		return err
	}
	ended := domain.CallStatusEnded
	endedCalls, err := events.FetchAll(ctx, m.repo, &ended)
	if err != nil {
		return err
	}

	m.store.LoadSnapshot(liveCalls)
	m.store.LoadSnapshot(endedCalls)
	m.logger.Info("snapshot loaded",
		zap.Int("live", len(liveCalls)),
		zap.Int("ended", len(endedCalls)),
	)
	return nil
}

// applyCallChange funnels one stream event into the projection. Events apply
// in local receipt order; there is no reordering by event timestamp.
func (m *MonitorService) applyCallChange(kind events.ChangeKind, call domain.Call) {
	switch kind {
	case events.ChangeDelete:
		m.store.RemoveCall(call.ID)
	default:
		m.store.UpsertCall(call)
	}
	m.tracker.Touch()
	m.metrics.RecordEventApplied("call_change")
}

func (m *MonitorService) applySegment(segment domain.TranscriptSegment) {
	m.store.AppendOrMergeSegment(segment)
	m.tracker.Touch()
	m.metrics.RecordEventApplied("segment")
}
