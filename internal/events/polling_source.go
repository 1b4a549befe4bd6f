package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/call-console/internal/domain"
	"github.com/spec-kit/call-console/internal/repository"
)

// PollingSource synthesizes a change stream by diffing repository snapshots
// on an interval. New ids become insert events, changed records become update
// events. Disappeared ids are not synthesized into deletes; the projection
// only drops calls on an explicit delete event, which a polling transport
// cannot distinguish from a filtered-out record.
type PollingSource struct {
	repo     repository.CallRepository
	interval time.Duration
	logger   *zap.Logger
}

// NewPollingSource builds a source polling the given repository.
func NewPollingSource(repo repository.CallRepository, interval time.Duration, logger *zap.Logger) *PollingSource {
	return &PollingSource{repo: repo, interval: interval, logger: logger}
}

// Subscribe starts the poll loop and returns an idempotent stop function.
func (s *PollingSource) Subscribe(ctx context.Context, cb Callbacks) (func(), error) {
	if cb.OnConnectionChange != nil {
		cb.OnConnectionChange(true)
	}

	pollCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go s.loop(pollCtx, cb, done)

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			<-done
			if cb.OnConnectionChange != nil {
				cb.OnConnectionChange(false)
			}
		})
	}
	return stop, nil
}

func (s *PollingSource) loop(ctx context.Context, cb Callbacks, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	seen := make(map[string]domain.Call)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll(ctx, cb, seen)
		}
	}
}

func (s *PollingSource) poll(ctx context.Context, cb Callbacks, seen map[string]domain.Call) {
	calls, err := FetchAll(ctx, s.repo, nil)
	if err != nil {
		s.logger.Warn("poll failed", zap.Error(err))
		return
	}

	for _, call := range calls {
		prev, known := seen[call.ID]
		seen[call.ID] = call

		if !known {
			if cb.OnCallChange != nil {
				cb.OnCallChange(ChangeInsert, call)
			}
			continue
		}
		if !callsEqual(prev, call) {
			if cb.OnCallChange != nil {
				cb.OnCallChange(ChangeUpdate, call)
			}
		}
	}
}

// FetchAll walks every page of a filtered listing. A nil status means all
// calls.
func FetchAll(ctx context.Context, repo repository.CallRepository, status *domain.CallStatus) ([]domain.Call, error) {
	var out []domain.Call
	for page := 1; ; page++ {
		result, err := repo.List(ctx, repository.Filter{Status: status, Page: page})
		if err != nil {
			return nil, err
		}
		out = append(out, result.Items...)
		if page >= result.TotalPages || len(result.Items) == 0 {
			return out, nil
		}
	}
}

func callsEqual(a, b domain.Call) bool {
	return a.ID == b.ID &&
		a.StartedAt.Equal(b.StartedAt) &&
		timePtrEqual(a.EndedAt, b.EndedAt) &&
		a.Status == b.Status &&
		a.Direction == b.Direction &&
		a.FromNumber == b.FromNumber &&
		a.ToNumber == b.ToNumber &&
		strPtrEqual(a.AgentName, b.AgentName) &&
		strPtrEqual(a.QueueOrDN, b.QueueOrDN) &&
		strPtrEqual(a.TicketID, b.TicketID) &&
		a.HasTicketUpdate == b.HasTicketUpdate &&
		strPtrEqual(a.Notes, b.Notes)
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
