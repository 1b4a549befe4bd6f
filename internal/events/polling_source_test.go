package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/call-console/internal/domain"
	"github.com/spec-kit/call-console/internal/repository"
)

type recordedChange struct {
	kind ChangeKind
	call domain.Call
}

type changeRecorder struct {
	mu      sync.Mutex
	changes []recordedChange
}

func (r *changeRecorder) record(kind ChangeKind, call domain.Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, recordedChange{kind: kind, call: call})
}

func (r *changeRecorder) snapshot() []recordedChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recordedChange, len(r.changes))
	copy(out, r.changes)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestPollingSourceEmitsInsertThenUpdate(t *testing.T) {
	repo := repository.NewMemoryCallRepository()
	repo.Seed(testCall("a"))

	source := NewPollingSource(repo, 10*time.Millisecond, zap.NewNop())
	recorder := &changeRecorder{}

	stop, err := source.Subscribe(context.Background(), Callbacks{
		OnCallChange: recorder.record,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stop()

	waitFor(t, func() bool { return len(recorder.snapshot()) >= 1 })
	first := recorder.snapshot()[0]
	if first.kind != ChangeInsert || first.call.ID != "a" {
		t.Errorf("expected insert for a, got %q %q", first.kind, first.call.ID)
	}

	ended := testCall("a")
	ended.Status = domain.CallStatusEnded
	repo.Seed(ended)

	waitFor(t, func() bool {
		for _, ch := range recorder.snapshot() {
			if ch.kind == ChangeUpdate && ch.call.Status == domain.CallStatusEnded {
				return true
			}
		}
		return false
	})
}

func TestPollingSourceDoesNotRepeatUnchangedCalls(t *testing.T) {
	repo := repository.NewMemoryCallRepository()
	repo.Seed(testCall("a"))

	source := NewPollingSource(repo, 10*time.Millisecond, zap.NewNop())
	recorder := &changeRecorder{}

	stop, err := source.Subscribe(context.Background(), Callbacks{
		OnCallChange: recorder.record,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stop()

	waitFor(t, func() bool { return len(recorder.snapshot()) >= 1 })
	time.Sleep(50 * time.Millisecond)

	if got := recorder.snapshot(); len(got) != 1 {
		t.Errorf("expected a single insert for an unchanged call, got %d events", len(got))
	}
}

func TestPollingSourceStopIsIdempotent(t *testing.T) {
	repo := repository.NewMemoryCallRepository()
	source := NewPollingSource(repo, time.Hour, zap.NewNop())

	var transitions []bool
	stop, err := source.Subscribe(context.Background(), Callbacks{
		OnConnectionChange: func(connected bool) { transitions = append(transitions, connected) },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stop()
	stop()

	if len(transitions) != 2 || transitions[0] != true || transitions[1] != false {
		t.Errorf("expected connect then single disconnect, got %v", transitions)
	}
}

func TestFetchAllWalksEveryPage(t *testing.T) {
	repo := repository.NewMemoryCallRepository()
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		call := testCall(string(rune('a' + i)))
		call.StartedAt = base.Add(time.Duration(i) * time.Minute)
		repo.Seed(call)
	}

	calls, err := FetchAll(context.Background(), repo, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 25 {
		t.Fatalf("expected 25 calls across pages, got %d", len(calls))
	}

	ids := make(map[string]bool, len(calls))
	for _, call := range calls {
		if ids[call.ID] {
			t.Errorf("duplicate call %q across pages", call.ID)
		}
		ids[call.ID] = true
	}
}
