package events

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/call-console/internal/domain"
)

func testCall(id string) domain.Call {
	return domain.Call{
		ID:         id,
		StartedAt:  time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		Status:     domain.CallStatusLive,
		Direction:  domain.DirectionInbound,
		FromNumber: "+15551234567",
		ToNumber:   "+15559876543",
	}
}

func TestBusDeliversToSubscriber(t *testing.T) {
	bus := NewBus()

	var gotKind ChangeKind
	var gotCall domain.Call
	var gotSegment domain.TranscriptSegment

	stop, err := bus.Subscribe(context.Background(), Callbacks{
		OnCallChange: func(kind ChangeKind, call domain.Call) {
			gotKind = kind
			gotCall = call
		},
		OnSegment: func(segment domain.TranscriptSegment) {
			gotSegment = segment
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stop()

	bus.PublishCallChange(ChangeInsert, testCall("a"))
	if gotKind != ChangeInsert || gotCall.ID != "a" {
		t.Errorf("expected insert for call a, got %q %q", gotKind, gotCall.ID)
	}

	bus.PublishSegment(domain.TranscriptSegment{ID: "s1", CallID: "a"})
	if gotSegment.ID != "s1" {
		t.Errorf("expected segment s1, got %q", gotSegment.ID)
	}
}

func TestBusConnectionLifecycle(t *testing.T) {
	bus := NewBus()

	var transitions []bool
	stop, err := bus.Subscribe(context.Background(), Callbacks{
		OnConnectionChange: func(connected bool) {
			transitions = append(transitions, connected)
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stop()
	stop() // idempotent

	want := []bool{true, false}
	if len(transitions) != len(want) {
		t.Fatalf("expected %d transitions, got %v", len(want), transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d: expected %v, got %v", i, want[i], transitions[i])
		}
	}
}

func TestBusStopUnregisters(t *testing.T) {
	bus := NewBus()

	var calls int
	stop, err := bus.Subscribe(context.Background(), Callbacks{
		OnCallChange: func(ChangeKind, domain.Call) { calls++ },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stop()
	bus.PublishCallChange(ChangeInsert, testCall("a"))

	if calls != 0 {
		t.Errorf("expected no deliveries after stop, got %d", calls)
	}
}

func TestParseChangeKind(t *testing.T) {
	for _, valid := range []string{"insert", "update", "delete"} {
		if _, err := ParseChangeKind(valid); err != nil {
			t.Errorf("expected %q to parse, got %v", valid, err)
		}
	}
	if _, err := ParseChangeKind("upsert"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
