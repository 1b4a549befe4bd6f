package events

import (
	"context"
	"sync"

	"github.com/spec-kit/call-console/internal/domain"
)

// Bus is an in-process Source used by tests and dev mode. Publishing invokes
// every subscriber synchronously on the publishing goroutine.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]Callbacks
	next int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]Callbacks)}
}

// Subscribe registers the callbacks and confirms the channel immediately.
func (b *Bus) Subscribe(_ context.Context, cb Callbacks) (func(), error) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = cb
	b.mu.Unlock()

	if cb.OnConnectionChange != nil {
		cb.OnConnectionChange(true)
	}

	var once sync.Once
	stop := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			if cb.OnConnectionChange != nil {
				cb.OnConnectionChange(false)
			}
		})
	}
	return stop, nil
}

// PublishCallChange delivers a call-change event to every subscriber.
func (b *Bus) PublishCallChange(kind ChangeKind, call domain.Call) {
	for _, cb := range b.snapshot() {
		if cb.OnCallChange != nil {
			cb.OnCallChange(kind, call)
		}
	}
}

// PublishSegment delivers a transcript-segment event to every subscriber.
func (b *Bus) PublishSegment(segment domain.TranscriptSegment) {
	for _, cb := range b.snapshot() {
		if cb.OnSegment != nil {
			cb.OnSegment(segment)
		}
	}
}

func (b *Bus) snapshot() []Callbacks {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Callbacks, 0, len(b.subs))
	for _, cb := range b.subs {
		out = append(out, cb)
	}
	return out
}
