package store

import (
	"sync"
	"time"
)

// SystemStatus is a snapshot of the event-source connection state.
type SystemStatus struct {
	BackendConnected   bool
	LastEventTimestamp *time.Time
	ActiveConnections  int
	Loading            bool
}

// StatusTracker reflects whether the event source is currently delivering.
// It only mirrors the most recent notification it received; reconnection is
// the event source's own responsibility.
type StatusTracker struct {
	mu     sync.RWMutex
	status SystemStatus
	now    func() time.Time
}

// NewStatusTracker starts disconnected.
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{now: time.Now}
}

// SetConnected flips the connected flag and the active connection count.
func (t *StatusTracker) SetConnected(connected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.BackendConnected = connected
	if connected {
		t.status.ActiveConnections = 1
	} else {
		t.status.ActiveConnections = 0
	}
}

// SetLoading marks the initial snapshot load in progress.
func (t *StatusTracker) SetLoading(loading bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Loading = loading
}

// Touch refreshes the last-event timestamp to the local receipt time, so
// staleness is measured from the processing side rather than the event's own
// clock.
func (t *StatusTracker) Touch() {
	t.mu.Lock()
	defer t.mu.Unlock()
	ts := t.now()
	t.status.LastEventTimestamp = &ts
}

// Status returns the current snapshot.
func (t *StatusTracker) Status() SystemStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	status := t.status
	if t.status.LastEventTimestamp != nil {
		ts := *t.status.LastEventTimestamp
		status.LastEventTimestamp = &ts
	}
	return status
}
