package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for the HTTP surface and the
// realtime event pipeline.
type Metrics struct {
	mu            sync.Mutex
	requestCount  map[string]int64
	errorCount    map[string]int64
	eventsApplied map[string]int64
	eventsDropped map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:  make(map[string]int64),
		errorCount:    make(map[string]int64),
		eventsApplied: make(map[string]int64),
		eventsDropped: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordEventApplied counts an event accepted into the projection, by kind.
func (m *Metrics) RecordEventApplied(kind string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsApplied[kind]++
}

// RecordEventDropped counts a malformed event rejected at the boundary.
func (m *Metrics) RecordEventDropped(kind string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsDropped[kind]++
}

// EventCounts returns copies of the applied and dropped counters.
func (m *Metrics) EventCounts() (applied, dropped map[string]int64) {
	if m == nil {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	applied = make(map[string]int64, len(m.eventsApplied))
	for k, v := range m.eventsApplied {
		applied[k] = v
	}
	dropped = make(map[string]int64, len(m.eventsDropped))
	for k, v := range m.eventsDropped {
		dropped[k] = v
	}
	return applied, dropped
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
