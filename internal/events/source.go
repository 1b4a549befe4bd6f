// Package events defines the event-source capability consumed by the
// reconciliation core and its adapters. Delivery is at-least-once, unordered
// across calls, and may replay recent events after a reconnect; the store's
// merge operations are responsible for making that safe.
package events

import (
	"context"
	"fmt"

	"github.com/spec-kit/call-console/internal/domain"
)

// ChangeKind enumerates call-change event kinds.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// ParseChangeKind validates a wire kind value.
func ParseChangeKind(raw string) (ChangeKind, error) {
	switch ChangeKind(raw) {
	case ChangeInsert, ChangeUpdate, ChangeDelete:
		return ChangeKind(raw), nil
	}
	return "", fmt.Errorf("unknown change kind %q", raw)
}

// Callbacks receive decoded events from a source. Any callback may be nil.
type Callbacks struct {
	OnCallChange       func(kind ChangeKind, call domain.Call)
	OnSegment          func(segment domain.TranscriptSegment)
	OnConnectionChange func(connected bool)
}

// Source is the capability interface a transport adapter satisfies. Subscribe
// registers the callbacks and returns a stop function that unregisters them;
// the stop function is idempotent and safe to call even if no events were
// ever delivered.
type Source interface {
	Subscribe(ctx context.Context, cb Callbacks) (func(), error)
}
