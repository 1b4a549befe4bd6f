// Package store holds the authoritative in-memory projection of calls and
// their transcripts. It merges bulk snapshot loads and incremental stream
// events into one consistent view and serves read selectors to any number of
// concurrent observers. All mutation paths funnel through the operations
// below; delivery of the inputs is at-least-once and unordered, so every
// merge operation is written to be idempotent.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/spec-kit/call-console/internal/domain"
)

// ErrCallNotFound is reported by patch operations targeting an unknown call id.
var ErrCallNotFound = errors.New("call not found in projection")

// CallPatch carries a field-level partial update. Nil fields are left
// untouched.
type CallPatch struct {
	Status          *domain.CallStatus
	EndedAt         *time.Time
	AgentName       *string
	QueueOrDN       *string
	TicketID        *string
	HasTicketUpdate *bool
	Notes           *string
}

// Store is the reconciliation store. Calls keep their insertion order: new
// calls surface first, snapshot order is preserved otherwise. Transcripts are
// keyed by call id independently of the call list, so a segment arriving
// before its owning call is retained rather than lost.
type Store struct {
	mu          sync.RWMutex
	calls       []domain.Call
	index       map[string]int
	transcripts map[string][]domain.TranscriptSegment
}

// New returns an empty store.
func New() *Store {
	return &Store{
		index:       make(map[string]int),
		transcripts: make(map[string][]domain.TranscriptSegment),
	}
}

// LoadSnapshot merges a bulk query result into the call list. It may be
// called multiple times (live and ended sets are fetched separately); a call
// id already present is replaced in place, new ids are appended in the order
// provided. Within a single batch the last record for a duplicated id wins.
func (s *Store) LoadSnapshot(calls []domain.Call) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, call := range calls {
		if call.ID == "" {
			continue
		}
		if pos, ok := s.index[call.ID]; ok {
			s.calls[pos] = call
			continue
		}
		s.index[call.ID] = len(s.calls)
		s.calls = append(s.calls, call)
	}
}

// UpsertCall inserts or fully replaces a call by id. Existing calls keep
// their position; unknown calls are prepended so the newest surfaces first.
func (s *Store) UpsertCall(call domain.Call) {
	if call.ID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if pos, ok := s.index[call.ID]; ok {
		s.calls[pos] = call
		return
	}
	s.calls = append([]domain.Call{call}, s.calls...)
	s.reindex()
}

// PatchCall applies a field-level merge onto an existing record. A patch
// never demotes a terminal status back to live; the rest of the patch still
// applies in that case.
func (s *Store) PatchCall(id string, patch CallPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return ErrCallNotFound
	}
	call := s.calls[pos]

	if patch.Status != nil {
		if !(call.Status.Terminal() && *patch.Status == domain.CallStatusLive) {
			call.Status = *patch.Status
		}
	}
	if patch.EndedAt != nil {
		endedAt := *patch.EndedAt
		call.EndedAt = &endedAt
	}
	if patch.AgentName != nil {
		call.AgentName = patch.AgentName
	}
	if patch.QueueOrDN != nil {
		call.QueueOrDN = patch.QueueOrDN
	}
	if patch.TicketID != nil {
		call.TicketID = patch.TicketID
	}
	if patch.HasTicketUpdate != nil {
		call.HasTicketUpdate = *patch.HasTicketUpdate
	}
	if patch.Notes != nil {
		call.Notes = patch.Notes
	}

	s.calls[pos] = call
	return nil
}

// MarkCallEnded records the end of a call. The end timestamp is
// last-write-wins; the status only ever moves toward a terminal state, so a
// call already ended or failed keeps its terminal status.
func (s *Store) MarkCallEnded(id string, endedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return ErrCallNotFound
	}
	call := s.calls[pos]
	if !call.Status.Terminal() {
		call.Status = domain.CallStatusEnded
	}
	call.EndedAt = &endedAt
	s.calls[pos] = call
	return nil
}

// RemoveCall drops a call record from the projection. Its transcript is kept;
// segments are never deleted during a session.
func (s *Store) RemoveCall(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return
	}
	s.calls = append(s.calls[:pos], s.calls[pos+1:]...)
	s.reindex()
}

// SetTranscript replaces the full segment list for a call, used after a
// one-shot full-transcript fetch.
func (s *Store) SetTranscript(callID string, segments []domain.TranscriptSegment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]domain.TranscriptSegment, len(segments))
	copy(copied, segments)
	s.transcripts[callID] = copied
}

// AppendOrMergeSegment applies one transcript-segment event. A segment whose
// id already exists for the call is replaced in place, preserving its
// position; otherwise it is appended. Applying the same event twice yields
// the same state as applying it once, which is what makes at-least-once
// delivery safe. The owning call does not need to be known yet.
func (s *Store) AppendOrMergeSegment(segment domain.TranscriptSegment) {
	if segment.ID == "" || segment.CallID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.transcripts[segment.CallID]
	for i, seg := range existing {
		if seg.ID == segment.ID {
			existing[i] = segment
			return
		}
	}
	s.transcripts[segment.CallID] = append(existing, segment)
}

// All returns a copy of every call in projection order.
func (s *Store) All() []domain.Call {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Live returns the calls still in progress.
func (s *Store) Live() []domain.Call {
	return s.filter(func(c domain.Call) bool { return c.Status == domain.CallStatusLive })
}

// Past returns the calls no longer live.
func (s *Store) Past() []domain.Call {
	return s.filter(func(c domain.Call) bool { return c.Status != domain.CallStatusLive })
}

// ByID looks up a single call.
func (s *Store) ByID(id string) (domain.Call, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.index[id]
	if !ok {
		return domain.Call{}, false
	}
	return s.calls[pos], true
}

// TranscriptByCall returns a copy of the segment list for a call, in applied
// order. The call itself does not need to be in the projection.
func (s *Store) TranscriptByCall(callID string) []domain.TranscriptSegment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	segments := s.transcripts[callID]
	out := make([]domain.TranscriptSegment, len(segments))
	copy(out, segments)
	return out
}

func (s *Store) filter(keep func(domain.Call) bool) []domain.Call {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Call, 0, len(s.calls))
	for _, call := range s.calls {
		if keep(call) {
			out = append(out, call)
		}
	}
	return out
}

// reindex rebuilds the id index after a positional change. Caller must hold
// the write lock.
func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.calls))
	for i, call := range s.calls {
		s.index[call.ID] = i
	}
}
