package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/spec-kit/call-console/internal/domain"
)

// MemoryCallRepository is an in-memory CallRepository applying the same
// filter, sort and pagination semantics as the Postgres implementation. It
// backs dev mode when no database is configured, and tests.
type MemoryCallRepository struct {
	mu          sync.RWMutex
	calls       map[string]domain.Call
	transcripts map[string][]domain.TranscriptSegment
}

// NewMemoryCallRepository creates an empty repository.
func NewMemoryCallRepository() *MemoryCallRepository {
	return &MemoryCallRepository{
		calls:       make(map[string]domain.Call),
		transcripts: make(map[string][]domain.TranscriptSegment),
	}
}

// Seed inserts or replaces call records.
func (r *MemoryCallRepository) Seed(calls ...domain.Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, call := range calls {
		r.calls[call.ID] = call
	}
}

// SeedTranscript replaces the stored transcript for a call.
func (r *MemoryCallRepository) SeedTranscript(callID string, segments []domain.TranscriptSegment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := make([]domain.TranscriptSegment, len(segments))
	copy(copied, segments)
	r.transcripts[callID] = copied
}

// List applies the filter and returns the requested page, sorted by start
// time descending.
func (r *MemoryCallRepository) List(_ context.Context, filter Filter) (Page, error) {
	r.mu.RLock()
	all := make([]domain.Call, 0, len(r.calls))
	for _, call := range r.calls {
		all = append(all, call)
	}
	r.mu.RUnlock()

	filtered := ApplyFilter(all, filter)

	page := normalizePage(filter.Page)
	start := (page - 1) * PageSize
	end := start + PageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return Page{
		Items:      filtered[start:end],
		Total:      len(filtered),
		Page:       page,
		PageSize:   PageSize,
		TotalPages: totalPages(len(filtered)),
	}, nil
}

// GetByID looks up one call.
func (r *MemoryCallRepository) GetByID(_ context.Context, id string) (domain.Call, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	call, ok := r.calls[id]
	if !ok {
		return domain.Call{}, ErrCallNotFound
	}
	return call, nil
}

// Transcript returns the stored segments for a call, ordered by timestamp.
func (r *MemoryCallRepository) Transcript(_ context.Context, callID string) ([]domain.TranscriptSegment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	segments := make([]domain.TranscriptSegment, len(r.transcripts[callID]))
	copy(segments, r.transcripts[callID])
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Timestamp.Before(segments[j].Timestamp)
	})
	return segments, nil
}

// SaveNotes updates the notes field of a stored call.
func (r *MemoryCallRepository) SaveNotes(_ context.Context, callID, notes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	call, ok := r.calls[callID]
	if !ok {
		return ErrCallNotFound
	}
	call.Notes = &notes
	r.calls[callID] = call
	return nil
}

// ApplyFilter filters and sorts a call list the way the server-side query
// does: status match, case-insensitive substring search over from/to number,
// agent name and ticket id, inclusive start-time bounds, start time
// descending.
func ApplyFilter(calls []domain.Call, filter Filter) []domain.Call {
	out := make([]domain.Call, 0, len(calls))
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	for _, call := range calls {
		if filter.Status != nil && call.Status != *filter.Status {
			continue
		}
		if search != "" && !matchesSearch(call, search) {
			continue
		}
		if filter.StartDate != nil && call.StartedAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && call.StartedAt.After(*filter.EndDate) {
			continue
		}
		out = append(out, call)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

func matchesSearch(call domain.Call, search string) bool {
	if strings.Contains(strings.ToLower(call.FromNumber), search) {
		return true
	}
	if strings.Contains(strings.ToLower(call.ToNumber), search) {
		return true
	}
	if call.AgentName != nil && strings.Contains(strings.ToLower(*call.AgentName), search) {
		return true
	}
	if call.TicketID != nil && strings.Contains(strings.ToLower(*call.TicketID), search) {
		return true
	}
	return false
}
