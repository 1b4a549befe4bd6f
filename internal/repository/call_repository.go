// Package repository implements the snapshot loader and notes persistence
// over the backing database, plus an in-memory variant for dev mode and
// tests.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/call-console/internal/domain"
)

// PageSize is the fixed page size for call listings.
const PageSize = 10

// ErrCallNotFound distinguishes an unknown call id from a transient failure.
var ErrCallNotFound = errors.New("call not found")

// Filter captures the server-side query parameters: status, case-insensitive
// substring search across from/to number, agent name and ticket id, inclusive
// start-time range, and a 1-based page number.
type Filter struct {
	Status    *domain.CallStatus
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
}

// Page is one page of a filtered result set, sorted by start time descending.
type Page struct {
	Items      []domain.Call
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// CallRepository is the snapshot loader and notes persistence contract.
type CallRepository interface {
	List(ctx context.Context, filter Filter) (Page, error)
	GetByID(ctx context.Context, id string) (domain.Call, error)
	Transcript(ctx context.Context, callID string) ([]domain.TranscriptSegment, error)
	SaveNotes(ctx context.Context, callID, notes string) error
}

// normalizePage clamps a page number to 1-based.
func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// totalPages computes the page count for a result set.
func totalPages(total int) int {
	pages := total / PageSize
	if total%PageSize != 0 {
		pages++
	}
	return pages
}
