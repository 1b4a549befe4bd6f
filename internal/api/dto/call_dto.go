// Package dto defines the wire shapes exchanged with the backend and the
// explicit, total mappings between those rows and domain records. Mapping
// fails loudly on a malformed row instead of silently coercing it.
package dto

import (
	"fmt"
	"time"

	"github.com/spec-kit/call-console/internal/domain"
)

// MappingError names the field a wire row failed validation on.
type MappingError struct {
	Entity string
	Field  string
	Reason string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("map %s: field %s: %s", e.Entity, e.Field, e.Reason)
}

func newMappingError(entity, field, reason string) error {
	return &MappingError{Entity: entity, Field: field, Reason: reason}
}

// CallRow is the snake_case wire representation of a call record.
type CallRow struct {
	ID              string     `json:"id"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	Status          string     `json:"status"`
	Direction       string     `json:"direction"`
	FromNumber      string     `json:"from_number"`
	ToNumber        string     `json:"to_number"`
	AgentName       *string    `json:"agent_name,omitempty"`
	QueueOrDN       *string    `json:"queue_or_dn,omitempty"`
	TicketID        *string    `json:"ticket_id,omitempty"`
	HasTicketUpdate bool       `json:"has_ticket_update"`
	Notes           *string    `json:"notes,omitempty"`
}

// ToDomain validates the row and converts it to a domain call.
func (r CallRow) ToDomain() (domain.Call, error) {
	if r.ID == "" {
		return domain.Call{}, newMappingError("call", "id", "missing")
	}
	status := domain.CallStatus(r.Status)
	if !status.Valid() {
		return domain.Call{}, newMappingError("call", "status", fmt.Sprintf("unknown value %q", r.Status))
	}
	direction := domain.CallDirection(r.Direction)
	if !direction.Valid() {
		return domain.Call{}, newMappingError("call", "direction", fmt.Sprintf("unknown value %q", r.Direction))
	}
	if r.StartedAt.IsZero() {
		return domain.Call{}, newMappingError("call", "started_at", "missing")
	}

	return domain.Call{
		ID:              r.ID,
		StartedAt:       r.StartedAt,
		EndedAt:         r.EndedAt,
		Status:          status,
		Direction:       direction,
		FromNumber:      r.FromNumber,
		ToNumber:        r.ToNumber,
		AgentName:       r.AgentName,
		QueueOrDN:       r.QueueOrDN,
		TicketID:        r.TicketID,
		HasTicketUpdate: r.HasTicketUpdate,
		Notes:           r.Notes,
	}, nil
}

// CallRowFromDomain converts a domain call to its wire shape.
func CallRowFromDomain(call domain.Call) CallRow {
	return CallRow{
		ID:              call.ID,
		StartedAt:       call.StartedAt,
		EndedAt:         call.EndedAt,
		Status:          string(call.Status),
		Direction:       string(call.Direction),
		FromNumber:      call.FromNumber,
		ToNumber:        call.ToNumber,
		AgentName:       call.AgentName,
		QueueOrDN:       call.QueueOrDN,
		TicketID:        call.TicketID,
		HasTicketUpdate: call.HasTicketUpdate,
		Notes:           call.Notes,
	}
}

// CallRowsFromDomain converts a call list for a response body.
func CallRowsFromDomain(calls []domain.Call) []CallRow {
	rows := make([]CallRow, len(calls))
	for i, call := range calls {
		rows[i] = CallRowFromDomain(call)
	}
	return rows
}

// CallChangeEnvelope is the payload published on the call-change channel.
type CallChangeEnvelope struct {
	Kind string  `json:"kind"`
	Call CallRow `json:"call"`
}

// PageResponse is the paginated list envelope.
type PageResponse struct {
	Items      []CallRow `json:"items"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}
