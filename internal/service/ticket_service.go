package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/call-console/internal/domain"
	"github.com/spec-kit/call-console/internal/repository"
	"github.com/spec-kit/call-console/internal/store"
	"github.com/spec-kit/call-console/internal/ticketing"
	apperrors "github.com/spec-kit/call-console/pkg/util"
)

// TicketService runs the single-shot ticket update workflow: collect the
// call's final transcript, hand it to the ticketing collaborator, and apply
// the confirmed result to the projection. Failure leaves the call record
// unchanged.
type TicketService struct {
	store  *store.Store
	repo   repository.CallRepository
	client ticketing.Client
	logger *zap.Logger
}

// NewTicketService wires the service.
func NewTicketService(s *store.Store, repo repository.CallRepository, client ticketing.Client, logger *zap.Logger) *TicketService {
	return &TicketService{store: s, repo: repo, client: client, logger: logger}
}

// UpdateTicket attaches the call's transcript to the given ticket, creating
// one when ticketID is empty, and returns the confirmed ticket id. The store
// is only patched after the collaborator confirms success.
func (s *TicketService) UpdateTicket(ctx context.Context, callID, ticketID string) (string, error) {
	call, known := s.store.ByID(callID)
	if !known {
		fetched, err := s.repo.GetByID(ctx, callID)
		if err != nil {
			if errors.Is(err, repository.ErrCallNotFound) {
				return "", apperrors.NewNotFound("call", map[string]any{"call_id": callID})
			}
			return "", apperrors.NewDependencyUnavailable("failed to load call", err)
		}
		call = fetched
	}

	segments := s.store.TranscriptByCall(call.ID)
	if len(segments) == 0 {
		fetched, err := s.repo.Transcript(ctx, call.ID)
		if err != nil {
			return "", apperrors.NewDependencyUnavailable("failed to load transcript", err)
		}
		segments = fetched
	}

	result, err := s.client.UpdateTicket(ctx, ticketing.UpdateRequest{
		CallID:     call.ID,
		TicketID:   ticketID,
		Transcript: FormatTranscript(segments),
	})
	if err != nil {
		s.logger.Warn("ticket update failed", zap.String("call_id", call.ID), zap.Error(err))
		return "", apperrors.NewDependencyUnavailable("failed to update ticket", err)
	}

	confirmed := result.TicketID
	hasUpdate := true
	if err := s.store.PatchCall(call.ID, store.CallPatch{
		TicketID:        &confirmed,
		HasTicketUpdate: &hasUpdate,
	}); err != nil && !errors.Is(err, store.ErrCallNotFound) {
		return "", err
	}

	return confirmed, nil
}

// FormatTranscript renders the final segments in timestamp order as the
// ticket note body, one "[SPEAKER]: text" line per utterance.
func FormatTranscript(segments []domain.TranscriptSegment) string {
	ordered := make([]domain.TranscriptSegment, 0, len(segments))
	for _, segment := range segments {
		if segment.IsFinal {
			ordered = append(ordered, segment)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	lines := make([]string, len(ordered))
	for i, segment := range ordered {
		lines[i] = fmt.Sprintf("[%s]: %s", strings.ToUpper(string(segment.Speaker)), segment.Text)
	}
	return strings.Join(lines, "\n")
}
