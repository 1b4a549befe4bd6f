package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/call-console/internal/repository"
	"github.com/spec-kit/call-console/internal/store"
	apperrors "github.com/spec-kit/call-console/pkg/util"
)

// NotesService persists operator notes and mirrors them into the projection.
type NotesService struct {
	store  *store.Store
	repo   repository.CallRepository
	logger *zap.Logger
}

// NewNotesService wires the service.
func NewNotesService(s *store.Store, repo repository.CallRepository, logger *zap.Logger) *NotesService {
	return &NotesService{store: s, repo: repo, logger: logger}
}

// SaveNotes writes the notes through the repository first; only on success
// is the projection patched.
func (s *NotesService) SaveNotes(ctx context.Context, callID, notes string) error {
	if err := s.repo.SaveNotes(ctx, callID, notes); err != nil {
		if errors.Is(err, repository.ErrCallNotFound) {
			return apperrors.NewNotFound("call", map[string]any{"call_id": callID})
		}
		s.logger.Warn("saving notes failed", zap.String("call_id", callID), zap.Error(err))
		return apperrors.NewDependencyUnavailable("failed to save notes", err)
	}

	text := notes
	if err := s.store.PatchCall(callID, store.CallPatch{Notes: &text}); err != nil && !errors.Is(err, store.ErrCallNotFound) {
		return err
	}
	return nil
}
