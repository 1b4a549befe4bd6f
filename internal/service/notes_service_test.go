package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/call-console/internal/domain"
	"github.com/spec-kit/call-console/internal/repository"
	"github.com/spec-kit/call-console/internal/store"
)

func TestSaveNotesWritesThroughAndPatchesProjection(t *testing.T) {
	repo := repository.NewMemoryCallRepository()
	repo.Seed(testCall("a", domain.CallStatusEnded))

	projection := store.New()
	projection.LoadSnapshot([]domain.Call{testCall("a", domain.CallStatusEnded)})

	svc := NewNotesService(projection, repo, zap.NewNop())
	if err := svc.SaveNotes(context.Background(), "a", "customer wants a callback"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	persisted, err := repo.GetByID(context.Background(), "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if persisted.Notes == nil || *persisted.Notes != "customer wants a callback" {
		t.Errorf("expected notes persisted, got %v", persisted.Notes)
	}

	projected, _ := projection.ByID("a")
	if projected.Notes == nil || *projected.Notes != "customer wants a callback" {
		t.Errorf("expected projection patched, got %v", projected.Notes)
	}
}

func TestSaveNotesUnknownCallLeavesProjectionUnchanged(t *testing.T) {
	projection := store.New()
	projection.LoadSnapshot([]domain.Call{testCall("a", domain.CallStatusEnded)})

	svc := NewNotesService(projection, repository.NewMemoryCallRepository(), zap.NewNop())
	if err := svc.SaveNotes(context.Background(), "a", "x"); err == nil {
		t.Fatal("expected error when persistence rejects the call id")
	}

	got, _ := projection.ByID("a")
	if got.Notes != nil {
		t.Errorf("expected projection untouched on failure, got %v", got.Notes)
	}
}
