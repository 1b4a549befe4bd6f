package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/call-console/internal/domain"
	"github.com/spec-kit/call-console/internal/repository"
	"github.com/spec-kit/call-console/internal/store"
	"github.com/spec-kit/call-console/internal/ticketing"
)

type fakeTicketClient struct {
	lastReq ticketing.UpdateRequest
	result  ticketing.UpdateResult
	err     error
}

func (f *fakeTicketClient) UpdateTicket(_ context.Context, req ticketing.UpdateRequest) (ticketing.UpdateResult, error) {
	f.lastReq = req
	if f.err != nil {
		return ticketing.UpdateResult{}, f.err
	}
	return f.result, nil
}

func seg(id, text string, isFinal bool, offset time.Duration) domain.TranscriptSegment {
	return domain.TranscriptSegment{
		ID:        id,
		CallID:    "a",
		Speaker:   domain.SpeakerCaller,
		Text:      text,
		IsFinal:   isFinal,
		Timestamp: testBase.Add(offset),
	}
}

func TestUpdateTicketPatchesStoreOnSuccess(t *testing.T) {
	projection := store.New()
	projection.LoadSnapshot([]domain.Call{testCall("a", domain.CallStatusEnded)})
	projection.AppendOrMergeSegment(seg("s1", "Hello", true, 0))

	client := &fakeTicketClient{result: ticketing.UpdateResult{TicketID: "TKT-2024-0042"}}
	svc := NewTicketService(projection, repository.NewMemoryCallRepository(), client, zap.NewNop())

	ticketID, err := svc.UpdateTicket(context.Background(), "a", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticketID != "TKT-2024-0042" {
		t.Errorf("expected confirmed ticket id, got %q", ticketID)
	}

	got, _ := projection.ByID("a")
	if got.TicketID == nil || *got.TicketID != "TKT-2024-0042" {
		t.Errorf("expected ticket id patched, got %v", got.TicketID)
	}
	if !got.HasTicketUpdate {
		t.Error("expected has_ticket_update set")
	}
	if client.lastReq.Transcript != "[CALLER]: Hello" {
		t.Errorf("unexpected transcript payload: %q", client.lastReq.Transcript)
	}
}

func TestUpdateTicketFailureLeavesStoreUnchanged(t *testing.T) {
	projection := store.New()
	projection.LoadSnapshot([]domain.Call{testCall("a", domain.CallStatusEnded)})

	client := &fakeTicketClient{err: errors.New("backend down")}
	svc := NewTicketService(projection, repository.NewMemoryCallRepository(), client, zap.NewNop())

	if _, err := svc.UpdateTicket(context.Background(), "a", "TKT-1"); err == nil {
		t.Fatal("expected error, got nil")
	}

	got, _ := projection.ByID("a")
	if got.TicketID != nil || got.HasTicketUpdate {
		t.Errorf("expected call unchanged after failure, got %+v", got)
	}
}

func TestUpdateTicketUnknownCall(t *testing.T) {
	svc := NewTicketService(store.New(), repository.NewMemoryCallRepository(), &fakeTicketClient{}, zap.NewNop())

	if _, err := svc.UpdateTicket(context.Background(), "ghost", ""); err == nil {
		t.Fatal("expected not-found error, got nil")
	}
}

func TestUpdateTicketFallsBackToRepository(t *testing.T) {
	repo := repository.NewMemoryCallRepository()
	repo.Seed(testCall("old", domain.CallStatusEnded))
	repo.SeedTranscript("old", []domain.TranscriptSegment{
		{ID: "s1", CallID: "old", Speaker: domain.SpeakerAgent, Text: "Archived", IsFinal: true, Timestamp: testBase},
	})

	client := &fakeTicketClient{result: ticketing.UpdateResult{TicketID: "TKT-9"}}
	svc := NewTicketService(store.New(), repo, client, zap.NewNop())

	ticketID, err := svc.UpdateTicket(context.Background(), "old", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticketID != "TKT-9" {
		t.Errorf("expected TKT-9, got %q", ticketID)
	}
	if client.lastReq.Transcript != "[AGENT]: Archived" {
		t.Errorf("expected archived transcript sent, got %q", client.lastReq.Transcript)
	}
}

func TestFormatTranscript(t *testing.T) {
	segments := []domain.TranscriptSegment{
		seg("s3", "third", true, 3*time.Second),
		seg("s1", "first", true, time.Second),
		seg("s2", "partial noise", false, 2*time.Second),
	}
	segments[0].Speaker = domain.SpeakerAgent

	got := FormatTranscript(segments)
	want := "[CALLER]: first\n[AGENT]: third"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFormatTranscriptEmpty(t *testing.T) {
	if got := FormatTranscript(nil); got != "" {
		t.Errorf("expected empty transcript, got %q", got)
	}
}
