package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/call-console/internal/api/dto"
	"github.com/spec-kit/call-console/internal/domain"
	"github.com/spec-kit/call-console/internal/repository"
	"github.com/spec-kit/call-console/internal/service"
	"github.com/spec-kit/call-console/internal/store"
	apperrors "github.com/spec-kit/call-console/pkg/util"
)

// CallsHandler serves the call projection and the operator actions on it.
type CallsHandler struct {
	store   *store.Store
	repo    repository.CallRepository
	tickets *service.TicketService
	notes   *service.NotesService
}

// NewCallsHandler returns a new handler instance.
func NewCallsHandler(s *store.Store, repo repository.CallRepository, tickets *service.TicketService, notes *service.NotesService) *CallsHandler {
	return &CallsHandler{store: s, repo: repo, tickets: tickets, notes: notes}
}

// List serves a filtered, paginated snapshot query straight from the
// repository.
func (h *CallsHandler) List(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}

	page, err := h.repo.List(c.UserContext(), filter)
	if err != nil {
		return apperrors.NewDependencyUnavailable("failed to fetch calls", err)
	}

	return c.JSON(dto.PageResponse{
		Items:      dto.CallRowsFromDomain(page.Items),
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	})
}

// Live serves the in-progress calls from the projection.
func (h *CallsHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"items": dto.CallRowsFromDomain(h.store.Live())})
}

// Past serves the finished calls from the projection.
func (h *CallsHandler) Past(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"items": dto.CallRowsFromDomain(h.store.Past())})
}

// Get serves one call, falling back to the repository when the projection
// has not seen it yet.
func (h *CallsHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	if call, ok := h.store.ByID(id); ok {
		return c.JSON(dto.CallRowFromDomain(call))
	}

	call, err := h.repo.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCallNotFound) {
			return apperrors.NewNotFound("call", map[string]any{"call_id": id})
		}
		return apperrors.NewDependencyUnavailable("failed to fetch call", err)
	}
	return c.JSON(dto.CallRowFromDomain(call))
}

// Transcript serves a call's segments from the projection, falling back to a
// one-shot repository fetch for calls that predate the subscription.
func (h *CallsHandler) Transcript(c *fiber.Ctx) error {
	id := c.Params("id")
	segments := h.store.TranscriptByCall(id)
	if len(segments) == 0 {
		fetched, err := h.repo.Transcript(c.UserContext(), id)
		if err != nil {
			return apperrors.NewDependencyUnavailable("failed to fetch transcript", err)
		}
		if len(fetched) > 0 {
			h.store.SetTranscript(id, fetched)
		}
		segments = fetched
	}
	return c.JSON(fiber.Map{"items": dto.SegmentRowsFromDomain(segments)})
}

type notesRequest struct {
	Notes string `json:"notes"`
}

// SaveNotes persists operator notes for a call.
func (h *CallsHandler) SaveNotes(c *fiber.Ctx) error {
	var req notesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	if err := h.notes.SaveNotes(c.UserContext(), c.Params("id"), req.Notes); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true, "message": "notes saved"})
}

type ticketRequest struct {
	TicketID string `json:"ticket_id"`
}

// UpdateTicket runs the ticket update workflow for a call.
func (h *CallsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req ticketRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid request body", nil)
		}
	}

	ticketID, err := h.tickets.UpdateTicket(c.UserContext(), c.Params("id"), req.TicketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true, "data": fiber.Map{"ticket_id": ticketID}})
}

func parseFilter(c *fiber.Ctx) (repository.Filter, error) {
	filter := repository.Filter{
		Search: c.Query("search"),
		Page:   1,
	}

	if raw := c.Query("status"); raw != "" && raw != "all" {
		status := domain.CallStatus(raw)
		if !status.Valid() {
			return repository.Filter{}, apperrors.NewValidationError("invalid status filter", map[string]any{"status": raw})
		}
		filter.Status = &status
	}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return repository.Filter{}, apperrors.NewValidationError("invalid page", map[string]any{"page": raw})
		}
		filter.Page = page
	}

	if raw := strings.TrimSpace(c.Query("start_date")); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return repository.Filter{}, apperrors.NewValidationError("invalid start_date", map[string]any{"start_date": raw})
		}
		filter.StartDate = &ts
	}
	if raw := strings.TrimSpace(c.Query("end_date")); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return repository.Filter{}, apperrors.NewValidationError("invalid end_date", map[string]any{"end_date": raw})
		}
		filter.EndDate = &ts
	}

	return filter, nil
}
