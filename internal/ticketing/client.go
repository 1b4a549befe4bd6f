// Package ticketing reaches the external ticketing collaborator that
// attaches call transcripts to helpdesk tickets.
package ticketing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UpdateRequest asks the collaborator to attach a transcript to a ticket.
// An empty TicketID instructs the collaborator to create a new ticket.
type UpdateRequest struct {
	CallID     string `json:"call_id"`
	TicketID   string `json:"ticket_id,omitempty"`
	Transcript string `json:"transcript"`
}

// UpdateResult carries the ticket the transcript was attached to.
type UpdateResult struct {
	TicketID string
}

// Client is the ticketing collaborator contract.
type Client interface {
	UpdateTicket(ctx context.Context, req UpdateRequest) (UpdateResult, error)
}

type updateEnvelope struct {
	OK   bool `json:"ok"`
	Data struct {
		TicketID string `json:"ticket_id"`
	} `json:"data"`
	Message string `json:"message,omitempty"`
}

// HTTPClient talks JSON to the ticketing backend.
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// NewHTTPClient builds a client for the given base URL.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// UpdateTicket posts the transcript and returns the confirmed ticket id. A
// non-ok envelope or transport failure is an error; the caller must not apply
// any state change in that case.
func (c *HTTPClient) UpdateTicket(ctx context.Context, req UpdateRequest) (UpdateResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("encode ticket update: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tickets/update", bytes.NewReader(body))
	if err != nil {
		return UpdateResult{}, fmt.Errorf("build ticket update request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// Request id doubles as an idempotency key for the collaborator.
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("ticket update request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return UpdateResult{}, fmt.Errorf("read ticket update response: %w", err)
	}

	var envelope updateEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return UpdateResult{}, fmt.Errorf("decode ticket update response (status %d): %w", resp.StatusCode, err)
	}
	if !envelope.OK {
		msg := envelope.Message
		if msg == "" {
			msg = fmt.Sprintf("ticketing backend returned status %d", resp.StatusCode)
		}
		return UpdateResult{}, fmt.Errorf("ticket update rejected: %s", msg)
	}
	if envelope.Data.TicketID == "" {
		return UpdateResult{}, fmt.Errorf("ticket update response missing ticket id")
	}

	c.logger.Info("ticket updated", zap.String("call_id", req.CallID), zap.String("ticket_id", envelope.Data.TicketID))
	return UpdateResult{TicketID: envelope.Data.TicketID}, nil
}
