// Package gateway is the HTTP client for the external sales agent
// service. The agent enriches leads, drafts outreach messages and pings
// dealers; everything here is best-effort from the caller's point of
// view.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"carforsales_backend/internal/leads/repository"
	"carforsales_backend/platform/config"
	"carforsales_backend/platform/logger"

	"github.com/google/uuid"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *logger.Logger
}

type leadPayload struct {
	LeadID           uuid.UUID `json:"leadId"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	VehicleInterest  string    `json:"vehicleInterest,omitempty"`
	Budget           string    `json:"budget,omitempty"`
	Timeline         string    `json:"timeline,omitempty"`
	PreferredContact string    `json:"preferredContact"`
	Source           string    `json:"source"`
	Message          string    `json:"message,omitempty"`
	Score            int       `json:"score"`
	Status           string    `json:"status"`
}

type notifyPayload struct {
	LeadID   uuid.UUID `json:"leadId"`
	DealerID uuid.UUID `json:"dealerId"`
	Score    int       `json:"score"`
}

// NewClient builds a gateway client, or nil when no gateway is
// configured. A nil client is safe to call.
func NewClient(cfg config.GatewayConfig, log *logger.Logger) *Client {
	if !cfg.IsGatewayEnabled() {
		return nil
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.GetGatewayURL(), "/"),
		token:   cfg.GetGatewayToken(),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// ProcessLead hands a lead to the agent for enrichment and outreach.
func (c *Client) ProcessLead(ctx context.Context, lead *repository.Lead) error {
	if c == nil {
		return nil
	}

	payload := leadPayload{
		LeadID:           lead.ID,
		Name:             lead.Name,
		Email:            lead.Email,
		Phone:            lead.Phone,
		PreferredContact: lead.PreferredContact,
		Source:           lead.Source,
		Score:            lead.Score,
		Status:           lead.Status,
	}
	if lead.VehicleInterest != nil {
		payload.VehicleInterest = *lead.VehicleInterest
	}
	if lead.Budget != nil {
		payload.Budget = *lead.Budget
	}
	if lead.Timeline != nil {
		payload.Timeline = *lead.Timeline
	}
	if lead.Message != nil {
		payload.Message = *lead.Message
	}

	if err := c.post(ctx, "/agent/leads", payload); err != nil {
		return err
	}

	c.log.Info("lead forwarded to agent", "lead_id", lead.ID.String())
	return nil
}

// NotifyDealer asks the agent to ping a dealer about a fresh
// assignment.
func (c *Client) NotifyDealer(ctx context.Context, lead *repository.Lead, dealerID uuid.UUID) error {
	if c == nil {
		return nil
	}

	payload := notifyPayload{
		LeadID:   lead.ID,
		DealerID: dealerID,
		Score:    lead.Score,
	}

	if err := c.post(ctx, "/agent/notify-dealer", payload); err != nil {
		return err
	}

	c.log.Info("dealer notification requested",
		"lead_id", lead.ID.String(), "dealer_id", dealerID.String())
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal gateway payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("agent gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return nil
}
