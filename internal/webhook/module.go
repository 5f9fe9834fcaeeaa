// Package webhook receives callbacks from the external agent service.
// The agent authenticates with a shared token, not a JWT.
package webhook

import (
	"context"

	apphttp "carforsales_backend/internal/http"
	"carforsales_backend/internal/leads/transport"
	"carforsales_backend/platform/config"
	"carforsales_backend/platform/logger"
	"carforsales_backend/platform/validator"

	"github.com/google/uuid"
)

// LeadActions is the slice of the leads service the webhook can invoke.
type LeadActions interface {
	MarkQualified(ctx context.Context, leadID uuid.UUID) error
	ScheduleFollowUp(ctx context.Context, leadID uuid.UUID, req transport.ScheduleFollowUpRequest) (*transport.FollowUpResponse, error)
	AssignManually(ctx context.Context, leadID, dealerID uuid.UUID, assignedBy string) (*transport.AssignmentResponse, error)
}

// Module is the agent callback module implementing http.Module.
type Module struct {
	handler *Handler
	token   string
}

// NewModule creates the webhook module.
func NewModule(cfg config.WebhookConfig, leads LeadActions, val *validator.Validator, log *logger.Logger) *Module {
	return &Module{
		handler: NewHandler(leads, val, log),
		token:   cfg.GetWebhookToken(),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the callback endpoint on the public v1 group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/webhook")
	group.Use(TokenAuthMiddleware(m.token))
	group.POST("/agent", m.handler.HandleAgentCallback)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
