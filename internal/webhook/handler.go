package webhook

import (
	"crypto/subtle"
	"net/http"

	"carforsales_backend/internal/leads/transport"
	"carforsales_backend/platform/httpkit"
	"carforsales_backend/platform/logger"
	"carforsales_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// agentCallbackRequest is the payload the external agent posts back
// after working a lead.
type agentCallbackRequest struct {
	LeadID uuid.UUID `json:"leadId" validate:"required"`
	Action string    `json:"action" validate:"required,oneof=qualified schedule_followup assign"`

	// assign
	DealerID *uuid.UUID `json:"dealerId" validate:"omitempty"`

	// schedule_followup
	FollowUp *transport.ScheduleFollowUpRequest `json:"followUp" validate:"omitempty"`
}

// Handler receives callbacks from the external agent service.
type Handler struct {
	leads LeadActions
	val   *validator.Validator
	log   *logger.Logger
}

// NewHandler creates a webhook handler.
func NewHandler(leads LeadActions, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{leads: leads, val: val, log: log}
}

// TokenAuthMiddleware validates the X-Agent-Token header against the
// configured shared secret.
func TokenAuthMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "webhook not configured"})
			return
		}
		provided := c.GetHeader("X-Agent-Token")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook token"})
			return
		}
		c.Next()
	}
}

// HandleAgentCallback applies an agent decision to a lead.
func (h *Handler) HandleAgentCallback(c *gin.Context) {
	var req agentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	ctx := c.Request.Context()
	switch req.Action {
	case "qualified":
		if err := h.leads.MarkQualified(ctx, req.LeadID); httpkit.HandleError(c, err) {
			return
		}
	case "schedule_followup":
		if req.FollowUp == nil {
			httpkit.Error(c, http.StatusBadRequest, "followUp payload required", nil)
			return
		}
		if _, err := h.leads.ScheduleFollowUp(ctx, req.LeadID, *req.FollowUp); httpkit.HandleError(c, err) {
			return
		}
	case "assign":
		if req.DealerID == nil {
			httpkit.Error(c, http.StatusBadRequest, "dealerId required", nil)
			return
		}
		if _, err := h.leads.AssignManually(ctx, req.LeadID, *req.DealerID, "agent"); httpkit.HandleError(c, err) {
			return
		}
	}

	h.log.Info("agent callback applied",
		"lead_id", req.LeadID.String(), "action", req.Action)
	httpkit.OK(c, gin.H{"applied": req.Action})
}
