// Package handler exposes the leads module over HTTP.
package handler

import (
	"net/http"

	"carforsales_backend/internal/leads/service"
	"carforsales_backend/internal/leads/transport"
	"carforsales_backend/platform/httpkit"
	"carforsales_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid id"
)

// Handler handles HTTP requests for leads.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new leads handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterPublicRoutes mounts the unauthenticated lead intake endpoint.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
}

// RegisterRoutes mounts the staff-facing lead management endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.POST("/:id/assign", h.Assign)
	rg.GET("/:id/interactions", h.ListInteractions)
	rg.GET("/:id/assignments", h.ListAssignments)
	rg.POST("/:id/followups", h.ScheduleFollowUp)
	rg.DELETE("/followups/:followupId", h.CancelFollowUp)
	rg.POST("/assignments/:assignmentId/accept", h.AcceptAssignment)
	rg.POST("/assignments/:assignmentId/reject", h.RejectAssignment)
	rg.POST("/assignments/:assignmentId/close", h.CloseAssignment)
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}

// Create is the public lead submission endpoint. The lead is always
// saved when valid; routing happens best-effort behind it.
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, result)
}

func (h *Handler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.List(c.Request.Context(), req, nil)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	lead, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req transport.UpdateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"status": req.Status})
}

// Assign routes a lead to a specific dealer, bypassing the matcher.
func (h *Handler) Assign(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req transport.AssignLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	assignment, err := h.svc.AssignManually(c.Request.Context(), id, req.DealerID, "admin")
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, assignment)
}

func (h *Handler) ListInteractions(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	items, err := h.svc.Interactions(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"items": items})
}

func (h *Handler) ListAssignments(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	items, err := h.svc.AssignmentsForLead(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"items": items})
}

func (h *Handler) ScheduleFollowUp(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req transport.ScheduleFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	followUp, err := h.svc.ScheduleFollowUp(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, followUp)
}

func (h *Handler) CancelFollowUp(c *gin.Context) {
	id, ok := paramUUID(c, "followupId")
	if !ok {
		return
	}

	if err := h.svc.CancelFollowUp(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"status": "canceled"})
}

func (h *Handler) AcceptAssignment(c *gin.Context) {
	h.settleAssignment(c, "accept")
}

func (h *Handler) RejectAssignment(c *gin.Context) {
	h.settleAssignment(c, "rejected")
}

func (h *Handler) CloseAssignment(c *gin.Context) {
	h.settleAssignment(c, "closed")
}

func (h *Handler) settleAssignment(c *gin.Context, action string) {
	id, ok := paramUUID(c, "assignmentId")
	if !ok {
		return
	}

	var (
		result interface{}
		err    error
	)
	if action == "accept" {
		result, err = h.svc.AcceptAssignment(c.Request.Context(), id)
	} else {
		result, err = h.svc.SettleAssignment(c.Request.Context(), id, action)
	}
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}
