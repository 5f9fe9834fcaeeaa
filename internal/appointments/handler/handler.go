// Package handler exposes the appointments module over HTTP.
package handler

import (
	"net/http"

	"carforsales_backend/internal/appointments/service"
	"carforsales_backend/internal/appointments/transport"
	dealerservice "carforsales_backend/internal/dealers/service"
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

// Handler handles HTTP requests for test drive appointments.
type Handler struct {
	svc       *service.Service
	dealerSvc *dealerservice.Service
	val       *validator.Validator
}

// New creates a new appointments handler.
func New(svc *service.Service, dealerSvc *dealerservice.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, dealerSvc: dealerSvc, val: val}
}

// RegisterPublicRoutes mounts the unauthenticated booking endpoint.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Book)
}

// RegisterRoutes mounts the staff-facing appointment endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.MyAppointments)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id/status", h.UpdateStatus)
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}

// Book creates a test drive booking from the public site.
func (h *Handler) Book(c *gin.Context) {
	var req transport.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	appointment, err := h.svc.Book(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, appointment)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	appointment, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, appointment)
}

// MyAppointments returns the bookings of the authenticated dealer user.
func (h *Handler) MyAppointments(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	dealer, err := h.dealerSvc.DealerForUser(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	upcomingOnly := c.Query("upcoming") == "true"
	items, err := h.svc.ListForDealer(c.Request.Context(), dealer.ID, upcomingOnly)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"items": items})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req transport.UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	appointment, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, appointment)
}
