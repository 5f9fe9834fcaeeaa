// Package handler exposes the dealers module over HTTP.
package handler

import (
	"net/http"

	"carforsales_backend/internal/dealers/service"
	"carforsales_backend/internal/dealers/transport"
	leadservice "carforsales_backend/internal/leads/service"
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

// Handler handles HTTP requests for dealers.
type Handler struct {
	svc     *service.Service
	leadSvc *leadservice.Service
	val     *validator.Validator
}

// New creates a new dealers handler.
func New(svc *service.Service, leadSvc *leadservice.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, leadSvc: leadSvc, val: val}
}

// RegisterAdminRoutes mounts the admin-only dealer management endpoints.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.PUT("/:id", h.Update)
	rg.PATCH("/:id/active", h.SetActive)
	rg.POST("/accounts", h.LinkAccount)
}

// RegisterRoutes mounts the authenticated dealer endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/search", h.Search)
	rg.GET("/me", h.Me)
	rg.GET("/me/assignments", h.MyAssignments)
	rg.GET("/:id", h.GetByID)
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateDealerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	dealer, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, dealer)
}

func (h *Handler) List(c *gin.Context) {
	var req transport.ListDealersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	items, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"items": items})
}

// Search returns active dealers within a radius of a zip code.
func (h *Handler) Search(c *gin.Context) {
	var req transport.SearchDealersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	items, err := h.svc.SearchByZip(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"items": items})
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	dealer, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, dealer)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req transport.UpdateDealerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	dealer, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, dealer)
}

func (h *Handler) SetActive(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	if err := h.svc.SetActive(c.Request.Context(), id, req.Active); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"active": req.Active})
}

func (h *Handler) LinkAccount(c *gin.Context) {
	var req transport.LinkAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.LinkAccount(c.Request.Context(), req.UserID, req.DealerID); httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, gin.H{"status": "linked"})
}

// Me returns the dealer record of the authenticated dealer user.
func (h *Handler) Me(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	dealer, err := h.svc.DealerForUser(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, dealer)
}

// MyAssignments returns the live assignments of the authenticated
// dealer user.
func (h *Handler) MyAssignments(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	dealer, err := h.svc.DealerForUser(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	items, err := h.leadSvc.AssignmentsForDealer(c.Request.Context(), dealer.ID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"items": items})
}
