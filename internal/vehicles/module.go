// Package vehicles provides the inventory domain module.
package vehicles

import (
	apphttp "carforsales_backend/internal/http"
	"carforsales_backend/internal/vehicles/handler"
	"carforsales_backend/internal/vehicles/repository"
	"carforsales_backend/internal/vehicles/service"
	"carforsales_backend/platform/httpkit"
	"carforsales_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the vehicles domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new vehicles module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "vehicles"
}

// Service returns the service layer for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes. Browsing is public;
// inventory management needs a dealer or admin account.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPublicRoutes(ctx.V1.Group("/vehicles"))

	manage := ctx.Protected.Group("/vehicles")
	manage.Use(httpkit.RequireRole("admin", "dealer"))
	m.handler.RegisterRoutes(manage)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
