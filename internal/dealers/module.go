// Package dealers provides the dealer management domain module.
package dealers

import (
	"carforsales_backend/internal/dealers/handler"
	"carforsales_backend/internal/dealers/repository"
	"carforsales_backend/internal/dealers/service"
	apphttp "carforsales_backend/internal/http"
	leadservice "carforsales_backend/internal/leads/service"
	"carforsales_backend/platform/logger"
	"carforsales_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the dealers domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new dealers module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, leadSvc *leadservice.Service, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, leadSvc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "dealers"
}

// Service returns the service layer for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// SetGeocoder wires the optional zip code geocoder.
func (m *Module) SetGeocoder(geocoder service.Geocoder) {
	m.service.SetGeocoder(geocoder)
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/dealers"))
	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/dealers"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
