// Package leads provides the lead intake and routing domain module.
package leads

import (
	"carforsales_backend/internal/events"
	apphttp "carforsales_backend/internal/http"
	"carforsales_backend/internal/leads/handler"
	"carforsales_backend/internal/leads/repository"
	"carforsales_backend/internal/leads/routing"
	"carforsales_backend/internal/leads/service"
	"carforsales_backend/platform/httpkit"
	"carforsales_backend/platform/logger"
	"carforsales_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"
)

// Module represents the leads domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
	log     *logger.Logger
}

// NewModule creates a new leads module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, eventBus *events.InMemoryBus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	router := routing.NewRouter(repo)
	svc := service.New(repo, router, eventBus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
		log:     log,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for cross-module wiring.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// SetAgentGateway wires the optional external agent gateway.
func (m *Module) SetAgentGateway(gateway service.AgentNotifier) {
	m.service.SetAgentGateway(gateway)
}

// SetFollowUpScheduler wires the optional follow-up task queue.
func (m *Module) SetFollowUpScheduler(scheduler service.FollowUpScheduler) {
	m.service.SetFollowUpScheduler(scheduler)
}

// SetFollowUpMailer wires the outbound email path for follow-ups.
func (m *Module) SetFollowUpMailer(mailer service.FollowUpMailer) {
	m.service.SetFollowUpMailer(mailer)
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public intake gets its own throttle: 5 submissions per minute per IP.
	intakeLimiter := httpkit.NewIPRateLimiter(rate.Limit(5.0/60.0), 5, m.log)
	public := ctx.V1.Group("/leads")
	public.Use(intakeLimiter.RateLimit())
	m.handler.RegisterPublicRoutes(public)

	staff := ctx.Protected.Group("/leads")
	staff.Use(httpkit.RequireRole("admin", "dealer"))
	m.handler.RegisterRoutes(staff)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
