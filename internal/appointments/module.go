// Package appointments provides the test drive booking domain module.
package appointments

import (
	"context"

	"carforsales_backend/internal/appointments/handler"
	"carforsales_backend/internal/appointments/repository"
	"carforsales_backend/internal/appointments/service"
	dealerservice "carforsales_backend/internal/dealers/service"
	"carforsales_backend/internal/events"
	apphttp "carforsales_backend/internal/http"
	leadservice "carforsales_backend/internal/leads/service"
	vehiclerepo "carforsales_backend/internal/vehicles/repository"
	"carforsales_backend/platform/httpkit"
	"carforsales_backend/platform/logger"
	"carforsales_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"
)

// vehicleResolver adapts the vehicles repository to the resolver the
// appointments service needs.
type vehicleResolver struct {
	repo *vehiclerepo.Repository
}

func (r *vehicleResolver) DealerForVehicle(ctx context.Context, vehicleID uuid.UUID) (uuid.UUID, error) {
	vehicle, err := r.repo.GetByID(ctx, vehicleID)
	if err != nil {
		return uuid.Nil, err
	}
	return vehicle.DealerID, nil
}

// leadTracker adapts the leads service to the tracker the appointments
// service needs.
type leadTracker struct {
	svc *leadservice.Service
}

func (t *leadTracker) MarkScheduled(ctx context.Context, leadID uuid.UUID) error {
	return t.svc.UpdateStatus(ctx, leadID, "scheduled")
}

// Module represents the appointments domain module.
type Module struct {
	handler *handler.Handler
	log     *logger.Logger
}

// NewModule creates a new appointments module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, leadSvc *leadservice.Service, dealerSvc *dealerservice.Service, eventBus *events.InMemoryBus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	vehicles := &vehicleResolver{repo: vehiclerepo.New(pool)}
	svc := service.New(repo, vehicles, &leadTracker{svc: leadSvc}, eventBus, log)
	h := handler.New(svc, dealerSvc, val)

	return &Module{handler: h, log: log}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "appointments"
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public booking gets its own throttle: 5 bookings per minute per IP.
	bookLimiter := httpkit.NewIPRateLimiter(rate.Limit(5.0/60.0), 5, m.log)
	public := ctx.V1.Group("/appointments")
	public.Use(bookLimiter.RateLimit())
	m.handler.RegisterPublicRoutes(public)

	staff := ctx.Protected.Group("/appointments")
	staff.Use(httpkit.RequireRole("admin", "dealer"))
	m.handler.RegisterRoutes(staff)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
