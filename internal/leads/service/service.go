// Package service contains the leads business logic: scoring, routing
// and lifecycle management.
package service

import (
	"context"
	"time"

	"carforsales_backend/internal/events"
	"carforsales_backend/internal/leads/repository"
	"carforsales_backend/internal/leads/routing"
	"carforsales_backend/internal/leads/transport"
	"carforsales_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, lead *repository.Lead) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Lead, error)
	List(ctx context.Context, params repository.ListParams) (*repository.ListResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	AddInteraction(ctx context.Context, leadID uuid.UUID, interactionType string, detail []byte) error
	ListInteractions(ctx context.Context, leadID uuid.UUID) ([]repository.Interaction, error)

	Assign(ctx context.Context, leadID, dealerID uuid.UUID, assignedBy string) (*repository.Assignment, error)
	AcceptAssignment(ctx context.Context, id uuid.UUID) (*repository.Assignment, error)
	ReleaseAssignment(ctx context.Context, id uuid.UUID, status string) (*repository.Assignment, error)
	GetAssignment(ctx context.Context, id uuid.UUID) (*repository.Assignment, error)
	ListAssignmentsByLead(ctx context.Context, leadID uuid.UUID) ([]repository.Assignment, error)
	ListAssignmentsByDealer(ctx context.Context, dealerID uuid.UUID) ([]repository.Assignment, error)

	CreateFollowUp(ctx context.Context, f *repository.FollowUp) error
	SetFollowUpTaskID(ctx context.Context, id uuid.UUID, taskID string) error
	GetFollowUp(ctx context.Context, id uuid.UUID) (*repository.FollowUp, error)
	UpdateFollowUpStatus(ctx context.Context, id uuid.UUID, status string) error
}

// Router picks a dealer for a lead.
type Router interface {
	Route(ctx context.Context, in routing.ScoreInput) (*routing.Decision, error)
}

// AgentNotifier forwards lead activity to the external agent gateway.
// All calls are best-effort; the service never fails an operation on a
// gateway error.
type AgentNotifier interface {
	ProcessLead(ctx context.Context, lead *repository.Lead) error
	NotifyDealer(ctx context.Context, lead *repository.Lead, dealerID uuid.UUID) error
}

// FollowUpScheduler enqueues delayed follow-up delivery.
type FollowUpScheduler interface {
	ScheduleLeadFollowUp(ctx context.Context, followUpID, leadID uuid.UUID, at time.Time) (string, error)
}

// FollowUpMailer delivers email-channel follow-ups. Satisfied by the
// email sender.
type FollowUpMailer interface {
	SendFollowUpEmail(ctx context.Context, toEmail, leadName, message string) error
}

// Service implements the leads module business logic.
type Service struct {
	store     Store
	router    Router
	bus       events.Bus
	log       *logger.Logger
	gateway   AgentNotifier
	scheduler FollowUpScheduler
	mailer    FollowUpMailer
}

// New creates the leads service.
func New(store Store, router Router, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, router: router, bus: bus, log: log}
}

// SetAgentGateway wires the optional external agent gateway.
func (s *Service) SetAgentGateway(gateway AgentNotifier) {
	s.gateway = gateway
}

// SetFollowUpScheduler wires the optional follow-up task queue.
func (s *Service) SetFollowUpScheduler(scheduler FollowUpScheduler) {
	s.scheduler = scheduler
}

// SetFollowUpMailer wires the outbound email path for follow-ups.
func (s *Service) SetFollowUpMailer(mailer FollowUpMailer) {
	s.mailer = mailer
}

// gatewayContext bounds background gateway calls so a slow agent cannot
// pile up goroutines.
func gatewayContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 15*time.Second)
}

func toLeadResponse(l *repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:               l.ID,
		Name:             l.Name,
		Email:            l.Email,
		Phone:            l.Phone,
		VehicleInterest:  l.VehicleInterest,
		Budget:           l.Budget,
		Timeline:         l.Timeline,
		PreferredContact: l.PreferredContact,
		Source:           l.Source,
		Message:          l.Message,
		Score:            l.Score,
		Status:           l.Status,
		DealerID:         l.DealerID,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

func toAssignmentResponse(a *repository.Assignment) transport.AssignmentResponse {
	return transport.AssignmentResponse{
		ID:         a.ID,
		LeadID:     a.LeadID,
		DealerID:   a.DealerID,
		AssignedBy: a.AssignedBy,
		Status:     a.Status,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}
