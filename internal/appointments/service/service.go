// Package service implements business logic for test drive appointments.
package service

import (
	"context"
	"time"

	"carforsales_backend/internal/appointments/repository"
	"carforsales_backend/internal/appointments/transport"
	"carforsales_backend/internal/events"
	"carforsales_backend/platform/apperr"
	"carforsales_backend/platform/logger"
	"carforsales_backend/platform/phone"

	"github.com/google/uuid"
)

// Store defines the persistence the appointments service needs.
type Store interface {
	Create(ctx context.Context, a *repository.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Appointment, error)
	ListByDealer(ctx context.Context, dealerID uuid.UUID, upcomingOnly bool) ([]repository.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	HasConflict(ctx context.Context, dealerID uuid.UUID, at time.Time) (bool, error)
}

// VehicleResolver looks up which dealer a vehicle belongs to.
type VehicleResolver interface {
	DealerForVehicle(ctx context.Context, vehicleID uuid.UUID) (uuid.UUID, error)
}

// LeadTracker lets a booking move a linked lead along the pipeline.
type LeadTracker interface {
	MarkScheduled(ctx context.Context, leadID uuid.UUID) error
}

// Service handles test drive appointment operations.
type Service struct {
	store    Store
	vehicles VehicleResolver
	leads    LeadTracker
	bus      events.Bus
	log      *logger.Logger
}

// New creates a new appointments service.
func New(store Store, vehicles VehicleResolver, leads LeadTracker, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, vehicles: vehicles, leads: leads, bus: bus, log: log}
}

// Book creates a test drive booking from the public site.
func (s *Service) Book(ctx context.Context, req transport.BookAppointmentRequest) (*transport.AppointmentResponse, error) {
	if !req.ScheduledAt.After(time.Now()) {
		return nil, apperr.Validation("scheduled time must be in the future")
	}

	dealerID, err := s.vehicles.DealerForVehicle(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}

	conflict, err := s.store.HasConflict(ctx, dealerID, req.ScheduledAt)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, apperr.Conflict("the dealer is not available at the requested time")
	}

	if req.CustomerPhone != nil {
		normalized := phone.NormalizeE164(*req.CustomerPhone)
		req.CustomerPhone = &normalized
	}

	appointment := &repository.Appointment{
		VehicleID:     req.VehicleID,
		DealerID:      dealerID,
		LeadID:        req.LeadID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		ScheduledAt:   req.ScheduledAt,
		Notes:         req.Notes,
	}
	if err := s.store.Create(ctx, appointment); err != nil {
		return nil, err
	}

	if req.LeadID != nil {
		if err := s.leads.MarkScheduled(ctx, *req.LeadID); err != nil {
			s.log.Warn("failed to move lead to scheduled",
				"lead_id", req.LeadID.String(), "error", err)
		}
	}

	s.bus.Publish(ctx, events.AppointmentCreated{
		BaseEvent:     events.NewBaseEvent(),
		AppointmentID: appointment.ID,
		LeadID:        appointment.LeadID,
		VehicleID:     appointment.VehicleID,
		CustomerEmail: appointment.CustomerEmail,
		ScheduledAt:   appointment.ScheduledAt,
	})

	s.log.Info("test drive booked",
		"appointment_id", appointment.ID.String(),
		"dealer_id", dealerID.String(),
		"scheduled_at", appointment.ScheduledAt)

	return toResponse(appointment), nil
}

// Get fetches a single booking.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*transport.AppointmentResponse, error) {
	appointment, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(appointment), nil
}

// ListForDealer returns a dealer's bookings.
func (s *Service) ListForDealer(ctx context.Context, dealerID uuid.UUID, upcomingOnly bool) ([]transport.AppointmentResponse, error) {
	items, err := s.store.ListByDealer(ctx, dealerID, upcomingOnly)
	if err != nil {
		return nil, err
	}
	out := make([]transport.AppointmentResponse, len(items))
	for i := range items {
		out[i] = *toResponse(&items[i])
	}
	return out, nil
}

var statusTransitions = map[string][]string{
	"scheduled": {"completed", "canceled", "no_show"},
}

// UpdateStatus moves a booking through its lifecycle. Only scheduled
// bookings can transition; terminal states are final.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*transport.AppointmentResponse, error) {
	appointment, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range statusTransitions[appointment.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperr.Conflict("cannot move appointment from " + appointment.Status + " to " + status)
	}

	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	appointment.Status = status
	return toResponse(appointment), nil
}

func toResponse(a *repository.Appointment) *transport.AppointmentResponse {
	return &transport.AppointmentResponse{
		ID:            a.ID,
		VehicleID:     a.VehicleID,
		DealerID:      a.DealerID,
		LeadID:        a.LeadID,
		CustomerName:  a.CustomerName,
		CustomerEmail: a.CustomerEmail,
		CustomerPhone: a.CustomerPhone,
		ScheduledAt:   a.ScheduledAt,
		Status:        a.Status,
		Notes:         a.Notes,
		CreatedAt:     a.CreatedAt,
	}
}
