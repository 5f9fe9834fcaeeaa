// Package notification sends emails in response to domain events. It
// subscribes to the event bus so domain modules never talk to mail
// providers directly.
package notification

import (
	"context"
	"fmt"
	"time"

	apptrepo "carforsales_backend/internal/appointments/repository"
	dealerrepo "carforsales_backend/internal/dealers/repository"
	"carforsales_backend/internal/email"
	"carforsales_backend/internal/events"
	leadrepo "carforsales_backend/internal/leads/repository"
	vehiclerepo "carforsales_backend/internal/vehicles/repository"
	"carforsales_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// LeadReader loads leads for notification fan-out.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*leadrepo.Lead, error)
}

// DealerReader loads dealers for notification fan-out.
type DealerReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*dealerrepo.Dealer, error)
}

// VehicleReader loads vehicles for notification fan-out.
type VehicleReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*vehiclerepo.Vehicle, error)
}

// AppointmentReader loads bookings for notification fan-out.
type AppointmentReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*apptrepo.Appointment, error)
}

// Module wires domain events to outbound email.
type Module struct {
	sender       email.Sender
	leads        LeadReader
	dealers      DealerReader
	vehicles     VehicleReader
	appointments AppointmentReader
	log          *logger.Logger
}

// NewModule creates the notification module.
func NewModule(sender email.Sender, leads LeadReader, dealers DealerReader, vehicles VehicleReader, appointments AppointmentReader, log *logger.Logger) *Module {
	return &Module{
		sender:       sender,
		leads:        leads,
		dealers:      dealers,
		vehicles:     vehicles,
		appointments: appointments,
		log:          log,
	}
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.UserSignedUp{}.EventName(), m)
	bus.Subscribe(events.LeadCreated{}.EventName(), m)
	bus.Subscribe(events.LeadAssigned{}.EventName(), m)
	bus.Subscribe(events.AppointmentCreated{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.UserSignedUp:
		return m.handleUserSignedUp(ctx, e)
	case events.LeadCreated:
		return m.handleLeadCreated(ctx, e)
	case events.LeadAssigned:
		return m.handleLeadAssigned(ctx, e)
	case events.AppointmentCreated:
		return m.handleAppointmentCreated(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleUserSignedUp(ctx context.Context, e events.UserSignedUp) error {
	if err := m.sender.SendWelcomeEmail(ctx, e.Email, e.Name); err != nil {
		return fmt.Errorf("welcome email to %s: %w", e.Email, err)
	}
	return nil
}

func (m *Module) handleLeadCreated(ctx context.Context, e events.LeadCreated) error {
	lead, err := m.leads.GetByID(ctx, e.LeadID)
	if err != nil {
		return fmt.Errorf("load lead %s: %w", e.LeadID, err)
	}
	// Only confirm by email when the lead asked for email contact.
	if lead.PreferredContact != "email" {
		return nil
	}
	if err := m.sender.SendLeadReceivedEmail(ctx, e.Email, e.Name, e.VehicleInterest); err != nil {
		return fmt.Errorf("lead received email to %s: %w", e.Email, err)
	}
	return nil
}

func (m *Module) handleLeadAssigned(ctx context.Context, e events.LeadAssigned) error {
	lead, err := m.leads.GetByID(ctx, e.LeadID)
	if err != nil {
		return fmt.Errorf("load lead %s: %w", e.LeadID, err)
	}
	dealer, err := m.dealers.GetByID(ctx, e.DealerID)
	if err != nil {
		return fmt.Errorf("load dealer %s: %w", e.DealerID, err)
	}

	interest := ""
	if lead.VehicleInterest != nil {
		interest = *lead.VehicleInterest
	}
	if err := m.sender.SendLeadAssignedEmail(ctx, dealer.Email, dealer.Name, lead.Name, interest, lead.Score); err != nil {
		return fmt.Errorf("lead assigned email to %s: %w", dealer.Email, err)
	}
	return nil
}

func (m *Module) handleAppointmentCreated(ctx context.Context, e events.AppointmentCreated) error {
	appointment, err := m.appointments.GetByID(ctx, e.AppointmentID)
	if err != nil {
		return fmt.Errorf("load appointment %s: %w", e.AppointmentID, err)
	}

	var (
		vehicle *vehiclerepo.Vehicle
		dealer  *dealerrepo.Dealer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := m.vehicles.GetByID(gctx, appointment.VehicleID)
		if err != nil {
			return fmt.Errorf("load vehicle %s: %w", appointment.VehicleID, err)
		}
		vehicle = v
		return nil
	})
	g.Go(func() error {
		d, err := m.dealers.GetByID(gctx, appointment.DealerID)
		if err != nil {
			return fmt.Errorf("load dealer %s: %w", appointment.DealerID, err)
		}
		dealer = d
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	vehicleLabel := fmt.Sprintf("%d %s %s", vehicle.Year, vehicle.Make, vehicle.Model)
	when := appointment.ScheduledAt.Format(time.RFC1123)
	if err := m.sender.SendAppointmentConfirmationEmail(ctx,
		appointment.CustomerEmail, appointment.CustomerName, vehicleLabel, dealer.Name, when); err != nil {
		return fmt.Errorf("appointment confirmation email to %s: %w", appointment.CustomerEmail, err)
	}
	return nil
}

// Compile-time check that Module implements events.Handler
var _ events.Handler = (*Module)(nil)
