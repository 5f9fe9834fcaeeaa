package notification

import (
	"context"
	"testing"
	"time"

	apptrepo "carforsales_backend/internal/appointments/repository"
	dealerrepo "carforsales_backend/internal/dealers/repository"
	"carforsales_backend/internal/events"
	leadrepo "carforsales_backend/internal/leads/repository"
	vehiclerepo "carforsales_backend/internal/vehicles/repository"
	"carforsales_backend/platform/apperr"
	"carforsales_backend/platform/logger"

	"github.com/google/uuid"
)

type testSender struct {
	welcomeCalls      int
	leadReceivedCalls int
	leadReceivedTo    string
	leadAssignedCalls int
	leadAssignedTo    string
	leadAssignedScore int
	confirmationCalls int
	confirmationLabel string
	followUpCalls     int
}

func (s *testSender) SendWelcomeEmail(context.Context, string, string) error {
	s.welcomeCalls++
	return nil
}

func (s *testSender) SendLeadReceivedEmail(_ context.Context, toEmail, _, _ string) error {
	s.leadReceivedCalls++
	s.leadReceivedTo = toEmail
	return nil
}

func (s *testSender) SendLeadAssignedEmail(_ context.Context, toEmail, _, _, _ string, score int) error {
	s.leadAssignedCalls++
	s.leadAssignedTo = toEmail
	s.leadAssignedScore = score
	return nil
}

func (s *testSender) SendAppointmentConfirmationEmail(_ context.Context, _, _, vehicleLabel, _, _ string) error {
	s.confirmationCalls++
	s.confirmationLabel = vehicleLabel
	return nil
}

func (s *testSender) SendFollowUpEmail(context.Context, string, string, string) error {
	s.followUpCalls++
	return nil
}

type testLeads struct {
	leads map[uuid.UUID]*leadrepo.Lead
}

func (r testLeads) GetByID(_ context.Context, id uuid.UUID) (*leadrepo.Lead, error) {
	l, ok := r.leads[id]
	if !ok {
		return nil, apperr.NotFound("lead not found")
	}
	return l, nil
}

type testDealers struct {
	dealers map[uuid.UUID]*dealerrepo.Dealer
}

func (r testDealers) GetByID(_ context.Context, id uuid.UUID) (*dealerrepo.Dealer, error) {
	d, ok := r.dealers[id]
	if !ok {
		return nil, apperr.NotFound("dealer not found")
	}
	return d, nil
}

type testVehicles struct {
	vehicles map[uuid.UUID]*vehiclerepo.Vehicle
}

func (r testVehicles) GetByID(_ context.Context, id uuid.UUID) (*vehiclerepo.Vehicle, error) {
	v, ok := r.vehicles[id]
	if !ok {
		return nil, apperr.NotFound("vehicle not found")
	}
	return v, nil
}

type testAppointments struct {
	appointments map[uuid.UUID]*apptrepo.Appointment
}

func (r testAppointments) GetByID(_ context.Context, id uuid.UUID) (*apptrepo.Appointment, error) {
	a, ok := r.appointments[id]
	if !ok {
		return nil, apperr.NotFound("appointment not found")
	}
	return a, nil
}

func TestHandleLeadCreatedSkipsNonEmailContact(t *testing.T) {
	sender := &testSender{}
	leadID := uuid.New()

	m := NewModule(sender, testLeads{leads: map[uuid.UUID]*leadrepo.Lead{
		leadID: {ID: leadID, Name: "Sam", Email: "sam@example.com", PreferredContact: "phone"},
	}}, nil, nil, nil, logger.New("development"))

	err := m.handleLeadCreated(context.Background(), events.LeadCreated{
		LeadID: leadID,
		Name:   "Sam",
		Email:  "sam@example.com",
	})
	if err != nil {
		t.Fatalf("handleLeadCreated returned error: %v", err)
	}
	if sender.leadReceivedCalls != 0 {
		t.Fatalf("expected no confirmation email for phone contact, got %d calls", sender.leadReceivedCalls)
	}
}

func TestHandleLeadCreatedConfirmsEmailContact(t *testing.T) {
	sender := &testSender{}
	leadID := uuid.New()

	m := NewModule(sender, testLeads{leads: map[uuid.UUID]*leadrepo.Lead{
		leadID: {ID: leadID, Name: "Sam", Email: "sam@example.com", PreferredContact: "email"},
	}}, nil, nil, nil, logger.New("development"))

	err := m.handleLeadCreated(context.Background(), events.LeadCreated{
		LeadID:          leadID,
		Name:            "Sam",
		Email:           "sam@example.com",
		VehicleInterest: "2021 Honda Civic",
	})
	if err != nil {
		t.Fatalf("handleLeadCreated returned error: %v", err)
	}
	if sender.leadReceivedCalls != 1 {
		t.Fatalf("expected one confirmation email, got %d", sender.leadReceivedCalls)
	}
	if sender.leadReceivedTo != "sam@example.com" {
		t.Fatalf("confirmation sent to %q, want sam@example.com", sender.leadReceivedTo)
	}
}

func TestHandleLeadAssignedEmailsDealerWithScore(t *testing.T) {
	sender := &testSender{}
	leadID := uuid.New()
	dealerID := uuid.New()
	interest := "2020 Toyota RAV4"

	m := NewModule(sender,
		testLeads{leads: map[uuid.UUID]*leadrepo.Lead{
			leadID: {ID: leadID, Name: "Sam", Email: "sam@example.com", VehicleInterest: &interest, Score: 85},
		}},
		testDealers{dealers: map[uuid.UUID]*dealerrepo.Dealer{
			dealerID: {ID: dealerID, Name: "Metro Motors", Email: "sales@metro.example.com"},
		}},
		nil, nil, logger.New("development"))

	err := m.handleLeadAssigned(context.Background(), events.LeadAssigned{LeadID: leadID, DealerID: dealerID})
	if err != nil {
		t.Fatalf("handleLeadAssigned returned error: %v", err)
	}
	if sender.leadAssignedCalls != 1 {
		t.Fatalf("expected one assignment email, got %d", sender.leadAssignedCalls)
	}
	if sender.leadAssignedTo != "sales@metro.example.com" {
		t.Fatalf("assignment email sent to %q, want the dealer address", sender.leadAssignedTo)
	}
	if sender.leadAssignedScore != 85 {
		t.Fatalf("assignment email carried score %d, want 85", sender.leadAssignedScore)
	}
}

func TestHandleAppointmentCreatedBuildsVehicleLabel(t *testing.T) {
	sender := &testSender{}
	appointmentID := uuid.New()
	vehicleID := uuid.New()
	dealerID := uuid.New()

	m := NewModule(sender, nil,
		testDealers{dealers: map[uuid.UUID]*dealerrepo.Dealer{
			dealerID: {ID: dealerID, Name: "Metro Motors", Email: "sales@metro.example.com"},
		}},
		testVehicles{vehicles: map[uuid.UUID]*vehiclerepo.Vehicle{
			vehicleID: {ID: vehicleID, DealerID: dealerID, Make: "Honda", Model: "Civic", Year: 2021},
		}},
		testAppointments{appointments: map[uuid.UUID]*apptrepo.Appointment{
			appointmentID: {
				ID:            appointmentID,
				VehicleID:     vehicleID,
				DealerID:      dealerID,
				CustomerName:  "Sam",
				CustomerEmail: "sam@example.com",
				ScheduledAt:   time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC),
				Status:        "scheduled",
			},
		}},
		logger.New("development"))

	err := m.handleAppointmentCreated(context.Background(), events.AppointmentCreated{AppointmentID: appointmentID})
	if err != nil {
		t.Fatalf("handleAppointmentCreated returned error: %v", err)
	}
	if sender.confirmationCalls != 1 {
		t.Fatalf("expected one confirmation email, got %d", sender.confirmationCalls)
	}
	if sender.confirmationLabel != "2021 Honda Civic" {
		t.Fatalf("vehicle label %q, want \"2021 Honda Civic\"", sender.confirmationLabel)
	}
}

func TestHandleUnknownEventIsIgnored(t *testing.T) {
	sender := &testSender{}
	m := NewModule(sender, nil, nil, nil, nil, logger.New("development"))

	if err := m.Handle(context.Background(), events.LeadUnassigned{}); err != nil {
		t.Fatalf("unexpected error for unhandled event: %v", err)
	}
	if sender.welcomeCalls+sender.leadReceivedCalls+sender.leadAssignedCalls+sender.confirmationCalls != 0 {
		t.Fatal("unhandled event must not trigger any email")
	}
}
