package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"carforsales_backend/internal/appointments/repository"
	"carforsales_backend/internal/appointments/transport"
	"carforsales_backend/internal/events"
	"carforsales_backend/platform/apperr"
	"carforsales_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	appointments map[uuid.UUID]*repository.Appointment
	conflict     bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{appointments: make(map[uuid.UUID]*repository.Appointment)}
}

func (f *fakeStore) Create(_ context.Context, a *repository.Appointment) error {
	a.ID = uuid.New()
	a.Status = "scheduled"
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	f.appointments[a.ID] = a
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*repository.Appointment, error) {
	a, ok := f.appointments[id]
	if !ok {
		return nil, apperr.NotFound("appointment not found")
	}
	return a, nil
}

func (f *fakeStore) ListByDealer(_ context.Context, dealerID uuid.UUID, upcomingOnly bool) ([]repository.Appointment, error) {
	var out []repository.Appointment
	for _, a := range f.appointments {
		if a.DealerID != dealerID {
			continue
		}
		if upcomingOnly && a.Status != "scheduled" {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	a, ok := f.appointments[id]
	if !ok {
		return apperr.NotFound("appointment not found")
	}
	a.Status = status
	return nil
}

func (f *fakeStore) HasConflict(_ context.Context, _ uuid.UUID, _ time.Time) (bool, error) {
	return f.conflict, nil
}

type fakeVehicles struct {
	dealerID uuid.UUID
	err      error
}

func (f *fakeVehicles) DealerForVehicle(_ context.Context, _ uuid.UUID) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	return f.dealerID, nil
}

type fakeLeads struct {
	scheduled []uuid.UUID
}

func (f *fakeLeads) MarkScheduled(_ context.Context, leadID uuid.UUID) error {
	f.scheduled = append(f.scheduled, leadID)
	return nil
}

func newService(store *fakeStore, vehicles *fakeVehicles, leads *fakeLeads) *Service {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	return New(store, vehicles, leads, bus, log)
}

func bookRequest() transport.BookAppointmentRequest {
	return transport.BookAppointmentRequest{
		VehicleID:     uuid.New(),
		CustomerName:  "Dana Smith",
		CustomerEmail: "dana@example.com",
		ScheduledAt:   time.Now().Add(48 * time.Hour),
	}
}

func TestBook_ResolvesDealerFromVehicle(t *testing.T) {
	dealerID := uuid.New()
	store := newFakeStore()
	svc := newService(store, &fakeVehicles{dealerID: dealerID}, &fakeLeads{})

	resp, err := svc.Book(context.Background(), bookRequest())
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}
	if resp.DealerID != dealerID {
		t.Fatalf("dealer = %s, want %s", resp.DealerID, dealerID)
	}
	if resp.Status != "scheduled" {
		t.Fatalf("status = %q, want scheduled", resp.Status)
	}
}

func TestBook_RejectsPastSlot(t *testing.T) {
	svc := newService(newFakeStore(), &fakeVehicles{dealerID: uuid.New()}, &fakeLeads{})

	req := bookRequest()
	req.ScheduledAt = time.Now().Add(-time.Hour)

	_, err := svc.Book(context.Background(), req)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBook_RejectsConflictingSlot(t *testing.T) {
	store := newFakeStore()
	store.conflict = true
	svc := newService(store, &fakeVehicles{dealerID: uuid.New()}, &fakeLeads{})

	_, err := svc.Book(context.Background(), bookRequest())
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestBook_MovesLinkedLeadToScheduled(t *testing.T) {
	leads := &fakeLeads{}
	svc := newService(newFakeStore(), &fakeVehicles{dealerID: uuid.New()}, leads)

	leadID := uuid.New()
	req := bookRequest()
	req.LeadID = &leadID

	if _, err := svc.Book(context.Background(), req); err != nil {
		t.Fatalf("Book returned error: %v", err)
	}
	if len(leads.scheduled) != 1 || leads.scheduled[0] != leadID {
		t.Fatalf("lead not marked scheduled: %v", leads.scheduled)
	}
}

func TestUpdateStatus_RejectsTerminalTransitions(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeVehicles{dealerID: uuid.New()}, &fakeLeads{})

	resp, err := svc.Book(context.Background(), bookRequest())
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}

	if _, err := svc.UpdateStatus(context.Background(), resp.ID, "completed"); err != nil {
		t.Fatalf("scheduled -> completed should be allowed: %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), resp.ID, "canceled")
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindConflict {
		t.Fatalf("completed -> canceled should conflict, got %v", err)
	}
}
