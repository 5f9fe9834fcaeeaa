package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"carforsales_backend/internal/events"
	"carforsales_backend/internal/leads/repository"
	"carforsales_backend/internal/leads/routing"
	"carforsales_backend/internal/leads/transport"
	"carforsales_backend/platform/apperr"
	"carforsales_backend/platform/logger"

	"github.com/google/uuid"
)

// fakeStore records calls and lets tests inject failures per method.
type fakeStore struct {
	created      []*repository.Lead
	interactions []string
	assignments  []*repository.Assignment

	assignErr error
	leads     map[uuid.UUID]*repository.Lead
	followUps map[uuid.UUID]*repository.FollowUp
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:     make(map[uuid.UUID]*repository.Lead),
		followUps: make(map[uuid.UUID]*repository.FollowUp),
	}
}

func (f *fakeStore) Create(_ context.Context, lead *repository.Lead) error {
	lead.ID = uuid.New()
	lead.CreatedAt = time.Now()
	lead.UpdatedAt = lead.CreatedAt
	f.created = append(f.created, lead)
	f.leads[lead.ID] = lead
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return nil, errors.New("lead not found")
	}
	return lead, nil
}

func (f *fakeStore) List(_ context.Context, _ repository.ListParams) (*repository.ListResult, error) {
	return &repository.ListResult{}, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	if lead, ok := f.leads[id]; ok {
		lead.Status = status
	}
	return nil
}

func (f *fakeStore) AddInteraction(_ context.Context, _ uuid.UUID, interactionType string, _ []byte) error {
	f.interactions = append(f.interactions, interactionType)
	return nil
}

func (f *fakeStore) ListInteractions(_ context.Context, _ uuid.UUID) ([]repository.Interaction, error) {
	return nil, nil
}

func (f *fakeStore) Assign(_ context.Context, leadID, dealerID uuid.UUID, assignedBy string) (*repository.Assignment, error) {
	if f.assignErr != nil {
		return nil, f.assignErr
	}
	a := &repository.Assignment{
		ID: uuid.New(), LeadID: leadID, DealerID: dealerID,
		AssignedBy: assignedBy, Status: "pending",
	}
	f.assignments = append(f.assignments, a)
	return a, nil
}

func (f *fakeStore) AcceptAssignment(_ context.Context, id uuid.UUID) (*repository.Assignment, error) {
	return &repository.Assignment{ID: id, Status: "accepted"}, nil
}

func (f *fakeStore) ReleaseAssignment(_ context.Context, id uuid.UUID, status string) (*repository.Assignment, error) {
	return &repository.Assignment{ID: id, Status: status}, nil
}

func (f *fakeStore) GetAssignment(_ context.Context, id uuid.UUID) (*repository.Assignment, error) {
	return &repository.Assignment{ID: id}, nil
}

func (f *fakeStore) ListAssignmentsByLead(_ context.Context, _ uuid.UUID) ([]repository.Assignment, error) {
	return nil, nil
}

func (f *fakeStore) ListAssignmentsByDealer(_ context.Context, _ uuid.UUID) ([]repository.Assignment, error) {
	return nil, nil
}

func (f *fakeStore) CreateFollowUp(_ context.Context, fu *repository.FollowUp) error {
	fu.ID = uuid.New()
	fu.Status = "scheduled"
	f.followUps[fu.ID] = fu
	return nil
}

func (f *fakeStore) SetFollowUpTaskID(_ context.Context, id uuid.UUID, taskID string) error {
	if fu, ok := f.followUps[id]; ok {
		fu.TaskID = &taskID
	}
	return nil
}

func (f *fakeStore) GetFollowUp(_ context.Context, id uuid.UUID) (*repository.FollowUp, error) {
	fu, ok := f.followUps[id]
	if !ok {
		return nil, errors.New("follow-up not found")
	}
	return fu, nil
}

func (f *fakeStore) UpdateFollowUpStatus(_ context.Context, id uuid.UUID, status string) error {
	if fu, ok := f.followUps[id]; ok {
		fu.Status = status
	}
	return nil
}

type fakeRouter struct {
	decision *routing.Decision
	err      error
}

func (f *fakeRouter) Route(_ context.Context, _ routing.ScoreInput) (*routing.Decision, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.decision, nil
}

func newService(store Store, router Router) *Service {
	log := logger.New("development")
	return New(store, router, events.NewInMemoryBus(log), log)
}

func validRequest() transport.CreateLeadRequest {
	return transport.CreateLeadRequest{
		Name:             "Jane Roe",
		Email:            "jane@example.com",
		Phone:            "+15551234567",
		VehicleInterest:  "Tesla Model 3",
		Budget:           "$50k",
		Timeline:         "this week",
		PreferredContact: "phone",
		Source:           "referral",
	}
}

func TestCreate_RoutesAndAssigns(t *testing.T) {
	store := newFakeStore()
	dealer := routing.Dealer{ID: uuid.New(), Name: "Volt Motors"}
	svc := newService(store, &fakeRouter{decision: &routing.Decision{Dealer: dealer}})

	resp, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !resp.Routed {
		t.Fatal("expected the lead to be routed")
	}
	if resp.DealerID == nil || *resp.DealerID != dealer.ID {
		t.Fatalf("expected dealer %s, got %v", dealer.ID, resp.DealerID)
	}
	if resp.Lead.Status != "qualified" {
		t.Fatalf("expected status qualified, got %q", resp.Lead.Status)
	}
	if len(store.assignments) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(store.assignments))
	}
	if store.assignments[0].AssignedBy != "system" {
		t.Fatalf("expected assigned_by system, got %q", store.assignments[0].AssignedBy)
	}
}

func TestCreate_LeadPersistsWhenRoutingFails(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeRouter{err: routing.ErrNoDealerAvailable})

	resp, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("routing failure must not fail the request: %v", err)
	}

	if resp.Routed {
		t.Fatal("expected the lead to be unrouted")
	}
	if len(store.created) != 1 {
		t.Fatalf("expected the lead to be saved, got %d rows", len(store.created))
	}
	if store.created[0].Status != "new" {
		t.Fatalf("expected status new, got %q", store.created[0].Status)
	}
	if store.created[0].DealerID != nil {
		t.Fatal("expected no dealer on the unrouted lead")
	}
}

func TestCreate_LeadPersistsWhenAssignmentFails(t *testing.T) {
	store := newFakeStore()
	store.assignErr = errors.New("dealer is at capacity")
	dealer := routing.Dealer{ID: uuid.New()}
	svc := newService(store, &fakeRouter{decision: &routing.Decision{Dealer: dealer}})

	resp, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("assignment failure must not fail the request: %v", err)
	}
	if resp.Routed {
		t.Fatal("expected the lead to be unrouted after assignment failure")
	}
	if len(store.created) != 1 {
		t.Fatalf("expected the lead to be saved, got %d rows", len(store.created))
	}
}

func TestCreate_ScoresTheLead(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeRouter{err: routing.ErrNoDealerAvailable})

	resp, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 20 budget + 25 timeline + 15 phone + 10 referral + 10 complete
	if resp.Lead.Score != 80 {
		t.Fatalf("expected score 80, got %d", resp.Lead.Score)
	}
}

func TestCreate_AppliesDefaults(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeRouter{err: routing.ErrNoDealerAvailable})

	req := validRequest()
	req.PreferredContact = ""
	req.Source = ""

	resp, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Lead.PreferredContact != "email" {
		t.Fatalf("expected default contact email, got %q", resp.Lead.PreferredContact)
	}
	if resp.Lead.Source != "website" {
		t.Fatalf("expected default source website, got %q", resp.Lead.Source)
	}
}

func TestCreate_FallbackReported(t *testing.T) {
	store := newFakeStore()
	dealer := routing.Dealer{ID: uuid.New()}
	svc := newService(store, &fakeRouter{decision: &routing.Decision{Dealer: dealer, Fallback: true}})

	resp, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Fallback {
		t.Fatal("expected the fallback flag to surface in the response")
	}
}

type fakeMailer struct {
	calls   int
	toEmail string
	name    string
	message string
	err     error
}

func (f *fakeMailer) SendFollowUpEmail(_ context.Context, toEmail, leadName, message string) error {
	f.calls++
	f.toEmail = toEmail
	f.name = leadName
	f.message = message
	return f.err
}

type fakeGateway struct {
	processed int
	notified  int
}

func (f *fakeGateway) ProcessLead(_ context.Context, _ *repository.Lead) error {
	f.processed++
	return nil
}

func (f *fakeGateway) NotifyDealer(_ context.Context, _ *repository.Lead, _ uuid.UUID) error {
	f.notified++
	return nil
}

func scheduleEmailFollowUp(t *testing.T, svc *Service, store *fakeStore) uuid.UUID {
	t.Helper()
	req := validRequest()
	req.PreferredContact = "email"
	created, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	followUp, err := svc.ScheduleFollowUp(context.Background(), created.Lead.ID, transport.ScheduleFollowUpRequest{
		ScheduledAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.followUps[followUp.ID].Channel != "email" {
		t.Fatalf("expected email channel, got %q", store.followUps[followUp.ID].Channel)
	}
	return followUp.ID
}

func TestScheduleFollowUp_DefaultsToPreferredChannel(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeRouter{err: routing.ErrNoDealerAvailable})

	created, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	followUp, err := svc.ScheduleFollowUp(context.Background(), created.Lead.ID, transport.ScheduleFollowUpRequest{
		ScheduledAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if followUp.Channel != "phone" {
		t.Fatalf("expected channel phone from lead preference, got %q", followUp.Channel)
	}
}

func TestDeliverFollowUp_FailsWithoutDeliveryPath(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeRouter{err: routing.ErrNoDealerAvailable})
	followUpID := scheduleEmailFollowUp(t, svc, store)

	err := svc.DeliverFollowUp(context.Background(), followUpID)
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable error with no mailer and no gateway, got %v", err)
	}
	if got := store.followUps[followUpID].Status; got != "scheduled" {
		t.Fatalf("undelivered follow-up must stay scheduled, got %q", got)
	}
}

func TestDeliverFollowUp_EmailChannelUsesMailer(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeRouter{err: routing.ErrNoDealerAvailable})
	mailer := &fakeMailer{}
	svc.SetFollowUpMailer(mailer)
	followUpID := scheduleEmailFollowUp(t, svc, store)

	if err := svc.DeliverFollowUp(context.Background(), followUpID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mailer.calls != 1 {
		t.Fatalf("expected one follow-up email, got %d", mailer.calls)
	}
	if mailer.toEmail != "jane@example.com" {
		t.Fatalf("follow-up sent to %q, want the lead's email", mailer.toEmail)
	}
	if got := store.followUps[followUpID].Status; got != "sent" {
		t.Fatalf("expected status sent, got %q", got)
	}
}

func TestDeliverFollowUp_MailerFailureKeepsScheduled(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeRouter{err: routing.ErrNoDealerAvailable})
	mailer := &fakeMailer{err: errors.New("smtp down")}
	svc.SetFollowUpMailer(mailer)
	followUpID := scheduleEmailFollowUp(t, svc, store)

	err := svc.DeliverFollowUp(context.Background(), followUpID)
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable error from mailer failure, got %v", err)
	}
	if got := store.followUps[followUpID].Status; got != "scheduled" {
		t.Fatalf("failed delivery must stay scheduled, got %q", got)
	}
}

func TestDeliverFollowUp_NonEmailChannelUsesGateway(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeRouter{err: routing.ErrNoDealerAvailable})
	gw := &fakeGateway{}
	svc.SetAgentGateway(gw)
	mailer := &fakeMailer{}
	svc.SetFollowUpMailer(mailer)

	created, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	followUp, err := svc.ScheduleFollowUp(context.Background(), created.Lead.ID, transport.ScheduleFollowUpRequest{
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Channel:     "phone",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.DeliverFollowUp(context.Background(), followUp.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.processed != 1 {
		t.Fatalf("expected the gateway to handle a phone follow-up, got %d calls", gw.processed)
	}
	if mailer.calls != 0 {
		t.Fatalf("phone follow-up must not go out by email, got %d sends", mailer.calls)
	}
	if got := store.followUps[followUp.ID].Status; got != "sent" {
		t.Fatalf("expected status sent, got %q", got)
	}
}
