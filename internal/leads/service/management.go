package service

import (
	"context"
	"encoding/json"
	"errors"

	"carforsales_backend/internal/events"
	"carforsales_backend/internal/leads/repository"
	"carforsales_backend/internal/leads/routing"
	"carforsales_backend/internal/leads/transport"
	"carforsales_backend/platform/phone"

	"github.com/google/uuid"
)

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// Create persists a new lead, computes its score and routes it to a
// dealer. Routing failure never rolls back the lead: the lead is saved
// and the response reports Routed=false.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (*transport.CreateLeadResponse, error) {
	normalized := phone.NormalizeE164(req.Phone)

	if req.PreferredContact == "" {
		req.PreferredContact = "email"
	}
	if req.Source == "" {
		req.Source = "website"
	}

	score := routing.Score(routing.ScoreInput{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            normalized,
		VehicleInterest:  req.VehicleInterest,
		Budget:           req.Budget,
		Timeline:         req.Timeline,
		PreferredContact: req.PreferredContact,
		Source:           req.Source,
	})

	lead := &repository.Lead{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            normalized,
		VehicleInterest:  optional(req.VehicleInterest),
		Budget:           optional(req.Budget),
		Timeline:         optional(req.Timeline),
		PreferredContact: req.PreferredContact,
		Source:           req.Source,
		Message:          optional(req.Message),
		Score:            score,
		Status:           "new",
	}

	if err := s.store.Create(ctx, lead); err != nil {
		return nil, err
	}

	s.recordInteraction(ctx, lead.ID, "lead_created", map[string]interface{}{
		"score":  score,
		"source": req.Source,
	})

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:       events.NewBaseEvent(),
		LeadID:          lead.ID,
		Name:            lead.Name,
		Email:           lead.Email,
		Phone:           lead.Phone,
		VehicleInterest: req.VehicleInterest,
		Budget:          req.Budget,
		Timeline:        req.Timeline,
		Source:          lead.Source,
		Score:           score,
	})

	resp := &transport.CreateLeadResponse{}
	if assignment, decision := s.routeNewLead(ctx, lead); assignment != nil {
		resp.Routed = true
		resp.DealerID = &assignment.DealerID
		resp.Fallback = decision.Fallback
		lead.DealerID = &assignment.DealerID
		lead.Status = "qualified"
	}

	if s.gateway != nil {
		s.forwardToAgent(lead)
	}

	resp.Lead = toLeadResponse(lead)
	return resp, nil
}

// routeNewLead tries to assign the freshly created lead. Any failure is
// logged and recorded on the lead timeline, never returned.
func (s *Service) routeNewLead(ctx context.Context, lead *repository.Lead) (*repository.Assignment, *routing.Decision) {
	in := routing.ScoreInput{
		Name:             lead.Name,
		Email:            lead.Email,
		Phone:            lead.Phone,
		PreferredContact: lead.PreferredContact,
		Source:           lead.Source,
	}
	if lead.VehicleInterest != nil {
		in.VehicleInterest = *lead.VehicleInterest
	}
	if lead.Budget != nil {
		in.Budget = *lead.Budget
	}
	if lead.Timeline != nil {
		in.Timeline = *lead.Timeline
	}

	decision, err := s.router.Route(ctx, in)
	if err != nil {
		if errors.Is(err, routing.ErrNoDealerAvailable) {
			s.log.Warn("no dealer available for lead", "leadId", lead.ID)
		} else {
			s.log.Error("lead routing failed", "leadId", lead.ID, "error", err)
		}
		s.recordInteraction(ctx, lead.ID, "routing_failed", map[string]interface{}{
			"reason": err.Error(),
		})
		return nil, nil
	}

	assignment, err := s.store.Assign(ctx, lead.ID, decision.Dealer.ID, "system")
	if err != nil {
		s.log.Error("lead assignment failed", "leadId", lead.ID, "dealerId", decision.Dealer.ID, "error", err)
		s.recordInteraction(ctx, lead.ID, "routing_failed", map[string]interface{}{
			"reason": err.Error(),
		})
		return nil, nil
	}

	s.log.RoutingDecision(lead.ID.String(), decision.Dealer.ID.String(), lead.Score, decision.Fallback)
	s.recordInteraction(ctx, lead.ID, "lead_assigned", map[string]interface{}{
		"dealerId": decision.Dealer.ID,
		"fallback": decision.Fallback,
	})
	s.publishAssigned(ctx, lead, assignment, decision.Fallback)

	if s.gateway != nil {
		s.notifyDealerAsync(lead, assignment.DealerID)
	}
	return assignment, decision
}

func (s *Service) publishAssigned(ctx context.Context, lead *repository.Lead, a *repository.Assignment, fallback bool) {
	s.bus.Publish(ctx, events.LeadAssigned{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       lead.ID,
		DealerID:     a.DealerID,
		AssignmentID: a.ID,
		AssignedBy:   a.AssignedBy,
		Fallback:     fallback,
	})
	s.bus.Publish(ctx, events.LeadQualified{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Score:     lead.Score,
	})
}

func (s *Service) recordInteraction(ctx context.Context, leadID uuid.UUID, interactionType string, detail map[string]interface{}) {
	payload, err := json.Marshal(detail)
	if err != nil {
		payload = []byte(`{}`)
	}
	if err := s.store.AddInteraction(ctx, leadID, interactionType, payload); err != nil {
		s.log.Error("failed to record lead interaction", "leadId", leadID, "type", interactionType, "error", err)
	}
}

// forwardToAgent hands the lead to the external agent in the background.
func (s *Service) forwardToAgent(lead *repository.Lead) {
	copied := *lead
	go func() {
		ctx, cancel := gatewayContext()
		defer cancel()
		if err := s.gateway.ProcessLead(ctx, &copied); err != nil {
			s.log.Warn("agent gateway rejected lead", "leadId", copied.ID, "error", err)
		}
	}()
}

func (s *Service) notifyDealerAsync(lead *repository.Lead, dealerID uuid.UUID) {
	copied := *lead
	go func() {
		ctx, cancel := gatewayContext()
		defer cancel()
		if err := s.gateway.NotifyDealer(ctx, &copied, dealerID); err != nil {
			s.log.Warn("dealer notification failed", "leadId", copied.ID, "dealerId", dealerID, "error", err)
		}
	}()
}

// Get fetches a single lead.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*transport.LeadResponse, error) {
	lead, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toLeadResponse(lead)
	return &resp, nil
}

// List returns leads matching the filter.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest, dealerID *uuid.UUID) (*transport.ListLeadsResponse, error) {
	params := repository.ListParams{
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
		DealerID: dealerID,
	}
	if req.Status != "" {
		params.Status = &req.Status
	}

	result, err := s.store.List(ctx, params)
	if err != nil {
		return nil, err
	}

	items := make([]transport.LeadResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, toLeadResponse(&result.Items[i]))
	}
	return &transport.ListLeadsResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// UpdateStatus moves a lead to a new lifecycle status.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.recordInteraction(ctx, id, "status_changed", map[string]interface{}{"status": status})
	return nil
}

// AssignManually routes a lead to a specific dealer, bypassing the
// matcher. assignedBy distinguishes admin action from the external agent.
func (s *Service) AssignManually(ctx context.Context, leadID, dealerID uuid.UUID, assignedBy string) (*transport.AssignmentResponse, error) {
	lead, err := s.store.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	assignment, err := s.store.Assign(ctx, leadID, dealerID, assignedBy)
	if err != nil {
		return nil, err
	}

	s.recordInteraction(ctx, leadID, "lead_assigned", map[string]interface{}{
		"dealerId":   dealerID,
		"assignedBy": assignedBy,
	})
	s.publishAssigned(ctx, lead, assignment, false)

	resp := toAssignmentResponse(assignment)
	return &resp, nil
}

// Interactions returns a lead's timeline, newest first.
func (s *Service) Interactions(ctx context.Context, leadID uuid.UUID) ([]transport.InteractionResponse, error) {
	if _, err := s.store.GetByID(ctx, leadID); err != nil {
		return nil, err
	}

	interactions, err := s.store.ListInteractions(ctx, leadID)
	if err != nil {
		return nil, err
	}

	items := make([]transport.InteractionResponse, 0, len(interactions))
	for _, it := range interactions {
		items = append(items, transport.InteractionResponse{
			ID:        it.ID,
			Type:      it.Type,
			Detail:    json.RawMessage(it.Detail),
			CreatedAt: it.CreatedAt,
		})
	}
	return items, nil
}

// AcceptAssignment marks a pending assignment accepted by the dealer.
func (s *Service) AcceptAssignment(ctx context.Context, id uuid.UUID) (*transport.AssignmentResponse, error) {
	assignment, err := s.store.AcceptAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	s.recordInteraction(ctx, assignment.LeadID, "assignment_accepted", map[string]interface{}{
		"dealerId": assignment.DealerID,
	})
	resp := toAssignmentResponse(assignment)
	return &resp, nil
}

// SettleAssignment closes or rejects a live assignment and releases the
// dealer's load slot.
func (s *Service) SettleAssignment(ctx context.Context, id uuid.UUID, status string) (*transport.AssignmentResponse, error) {
	assignment, err := s.store.ReleaseAssignment(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.recordInteraction(ctx, assignment.LeadID, "assignment_"+status, map[string]interface{}{
		"dealerId": assignment.DealerID,
	})
	s.bus.Publish(ctx, events.LeadUnassigned{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    assignment.LeadID,
		DealerID:  assignment.DealerID,
		Reason:    status,
	})

	resp := toAssignmentResponse(assignment)
	return &resp, nil
}

// AssignmentsForLead returns a lead's assignment history.
func (s *Service) AssignmentsForLead(ctx context.Context, leadID uuid.UUID) ([]transport.AssignmentResponse, error) {
	assignments, err := s.store.ListAssignmentsByLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	return mapAssignments(assignments), nil
}

// AssignmentsForDealer returns a dealer's live assignments.
func (s *Service) AssignmentsForDealer(ctx context.Context, dealerID uuid.UUID) ([]transport.AssignmentResponse, error) {
	assignments, err := s.store.ListAssignmentsByDealer(ctx, dealerID)
	if err != nil {
		return nil, err
	}
	return mapAssignments(assignments), nil
}

func mapAssignments(assignments []repository.Assignment) []transport.AssignmentResponse {
	items := make([]transport.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		items = append(items, toAssignmentResponse(&assignments[i]))
	}
	return items
}

// MarkQualified is used by the external agent webhook once it deems a
// lead sales-ready.
func (s *Service) MarkQualified(ctx context.Context, leadID uuid.UUID) error {
	lead, err := s.store.GetByID(ctx, leadID)
	if err != nil {
		return err
	}
	if lead.Status == "qualified" {
		return nil
	}
	if err := s.store.UpdateStatus(ctx, leadID, "qualified"); err != nil {
		return err
	}
	s.bus.Publish(ctx, events.LeadQualified{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		Score:     lead.Score,
	})
	return nil
}
