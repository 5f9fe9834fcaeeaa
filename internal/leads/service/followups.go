package service

import (
	"context"
	"fmt"

	"carforsales_backend/internal/events"
	"carforsales_backend/internal/leads/repository"
	"carforsales_backend/internal/leads/transport"
	"carforsales_backend/platform/apperr"

	"github.com/google/uuid"
)

// ScheduleFollowUp records a follow-up and enqueues its delivery. The
// enqueue step is best-effort when no scheduler is wired: the row is
// still written so the follow-up shows up in the lead's plan.
func (s *Service) ScheduleFollowUp(ctx context.Context, leadID uuid.UUID, req transport.ScheduleFollowUpRequest) (*transport.FollowUpResponse, error) {
	lead, err := s.store.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	channel := req.Channel
	if channel == "" {
		channel = lead.PreferredContact
	}
	if channel == "" {
		channel = "email"
	}

	followUp := &repository.FollowUp{
		LeadID:      leadID,
		Channel:     channel,
		ScheduledAt: req.ScheduledAt,
	}
	if err := s.store.CreateFollowUp(ctx, followUp); err != nil {
		return nil, err
	}

	if s.scheduler != nil {
		taskID, err := s.scheduler.ScheduleLeadFollowUp(ctx, followUp.ID, leadID, req.ScheduledAt)
		if err != nil {
			s.log.Error("failed to enqueue follow-up", "followUpId", followUp.ID, "error", err)
		} else if err := s.store.SetFollowUpTaskID(ctx, followUp.ID, taskID); err != nil {
			s.log.Error("failed to store follow-up task id", "followUpId", followUp.ID, "error", err)
		}
	}

	s.recordInteraction(ctx, leadID, "followup_scheduled", map[string]interface{}{
		"followUpId":  followUp.ID,
		"scheduledAt": req.ScheduledAt,
		"channel":     channel,
	})
	s.bus.Publish(ctx, events.FollowUpScheduled{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      leadID,
		FollowUpID:  followUp.ID,
		ScheduledAt: req.ScheduledAt,
		Channel:     channel,
	})

	return &transport.FollowUpResponse{
		ID:          followUp.ID,
		LeadID:      followUp.LeadID,
		Channel:     followUp.Channel,
		ScheduledAt: followUp.ScheduledAt,
		Status:      followUp.Status,
		CreatedAt:   followUp.CreatedAt,
	}, nil
}

// DeliverFollowUp is invoked by the queue worker when a follow-up comes
// due. Email-channel follow-ups go out through the mailer, everything
// else is handed to the agent gateway. The row is only marked sent
// after a delivery path actually accepted it, so a worker running
// without mailer or gateway leaves the follow-up scheduled and the
// returned error lets the queue retry. Canceled follow-ups are skipped
// silently.
func (s *Service) DeliverFollowUp(ctx context.Context, followUpID uuid.UUID) error {
	followUp, err := s.store.GetFollowUp(ctx, followUpID)
	if err != nil {
		return err
	}
	if followUp.Status != "scheduled" {
		return nil
	}

	lead, err := s.store.GetByID(ctx, followUp.LeadID)
	if err != nil {
		return err
	}

	switch {
	case followUp.Channel == "email" && s.mailer != nil:
		if err := s.mailer.SendFollowUpEmail(ctx, lead.Email, lead.Name, followUpMessage(lead)); err != nil {
			return apperr.Wrap(apperr.KindUnavailable, "follow-up email delivery failed", err)
		}
	case s.gateway != nil:
		if err := s.gateway.ProcessLead(ctx, lead); err != nil {
			return apperr.Wrap(apperr.KindUnavailable, "follow-up delivery failed", err)
		}
	default:
		return apperr.New(apperr.KindUnavailable, "no delivery path configured for follow-up")
	}

	if err := s.store.UpdateFollowUpStatus(ctx, followUpID, "sent"); err != nil {
		return err
	}
	s.recordInteraction(ctx, followUp.LeadID, "followup_sent", map[string]interface{}{
		"followUpId": followUpID,
		"channel":    followUp.Channel,
	})
	return nil
}

func followUpMessage(lead *repository.Lead) string {
	if lead.VehicleInterest != nil && *lead.VehicleInterest != "" {
		return fmt.Sprintf("We wanted to check in on your interest in the %s. Reply to this email or give us a call and we'll pick up where we left off.", *lead.VehicleInterest)
	}
	return "We wanted to check in on your car search. Reply to this email or give us a call and we'll pick up where we left off."
}

// CancelFollowUp withdraws a scheduled follow-up.
func (s *Service) CancelFollowUp(ctx context.Context, followUpID uuid.UUID) error {
	followUp, err := s.store.GetFollowUp(ctx, followUpID)
	if err != nil {
		return err
	}
	if followUp.Status != "scheduled" {
		return apperr.Conflict("follow-up is already settled")
	}
	return s.store.UpdateFollowUpStatus(ctx, followUpID, "canceled")
}
