// Package transport contains request and response DTOs for the leads module.
package transport

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CreateLeadRequest is the public lead submission payload.
type CreateLeadRequest struct {
	Name             string `json:"name" validate:"required,min=2,max=255"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone" validate:"required,min=10,max=32"`
	VehicleInterest  string `json:"vehicleInterest" validate:"omitempty,max=255"`
	Budget           string `json:"budget" validate:"omitempty,max=100"`
	Timeline         string `json:"timeline" validate:"omitempty,max=100"`
	PreferredContact string `json:"preferredContact" validate:"omitempty,oneof=email phone sms"`
	Source           string `json:"source" validate:"omitempty,oneof=website ad referral chat"`
	Message          string `json:"message" validate:"omitempty,max=2000"`
}

// LeadResponse is the API shape of a lead.
type LeadResponse struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	VehicleInterest  *string    `json:"vehicleInterest,omitempty"`
	Budget           *string    `json:"budget,omitempty"`
	Timeline         *string    `json:"timeline,omitempty"`
	PreferredContact string     `json:"preferredContact"`
	Source           string     `json:"source"`
	Message          *string    `json:"message,omitempty"`
	Score            int        `json:"score"`
	Status           string     `json:"status"`
	DealerID         *uuid.UUID `json:"dealerId,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// CreateLeadResponse reports the stored lead plus the routing outcome.
// Routed is false when no dealer was available; the lead is saved anyway.
type CreateLeadResponse struct {
	Lead     LeadResponse `json:"lead"`
	Routed   bool         `json:"routed"`
	DealerID *uuid.UUID   `json:"dealerId,omitempty"`
	Fallback bool         `json:"fallback,omitempty"`
}

// ListLeadsRequest carries list filters from query parameters.
type ListLeadsRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=new qualified contacted scheduled converted lost"`
	Search   string `form:"search" validate:"omitempty,max=255"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// ListLeadsResponse is a paginated page of leads.
type ListLeadsResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

// UpdateLeadStatusRequest moves a lead through its lifecycle.
type UpdateLeadStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new qualified contacted scheduled converted lost"`
}

// AssignLeadRequest manually assigns a lead to a dealer.
type AssignLeadRequest struct {
	DealerID uuid.UUID `json:"dealerId" validate:"required"`
}

// AssignmentResponse is the API shape of a lead assignment.
type AssignmentResponse struct {
	ID         uuid.UUID `json:"id"`
	LeadID     uuid.UUID `json:"leadId"`
	DealerID   uuid.UUID `json:"dealerId"`
	AssignedBy string    `json:"assignedBy"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// InteractionResponse is one timeline entry on a lead.
type InteractionResponse struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Detail    json.RawMessage `json:"detail"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ScheduleFollowUpRequest queues a future re-contact for a lead.
type ScheduleFollowUpRequest struct {
	ScheduledAt time.Time `json:"scheduledAt" validate:"required"`
	Channel     string    `json:"channel" validate:"omitempty,oneof=email phone sms"`
}

// FollowUpResponse is the API shape of a scheduled follow-up.
type FollowUpResponse struct {
	ID          uuid.UUID `json:"id"`
	LeadID      uuid.UUID `json:"leadId"`
	Channel     string    `json:"channel"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}
