// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"carforsales_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Auth Domain Events
// =============================================================================

// UserSignedUp is published when a new user successfully registers.
type UserSignedUp struct {
	BaseEvent
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	Role   string    `json:"role"`
}

func (e UserSignedUp) EventName() string { return "auth.user.signed_up" }

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead enters the system.
type LeadCreated struct {
	BaseEvent
	LeadID          uuid.UUID `json:"leadId"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	VehicleInterest string    `json:"vehicleInterest,omitempty"`
	Budget          string    `json:"budget,omitempty"`
	Timeline        string    `json:"timeline,omitempty"`
	Source          string    `json:"source"`
	Score           int       `json:"score"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadAssigned is published when a lead is routed to a dealer.
type LeadAssigned struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	DealerID     uuid.UUID `json:"dealerId"`
	AssignmentID uuid.UUID `json:"assignmentId"`
	AssignedBy   string    `json:"assignedBy"`
	Fallback     bool      `json:"fallback"`
}

func (e LeadAssigned) EventName() string { return "leads.lead.assigned" }

// LeadQualified is published when a lead's status moves to qualified.
type LeadQualified struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Score  int       `json:"score"`
}

func (e LeadQualified) EventName() string { return "leads.lead.qualified" }

// LeadUnassigned is published when an assignment is closed or rejected
// and the dealer's load has been released.
type LeadUnassigned struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	DealerID uuid.UUID `json:"dealerId"`
	Reason   string    `json:"reason"`
}

func (e LeadUnassigned) EventName() string { return "leads.lead.unassigned" }

// FollowUpScheduled is published when a follow-up is queued for a lead.
type FollowUpScheduled struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	FollowUpID  uuid.UUID `json:"followUpId"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Channel     string    `json:"channel"`
}

func (e FollowUpScheduled) EventName() string { return "leads.followup.scheduled" }

// =============================================================================
// Appointments Domain Events
// =============================================================================

// AppointmentCreated is published when a test drive appointment is booked.
type AppointmentCreated struct {
	BaseEvent
	AppointmentID uuid.UUID  `json:"appointmentId"`
	LeadID        *uuid.UUID `json:"leadId,omitempty"`
	VehicleID     uuid.UUID  `json:"vehicleId"`
	CustomerEmail string     `json:"customerEmail"`
	ScheduledAt   time.Time  `json:"scheduledAt"`
}

func (e AppointmentCreated) EventName() string { return "appointments.created" }
