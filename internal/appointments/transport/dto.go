package transport

import (
	"time"

	"github.com/google/uuid"
)

// BookAppointmentRequest is the public booking payload.
type BookAppointmentRequest struct {
	VehicleID     uuid.UUID  `json:"vehicleId" validate:"required"`
	CustomerName  string     `json:"customerName" validate:"required,min=2,max=255"`
	CustomerEmail string     `json:"customerEmail" validate:"required,email"`
	CustomerPhone *string    `json:"customerPhone" validate:"omitempty,min=10,max=32"`
	ScheduledAt   time.Time  `json:"scheduledAt" validate:"required"`
	LeadID        *uuid.UUID `json:"leadId" validate:"omitempty"`
	Notes         *string    `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateAppointmentStatusRequest moves a booking through its lifecycle.
type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled completed canceled no_show"`
}

// AppointmentResponse is the API representation of a booking.
type AppointmentResponse struct {
	ID            uuid.UUID  `json:"id"`
	VehicleID     uuid.UUID  `json:"vehicleId"`
	DealerID      uuid.UUID  `json:"dealerId"`
	LeadID        *uuid.UUID `json:"leadId,omitempty"`
	CustomerName  string     `json:"customerName"`
	CustomerEmail string     `json:"customerEmail"`
	CustomerPhone *string    `json:"customerPhone,omitempty"`
	ScheduledAt   time.Time  `json:"scheduledAt"`
	Status        string     `json:"status"`
	Notes         *string    `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}
