// Package transport contains request and response DTOs for the dealers module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateDealerRequest registers a new dealership.
type CreateDealerRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=255"`
	Email       string   `json:"email" validate:"required,email"`
	Phone       string   `json:"phone" validate:"omitempty,min=10,max=32"`
	City        string   `json:"city" validate:"omitempty,max=100"`
	State       string   `json:"state" validate:"omitempty,max=100"`
	ZipCode     string   `json:"zipCode" validate:"omitempty,max=16"`
	Specialties []string `json:"specialties" validate:"omitempty,dive,oneof=sedan suv truck luxury electric"`
	Capacity    int      `json:"capacity" validate:"omitempty,min=1,max=1000"`
	Priority    int      `json:"priority" validate:"omitempty,min=0,max=100"`
}

// UpdateDealerRequest modifies a dealership. All fields are applied as given.
type UpdateDealerRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=255"`
	Email       string   `json:"email" validate:"required,email"`
	Phone       string   `json:"phone" validate:"omitempty,min=10,max=32"`
	City        string   `json:"city" validate:"omitempty,max=100"`
	State       string   `json:"state" validate:"omitempty,max=100"`
	ZipCode     string   `json:"zipCode" validate:"omitempty,max=16"`
	Specialties []string `json:"specialties" validate:"omitempty,dive,oneof=sedan suv truck luxury electric"`
	Capacity    int      `json:"capacity" validate:"required,min=1,max=1000"`
	Priority    int      `json:"priority" validate:"omitempty,min=0,max=100"`
	Active      bool     `json:"active"`
}

// ListDealersRequest carries list filters from query parameters.
type ListDealersRequest struct {
	Active    *bool  `form:"active"`
	Specialty string `form:"specialty" validate:"omitempty,oneof=sedan suv truck luxury electric"`
	Search    string `form:"search" validate:"omitempty,max=255"`
}

// SearchDealersRequest finds dealers near a zip code.
type SearchDealersRequest struct {
	ZipCode  string  `form:"zipcode" validate:"required,max=16"`
	RadiusKm float64 `form:"radius" validate:"omitempty,min=1,max=500"`
}

// NearbyDealerResponse is a dealer with its distance from the searched
// location.
type NearbyDealerResponse struct {
	DealerResponse
	DistanceKm float64 `json:"distanceKm"`
}

// DealerResponse is the API shape of a dealer.
type DealerResponse struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Phone             *string   `json:"phone,omitempty"`
	City              *string   `json:"city,omitempty"`
	State             *string   `json:"state,omitempty"`
	ZipCode           *string   `json:"zipCode,omitempty"`
	Latitude          *float64  `json:"latitude,omitempty"`
	Longitude         *float64  `json:"longitude,omitempty"`
	Specialties       []string  `json:"specialties"`
	Capacity          int       `json:"capacity"`
	CurrentLoad       int       `json:"currentLoad"`
	AvailableCapacity int       `json:"availableCapacity"`
	Priority          int       `json:"priority"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// LinkAccountRequest associates a portal user with a dealer.
type LinkAccountRequest struct {
	UserID   uuid.UUID `json:"userId" validate:"required"`
	DealerID uuid.UUID `json:"dealerId" validate:"required"`
}
