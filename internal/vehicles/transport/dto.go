// Package transport contains request and response DTOs for the vehicles module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateVehicleRequest lists a vehicle for a dealer.
type CreateVehicleRequest struct {
	DealerID     uuid.UUID `json:"dealerId" validate:"required"`
	Make         string    `json:"make" validate:"required,min=1,max=100"`
	Model        string    `json:"model" validate:"required,min=1,max=100"`
	Year         int       `json:"year" validate:"required,min=1900,max=2100"`
	Price        float64   `json:"price" validate:"required,min=0"`
	Mileage      int       `json:"mileage" validate:"omitempty,min=0"`
	Condition    string    `json:"condition" validate:"omitempty,oneof=new used certified"`
	FuelType     string    `json:"fuelType" validate:"omitempty,max=50"`
	Transmission string    `json:"transmission" validate:"omitempty,max=50"`
	BodyStyle    string    `json:"bodyStyle" validate:"omitempty,max=50"`
	Description  string    `json:"description" validate:"omitempty,max=5000"`
}

// UpdateVehicleRequest modifies a listing.
type UpdateVehicleRequest struct {
	Make         string  `json:"make" validate:"required,min=1,max=100"`
	Model        string  `json:"model" validate:"required,min=1,max=100"`
	Year         int     `json:"year" validate:"required,min=1900,max=2100"`
	Price        float64 `json:"price" validate:"required,min=0"`
	Mileage      int     `json:"mileage" validate:"omitempty,min=0"`
	Condition    string  `json:"condition" validate:"required,oneof=new used certified"`
	FuelType     string  `json:"fuelType" validate:"omitempty,max=50"`
	Transmission string  `json:"transmission" validate:"omitempty,max=50"`
	BodyStyle    string  `json:"bodyStyle" validate:"omitempty,max=50"`
	Status       string  `json:"status" validate:"required,oneof=available pending sold"`
	Description  string  `json:"description" validate:"omitempty,max=5000"`
}

// ListVehiclesRequest carries search filters from query parameters.
type ListVehiclesRequest struct {
	DealerID  string   `form:"dealerId" validate:"omitempty,uuid"`
	Make      string   `form:"make" validate:"omitempty,max=100"`
	Model     string   `form:"model" validate:"omitempty,max=100"`
	Status    string   `form:"status" validate:"omitempty,oneof=available pending sold"`
	Condition string   `form:"condition" validate:"omitempty,oneof=new used certified"`
	MinPrice  *float64 `form:"minPrice" validate:"omitempty,min=0"`
	MaxPrice  *float64 `form:"maxPrice" validate:"omitempty,min=0"`
	MinYear   *int     `form:"minYear" validate:"omitempty,min=1900"`
	MaxYear   *int     `form:"maxYear" validate:"omitempty,max=2100"`
	Page      int      `form:"page" validate:"omitempty,min=1"`
	PageSize  int      `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// AddMediaRequest attaches an image or video to a listing.
type AddMediaRequest struct {
	URL      string `json:"url" validate:"required,url,max=2048"`
	Kind     string `json:"kind" validate:"omitempty,oneof=image video"`
	Position int    `json:"position" validate:"omitempty,min=0"`
}

// MediaResponse is one media item on a listing.
type MediaResponse struct {
	ID       uuid.UUID `json:"id"`
	URL      string    `json:"url"`
	Kind     string    `json:"kind"`
	Position int       `json:"position"`
}

// VehicleResponse is the API shape of a listing.
type VehicleResponse struct {
	ID           uuid.UUID       `json:"id"`
	DealerID     uuid.UUID       `json:"dealerId"`
	Make         string          `json:"make"`
	Model        string          `json:"model"`
	Year         int             `json:"year"`
	Price        float64         `json:"price"`
	Mileage      int             `json:"mileage"`
	Condition    string          `json:"condition"`
	FuelType     *string         `json:"fuelType,omitempty"`
	Transmission *string         `json:"transmission,omitempty"`
	BodyStyle    *string         `json:"bodyStyle,omitempty"`
	Status       string          `json:"status"`
	Description  *string         `json:"description,omitempty"`
	Media        []MediaResponse `json:"media,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ListVehiclesResponse is a paginated page of listings.
type ListVehiclesResponse struct {
	Items      []VehicleResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}
