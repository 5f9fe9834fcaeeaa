// Package service contains the vehicle inventory business logic.
package service

import (
	"context"

	"carforsales_backend/internal/vehicles/repository"
	"carforsales_backend/internal/vehicles/transport"

	"github.com/google/uuid"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, v *repository.Vehicle) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Vehicle, error)
	List(ctx context.Context, params repository.ListParams) (*repository.ListResult, error)
	Update(ctx context.Context, v *repository.Vehicle) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddMedia(ctx context.Context, m *repository.Media) error
	ListMedia(ctx context.Context, vehicleID uuid.UUID) ([]repository.Media, error)
}

// Service implements the vehicles module business logic.
type Service struct {
	store Store
}

// New creates the vehicles service.
func New(store Store) *Service {
	return &Service{store: store}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// Create lists a vehicle. New listings start available.
func (s *Service) Create(ctx context.Context, req transport.CreateVehicleRequest) (*transport.VehicleResponse, error) {
	condition := req.Condition
	if condition == "" {
		condition = "used"
	}

	vehicle := &repository.Vehicle{
		DealerID:     req.DealerID,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		Price:        req.Price,
		Mileage:      req.Mileage,
		Condition:    condition,
		FuelType:     optional(req.FuelType),
		Transmission: optional(req.Transmission),
		BodyStyle:    optional(req.BodyStyle),
		Status:       "available",
		Description:  optional(req.Description),
	}

	if err := s.store.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	resp := toVehicleResponse(vehicle, nil)
	return &resp, nil
}

// Get fetches a listing with its media.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*transport.VehicleResponse, error) {
	vehicle, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	media, err := s.store.ListMedia(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := toVehicleResponse(vehicle, media)
	return &resp, nil
}

// List returns listings matching the search filter.
func (s *Service) List(ctx context.Context, req transport.ListVehiclesRequest) (*transport.ListVehiclesResponse, error) {
	params := repository.ListParams{
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
		MinYear:  req.MinYear,
		MaxYear:  req.MaxYear,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.DealerID != "" {
		dealerID, err := uuid.Parse(req.DealerID)
		if err == nil {
			params.DealerID = &dealerID
		}
	}
	if req.Make != "" {
		params.Make = "%" + req.Make + "%"
	}
	if req.Model != "" {
		params.Model = "%" + req.Model + "%"
	}
	if req.Status != "" {
		params.Status = &req.Status
	}
	if req.Condition != "" {
		params.Condition = &req.Condition
	}

	result, err := s.store.List(ctx, params)
	if err != nil {
		return nil, err
	}

	items := make([]transport.VehicleResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, toVehicleResponse(&result.Items[i], nil))
	}
	return &transport.ListVehiclesResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// Update modifies a listing.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateVehicleRequest) (*transport.VehicleResponse, error) {
	vehicle, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	vehicle.Make = req.Make
	vehicle.Model = req.Model
	vehicle.Year = req.Year
	vehicle.Price = req.Price
	vehicle.Mileage = req.Mileage
	vehicle.Condition = req.Condition
	vehicle.FuelType = optional(req.FuelType)
	vehicle.Transmission = optional(req.Transmission)
	vehicle.BodyStyle = optional(req.BodyStyle)
	vehicle.Status = req.Status
	vehicle.Description = optional(req.Description)

	if err := s.store.Update(ctx, vehicle); err != nil {
		return nil, err
	}

	resp := toVehicleResponse(vehicle, nil)
	return &resp, nil
}

// Delete removes a listing.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

// AddMedia attaches an image or video to a listing.
func (s *Service) AddMedia(ctx context.Context, vehicleID uuid.UUID, req transport.AddMediaRequest) (*transport.MediaResponse, error) {
	if _, err := s.store.GetByID(ctx, vehicleID); err != nil {
		return nil, err
	}

	kind := req.Kind
	if kind == "" {
		kind = "image"
	}

	media := &repository.Media{
		VehicleID: vehicleID,
		URL:       req.URL,
		Kind:      kind,
		Position:  req.Position,
	}
	if err := s.store.AddMedia(ctx, media); err != nil {
		return nil, err
	}

	return &transport.MediaResponse{
		ID:       media.ID,
		URL:      media.URL,
		Kind:     media.Kind,
		Position: media.Position,
	}, nil
}

func toVehicleResponse(v *repository.Vehicle, media []repository.Media) transport.VehicleResponse {
	resp := transport.VehicleResponse{
		ID:           v.ID,
		DealerID:     v.DealerID,
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		Price:        v.Price,
		Mileage:      v.Mileage,
		Condition:    v.Condition,
		FuelType:     v.FuelType,
		Transmission: v.Transmission,
		BodyStyle:    v.BodyStyle,
		Status:       v.Status,
		Description:  v.Description,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
	for _, m := range media {
		resp.Media = append(resp.Media, transport.MediaResponse{
			ID:       m.ID,
			URL:      m.URL,
			Kind:     m.Kind,
			Position: m.Position,
		})
	}
	return resp
}
