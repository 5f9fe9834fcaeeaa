// Package service contains the dealers business logic.
package service

import (
	"context"
	"math"
	"sort"

	"carforsales_backend/internal/dealers/repository"
	"carforsales_backend/internal/dealers/transport"
	"carforsales_backend/platform/apperr"
	"carforsales_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, d *repository.Dealer) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Dealer, error)
	List(ctx context.Context, params repository.ListParams) ([]repository.Dealer, error)
	Update(ctx context.Context, d *repository.Dealer) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	LinkAccount(ctx context.Context, userID, dealerID uuid.UUID) error
	DealerForUser(ctx context.Context, userID uuid.UUID) (*repository.Dealer, error)
}

// Geocoder resolves a postal code to coordinates. Best-effort: a failed
// lookup leaves the dealer without coordinates.
type Geocoder interface {
	GeocodeZip(ctx context.Context, zipCode string) (lat, lon float64, err error)
}

// Service implements the dealers module business logic.
type Service struct {
	store    Store
	log      *logger.Logger
	geocoder Geocoder
}

// New creates the dealers service.
func New(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// SetGeocoder wires the optional zip code geocoder.
func (s *Service) SetGeocoder(geocoder Geocoder) {
	s.geocoder = geocoder
}

const defaultCapacity = 10

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// Create registers a new dealership. New dealers start active with an
// empty load.
func (s *Service) Create(ctx context.Context, req transport.CreateDealerRequest) (*transport.DealerResponse, error) {
	capacity := req.Capacity
	if capacity == 0 {
		capacity = defaultCapacity
	}
	specialties := req.Specialties
	if specialties == nil {
		specialties = []string{}
	}

	dealer := &repository.Dealer{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       optional(req.Phone),
		City:        optional(req.City),
		State:       optional(req.State),
		ZipCode:     optional(req.ZipCode),
		Specialties: specialties,
		Capacity:    capacity,
		Priority:    req.Priority,
		Active:      true,
	}

	s.geocode(ctx, dealer)

	if err := s.store.Create(ctx, dealer); err != nil {
		return nil, err
	}

	resp := toDealerResponse(dealer)
	return &resp, nil
}

// geocode fills coordinates from the zip code when a geocoder is wired.
func (s *Service) geocode(ctx context.Context, dealer *repository.Dealer) {
	if s.geocoder == nil || dealer.ZipCode == nil {
		return
	}
	lat, lon, err := s.geocoder.GeocodeZip(ctx, *dealer.ZipCode)
	if err != nil {
		s.log.Warn("dealer geocoding failed", "zipCode", *dealer.ZipCode, "error", err)
		return
	}
	dealer.Latitude = &lat
	dealer.Longitude = &lon
}

// Get fetches a single dealer.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*transport.DealerResponse, error) {
	dealer, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toDealerResponse(dealer)
	return &resp, nil
}

// List returns dealers matching the filter.
func (s *Service) List(ctx context.Context, req transport.ListDealersRequest) ([]transport.DealerResponse, error) {
	params := repository.ListParams{
		Active: req.Active,
		Search: req.Search,
	}
	if req.Specialty != "" {
		params.Specialty = &req.Specialty
	}

	dealers, err := s.store.List(ctx, params)
	if err != nil {
		return nil, err
	}

	items := make([]transport.DealerResponse, 0, len(dealers))
	for i := range dealers {
		items = append(items, toDealerResponse(&dealers[i]))
	}
	return items, nil
}

const defaultSearchRadiusKm = 50.0

// SearchByZip geocodes a zip code and returns active dealers within the
// radius, closest first. Dealers without coordinates are skipped.
func (s *Service) SearchByZip(ctx context.Context, req transport.SearchDealersRequest) ([]transport.NearbyDealerResponse, error) {
	if s.geocoder == nil {
		return nil, apperr.New(apperr.KindUnavailable, "dealer search is not available")
	}

	lat, lon, err := s.geocoder.GeocodeZip(ctx, req.ZipCode)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "could not resolve zip code", err)
	}

	radius := req.RadiusKm
	if radius == 0 {
		radius = defaultSearchRadiusKm
	}

	active := true
	dealers, err := s.store.List(ctx, repository.ListParams{Active: &active})
	if err != nil {
		return nil, err
	}

	items := []transport.NearbyDealerResponse{}
	for i := range dealers {
		d := &dealers[i]
		if d.Latitude == nil || d.Longitude == nil {
			continue
		}
		distance := haversineKm(lat, lon, *d.Latitude, *d.Longitude)
		if distance > radius {
			continue
		}
		items = append(items, transport.NearbyDealerResponse{
			DealerResponse: toDealerResponse(d),
			DistanceKm:     math.Round(distance*10) / 10,
		})
	}

	sort.Slice(items, func(a, b int) bool {
		return items[a].DistanceKm < items[b].DistanceKm
	})
	return items, nil
}

const earthRadiusKm = 6371.0

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Update modifies a dealership.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateDealerRequest) (*transport.DealerResponse, error) {
	dealer, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dealer.Name = req.Name
	dealer.Email = req.Email
	dealer.Phone = optional(req.Phone)
	dealer.City = optional(req.City)
	dealer.State = optional(req.State)
	dealer.Specialties = req.Specialties
	if dealer.Specialties == nil {
		dealer.Specialties = []string{}
	}
	dealer.Capacity = req.Capacity
	dealer.Priority = req.Priority
	dealer.Active = req.Active

	newZip := optional(req.ZipCode)
	zipChanged := (newZip == nil) != (dealer.ZipCode == nil) ||
		(newZip != nil && dealer.ZipCode != nil && *newZip != *dealer.ZipCode)
	dealer.ZipCode = newZip
	if zipChanged {
		dealer.Latitude = nil
		dealer.Longitude = nil
		s.geocode(ctx, dealer)
	}

	if err := s.store.Update(ctx, dealer); err != nil {
		return nil, err
	}

	resp := toDealerResponse(dealer)
	return &resp, nil
}

// SetActive toggles a dealer's participation in routing.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.store.SetActive(ctx, id, active)
}

// LinkAccount associates a portal user with a dealer.
func (s *Service) LinkAccount(ctx context.Context, userID, dealerID uuid.UUID) error {
	if _, err := s.store.GetByID(ctx, dealerID); err != nil {
		return err
	}
	return s.store.LinkAccount(ctx, userID, dealerID)
}

// DealerForUser resolves the dealer a portal user belongs to.
func (s *Service) DealerForUser(ctx context.Context, userID uuid.UUID) (*transport.DealerResponse, error) {
	dealer, err := s.store.DealerForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toDealerResponse(dealer)
	return &resp, nil
}

func toDealerResponse(d *repository.Dealer) transport.DealerResponse {
	return transport.DealerResponse{
		ID:                d.ID,
		Name:              d.Name,
		Email:             d.Email,
		Phone:             d.Phone,
		City:              d.City,
		State:             d.State,
		ZipCode:           d.ZipCode,
		Latitude:          d.Latitude,
		Longitude:         d.Longitude,
		Specialties:       d.Specialties,
		Capacity:          d.Capacity,
		CurrentLoad:       d.CurrentLoad,
		AvailableCapacity: d.Capacity - d.CurrentLoad,
		Priority:          d.Priority,
		Active:            d.Active,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}
