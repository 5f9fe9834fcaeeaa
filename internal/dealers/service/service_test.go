package service

import (
	"context"
	"errors"
	"testing"

	"carforsales_backend/internal/dealers/repository"
	"carforsales_backend/internal/dealers/transport"
	"carforsales_backend/platform/apperr"
	"carforsales_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	dealers map[uuid.UUID]*repository.Dealer
}

func newFakeStore() *fakeStore {
	return &fakeStore{dealers: make(map[uuid.UUID]*repository.Dealer)}
}

func (f *fakeStore) Create(_ context.Context, d *repository.Dealer) error {
	d.ID = uuid.New()
	f.dealers[d.ID] = d
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*repository.Dealer, error) {
	d, ok := f.dealers[id]
	if !ok {
		return nil, apperr.NotFound("dealer not found")
	}
	return d, nil
}

func (f *fakeStore) List(_ context.Context, _ repository.ListParams) ([]repository.Dealer, error) {
	var out []repository.Dealer
	for _, d := range f.dealers {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, d *repository.Dealer) error {
	f.dealers[d.ID] = d
	return nil
}

func (f *fakeStore) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	if d, ok := f.dealers[id]; ok {
		d.Active = active
	}
	return nil
}

func (f *fakeStore) LinkAccount(_ context.Context, _, _ uuid.UUID) error { return nil }

func (f *fakeStore) DealerForUser(_ context.Context, _ uuid.UUID) (*repository.Dealer, error) {
	return nil, apperr.NotFound("dealer not found")
}

type fakeGeocoder struct {
	lat, lon float64
	err      error
	calls    int
}

func (f *fakeGeocoder) GeocodeZip(_ context.Context, _ string) (float64, float64, error) {
	f.calls++
	if f.err != nil {
		return 0, 0, f.err
	}
	return f.lat, f.lon, nil
}

func newService(store *fakeStore) *Service {
	return New(store, logger.New("development"))
}

func TestCreate_DefaultsCapacityAndActive(t *testing.T) {
	store := newFakeStore()
	svc := newService(store)

	resp, err := svc.Create(context.Background(), transport.CreateDealerRequest{
		Name:  "Prime Autos",
		Email: "sales@primeautos.test",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if resp.Capacity != defaultCapacity {
		t.Fatalf("capacity = %d, want %d", resp.Capacity, defaultCapacity)
	}
	if !resp.Active {
		t.Fatal("new dealer should start active")
	}
	if resp.Specialties == nil {
		t.Fatal("specialties should never be nil")
	}
}

func TestCreate_GeocodesZip(t *testing.T) {
	store := newFakeStore()
	svc := newService(store)
	geocoder := &fakeGeocoder{lat: 40.71, lon: -74.0}
	svc.SetGeocoder(geocoder)

	resp, err := svc.Create(context.Background(), transport.CreateDealerRequest{
		Name:    "Prime Autos",
		Email:   "sales@primeautos.test",
		ZipCode: "10001",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if resp.Latitude == nil || *resp.Latitude != 40.71 {
		t.Fatalf("latitude not set: %v", resp.Latitude)
	}
	if geocoder.calls != 1 {
		t.Fatalf("geocoder calls = %d, want 1", geocoder.calls)
	}
}

func TestCreate_GeocodeFailureIsSoft(t *testing.T) {
	store := newFakeStore()
	svc := newService(store)
	svc.SetGeocoder(&fakeGeocoder{err: errors.New("upstream down")})

	resp, err := svc.Create(context.Background(), transport.CreateDealerRequest{
		Name:    "Prime Autos",
		Email:   "sales@primeautos.test",
		ZipCode: "10001",
	})
	if err != nil {
		t.Fatalf("Create should not fail on geocode error: %v", err)
	}
	if resp.Latitude != nil {
		t.Fatal("latitude should be empty after failed lookup")
	}
}

func TestSearchByZip_FiltersAndSortsByDistance(t *testing.T) {
	store := newFakeStore()
	svc := newService(store)
	// Search origin: lower Manhattan.
	svc.SetGeocoder(&fakeGeocoder{lat: 40.7128, lon: -74.006})

	near := &repository.Dealer{ID: uuid.New(), Name: "Near", Active: true}
	nearLat, nearLon := 40.73, -73.99
	near.Latitude, near.Longitude = &nearLat, &nearLon

	far := &repository.Dealer{ID: uuid.New(), Name: "Far", Active: true}
	farLat, farLon := 42.36, -71.06 // Boston, ~300km out
	far.Latitude, far.Longitude = &farLat, &farLon

	noCoords := &repository.Dealer{ID: uuid.New(), Name: "Unlocated", Active: true}

	store.dealers[near.ID] = near
	store.dealers[far.ID] = far
	store.dealers[noCoords.ID] = noCoords

	items, err := svc.SearchByZip(context.Background(), transport.SearchDealersRequest{
		ZipCode: "10001",
	})
	if err != nil {
		t.Fatalf("SearchByZip returned error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d dealers, want only the one in range", len(items))
	}
	if items[0].Name != "Near" {
		t.Fatalf("dealer = %q, want Near", items[0].Name)
	}
	if items[0].DistanceKm <= 0 || items[0].DistanceKm > 50 {
		t.Fatalf("distance = %v, want within default radius", items[0].DistanceKm)
	}
}

func TestSearchByZip_WithoutGeocoder(t *testing.T) {
	svc := newService(newFakeStore())

	_, err := svc.SearchByZip(context.Background(), transport.SearchDealersRequest{ZipCode: "10001"})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindUnavailable {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestUpdate_RegeocodesOnlyWhenZipChanges(t *testing.T) {
	store := newFakeStore()
	svc := newService(store)
	geocoder := &fakeGeocoder{lat: 40.71, lon: -74.0}
	svc.SetGeocoder(geocoder)

	created, err := svc.Create(context.Background(), transport.CreateDealerRequest{
		Name:    "Prime Autos",
		Email:   "sales@primeautos.test",
		ZipCode: "10001",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	update := transport.UpdateDealerRequest{
		Name:     "Prime Autos",
		Email:    "sales@primeautos.test",
		ZipCode:  "10001",
		Capacity: 10,
		Active:   true,
	}
	if _, err := svc.Update(context.Background(), created.ID, update); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if geocoder.calls != 1 {
		t.Fatalf("unchanged zip should not re-geocode, calls = %d", geocoder.calls)
	}

	update.ZipCode = "94105"
	if _, err := svc.Update(context.Background(), created.ID, update); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if geocoder.calls != 2 {
		t.Fatalf("changed zip should re-geocode, calls = %d", geocoder.calls)
	}
}
