package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type fakeFinder struct {
	candidates    []Dealer
	candidatesErr error
	gotSpecs      []string

	fallback    *Dealer
	fallbackErr error
	fallbackHit bool
}

func (f *fakeFinder) FindCandidates(_ context.Context, specialties []string) ([]Dealer, error) {
	f.gotSpecs = specialties
	return f.candidates, f.candidatesErr
}

func (f *fakeFinder) FindAnyAvailable(_ context.Context) (*Dealer, error) {
	f.fallbackHit = true
	return f.fallback, f.fallbackErr
}

func TestRoute_PicksFirstCandidate(t *testing.T) {
	best := Dealer{ID: uuid.New(), Name: "Volt Motors", Priority: 5}
	finder := &fakeFinder{candidates: []Dealer{best, {ID: uuid.New(), Name: "Second"}}}
	router := NewRouter(finder)

	decision, err := router.Route(context.Background(), ScoreInput{VehicleInterest: "Tesla Model 3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Dealer.ID != best.ID {
		t.Fatalf("expected dealer %s, got %s", best.ID, decision.Dealer.ID)
	}
	if decision.Fallback {
		t.Fatal("expected a specialty match, not a fallback")
	}
	if len(finder.gotSpecs) != 1 || finder.gotSpecs[0] != "electric" {
		t.Fatalf("expected specialty [electric], got %v", finder.gotSpecs)
	}
	if finder.fallbackHit {
		t.Fatal("fallback strategy should not run when candidates exist")
	}
}

func TestRoute_FallsBackWhenNoCandidates(t *testing.T) {
	reserve := Dealer{ID: uuid.New(), Name: "Any Auto"}
	finder := &fakeFinder{fallback: &reserve}
	router := NewRouter(finder)

	decision, err := router.Route(context.Background(), ScoreInput{VehicleInterest: "unicycle"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Dealer.ID != reserve.ID {
		t.Fatalf("expected fallback dealer %s, got %s", reserve.ID, decision.Dealer.ID)
	}
	if !decision.Fallback {
		t.Fatal("expected the decision to be marked as fallback")
	}
}

func TestRoute_NoDealerAvailable(t *testing.T) {
	router := NewRouter(&fakeFinder{})

	_, err := router.Route(context.Background(), ScoreInput{})
	if !errors.Is(err, ErrNoDealerAvailable) {
		t.Fatalf("expected ErrNoDealerAvailable, got %v", err)
	}
}

func TestRoute_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	router := NewRouter(&fakeFinder{candidatesErr: boom})

	_, err := router.Route(context.Background(), ScoreInput{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}

func TestRoute_NoSpecialtiesStillQueriesCandidates(t *testing.T) {
	match := Dealer{ID: uuid.New(), Name: "General Motors Plaza"}
	finder := &fakeFinder{candidates: []Dealer{match}}
	router := NewRouter(finder)

	decision, err := router.Route(context.Background(), ScoreInput{VehicleInterest: "something odd"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Fallback {
		t.Fatal("candidate tier succeeded, decision must not be fallback")
	}
	if finder.gotSpecs != nil {
		t.Fatalf("expected no specialties, got %v", finder.gotSpecs)
	}
}

func TestAvailableCapacity(t *testing.T) {
	d := Dealer{Capacity: 10, CurrentLoad: 7}
	if got := d.AvailableCapacity(); got != 3 {
		t.Fatalf("expected available capacity 3, got %d", got)
	}
}
