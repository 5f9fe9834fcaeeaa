package routing

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNoDealerAvailable is returned by Route when every strategy came up
// empty, meaning no active dealer has spare capacity.
var ErrNoDealerAvailable = errors.New("no dealer available")

// Dealer is the slice of dealer state the router needs to pick a target.
type Dealer struct {
	ID          uuid.UUID
	Name        string
	Specialties []string
	Capacity    int
	CurrentLoad int
	Priority    int
}

// AvailableCapacity returns the dealer's remaining concurrent-lead slots.
func (d Dealer) AvailableCapacity() int {
	return d.Capacity - d.CurrentLoad
}

// DealerFinder loads routing candidates from the store.
// Implementations must return dealers ordered most preferred first and
// must exclude inactive or fully loaded dealers.
type DealerFinder interface {
	// FindCandidates returns up to five dealers ranked by priority, then
	// available capacity, then current load. When specialties is non-empty
	// only dealers carrying at least one of them are considered.
	FindCandidates(ctx context.Context, specialties []string) ([]Dealer, error)
	// FindAnyAvailable returns the single best dealer ignoring specialty,
	// or nil when no dealer has spare capacity.
	FindAnyAvailable(ctx context.Context) (*Dealer, error)
}

// Decision is the outcome of a routing run.
type Decision struct {
	Dealer   Dealer
	Fallback bool
}

// Router picks a dealer for a lead by trying an ordered list of
// strategies until one yields a candidate.
type Router struct {
	finder     DealerFinder
	strategies []strategy
}

type strategy func(ctx context.Context, in ScoreInput) (*Decision, error)

// NewRouter creates a router over the given candidate source.
func NewRouter(finder DealerFinder) *Router {
	r := &Router{finder: finder}
	r.strategies = []strategy{
		r.specialtyMatch,
		r.anyAvailable,
	}
	return r
}

// Route returns the dealer the lead should go to. Store errors propagate
// unmodified; ErrNoDealerAvailable is returned only when every strategy
// found nothing.
func (r *Router) Route(ctx context.Context, in ScoreInput) (*Decision, error) {
	for _, try := range r.strategies {
		decision, err := try(ctx, in)
		if err != nil {
			return nil, err
		}
		if decision != nil {
			return decision, nil
		}
	}
	return nil, ErrNoDealerAvailable
}

// specialtyMatch ranks dealers by specialty fit when the lead's vehicle
// interest maps to known specialties; with no extracted specialties it
// still ranks all available dealers.
func (r *Router) specialtyMatch(ctx context.Context, in ScoreInput) (*Decision, error) {
	specialties := MatchSpecialties(in.VehicleInterest)
	candidates, err := r.finder.FindCandidates(ctx, specialties)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return &Decision{Dealer: candidates[0]}, nil
}

// anyAvailable is the last resort: any active dealer with spare capacity,
// highest priority and lightest load first.
func (r *Router) anyAvailable(ctx context.Context, _ ScoreInput) (*Decision, error) {
	dealer, err := r.finder.FindAnyAvailable(ctx)
	if err != nil {
		return nil, err
	}
	if dealer == nil {
		return nil, nil
	}
	return &Decision{Dealer: *dealer, Fallback: true}, nil
}
