package repository

import (
	"context"
	"errors"
	"fmt"

	"carforsales_backend/internal/leads/routing"

	"github.com/jackc/pgx/v5"
)

// candidateLimit caps the number of dealers the matcher considers per run.
const candidateLimit = 5

// FindCandidates returns up to five active dealers with spare capacity,
// ranked by priority, then available capacity, then current load. A
// non-empty specialty list restricts candidates to dealers carrying at
// least one of them.
func (r *Repository) FindCandidates(ctx context.Context, specialties []string) ([]routing.Dealer, error) {
	query := `
		SELECT id, name, specialties, capacity, current_load, priority
		FROM dealers
		WHERE active = TRUE
		  AND (capacity - current_load) > 0
		  AND (cardinality($1::text[]) = 0 OR specialties && $1::text[])
		ORDER BY priority DESC, (capacity - current_load) DESC, current_load ASC
		LIMIT $2`

	if specialties == nil {
		specialties = []string{}
	}

	rows, err := r.pool.Query(ctx, query, specialties, candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query dealer candidates: %w", err)
	}
	defer rows.Close()

	var candidates []routing.Dealer
	for rows.Next() {
		var d routing.Dealer
		if err := rows.Scan(&d.ID, &d.Name, &d.Specialties, &d.Capacity, &d.CurrentLoad, &d.Priority); err != nil {
			return nil, fmt.Errorf("failed to scan dealer candidate: %w", err)
		}
		candidates = append(candidates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dealer candidates: %w", err)
	}
	return candidates, nil
}

// FindAnyAvailable returns the single best dealer ignoring specialty, or
// nil when no active dealer has spare capacity.
func (r *Repository) FindAnyAvailable(ctx context.Context) (*routing.Dealer, error) {
	query := `
		SELECT id, name, specialties, capacity, current_load, priority
		FROM dealers
		WHERE active = TRUE
		  AND (capacity - current_load) > 0
		ORDER BY priority DESC, current_load ASC
		LIMIT 1`

	var d routing.Dealer
	err := r.pool.QueryRow(ctx, query).
		Scan(&d.ID, &d.Name, &d.Specialties, &d.Capacity, &d.CurrentLoad, &d.Priority)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query fallback dealer: %w", err)
	}
	return &d, nil
}

// Compile-time check that Repository satisfies the router's candidate source.
var _ routing.DealerFinder = (*Repository)(nil)
