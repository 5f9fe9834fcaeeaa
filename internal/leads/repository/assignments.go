package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carforsales_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Assignment links a lead to the dealer chosen to handle it.
type Assignment struct {
	ID         uuid.UUID `db:"id"`
	LeadID     uuid.UUID `db:"lead_id"`
	DealerID   uuid.UUID `db:"dealer_id"`
	AssignedBy string    `db:"assigned_by"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// dbtx is the subset of pgx.Tx the assignment transactions touch.
type dbtx interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Assign atomically creates a pending assignment, qualifies the lead and
// increments the dealer's load. The dealer row is locked first so the
// capacity check and the increment cannot interleave with a concurrent
// assignment; a dealer at capacity or a lead with a live assignment
// yields a conflict and nothing is written.
func (r *Repository) Assign(ctx context.Context, leadID, dealerID uuid.UUID, assignedBy string) (*Assignment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	assignment, err := assignInTx(ctx, tx, leadID, dealerID, assignedBy)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit assignment: %w", err)
	}
	return assignment, nil
}

func assignInTx(ctx context.Context, tx dbtx, leadID, dealerID uuid.UUID, assignedBy string) (*Assignment, error) {
	var capacity, currentLoad int
	err := tx.QueryRow(ctx,
		`SELECT capacity, current_load FROM dealers WHERE id = $1 AND active = TRUE FOR UPDATE`,
		dealerID).Scan(&capacity, &currentLoad)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("dealer not found")
		}
		return nil, fmt.Errorf("failed to lock dealer row: %w", err)
	}

	if currentLoad >= capacity {
		return nil, apperr.Conflict("dealer is at capacity")
	}

	assignment := Assignment{LeadID: leadID, DealerID: dealerID, AssignedBy: assignedBy, Status: "pending"}
	err = tx.QueryRow(ctx,
		`INSERT INTO lead_assignments (lead_id, dealer_id, assigned_by, status)
		 VALUES ($1, $2, $3, 'pending')
		 RETURNING id, created_at, updated_at`,
		leadID, dealerID, assignedBy).
		Scan(&assignment.ID, &assignment.CreatedAt, &assignment.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("lead already has an active assignment")
		}
		return nil, fmt.Errorf("failed to insert assignment: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE leads SET dealer_id = $1, status = 'qualified', updated_at = now() WHERE id = $2`,
		dealerID, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.NotFound(leadNotFoundMsg)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE dealers SET current_load = current_load + 1, updated_at = now() WHERE id = $1`,
		dealerID); err != nil {
		return nil, fmt.Errorf("failed to increment dealer load: %w", err)
	}

	return &assignment, nil
}

// AcceptAssignment moves a pending assignment to accepted. Load is
// unchanged; the lead stays counted against the dealer.
func (r *Repository) AcceptAssignment(ctx context.Context, id uuid.UUID) (*Assignment, error) {
	var a Assignment
	err := r.pool.QueryRow(ctx,
		`UPDATE lead_assignments SET status = 'accepted', updated_at = now()
		 WHERE id = $1 AND status = 'pending'
		 RETURNING id, lead_id, dealer_id, assigned_by, status, created_at, updated_at`, id).
		Scan(&a.ID, &a.LeadID, &a.DealerID, &a.AssignedBy, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Conflict("assignment is not pending")
		}
		return nil, fmt.Errorf("failed to accept assignment: %w", err)
	}
	return &a, nil
}

// ReleaseAssignment settles a live assignment as rejected or closed and
// decrements the dealer's load under the same row-lock discipline used
// when assigning. Load never goes below zero.
func (r *Repository) ReleaseAssignment(ctx context.Context, id uuid.UUID, status string) (*Assignment, error) {
	if status != "rejected" && status != "closed" {
		return nil, apperr.BadRequest("invalid release status")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	a, err := releaseInTx(ctx, tx, id, status)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit release: %w", err)
	}
	return a, nil
}

func releaseInTx(ctx context.Context, tx dbtx, id uuid.UUID, status string) (*Assignment, error) {
	var a Assignment
	err := tx.QueryRow(ctx,
		`SELECT id, lead_id, dealer_id, assigned_by, status, created_at, updated_at
		 FROM lead_assignments WHERE id = $1 FOR UPDATE`, id).
		Scan(&a.ID, &a.LeadID, &a.DealerID, &a.AssignedBy, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("assignment not found")
		}
		return nil, fmt.Errorf("failed to lock assignment row: %w", err)
	}

	if a.Status != "pending" && a.Status != "accepted" {
		return nil, apperr.Conflict("assignment is already settled")
	}

	if _, err := tx.Exec(ctx, `SELECT 1 FROM dealers WHERE id = $1 FOR UPDATE`, a.DealerID); err != nil {
		return nil, fmt.Errorf("failed to lock dealer row: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE lead_assignments SET status = $1, updated_at = now() WHERE id = $2`,
		status, id); err != nil {
		return nil, fmt.Errorf("failed to update assignment status: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE dealers SET current_load = GREATEST(current_load - 1, 0), updated_at = now() WHERE id = $1`,
		a.DealerID); err != nil {
		return nil, fmt.Errorf("failed to decrement dealer load: %w", err)
	}

	if status == "rejected" {
		if _, err := tx.Exec(ctx,
			`UPDATE leads SET dealer_id = NULL, status = 'new', updated_at = now() WHERE id = $1 AND dealer_id = $2`,
			a.LeadID, a.DealerID); err != nil {
			return nil, fmt.Errorf("failed to detach lead from dealer: %w", err)
		}
	}

	a.Status = status
	return &a, nil
}

// GetAssignment fetches a single assignment.
func (r *Repository) GetAssignment(ctx context.Context, id uuid.UUID) (*Assignment, error) {
	var a Assignment
	err := r.pool.QueryRow(ctx,
		`SELECT id, lead_id, dealer_id, assigned_by, status, created_at, updated_at
		 FROM lead_assignments WHERE id = $1`, id).
		Scan(&a.ID, &a.LeadID, &a.DealerID, &a.AssignedBy, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("assignment not found")
		}
		return nil, fmt.Errorf("failed to fetch assignment: %w", err)
	}
	return &a, nil
}

// ListAssignmentsByLead returns a lead's assignment history, newest first.
func (r *Repository) ListAssignmentsByLead(ctx context.Context, leadID uuid.UUID) ([]Assignment, error) {
	return r.listAssignments(ctx,
		`SELECT id, lead_id, dealer_id, assigned_by, status, created_at, updated_at
		 FROM lead_assignments WHERE lead_id = $1 ORDER BY created_at DESC`, leadID)
}

// ListAssignmentsByDealer returns a dealer's live assignments, oldest first.
func (r *Repository) ListAssignmentsByDealer(ctx context.Context, dealerID uuid.UUID) ([]Assignment, error) {
	return r.listAssignments(ctx,
		`SELECT id, lead_id, dealer_id, assigned_by, status, created_at, updated_at
		 FROM lead_assignments
		 WHERE dealer_id = $1 AND status IN ('pending', 'accepted')
		 ORDER BY created_at ASC`, dealerID)
}

func (r *Repository) listAssignments(ctx context.Context, query string, arg interface{}) ([]Assignment, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	items := []Assignment{}
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.LeadID, &a.DealerID, &a.AssignedBy, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
