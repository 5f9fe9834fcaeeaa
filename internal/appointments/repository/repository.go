package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carforsales_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Appointment is the database model for a test drive booking.
type Appointment struct {
	ID            uuid.UUID  `db:"id"`
	VehicleID     uuid.UUID  `db:"vehicle_id"`
	DealerID      uuid.UUID  `db:"dealer_id"`
	LeadID        *uuid.UUID `db:"lead_id"`
	CustomerName  string     `db:"customer_name"`
	CustomerEmail string     `db:"customer_email"`
	CustomerPhone *string    `db:"customer_phone"`
	ScheduledAt   time.Time  `db:"scheduled_at"`
	Status        string     `db:"status"`
	Notes         *string    `db:"notes"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

const appointmentNotFoundMsg = "appointment not found"

// Repository provides database operations for test drive appointments.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new appointments repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const appointmentColumns = `id, vehicle_id, dealer_id, lead_id, customer_name,
	customer_email, customer_phone, scheduled_at, status, notes, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.VehicleID, &a.DealerID, &a.LeadID, &a.CustomerName,
		&a.CustomerEmail, &a.CustomerPhone, &a.ScheduledAt, &a.Status,
		&a.Notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new booking.
func (r *Repository) Create(ctx context.Context, a *Appointment) error {
	query := `
		INSERT INTO test_drive_appointments (vehicle_id, dealer_id, lead_id,
			customer_name, customer_email, customer_phone, scheduled_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, status, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		a.VehicleID, a.DealerID, a.LeadID, a.CustomerName, a.CustomerEmail,
		a.CustomerPhone, a.ScheduledAt, a.Notes,
	).Scan(&a.ID, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert appointment: %w", err)
	}
	return nil
}

// GetByID fetches a single booking.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appointment, err := scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+appointmentColumns+` FROM test_drive_appointments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(appointmentNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to fetch appointment: %w", err)
	}
	return appointment, nil
}

// ListByDealer returns a dealer's bookings ordered by schedule.
func (r *Repository) ListByDealer(ctx context.Context, dealerID uuid.UUID, upcomingOnly bool) ([]Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM test_drive_appointments WHERE dealer_id = $1`
	if upcomingOnly {
		query += ` AND scheduled_at >= now() AND status = 'scheduled'`
	}
	query += ` ORDER BY scheduled_at ASC`

	rows, err := r.pool.Query(ctx, query, dealerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	items := []Appointment{}
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		items = append(items, *appointment)
	}
	return items, rows.Err()
}

// UpdateStatus moves a booking through its lifecycle.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE test_drive_appointments SET status = $1, updated_at = now() WHERE id = $2`,
		status, id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(appointmentNotFoundMsg)
	}
	return nil
}

// HasConflict reports whether the dealer already has a scheduled booking
// within an hour of the requested slot.
func (r *Repository) HasConflict(ctx context.Context, dealerID uuid.UUID, at time.Time) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM test_drive_appointments
		WHERE dealer_id = $1 AND status = 'scheduled'
		  AND scheduled_at BETWEEN $2::timestamptz - interval '1 hour'
		                       AND $2::timestamptz + interval '1 hour'`,
		dealerID, at).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check appointment conflicts: %w", err)
	}
	return count > 0, nil
}
