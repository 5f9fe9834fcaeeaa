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

// Dealer is the database model for a dealership.
type Dealer struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	Email       string    `db:"email"`
	Phone       *string   `db:"phone"`
	City        *string   `db:"city"`
	State       *string   `db:"state"`
	ZipCode     *string   `db:"zip_code"`
	Latitude    *float64  `db:"latitude"`
	Longitude   *float64  `db:"longitude"`
	Specialties []string  `db:"specialties"`
	Capacity    int       `db:"capacity"`
	CurrentLoad int       `db:"current_load"`
	Priority    int       `db:"priority"`
	Active      bool      `db:"active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ListParams filters the dealer listing.
type ListParams struct {
	Active    *bool
	Specialty *string
	Search    string
}

const dealerNotFoundMsg = "dealer not found"

// Repository provides database operations for dealers.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new dealers repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const dealerColumns = `id, name, email, phone, city, state, zip_code, latitude, longitude,
	specialties, capacity, current_load, priority, active, created_at, updated_at`

func scanDealer(row pgx.Row) (*Dealer, error) {
	var d Dealer
	err := row.Scan(
		&d.ID, &d.Name, &d.Email, &d.Phone, &d.City, &d.State, &d.ZipCode,
		&d.Latitude, &d.Longitude, &d.Specialties, &d.Capacity, &d.CurrentLoad,
		&d.Priority, &d.Active, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new dealer.
func (r *Repository) Create(ctx context.Context, d *Dealer) error {
	query := `
		INSERT INTO dealers (name, email, phone, city, state, zip_code, latitude, longitude,
			specialties, capacity, priority, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, current_load, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		d.Name, d.Email, d.Phone, d.City, d.State, d.ZipCode, d.Latitude, d.Longitude,
		d.Specialties, d.Capacity, d.Priority, d.Active,
	).Scan(&d.ID, &d.CurrentLoad, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert dealer: %w", err)
	}
	return nil
}

// GetByID fetches a single dealer.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Dealer, error) {
	dealer, err := scanDealer(r.pool.QueryRow(ctx,
		`SELECT `+dealerColumns+` FROM dealers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(dealerNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to fetch dealer: %w", err)
	}
	return dealer, nil
}

// List returns dealers matching the filter, highest priority first.
func (r *Repository) List(ctx context.Context, params ListParams) ([]Dealer, error) {
	query := `SELECT ` + dealerColumns + ` FROM dealers WHERE 1=1`
	args := []interface{}{}

	if params.Active != nil {
		args = append(args, *params.Active)
		query += fmt.Sprintf(" AND active = $%d", len(args))
	}
	if params.Specialty != nil {
		args = append(args, []string{*params.Specialty})
		query += fmt.Sprintf(" AND specialties && $%d::text[]", len(args))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR city ILIKE $%d)", len(args), len(args))
	}

	query += ` ORDER BY priority DESC, name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list dealers: %w", err)
	}
	defer rows.Close()

	items := []Dealer{}
	for rows.Next() {
		dealer, err := scanDealer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dealer: %w", err)
		}
		items = append(items, *dealer)
	}
	return items, rows.Err()
}

// Update modifies a dealer's mutable fields. current_load is owned by the
// assignment transactions and deliberately not touchable here.
func (r *Repository) Update(ctx context.Context, d *Dealer) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE dealers
		SET name = $1, email = $2, phone = $3, city = $4, state = $5, zip_code = $6,
		    latitude = $7, longitude = $8, specialties = $9, capacity = $10,
		    priority = $11, active = $12, updated_at = now()
		WHERE id = $13`,
		d.Name, d.Email, d.Phone, d.City, d.State, d.ZipCode, d.Latitude, d.Longitude,
		d.Specialties, d.Capacity, d.Priority, d.Active, d.ID)
	if err != nil {
		return fmt.Errorf("failed to update dealer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(dealerNotFoundMsg)
	}
	return nil
}

// SetActive toggles a dealer's participation in routing.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE dealers SET active = $1, updated_at = now() WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("failed to toggle dealer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(dealerNotFoundMsg)
	}
	return nil
}

// LinkAccount associates a portal user with a dealer.
func (r *Repository) LinkAccount(ctx context.Context, userID, dealerID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO dealer_accounts (user_id, dealer_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, dealer_id) DO NOTHING`, userID, dealerID)
	if err != nil {
		return fmt.Errorf("failed to link dealer account: %w", err)
	}
	return nil
}

// DealerForUser resolves the dealer a portal user belongs to.
func (r *Repository) DealerForUser(ctx context.Context, userID uuid.UUID) (*Dealer, error) {
	dealer, err := scanDealer(r.pool.QueryRow(ctx, `
		SELECT `+dealerPrefixedColumns+`
		FROM dealers d
		JOIN dealer_accounts da ON da.dealer_id = d.id
		WHERE da.user_id = $1
		LIMIT 1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("no dealer linked to this account")
		}
		return nil, fmt.Errorf("failed to resolve dealer for user: %w", err)
	}
	return dealer, nil
}

const dealerPrefixedColumns = `d.id, d.name, d.email, d.phone, d.city, d.state, d.zip_code,
	d.latitude, d.longitude, d.specialties, d.capacity, d.current_load, d.priority,
	d.active, d.created_at, d.updated_at`
