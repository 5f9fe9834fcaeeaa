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

// Vehicle is the database model for an inventory listing.
type Vehicle struct {
	ID           uuid.UUID `db:"id"`
	DealerID     uuid.UUID `db:"dealer_id"`
	Make         string    `db:"make"`
	Model        string    `db:"model"`
	Year         int       `db:"year"`
	Price        float64   `db:"price"`
	Mileage      int       `db:"mileage"`
	Condition    string    `db:"condition"`
	FuelType     *string   `db:"fuel_type"`
	Transmission *string   `db:"transmission"`
	BodyStyle    *string   `db:"body_style"`
	Status       string    `db:"status"`
	Description  *string   `db:"description"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Media is one image or video attached to a vehicle.
type Media struct {
	ID        uuid.UUID `db:"id"`
	VehicleID uuid.UUID `db:"vehicle_id"`
	URL       string    `db:"url"`
	Kind      string    `db:"kind"`
	Position  int       `db:"position"`
	CreatedAt time.Time `db:"created_at"`
}

// ListParams filters the vehicle listing.
type ListParams struct {
	DealerID  *uuid.UUID
	Make      string
	Model     string
	Status    *string
	MinPrice  *float64
	MaxPrice  *float64
	MinYear   *int
	MaxYear   *int
	Condition *string
	Page      int
	PageSize  int
}

// ListResult is a paginated page of vehicles.
type ListResult struct {
	Items      []Vehicle
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

const vehicleNotFoundMsg = "vehicle not found"

// Repository provides database operations for vehicle inventory.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new vehicles repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const vehicleColumns = `id, dealer_id, make, model, year, price, mileage, condition,
	fuel_type, transmission, body_style, status, description, created_at, updated_at`

func scanVehicle(row pgx.Row) (*Vehicle, error) {
	var v Vehicle
	err := row.Scan(
		&v.ID, &v.DealerID, &v.Make, &v.Model, &v.Year, &v.Price, &v.Mileage,
		&v.Condition, &v.FuelType, &v.Transmission, &v.BodyStyle, &v.Status,
		&v.Description, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts a new vehicle listing.
func (r *Repository) Create(ctx context.Context, v *Vehicle) error {
	query := `
		INSERT INTO vehicles (dealer_id, make, model, year, price, mileage, condition,
			fuel_type, transmission, body_style, status, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		v.DealerID, v.Make, v.Model, v.Year, v.Price, v.Mileage, v.Condition,
		v.FuelType, v.Transmission, v.BodyStyle, v.Status, v.Description,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert vehicle: %w", err)
	}
	return nil
}

// GetByID fetches a single vehicle.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	vehicle, err := scanVehicle(r.pool.QueryRow(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(vehicleNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to fetch vehicle: %w", err)
	}
	return vehicle, nil
}

// List returns vehicles matching the filter, newest first.
func (r *Repository) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	where := ` WHERE 1=1`
	args := []interface{}{}

	add := func(clause string, value interface{}) {
		args = append(args, value)
		where += fmt.Sprintf(clause, len(args))
	}

	if params.DealerID != nil {
		add(" AND dealer_id = $%d", *params.DealerID)
	}
	if params.Make != "" {
		add(" AND make ILIKE $%d", params.Make)
	}
	if params.Model != "" {
		add(" AND model ILIKE $%d", params.Model)
	}
	if params.Status != nil {
		add(" AND status = $%d", *params.Status)
	}
	if params.Condition != nil {
		add(" AND condition = $%d", *params.Condition)
	}
	if params.MinPrice != nil {
		add(" AND price >= $%d", *params.MinPrice)
	}
	if params.MaxPrice != nil {
		add(" AND price <= $%d", *params.MaxPrice)
	}
	if params.MinYear != nil {
		add(" AND year >= $%d", *params.MinYear)
	}
	if params.MaxYear != nil {
		add(" AND year <= $%d", *params.MaxYear)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM vehicles`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count vehicles: %w", err)
	}

	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)
	query := `SELECT ` + vehicleColumns + ` FROM vehicles` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	items := []Vehicle{}
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		items = append(items, *vehicle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vehicles: %w", err)
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	return &ListResult{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Update modifies a vehicle listing.
func (r *Repository) Update(ctx context.Context, v *Vehicle) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE vehicles
		SET make = $1, model = $2, year = $3, price = $4, mileage = $5, condition = $6,
		    fuel_type = $7, transmission = $8, body_style = $9, status = $10,
		    description = $11, updated_at = now()
		WHERE id = $12`,
		v.Make, v.Model, v.Year, v.Price, v.Mileage, v.Condition,
		v.FuelType, v.Transmission, v.BodyStyle, v.Status, v.Description, v.ID)
	if err != nil {
		return fmt.Errorf("failed to update vehicle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(vehicleNotFoundMsg)
	}
	return nil
}

// Delete removes a vehicle listing and its media.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(vehicleNotFoundMsg)
	}
	return nil
}

// AddMedia attaches an image or video to a vehicle.
func (r *Repository) AddMedia(ctx context.Context, m *Media) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO vehicle_media (vehicle_id, url, kind, position)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		m.VehicleID, m.URL, m.Kind, m.Position).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert vehicle media: %w", err)
	}
	return nil
}

// ListMedia returns a vehicle's media ordered by position.
func (r *Repository) ListMedia(ctx context.Context, vehicleID uuid.UUID) ([]Media, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, vehicle_id, url, kind, position, created_at
		FROM vehicle_media WHERE vehicle_id = $1 ORDER BY position ASC`, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicle media: %w", err)
	}
	defer rows.Close()

	items := []Media{}
	for rows.Next() {
		var m Media
		if err := rows.Scan(&m.ID, &m.VehicleID, &m.URL, &m.Kind, &m.Position, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vehicle media: %w", err)
		}
		items = append(items, m)
	}
	return items, rows.Err()
}
