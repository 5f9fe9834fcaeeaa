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

// ── Domain Models ─────────────────────────────────────────────────────────────

// Lead is the database model for a buyer inquiry.
type Lead struct {
	ID               uuid.UUID  `db:"id"`
	Name             string     `db:"name"`
	Email            string     `db:"email"`
	Phone            string     `db:"phone"`
	VehicleInterest  *string    `db:"vehicle_interest"`
	Budget           *string    `db:"budget"`
	Timeline         *string    `db:"timeline"`
	PreferredContact string     `db:"preferred_contact"`
	Source           string     `db:"source"`
	Message          *string    `db:"message"`
	Score            int        `db:"score"`
	Status           string     `db:"status"`
	DealerID         *uuid.UUID `db:"dealer_id"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// Interaction is a timeline entry on a lead.
type Interaction struct {
	ID        uuid.UUID `db:"id"`
	LeadID    uuid.UUID `db:"lead_id"`
	Type      string    `db:"type"`
	Detail    []byte    `db:"detail"`
	CreatedAt time.Time `db:"created_at"`
}

// FollowUp is a scheduled re-contact for a lead.
type FollowUp struct {
	ID          uuid.UUID `db:"id"`
	LeadID      uuid.UUID `db:"lead_id"`
	Channel     string    `db:"channel"`
	ScheduledAt time.Time `db:"scheduled_at"`
	Status      string    `db:"status"`
	TaskID      *string   `db:"task_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ListParams contains parameters for listing leads.
type ListParams struct {
	Status   *string
	DealerID *uuid.UUID
	Search   string
	Page     int
	PageSize int
}

// ListResult contains the paginated result of listing leads.
type ListResult struct {
	Items      []Lead
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// ── Repository ────────────────────────────────────────────────────────────────

const leadNotFoundMsg = "lead not found"

// Repository provides database operations for leads.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `id, name, email, phone, vehicle_interest, budget, timeline,
	preferred_contact, source, message, score, status, dealer_id, created_at, updated_at`

func scanLead(row pgx.Row) (*Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.Name, &l.Email, &l.Phone, &l.VehicleInterest, &l.Budget,
		&l.Timeline, &l.PreferredContact, &l.Source, &l.Message, &l.Score,
		&l.Status, &l.DealerID, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a new lead and fills in its generated fields.
func (r *Repository) Create(ctx context.Context, lead *Lead) error {
	query := `
		INSERT INTO leads (name, email, phone, vehicle_interest, budget, timeline,
			preferred_contact, source, message, score, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		lead.Name, lead.Email, lead.Phone, lead.VehicleInterest, lead.Budget,
		lead.Timeline, lead.PreferredContact, lead.Source, lead.Message,
		lead.Score, lead.Status,
	).Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}
	return nil
}

// GetByID fetches a single lead.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	lead, err := scanLead(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(leadNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to fetch lead: %w", err)
	}
	return lead, nil
}

// List returns leads matching the filter, newest first.
func (r *Repository) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	where := ` WHERE 1=1`
	args := []interface{}{}

	if params.Status != nil {
		args = append(args, *params.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if params.DealerID != nil {
		args = append(args, *params.DealerID)
		where += fmt.Sprintf(" AND dealer_id = $%d", len(args))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", len(args), len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)
	query := `SELECT ` + leadColumns + ` FROM leads` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	items := []Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		items = append(items, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leads: %w", err)
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

// UpdateStatus moves a lead to a new lifecycle status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE leads SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update lead status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMsg)
	}
	return nil
}

// AddInteraction appends a timeline entry to a lead. Detail must be valid
// JSON; pass nil for an empty object.
func (r *Repository) AddInteraction(ctx context.Context, leadID uuid.UUID, interactionType string, detail []byte) error {
	if detail == nil {
		detail = []byte(`{}`)
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO lead_interactions (lead_id, type, detail) VALUES ($1, $2, $3)`,
		leadID, interactionType, detail)
	if err != nil {
		return fmt.Errorf("failed to insert lead interaction: %w", err)
	}
	return nil
}

// ListInteractions returns a lead's timeline, newest first.
func (r *Repository) ListInteractions(ctx context.Context, leadID uuid.UUID) ([]Interaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, lead_id, type, detail, created_at
		 FROM lead_interactions WHERE lead_id = $1 ORDER BY created_at DESC`, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lead interactions: %w", err)
	}
	defer rows.Close()

	items := []Interaction{}
	for rows.Next() {
		var it Interaction
		if err := rows.Scan(&it.ID, &it.LeadID, &it.Type, &it.Detail, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lead interaction: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// CreateFollowUp schedules a follow-up for a lead.
func (r *Repository) CreateFollowUp(ctx context.Context, f *FollowUp) error {
	query := `
		INSERT INTO lead_followups (lead_id, channel, scheduled_at, status)
		VALUES ($1, $2, $3, 'scheduled')
		RETURNING id, status, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, f.LeadID, f.Channel, f.ScheduledAt).
		Scan(&f.ID, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert follow-up: %w", err)
	}
	return nil
}

// SetFollowUpTaskID stores the queue task id once the follow-up is enqueued.
func (r *Repository) SetFollowUpTaskID(ctx context.Context, id uuid.UUID, taskID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE lead_followups SET task_id = $1, updated_at = now() WHERE id = $2`, taskID, id)
	if err != nil {
		return fmt.Errorf("failed to store follow-up task id: %w", err)
	}
	return nil
}

// GetFollowUp fetches a single follow-up.
func (r *Repository) GetFollowUp(ctx context.Context, id uuid.UUID) (*FollowUp, error) {
	var f FollowUp
	err := r.pool.QueryRow(ctx,
		`SELECT id, lead_id, channel, scheduled_at, status, task_id, created_at, updated_at
		 FROM lead_followups WHERE id = $1`, id).
		Scan(&f.ID, &f.LeadID, &f.Channel, &f.ScheduledAt, &f.Status, &f.TaskID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("follow-up not found")
		}
		return nil, fmt.Errorf("failed to fetch follow-up: %w", err)
	}
	return &f, nil
}

// UpdateFollowUpStatus marks a follow-up sent or canceled.
func (r *Repository) UpdateFollowUpStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE lead_followups SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update follow-up status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("follow-up not found")
	}
	return nil
}
