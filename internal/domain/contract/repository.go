package contract

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ListFilter narrows a contract listing.
type ListFilter struct {
	Status Status // empty = all
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, c *Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*Contract, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Contract, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
	UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, from, to Status) error
	Delete(ctx context.Context, id uuid.UUID) error
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Contract) error {
	query := `
		INSERT INTO contracts (
			artist_id, venue_id, created_by, event_date, final_price,
			details, tags, slot_id, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		c.ArtistID, c.VenueID, c.CreatedBy, c.EventDate, c.FinalPrice,
		c.Details, c.Tags, c.SlotID, c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contract: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Contract, error) {
	var c Contract
	query := `SELECT * FROM contracts WHERE id = $1`

	err := r.db.GetContext(ctx, &c, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	return &c, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Contract, int, error) {
	where := `(artist_id = $1 OR venue_id = $1)`
	args := []interface{}{userID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM contracts WHERE ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count contracts: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT * FROM contracts
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	contracts := []*Contract{}
	if err := r.db.SelectContext(ctx, &contracts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list contracts: %w", err)
	}
	return contracts, total, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	return r.updateStatus(ctx, r.db, id, from, to)
}

func (r *repository) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, from, to Status) error {
	return r.updateStatus(ctx, tx, id, from, to)
}

// updateStatus runs against the pool or an open transaction. The update is a
// compare-and-set on the expected current status, so a transition validated
// against a stale read loses to whichever concurrent transition committed
// first. Timestamps for acceptance and closure are stamped here so they line
// up with the status row.
func (r *repository) updateStatus(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID, from, to Status) error {
	query := `
		UPDATE contracts
		SET status = $3,
		    accepted_at = CASE WHEN $3 = 'accepted' THEN $4 ELSE accepted_at END,
		    closed_at = CASE WHEN $3 IN ('rejected', 'cancelled', 'completed') THEN $4 ELSE closed_at END,
		    updated_at = NOW()
		WHERE id = $1 AND status = $2`

	result, err := ext.ExecContext(ctx, query, id, from, to, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update contract status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		var exists bool
		if err := sqlx.GetContext(ctx, ext, &exists, `SELECT EXISTS(SELECT 1 FROM contracts WHERE id = $1)`, id); err != nil {
			return fmt.Errorf("failed to check contract existence: %w", err)
		}
		if !exists {
			return ErrContractNotFound
		}
		return ErrInvalidStatusTransition
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contracts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contract: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrContractNotFound
	}
	return nil
}

func (r *repository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}
