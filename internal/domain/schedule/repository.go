package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// SlotFilter narrows slot listings.
type SlotFilter struct {
	DayOfWeek     *int
	AvailableOnly bool
	MinDuration   int // minutes; 0 means no floor
}

// Repository defines schedule data access. Bind/Release are the booking
// ledger: BindSlot is a single conditional update so concurrent binds on the
// same slot cannot both succeed.
type Repository interface {
	CreateSchedule(ctx context.Context, s *Schedule) error
	GetByArtistID(ctx context.Context, artistID uuid.UUID) (*Schedule, error)
	UpdateSettings(ctx context.Context, s *Schedule) error

	AddSlot(ctx context.Context, slot *Slot) error
	GetSlotByID(ctx context.Context, id uuid.UUID) (*Slot, error)
	DeleteSlot(ctx context.Context, id uuid.UUID) error
	ListSlots(ctx context.Context, scheduleID uuid.UUID, filter SlotFilter) ([]*Slot, error)
	ListSlotsByArtist(ctx context.Context, artistID uuid.UUID, filter SlotFilter) ([]*Slot, error)
	CountSlotsByDay(ctx context.Context, artistID uuid.UUID) (map[int]int, error)

	BindSlot(ctx context.Context, slotID, contractID uuid.UUID) error
	BindSlotTx(ctx context.Context, tx *sqlx.Tx, slotID, contractID uuid.UUID) error
	ReleaseSlot(ctx context.Context, slotID, contractID uuid.UUID) (bool, error)
	ReleaseSlotTx(ctx context.Context, tx *sqlx.Tx, slotID, contractID uuid.UUID) (bool, error)

	BeginTx(ctx context.Context) (*sqlx.Tx, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates schedule repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSchedule(ctx context.Context, s *Schedule) error {
	query := `
		INSERT INTO artist_schedules (id, artist_id, min_gig_duration, notes, preferred_event_types, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.ArtistID,
		s.MinGigDuration,
		s.Notes,
		s.PreferredEventTypes,
		s.IsActive,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrScheduleExists
		}
		return fmt.Errorf("schedule repository create: %w", err)
	}
	return nil
}

func (r *repository) GetByArtistID(ctx context.Context, artistID uuid.UUID) (*Schedule, error) {
	query := `SELECT * FROM artist_schedules WHERE artist_id = $1`

	var s Schedule
	err := r.db.GetContext(ctx, &s, query, artistID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) UpdateSettings(ctx context.Context, s *Schedule) error {
	query := `
		UPDATE artist_schedules
		SET min_gig_duration = $2, notes = $3, preferred_event_types = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.MinGigDuration,
		s.Notes,
		s.PreferredEventTypes,
		s.IsActive,
	)
	return err
}

func (r *repository) AddSlot(ctx context.Context, slot *Slot) error {
	query := `
		INSERT INTO schedule_slots (id, schedule_id, day_of_week, start_time, end_time, crosses_midnight, is_booked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		slot.ID,
		slot.ScheduleID,
		slot.DayOfWeek,
		slot.StartTime,
		slot.EndTime,
		slot.CrossesMidnight,
		slot.IsBooked,
		slot.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateSlot
		}
		return fmt.Errorf("schedule repository add slot: %w", err)
	}
	return nil
}

func (r *repository) GetSlotByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	query := `SELECT * FROM schedule_slots WHERE id = $1`

	var slot Slot
	err := r.db.GetContext(ctx, &slot, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &slot, nil
}

func (r *repository) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM schedule_slots WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *repository) ListSlots(ctx context.Context, scheduleID uuid.UUID, filter SlotFilter) ([]*Slot, error) {
	query := `SELECT * FROM schedule_slots WHERE schedule_id = $1`
	args := []interface{}{scheduleID}

	if filter.DayOfWeek != nil {
		query += fmt.Sprintf(" AND day_of_week = $%d", len(args)+1)
		args = append(args, *filter.DayOfWeek)
	}
	if filter.AvailableOnly {
		query += " AND NOT is_booked"
	}
	query += " ORDER BY day_of_week ASC, start_time ASC"

	var slots []*Slot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, err
	}
	return applyDurationFilter(slots, filter.MinDuration), nil
}

func (r *repository) ListSlotsByArtist(ctx context.Context, artistID uuid.UUID, filter SlotFilter) ([]*Slot, error) {
	query := `
		SELECT ss.*
		FROM schedule_slots ss
		JOIN artist_schedules s ON ss.schedule_id = s.id
		WHERE s.artist_id = $1
	`
	args := []interface{}{artistID}

	if filter.DayOfWeek != nil {
		query += fmt.Sprintf(" AND ss.day_of_week = $%d", len(args)+1)
		args = append(args, *filter.DayOfWeek)
	}
	if filter.AvailableOnly {
		query += " AND NOT ss.is_booked"
	}
	query += " ORDER BY ss.day_of_week ASC, ss.start_time ASC"

	var slots []*Slot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, err
	}
	return applyDurationFilter(slots, filter.MinDuration), nil
}

// applyDurationFilter drops slots shorter than min minutes. Done in Go because
// crossing windows need the wraparound formula, not a plain end-start.
func applyDurationFilter(slots []*Slot, min int) []*Slot {
	if min <= 0 {
		return slots
	}
	filtered := slots[:0]
	for _, s := range slots {
		if s.Window().Duration() >= min {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func (r *repository) CountSlotsByDay(ctx context.Context, artistID uuid.UUID) (map[int]int, error) {
	query := `
		SELECT ss.day_of_week AS day, COUNT(*) AS n
		FROM schedule_slots ss
		JOIN artist_schedules s ON ss.schedule_id = s.id
		WHERE s.artist_id = $1
		GROUP BY ss.day_of_week
	`
	rows := []struct {
		Day int `db:"day"`
		N   int `db:"n"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, artistID); err != nil {
		return nil, err
	}

	counts := make(map[int]int, len(rows))
	for _, row := range rows {
		counts[row.Day] = row.N
	}
	return counts, nil
}

func (r *repository) BindSlot(ctx context.Context, slotID, contractID uuid.UUID) error {
	return r.bindSlot(ctx, r.db, slotID, contractID)
}

func (r *repository) BindSlotTx(ctx context.Context, tx *sqlx.Tx, slotID, contractID uuid.UUID) error {
	return r.bindSlot(ctx, tx, slotID, contractID)
}

// bindSlot is the ledger's atomic check-and-set: the booked flag flips only if
// the slot is free or already held by this same contract (idempotent re-bind).
// A concurrent loser sees zero rows affected and gets ErrSlotBindConflict.
func (r *repository) bindSlot(ctx context.Context, execer sqlx.ExtContext, slotID, contractID uuid.UUID) error {
	query := `
		UPDATE schedule_slots
		SET is_booked = true, booked_by = $2
		WHERE id = $1 AND (NOT is_booked OR booked_by = $2)
	`
	result, err := execer.ExecContext(ctx, query, slotID, contractID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		if err := sqlx.GetContext(ctx, execer, &exists, `SELECT EXISTS(SELECT 1 FROM schedule_slots WHERE id = $1)`, slotID); err != nil {
			return err
		}
		if !exists {
			return ErrSlotNotFound
		}
		return ErrSlotBindConflict
	}
	return nil
}

func (r *repository) ReleaseSlot(ctx context.Context, slotID, contractID uuid.UUID) (bool, error) {
	return r.releaseSlot(ctx, r.db, slotID, contractID)
}

func (r *repository) ReleaseSlotTx(ctx context.Context, tx *sqlx.Tx, slotID, contractID uuid.UUID) (bool, error) {
	return r.releaseSlot(ctx, tx, slotID, contractID)
}

// releaseSlot clears the booked flag only for the contract holding it. A slot
// booked by a different contract, or already free, is left untouched and the
// call reports no release.
func (r *repository) releaseSlot(ctx context.Context, execer sqlx.ExtContext, slotID, contractID uuid.UUID) (bool, error) {
	query := `
		UPDATE schedule_slots
		SET is_booked = false, booked_by = NULL
		WHERE id = $1 AND booked_by = $2
	`
	result, err := execer.ExecContext(ctx, query, slotID, contractID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *repository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}
