package schedule

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Service handles availability schedule business logic
type Service struct {
	repo  Repository
	cache *Cache
}

// NewService creates schedule service
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// CreateSchedule creates the artist's schedule. Each artist owns exactly one;
// a second create fails.
func (s *Service) CreateSchedule(ctx context.Context, artistID uuid.UUID, req *CreateScheduleRequest) (*Schedule, error) {
	if req.MinGigDuration < MinGigDuration {
		return nil, ErrMinGigDurationInvalid
	}

	existing, err := s.repo.GetByArtistID(ctx, artistID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrScheduleExists
	}

	now := time.Now()
	sched := &Schedule{
		ID:             uuid.New(),
		ArtistID:       artistID,
		MinGigDuration: req.MinGigDuration,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.Notes != "" {
		sched.Notes = sql.NullString{String: req.Notes, Valid: true}
	}
	if len(req.PreferredEventTypes) > 0 {
		sched.PreferredEventTypes = pq.StringArray(req.PreferredEventTypes)
	}

	if err := s.repo.CreateSchedule(ctx, sched); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, artistID)
	return sched, nil
}

// GetSchedule returns the artist's schedule with slots loaded.
func (s *Service) GetSchedule(ctx context.Context, artistID uuid.UUID) (*Schedule, error) {
	if cached := s.cache.Get(ctx, artistID); cached != nil {
		return cached, nil
	}

	sched, err := s.repo.GetByArtistID(ctx, artistID)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, ErrScheduleNotFound
	}

	slots, err := s.repo.ListSlots(ctx, sched.ID, SlotFilter{})
	if err != nil {
		return nil, err
	}
	sched.Slots = slots

	s.cache.Set(ctx, artistID, sched)
	return sched, nil
}

// UpdateSettings partially updates schedule-level settings; fields left nil
// retain their prior values.
func (s *Service) UpdateSettings(ctx context.Context, artistID uuid.UUID, req *UpdateSettingsRequest) (*Schedule, error) {
	sched, err := s.repo.GetByArtistID(ctx, artistID)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, ErrScheduleNotFound
	}

	if req.MinGigDuration != nil {
		if *req.MinGigDuration < MinGigDuration {
			return nil, ErrMinGigDurationInvalid
		}
		sched.MinGigDuration = *req.MinGigDuration
	}
	if req.Notes != nil {
		sched.Notes = sql.NullString{String: *req.Notes, Valid: *req.Notes != ""}
	}
	if req.PreferredEventTypes != nil {
		sched.PreferredEventTypes = pq.StringArray(req.PreferredEventTypes)
	}
	if req.IsActive != nil {
		sched.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateSettings(ctx, sched); err != nil {
		return nil, err
	}
	sched.UpdatedAt = time.Now()

	s.cache.Invalidate(ctx, artistID)
	return sched, nil
}

// AddSlot validates the window and appends a new unbooked slot. Exact
// duplicates of an existing window are rejected.
func (s *Service) AddSlot(ctx context.Context, artistID uuid.UUID, window TimeWindow) (*Slot, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	sched, err := s.repo.GetByArtistID(ctx, artistID)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, ErrScheduleNotFound
	}

	existing, err := s.repo.ListSlots(ctx, sched.ID, SlotFilter{})
	if err != nil {
		return nil, err
	}
	for _, slot := range existing {
		if slot.Window().Equal(window) {
			return nil, ErrDuplicateSlot
		}
	}

	slot := &Slot{
		ID:              uuid.New(),
		ScheduleID:      sched.ID,
		DayOfWeek:       window.DayOfWeek,
		StartTime:       window.StartTime,
		EndTime:         window.EndTime,
		CrossesMidnight: window.CrossesMidnight,
		CreatedAt:       time.Now(),
	}

	if err := s.repo.AddSlot(ctx, slot); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, artistID)
	return slot, nil
}

// RemoveSlot deletes an unbooked slot from the caller's schedule. A booked
// slot must be released through the contract lifecycle first.
func (s *Service) RemoveSlot(ctx context.Context, artistID, slotID uuid.UUID) error {
	sched, err := s.repo.GetByArtistID(ctx, artistID)
	if err != nil {
		return err
	}
	if sched == nil {
		return ErrScheduleNotFound
	}

	slot, err := s.repo.GetSlotByID(ctx, slotID)
	if err != nil {
		return err
	}
	if slot == nil || slot.ScheduleID != sched.ID {
		return ErrSlotNotFound
	}
	if slot.IsBooked {
		return ErrSlotBooked
	}

	if err := s.repo.DeleteSlot(ctx, slotID); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, artistID)
	return nil
}

// ListSlots returns the caller's slots, optionally filtered by day or
// availability, ordered day asc then start asc.
func (s *Service) ListSlots(ctx context.Context, artistID uuid.UUID, filter SlotFilter) ([]*Slot, error) {
	sched, err := s.repo.GetByArtistID(ctx, artistID)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, ErrScheduleNotFound
	}
	return s.repo.ListSlots(ctx, sched.ID, filter)
}

// FreeSlots answers venue-side browsing: unbooked slots for an artist,
// optionally narrowed by day and minimum duration.
func (s *Service) FreeSlots(ctx context.Context, artistID uuid.UUID, dayOfWeek *int, minDuration int) ([]*Slot, error) {
	sched, err := s.repo.GetByArtistID(ctx, artistID)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, ErrScheduleNotFound
	}

	return s.repo.ListSlotsByArtist(ctx, artistID, SlotFilter{
		DayOfWeek:     dayOfWeek,
		AvailableOnly: true,
		MinDuration:   minDuration,
	})
}

// SummaryByDay returns the weekly overview: day of week to slot count.
func (s *Service) SummaryByDay(ctx context.Context, artistID uuid.UUID) (map[int]int, error) {
	sched, err := s.repo.GetByArtistID(ctx, artistID)
	if err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, ErrScheduleNotFound
	}
	return s.repo.CountSlotsByDay(ctx, artistID)
}
