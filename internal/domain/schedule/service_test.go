package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// testScheduleRepo is an in-memory Repository for service tests. Bind and
// release use the same compare-and-set rule as the SQL implementation.
type testScheduleRepo struct {
	mu        sync.Mutex
	schedules map[uuid.UUID]*Schedule // keyed by artist ID
	slots     map[uuid.UUID]*Slot
}

func newTestScheduleRepo() *testScheduleRepo {
	return &testScheduleRepo{
		schedules: make(map[uuid.UUID]*Schedule),
		slots:     make(map[uuid.UUID]*Slot),
	}
}

func (r *testScheduleRepo) CreateSchedule(ctx context.Context, s *Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schedules[s.ArtistID] = s
	return nil
}

func (r *testScheduleRepo) GetByArtistID(ctx context.Context, artistID uuid.UUID) (*Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.schedules[artistID], nil
}

func (r *testScheduleRepo) UpdateSettings(ctx context.Context, s *Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schedules[s.ArtistID] = s
	return nil
}

func (r *testScheduleRepo) AddSlot(ctx context.Context, slot *Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[slot.ID] = slot
	return nil
}

func (r *testScheduleRepo) GetSlotByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slots[id], nil
}

func (r *testScheduleRepo) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, id)
	return nil
}

func (r *testScheduleRepo) ListSlots(ctx context.Context, scheduleID uuid.UUID, filter SlotFilter) ([]*Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Slot
	for _, s := range r.slots {
		if s.ScheduleID != scheduleID {
			continue
		}
		if filter.AvailableOnly && s.IsBooked {
			continue
		}
		if filter.DayOfWeek != nil && s.DayOfWeek != *filter.DayOfWeek {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *testScheduleRepo) ListSlotsByArtist(ctx context.Context, artistID uuid.UUID, filter SlotFilter) ([]*Slot, error) {
	r.mu.Lock()
	sched := r.schedules[artistID]
	r.mu.Unlock()
	if sched == nil {
		return nil, nil
	}
	return r.ListSlots(ctx, sched.ID, filter)
}

func (r *testScheduleRepo) CountSlotsByDay(ctx context.Context, artistID uuid.UUID) (map[int]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sched := r.schedules[artistID]
	counts := make(map[int]int)
	if sched == nil {
		return counts, nil
	}
	for _, s := range r.slots {
		if s.ScheduleID == sched.ID {
			counts[s.DayOfWeek]++
		}
	}
	return counts, nil
}

func (r *testScheduleRepo) bind(slotID, contractID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[slotID]
	if !ok {
		return ErrSlotNotFound
	}
	if slot.IsBooked && slot.BookedBy.UUID != contractID {
		return ErrSlotBindConflict
	}
	slot.IsBooked = true
	slot.BookedBy = uuid.NullUUID{UUID: contractID, Valid: true}
	return nil
}

func (r *testScheduleRepo) release(slotID, contractID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[slotID]
	if !ok || !slot.IsBooked || slot.BookedBy.UUID != contractID {
		return false, nil
	}
	slot.IsBooked = false
	slot.BookedBy = uuid.NullUUID{}
	return true, nil
}

func (r *testScheduleRepo) BindSlot(ctx context.Context, slotID, contractID uuid.UUID) error {
	return r.bind(slotID, contractID)
}

func (r *testScheduleRepo) BindSlotTx(ctx context.Context, tx *sqlx.Tx, slotID, contractID uuid.UUID) error {
	return r.bind(slotID, contractID)
}

func (r *testScheduleRepo) ReleaseSlot(ctx context.Context, slotID, contractID uuid.UUID) (bool, error) {
	return r.release(slotID, contractID)
}

func (r *testScheduleRepo) ReleaseSlotTx(ctx context.Context, tx *sqlx.Tx, slotID, contractID uuid.UUID) (bool, error) {
	return r.release(slotID, contractID)
}

func (r *testScheduleRepo) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return nil, errors.New("not supported in tests")
}

func newTestService() (*Service, *testScheduleRepo) {
	repo := newTestScheduleRepo()
	return NewService(repo, NewCache(nil)), repo
}

func TestCreateSchedule(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	artistID := uuid.New()

	if _, err := svc.CreateSchedule(ctx, artistID, &CreateScheduleRequest{MinGigDuration: 20}); err != ErrMinGigDurationInvalid {
		t.Fatalf("expected ErrMinGigDurationInvalid, got %v", err)
	}

	sched, err := svc.CreateSchedule(ctx, artistID, &CreateScheduleRequest{MinGigDuration: 60, Notes: "weekends preferred"})
	if err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}
	if sched.ArtistID != artistID || sched.MinGigDuration != 60 || !sched.IsActive {
		t.Errorf("unexpected schedule: %+v", sched)
	}
	if !sched.Notes.Valid || sched.Notes.String != "weekends preferred" {
		t.Errorf("notes not set: %+v", sched.Notes)
	}

	if _, err := svc.CreateSchedule(ctx, artistID, &CreateScheduleRequest{MinGigDuration: 45}); err != ErrScheduleExists {
		t.Fatalf("expected ErrScheduleExists, got %v", err)
	}
}

func TestAddSlot(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	artistID := uuid.New()

	window := TimeWindow{DayOfWeek: 4, StartTime: "19:00", EndTime: "23:00"}

	if _, err := svc.AddSlot(ctx, artistID, window); err != ErrScheduleNotFound {
		t.Fatalf("expected ErrScheduleNotFound, got %v", err)
	}

	if _, err := svc.CreateSchedule(ctx, artistID, &CreateScheduleRequest{MinGigDuration: 60}); err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}

	slot, err := svc.AddSlot(ctx, artistID, window)
	if err != nil {
		t.Fatalf("AddSlot failed: %v", err)
	}
	if slot.IsBooked {
		t.Error("new slot must start unbooked")
	}

	if _, err := svc.AddSlot(ctx, artistID, window); err != ErrDuplicateSlot {
		t.Fatalf("expected ErrDuplicateSlot, got %v", err)
	}

	// Same clock times on another day is a different slot
	other := window
	other.DayOfWeek = 5
	if _, err := svc.AddSlot(ctx, artistID, other); err != nil {
		t.Fatalf("AddSlot on another day failed: %v", err)
	}

	var fieldErr *FieldError
	_, err = svc.AddSlot(ctx, artistID, TimeWindow{DayOfWeek: 2, StartTime: "20:00", EndTime: "20:10"})
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected FieldError for a too-short window, got %v", err)
	}
}

func TestRemoveSlot(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	artistID := uuid.New()

	if _, err := svc.CreateSchedule(ctx, artistID, &CreateScheduleRequest{MinGigDuration: 30}); err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}
	slot, err := svc.AddSlot(ctx, artistID, TimeWindow{DayOfWeek: 1, StartTime: "10:00", EndTime: "12:00"})
	if err != nil {
		t.Fatalf("AddSlot failed: %v", err)
	}

	if err := svc.RemoveSlot(ctx, artistID, uuid.New()); err != ErrSlotNotFound {
		t.Fatalf("expected ErrSlotNotFound for unknown slot, got %v", err)
	}

	// Someone else's slot looks like a missing one
	if err := svc.RemoveSlot(ctx, uuid.New(), slot.ID); err != ErrScheduleNotFound {
		t.Fatalf("expected ErrScheduleNotFound for stranger, got %v", err)
	}

	contractID := uuid.New()
	if err := repo.BindSlot(ctx, slot.ID, contractID); err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	if err := svc.RemoveSlot(ctx, artistID, slot.ID); err != ErrSlotBooked {
		t.Fatalf("expected ErrSlotBooked, got %v", err)
	}

	// A stranger's release attempt is a no-op
	if released, err := repo.ReleaseSlot(ctx, slot.ID, uuid.New()); err != nil || released {
		t.Fatalf("foreign release: released=%v err=%v, want no-op", released, err)
	}
	if released, err := repo.ReleaseSlot(ctx, slot.ID, contractID); err != nil || !released {
		t.Fatalf("owner release: released=%v err=%v", released, err)
	}
	if err := svc.RemoveSlot(ctx, artistID, slot.ID); err != nil {
		t.Fatalf("RemoveSlot failed: %v", err)
	}

	slots, err := svc.ListSlots(ctx, artistID, SlotFilter{})
	if err != nil {
		t.Fatalf("ListSlots failed: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected empty schedule, got %d slots", len(slots))
	}
}

func TestUpdateSettingsPartial(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	artistID := uuid.New()

	if _, err := svc.CreateSchedule(ctx, artistID, &CreateScheduleRequest{MinGigDuration: 60, Notes: "house parties ok"}); err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}

	minGig := 90
	updated, err := svc.UpdateSettings(ctx, artistID, &UpdateSettingsRequest{MinGigDuration: &minGig})
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if updated.MinGigDuration != 90 {
		t.Errorf("min gig duration = %d, want 90", updated.MinGigDuration)
	}
	if !updated.Notes.Valid || updated.Notes.String != "house parties ok" {
		t.Errorf("notes should be untouched, got %+v", updated.Notes)
	}

	tooShort := 10
	if _, err := svc.UpdateSettings(ctx, artistID, &UpdateSettingsRequest{MinGigDuration: &tooShort}); err != ErrMinGigDurationInvalid {
		t.Fatalf("expected ErrMinGigDurationInvalid, got %v", err)
	}

	inactive := false
	updated, err = svc.UpdateSettings(ctx, artistID, &UpdateSettingsRequest{IsActive: &inactive})
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if updated.IsActive {
		t.Error("schedule should be inactive")
	}
}

func TestFreeSlots(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	artistID := uuid.New()

	if _, err := svc.FreeSlots(ctx, artistID, nil, 0); err != ErrScheduleNotFound {
		t.Fatalf("expected ErrScheduleNotFound, got %v", err)
	}

	if _, err := svc.CreateSchedule(ctx, artistID, &CreateScheduleRequest{MinGigDuration: 30}); err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}

	friday, err := svc.AddSlot(ctx, artistID, TimeWindow{DayOfWeek: 4, StartTime: "20:00", EndTime: "23:00"})
	if err != nil {
		t.Fatalf("AddSlot failed: %v", err)
	}
	saturday, err := svc.AddSlot(ctx, artistID, TimeWindow{DayOfWeek: 5, StartTime: "21:00", EndTime: "23:30"})
	if err != nil {
		t.Fatalf("AddSlot failed: %v", err)
	}

	free, err := svc.FreeSlots(ctx, artistID, nil, 0)
	if err != nil {
		t.Fatalf("FreeSlots failed: %v", err)
	}
	if len(free) != 2 {
		t.Fatalf("expected 2 free slots, got %d", len(free))
	}

	if err := repo.BindSlot(ctx, friday.ID, uuid.New()); err != nil {
		t.Fatalf("bind failed: %v", err)
	}

	free, err = svc.FreeSlots(ctx, artistID, nil, 0)
	if err != nil {
		t.Fatalf("FreeSlots failed: %v", err)
	}
	if len(free) != 1 || free[0].ID != saturday.ID {
		t.Fatalf("expected only the saturday slot to be free, got %d slots", len(free))
	}
}
