package schedule

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	// MinSlotDuration is the shortest bookable window in minutes.
	MinSlotDuration = 15
	// MinGigDuration is the floor for the schedule-level minimum gig length.
	MinGigDuration = 30

	minutesPerDay = 24 * 60
)

// Day-of-week convention: Monday=0 .. Sunday=6.

// TimeWindow is one recurring weekly availability window. Times are wall-clock
// HH:MM with no date component. A window with CrossesMidnight starts on
// DayOfWeek and ends after 00:00 the following day.
type TimeWindow struct {
	DayOfWeek       int    `json:"day_of_week"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	CrossesMidnight bool   `json:"crosses_midnight"`
}

// FieldError is a validation failure naming the offending field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ParseClock converts an HH:MM string to minutes since midnight.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
		}
	}
	hh := int(s[0]-'0')*10 + int(s[1]-'0')
	mm := int(s[3]-'0')*10 + int(s[4]-'0')
	if hh > 23 || mm > 59 {
		return 0, fmt.Errorf("invalid time %q, out of range", s)
	}
	return hh*60 + mm, nil
}

// Validate checks the window against the availability rules. Non-crossing
// windows must run at least MinSlotDuration minutes. Crossing windows must
// wrap (raw end clock before start clock) and also satisfy the duration floor
// computed across midnight.
func (w TimeWindow) Validate() error {
	if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
		return &FieldError{Field: "day_of_week", Message: "must be between 0 (Monday) and 6 (Sunday)"}
	}

	start, err := ParseClock(w.StartTime)
	if err != nil {
		return &FieldError{Field: "start_time", Message: "must be HH:MM (24-hour clock)"}
	}
	end, err := ParseClock(w.EndTime)
	if err != nil {
		return &FieldError{Field: "end_time", Message: "must be HH:MM (24-hour clock)"}
	}

	if w.CrossesMidnight {
		if end >= start {
			return &FieldError{Field: "end_time", Message: "a crosses-midnight window must end before it starts on the clock"}
		}
		if (minutesPerDay-start)+end < MinSlotDuration {
			return &FieldError{Field: "end_time", Message: "window must last at least 15 minutes"}
		}
		return nil
	}

	if end-start < MinSlotDuration {
		return &FieldError{Field: "end_time", Message: "end time must be after start (min 15 min) or mark crosses-midnight"}
	}
	return nil
}

// Duration returns the window length in minutes, wraparound-aware.
func (w TimeWindow) Duration() int {
	start, err := ParseClock(w.StartTime)
	if err != nil {
		return 0
	}
	end, err := ParseClock(w.EndTime)
	if err != nil {
		return 0
	}
	if w.CrossesMidnight {
		return (minutesPerDay - start) + end
	}
	return end - start
}

// Equal reports whether two windows are the same (dayOfWeek, start, end, crossesMidnight).
func (w TimeWindow) Equal(o TimeWindow) bool {
	return w.DayOfWeek == o.DayOfWeek &&
		w.StartTime == o.StartTime &&
		w.EndTime == o.EndTime &&
		w.CrossesMidnight == o.CrossesMidnight
}

// Slot is one independently bookable window inside an artist's schedule
// (matches schedule_slots table). Immutable once created except for the
// booked flag, which the booking ledger flips in lock-step with contracts.
type Slot struct {
	ID              uuid.UUID     `db:"id"`
	ScheduleID      uuid.UUID     `db:"schedule_id"`
	DayOfWeek       int           `db:"day_of_week"`
	StartTime       string        `db:"start_time"`
	EndTime         string        `db:"end_time"`
	CrossesMidnight bool          `db:"crosses_midnight"`
	IsBooked        bool          `db:"is_booked"`
	BookedBy        uuid.NullUUID `db:"booked_by"` // contract holding the booking
	CreatedAt       time.Time     `db:"created_at"`
}

// Window returns the slot's time window.
func (s *Slot) Window() TimeWindow {
	return TimeWindow{
		DayOfWeek:       s.DayOfWeek,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		CrossesMidnight: s.CrossesMidnight,
	}
}

// Schedule is the artist-owned availability aggregate (matches
// artist_schedules table). One per artist.
type Schedule struct {
	ID                  uuid.UUID      `db:"id"`
	ArtistID            uuid.UUID      `db:"artist_id"`
	MinGigDuration      int            `db:"min_gig_duration"` // minutes
	Notes               sql.NullString `db:"notes"`
	PreferredEventTypes pq.StringArray `db:"preferred_event_types"`
	IsActive            bool           `db:"is_active"`
	CreatedAt           time.Time      `db:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at"`

	// Loaded separately, not a column
	Slots []*Slot `db:"-"`
}
