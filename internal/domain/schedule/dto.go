package schedule

import (
	"time"

	"github.com/google/uuid"
)

// CreateScheduleRequest for POST /artists/me/schedule
type CreateScheduleRequest struct {
	MinGigDuration      int      `json:"min_gig_duration" validate:"required,gte=30"`
	Notes               string   `json:"notes" validate:"omitempty,max=2000"`
	PreferredEventTypes []string `json:"preferred_event_types" validate:"omitempty,dive,min=1,max=60"`
}

// UpdateSettingsRequest for PATCH /artists/me/schedule. Pointer fields
// distinguish "not sent" from zero values.
type UpdateSettingsRequest struct {
	MinGigDuration      *int     `json:"min_gig_duration" validate:"omitempty,gte=30"`
	Notes               *string  `json:"notes" validate:"omitempty,max=2000"`
	PreferredEventTypes []string `json:"preferred_event_types" validate:"omitempty,dive,min=1,max=60"`
	IsActive            *bool    `json:"is_active"`
}

// AddSlotRequest for POST /artists/me/schedule/slots
type AddSlotRequest struct {
	DayOfWeek       int    `json:"day_of_week" validate:"gte=0,lte=6"`
	StartTime       string `json:"start_time" validate:"required,clock"`
	EndTime         string `json:"end_time" validate:"required,clock"`
	CrossesMidnight bool   `json:"crosses_midnight"`
}

// Window converts the request into a TimeWindow.
func (r *AddSlotRequest) Window() TimeWindow {
	return TimeWindow{
		DayOfWeek:       r.DayOfWeek,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		CrossesMidnight: r.CrossesMidnight,
	}
}

// SlotResponse represents a slot in API responses
type SlotResponse struct {
	ID              uuid.UUID `json:"id"`
	DayOfWeek       int       `json:"day_of_week"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	CrossesMidnight bool      `json:"crosses_midnight"`
	DurationMinutes int       `json:"duration_minutes"`
	IsBooked        bool      `json:"is_booked"`
	CreatedAt       string    `json:"created_at"`
}

// ScheduleResponse represents a schedule in API responses
type ScheduleResponse struct {
	ID                  uuid.UUID       `json:"id"`
	ArtistID            uuid.UUID       `json:"artist_id"`
	MinGigDuration      int             `json:"min_gig_duration"`
	Notes               string          `json:"notes,omitempty"`
	PreferredEventTypes []string        `json:"preferred_event_types,omitempty"`
	IsActive            bool            `json:"is_active"`
	Slots               []*SlotResponse `json:"slots,omitempty"`
	CreatedAt           string          `json:"created_at"`
	UpdatedAt           string          `json:"updated_at"`
}

// DaySummaryResponse maps day of week to slot count for the weekly overview.
type DaySummaryResponse struct {
	Days map[int]int `json:"days"`
}

// SlotResponseFromEntity converts a slot entity to a response DTO
func SlotResponseFromEntity(s *Slot) *SlotResponse {
	return &SlotResponse{
		ID:              s.ID,
		DayOfWeek:       s.DayOfWeek,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		CrossesMidnight: s.CrossesMidnight,
		DurationMinutes: s.Window().Duration(),
		IsBooked:        s.IsBooked,
		CreatedAt:       s.CreatedAt.Format(time.RFC3339),
	}
}

// ScheduleResponseFromEntity converts a schedule entity to a response DTO
func ScheduleResponseFromEntity(s *Schedule) *ScheduleResponse {
	resp := &ScheduleResponse{
		ID:                  s.ID,
		ArtistID:            s.ArtistID,
		MinGigDuration:      s.MinGigDuration,
		PreferredEventTypes: s.PreferredEventTypes,
		IsActive:            s.IsActive,
		CreatedAt:           s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           s.UpdatedAt.Format(time.RFC3339),
	}
	if s.Notes.Valid {
		resp.Notes = s.Notes.String
	}
	if len(s.Slots) > 0 {
		resp.Slots = make([]*SlotResponse, len(s.Slots))
		for i, slot := range s.Slots {
			resp.Slots[i] = SlotResponseFromEntity(slot)
		}
	}
	return resp
}
