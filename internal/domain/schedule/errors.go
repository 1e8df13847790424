package schedule

import "errors"

var (
	ErrScheduleNotFound      = errors.New("schedule not found")
	ErrScheduleExists        = errors.New("schedule already exists for this artist")
	ErrMinGigDurationInvalid = errors.New("minimum gig duration must be at least 30 minutes")
	ErrSlotNotFound          = errors.New("slot not found")
	ErrDuplicateSlot         = errors.New("an identical slot already exists")
	ErrSlotBooked            = errors.New("slot is booked and must be released first")
	ErrSlotBindConflict      = errors.New("slot is already booked by another contract")
)
