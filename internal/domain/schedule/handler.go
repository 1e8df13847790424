package schedule

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stagelink/stagelink-api/internal/middleware"
	"github.com/stagelink/stagelink-api/internal/pkg/response"
	"github.com/stagelink/stagelink-api/internal/pkg/validator"
)

// Handler handles schedule HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates schedule handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateSchedule handles POST /artists/me/schedule
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	artistID := middleware.GetUserID(r.Context())
	sched, err := h.service.CreateSchedule(r.Context(), artistID, &req)
	if err != nil {
		switch err {
		case ErrScheduleExists:
			response.Conflict(w, "A schedule already exists for this artist")
		case ErrMinGigDurationInvalid:
			response.InvalidArgument(w, "Minimum gig duration must be at least 30 minutes")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, ScheduleResponseFromEntity(sched))
}

// GetSchedule handles GET /artists/me/schedule
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	artistID := middleware.GetUserID(r.Context())

	sched, err := h.service.GetSchedule(r.Context(), artistID)
	if err != nil {
		switch err {
		case ErrScheduleNotFound:
			response.NotFound(w, "Schedule not found")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, ScheduleResponseFromEntity(sched))
}

// UpdateSettings handles PATCH /artists/me/schedule
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	artistID := middleware.GetUserID(r.Context())
	sched, err := h.service.UpdateSettings(r.Context(), artistID, &req)
	if err != nil {
		switch err {
		case ErrScheduleNotFound:
			response.NotFound(w, "Schedule not found")
		case ErrMinGigDurationInvalid:
			response.InvalidArgument(w, "Minimum gig duration must be at least 30 minutes")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, ScheduleResponseFromEntity(sched))
}

// AddSlot handles POST /artists/me/schedule/slots
func (h *Handler) AddSlot(w http.ResponseWriter, r *http.Request) {
	var req AddSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	artistID := middleware.GetUserID(r.Context())
	slot, err := h.service.AddSlot(r.Context(), artistID, req.Window())
	if err != nil {
		var fieldErr *FieldError
		switch {
		case errors.As(err, &fieldErr):
			response.ValidationError(w, map[string]string{fieldErr.Field: fieldErr.Message})
		case err == ErrScheduleNotFound:
			response.NotFound(w, "Schedule not found")
		case err == ErrDuplicateSlot:
			response.Conflict(w, "An identical slot already exists")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, SlotResponseFromEntity(slot))
}

// RemoveSlot handles DELETE /artists/me/schedule/slots/{id}
func (h *Handler) RemoveSlot(w http.ResponseWriter, r *http.Request) {
	slotID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid slot ID")
		return
	}

	artistID := middleware.GetUserID(r.Context())
	if err := h.service.RemoveSlot(r.Context(), artistID, slotID); err != nil {
		switch err {
		case ErrScheduleNotFound, ErrSlotNotFound:
			response.NotFound(w, "Slot not found")
		case ErrSlotBooked:
			response.Conflict(w, "Slot is booked; the contract must reach a terminal state first")
		default:
			response.InternalError(w)
		}
		return
	}

	response.NoContent(w)
}

// ListSlots handles GET /artists/me/schedule/slots
func (h *Handler) ListSlots(w http.ResponseWriter, r *http.Request) {
	artistID := middleware.GetUserID(r.Context())

	filter := SlotFilter{}
	if d := r.URL.Query().Get("day_of_week"); d != "" {
		day, err := strconv.Atoi(d)
		if err != nil || day < 0 || day > 6 {
			response.BadRequest(w, "day_of_week must be between 0 and 6")
			return
		}
		filter.DayOfWeek = &day
	}
	if r.URL.Query().Get("available_only") == "true" {
		filter.AvailableOnly = true
	}

	slots, err := h.service.ListSlots(r.Context(), artistID, filter)
	if err != nil {
		switch err {
		case ErrScheduleNotFound:
			response.NotFound(w, "Schedule not found")
		default:
			response.InternalError(w)
		}
		return
	}

	items := make([]*SlotResponse, len(slots))
	for i, s := range slots {
		items[i] = SlotResponseFromEntity(s)
	}
	response.OK(w, items)
}

// FreeSlots handles GET /artists/{id}/slots (venue-side browsing)
func (h *Handler) FreeSlots(w http.ResponseWriter, r *http.Request) {
	artistID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid artist ID")
		return
	}

	var dayOfWeek *int
	if d := r.URL.Query().Get("day_of_week"); d != "" {
		day, err := strconv.Atoi(d)
		if err != nil || day < 0 || day > 6 {
			response.BadRequest(w, "day_of_week must be between 0 and 6")
			return
		}
		dayOfWeek = &day
	}

	minDuration := 0
	if m := r.URL.Query().Get("min_duration"); m != "" {
		minDuration, err = strconv.Atoi(m)
		if err != nil || minDuration < 0 {
			response.BadRequest(w, "min_duration must be a non-negative number of minutes")
			return
		}
	}

	slots, err := h.service.FreeSlots(r.Context(), artistID, dayOfWeek, minDuration)
	if err != nil {
		switch err {
		case ErrScheduleNotFound:
			response.NotFound(w, "Schedule not found")
		default:
			response.InternalError(w)
		}
		return
	}

	items := make([]*SlotResponse, len(slots))
	for i, s := range slots {
		items[i] = SlotResponseFromEntity(s)
	}
	response.OK(w, items)
}

// Summary handles GET /artists/{id}/slots/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	artistID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid artist ID")
		return
	}

	counts, err := h.service.SummaryByDay(r.Context(), artistID)
	if err != nil {
		switch err {
		case ErrScheduleNotFound:
			response.NotFound(w, "Schedule not found")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, DaySummaryResponse{Days: counts})
}
