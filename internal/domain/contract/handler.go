package contract

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stagelink/stagelink-api/internal/domain/user"
	"github.com/stagelink/stagelink-api/internal/middleware"
	"github.com/stagelink/stagelink-api/internal/pkg/response"
	"github.com/stagelink/stagelink-api/internal/pkg/validator"
)

// Handler handles contract HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates contract handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /contracts
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	actorID := middleware.GetUserID(r.Context())
	actorRole := user.Role(middleware.GetRole(r.Context()))

	c, err := h.service.Create(r.Context(), actorID, actorRole, &req)
	if err != nil {
		switch err {
		case ErrCounterpartyNotFound:
			response.NotFound(w, "Counterparty not found")
		case ErrSameRoleParties:
			response.InvalidArgument(w, "A contract requires one artist and one venue")
		case ErrEventDateInPast:
			response.InvalidArgument(w, "Event date must not be in the past")
		case ErrInvalidPrice:
			response.InvalidArgument(w, "Final price must be positive")
		case ErrSlotNotFound:
			response.NotFound(w, "Slot not found")
		case ErrSlotNotOwnedByArtist:
			response.InvalidArgument(w, "Slot does not belong to the contract artist")
		case ErrSlotConflict:
			response.Conflict(w, "Slot is already booked")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, FromEntity(c))
}

// Get handles GET /contracts/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid contract ID")
		return
	}

	actorID := middleware.GetUserID(r.Context())
	c, err := h.service.Get(r.Context(), actorID, id)
	if err != nil {
		switch err {
		case ErrContractNotFound:
			response.NotFound(w, "Contract not found")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, FromEntity(c))
}

// List handles GET /contracts
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := ListFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if status := r.URL.Query().Get("status"); status != "" {
		switch Status(status) {
		case StatusPending, StatusAccepted, StatusRejected, StatusCancelled, StatusCompleted:
			filter.Status = Status(status)
		default:
			response.InvalidArgument(w, "Unknown contract status")
			return
		}
	}

	actorID := middleware.GetUserID(r.Context())
	contracts, total, err := h.service.List(r.Context(), actorID, filter)
	if err != nil {
		response.InternalError(w)
		return
	}

	pages := (total + limit - 1) / limit
	response.WithMeta(w, FromEntities(contracts), response.Meta{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	})
}

// UpdateStatus handles PATCH /contracts/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid contract ID")
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	actorID := middleware.GetUserID(r.Context())
	c, err := h.service.UpdateStatus(r.Context(), actorID, id, req.Status)
	if err != nil {
		switch err {
		case ErrContractNotFound:
			response.NotFound(w, "Contract not found")
		case ErrInvalidStatusTransition:
			response.InvalidStateTransition(w, "Transition is not allowed from the current status")
		case ErrActorNotAllowed:
			response.Forbidden(w, "You may not perform this transition")
		case ErrSlotConflict:
			response.Conflict(w, "Slot is already booked by another contract")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, FromEntity(c))
}

// Delete handles DELETE /contracts/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid contract ID")
		return
	}

	actorID := middleware.GetUserID(r.Context())
	if err := h.service.Delete(r.Context(), actorID, id); err != nil {
		switch err {
		case ErrContractNotFound:
			response.NotFound(w, "Contract not found")
		case ErrNotDeletable:
			response.Conflict(w, "Only pending or rejected contracts can be deleted")
		default:
			response.InternalError(w)
		}
		return
	}

	response.NoContent(w)
}
