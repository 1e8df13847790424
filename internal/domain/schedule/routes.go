package schedule

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// OwnerRoutes returns routes for the artist managing their own schedule.
func (h *Handler) OwnerRoutes(authMiddleware, requireArtist func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)
	r.Use(requireArtist)

	r.Post("/", h.CreateSchedule)
	r.Get("/", h.GetSchedule)
	r.Patch("/", h.UpdateSettings)

	r.Post("/slots", h.AddSlot)
	r.Get("/slots", h.ListSlots)
	r.Delete("/slots/{id}", h.RemoveSlot)

	return r
}

// BrowseRoutes returns routes for venues evaluating an artist's availability.
func (h *Handler) BrowseRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Get("/{id}/slots", h.FreeSlots)
	r.Get("/{id}/slots/summary", h.Summary)

	return r
}
