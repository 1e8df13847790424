package contract

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns contract routes. Both sides of the marketplace use them;
// per-contract access control happens in the service.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Delete("/{id}", h.Delete)

	return r
}
