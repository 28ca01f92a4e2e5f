package lead

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PublicRoutes returns routes open to lead sources.
func (h *Handler) PublicRoutes() chi.Router {
	r := chi.NewRouter()

	// Public endpoint - no auth required
	r.Post("/", h.Submit)

	return r
}

// Routes returns merchant lead routes. All endpoints require auth.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Get("/", h.List)
	r.Get("/stats", h.Stats)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetByID)
		r.Post("/validate", h.Validate)
		r.Post("/reject", h.Reject)
		r.Post("/convert", h.Convert)
	})

	return r
}
