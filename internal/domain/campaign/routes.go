package campaign

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns merchant campaign routes. All endpoints require auth.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Post("/", h.Create)
	r.Get("/", h.List)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetByID)
		r.Post("/pause", h.Pause)
		r.Post("/resume", h.Resume)
		r.Post("/archive", h.Archive)
	})

	return r
}
