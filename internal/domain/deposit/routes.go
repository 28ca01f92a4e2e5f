package deposit

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns merchant deposit routes. All endpoints require auth.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/balance", h.Balance)
	r.Get("/history", h.History)
	r.Get("/stats", h.Stats)

	r.Route("/{id}", func(r chi.Router) {
		r.Post("/recharge", h.Recharge)
		r.Post("/suspend", h.Suspend)
		r.Patch("/threshold", h.UpdateThreshold)
		r.Patch("/auto-recharge", h.ConfigureAutoRecharge)
	})

	return r
}
