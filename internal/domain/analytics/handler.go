package analytics

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/leadflow/leadflow-api/internal/middleware"
	"github.com/leadflow/leadflow-api/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Forecast handles GET /analytics/forecast
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var campaignID *uuid.UUID
	if raw := r.URL.Query().Get("campaign_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "invalid campaign_id")
			return
		}
		campaignID = &parsed
	}

	forecast, err := h.svc.Forecast(r.Context(), merchantID, campaignID)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, forecast)
}

// KPIs handles GET /analytics/kpis
func (h *Handler) KPIs(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	kpis, err := h.svc.KPIs(r.Context(), merchantID)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, kpis)
}

// Overview handles GET /analytics/overview
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.svc.Overview(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, overview)
}

// Routes returns analytics routes. The overview is operator-only.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Get("/forecast", h.Forecast)
	r.Get("/kpis", h.KPIs)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin())
		r.Get("/overview", h.Overview)
	})

	return r
}
