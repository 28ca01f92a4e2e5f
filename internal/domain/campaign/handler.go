package campaign

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leadflow/leadflow-api/internal/middleware"
	"github.com/leadflow/leadflow-api/internal/pkg/response"
	"github.com/leadflow/leadflow-api/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /campaigns
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req CreateCampaignRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	price, err := decimal.NewFromString(req.LeadPrice)
	if err != nil {
		response.BadRequest(w, "invalid lead_price")
		return
	}

	c, err := h.svc.Create(r.Context(), CreateParams{
		MerchantID:   merchantID,
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		LeadPrice:    price,
		DailyLeadCap: req.DailyLeadCap,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, ToResponse(c))
}

// List handles GET /campaigns
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var status *Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := Status(raw)
		status = &s
	}

	campaigns, err := h.svc.List(r.Context(), merchantID, status)
	if err != nil {
		response.InternalError(w)
		return
	}

	out := make([]*CampaignResponse, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, ToResponse(c))
	}
	response.OK(w, out)
}

// GetByID handles GET /campaigns/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	campaignID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid campaign id")
		return
	}

	c, err := h.svc.GetByID(r.Context(), campaignID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if c.MerchantID != merchantID {
		response.NotFound(w, "campaign not found")
		return
	}
	response.OK(w, ToResponse(c))
}

// Pause handles POST /campaigns/{id}/pause
func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx *http.Request, id uuid.UUID) error {
		return h.svc.Pause(ctx.Context(), id, "paused by merchant")
	})
}

// Resume handles POST /campaigns/{id}/resume
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx *http.Request, id uuid.UUID) error {
		return h.svc.Resume(ctx.Context(), id)
	})
}

// Archive handles POST /campaigns/{id}/archive
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	campaignID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid campaign id")
		return
	}

	if err := h.svc.Archive(r.Context(), campaignID, merchantID); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(*http.Request, uuid.UUID) error) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	campaignID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid campaign id")
		return
	}

	// Ownership check before the state change.
	c, err := h.svc.GetByID(r.Context(), campaignID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if c.MerchantID != merchantID {
		response.NotFound(w, "campaign not found")
		return
	}

	if err := op(r, campaignID); err != nil {
		h.writeError(w, err)
		return
	}

	updated, err := h.svc.GetByID(r.Context(), campaignID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, ToResponse(updated))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCampaignNotFound):
		response.NotFound(w, "campaign not found")
	case errors.Is(err, ErrInvalidLeadPrice):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrNotActive):
		response.Conflict(w, "campaign is not active")
	default:
		response.InternalError(w)
	}
}
