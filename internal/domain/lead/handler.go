package lead

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leadflow/leadflow-api/internal/domain/campaign"
	"github.com/leadflow/leadflow-api/internal/domain/deposit"
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

// Submit handles POST /leads. Public: lead sources post here directly.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitLeadRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	campaignID, err := uuid.Parse(req.CampaignID)
	if err != nil {
		response.BadRequest(w, "invalid campaign_id")
		return
	}

	params := SubmitParams{
		CampaignID:   campaignID,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
		Source:       req.Source,
		Notes:        req.Notes,
	}
	if req.EstimatedValue != "" {
		value, err := decimal.NewFromString(req.EstimatedValue)
		if err != nil {
			response.BadRequest(w, "invalid estimated_value")
			return
		}
		params.EstimatedValue = &value
	}

	l, err := h.svc.Submit(r.Context(), params)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, ToResponse(l))
}

// List handles GET /leads
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	filters := ListFilters{}
	if raw := r.URL.Query().Get("campaign_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "invalid campaign_id")
			return
		}
		filters.CampaignID = &parsed
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := Status(raw)
		filters.Status = &status
	}

	leads, err := h.svc.List(r.Context(), merchantID, filters)
	if err != nil {
		response.InternalError(w)
		return
	}

	out := make([]*LeadResponse, 0, len(leads))
	for _, l := range leads {
		out = append(out, ToResponse(l))
	}
	response.OK(w, out)
}

// GetByID handles GET /leads/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	leadID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid lead id")
		return
	}

	l, err := h.svc.GetByID(r.Context(), leadID, merchantID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, ToResponse(l))
}

// Validate handles POST /leads/{id}/validate
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	leadID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid lead id")
		return
	}

	l, err := h.svc.Validate(r.Context(), leadID, merchantID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, ToResponse(l))
}

// Reject handles POST /leads/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	leadID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid lead id")
		return
	}

	var req RejectLeadRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	l, err := h.svc.Reject(r.Context(), leadID, merchantID, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, ToResponse(l))
}

// Convert handles POST /leads/{id}/convert
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	leadID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid lead id")
		return
	}

	l, err := h.svc.Convert(r.Context(), leadID, merchantID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, ToResponse(l))
}

// Stats handles GET /leads/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	stats, err := h.svc.Stats(r.Context(), merchantID)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, stats)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrLeadNotFound):
		response.NotFound(w, "lead not found")
	case errors.Is(err, ErrInvalidTransition):
		response.Conflict(w, "lead is not in a state that allows this operation")
	case errors.Is(err, ErrCampaignInactive):
		response.Conflict(w, "campaign is not accepting leads")
	case errors.Is(err, deposit.ErrInsufficientFunds):
		response.PaymentRequired(w, "merchant deposit cannot cover this lead")
	case errors.Is(err, ErrNoActiveDeposit), errors.Is(err, deposit.ErrDepositNotActive):
		response.Conflict(w, "merchant has no funded deposit for this lead")
	case errors.Is(err, campaign.ErrCampaignNotFound):
		response.NotFound(w, "campaign not found")
	default:
		response.InternalError(w)
	}
}
