package deposit

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

// Handler exposes the deposit engine over HTTP. Handlers stay thin: parse,
// validate, delegate, map errors.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /deposits
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req CreateDepositRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	amount, err := decimal.NewFromString(req.InitialAmount)
	if err != nil {
		response.BadRequest(w, "invalid initial_amount")
		return
	}

	params := CreateParams{
		MerchantID:       merchantID,
		InitialAmount:    amount,
		AutoRecharge:     req.AutoRecharge,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: req.PaymentReference,
		CreatedBy:        uuid.NullUUID{UUID: merchantID, Valid: true},
	}
	if req.CampaignID != "" {
		campaignID, err := uuid.Parse(req.CampaignID)
		if err != nil {
			response.BadRequest(w, "invalid campaign_id")
			return
		}
		params.CampaignID = &campaignID
	}
	if req.AlertThreshold != "" {
		threshold, err := decimal.NewFromString(req.AlertThreshold)
		if err != nil {
			response.BadRequest(w, "invalid alert_threshold")
			return
		}
		params.AlertThreshold = &threshold
	}
	if req.AutoRechargeAmount != "" {
		autoAmount, err := decimal.NewFromString(req.AutoRechargeAmount)
		if err != nil {
			response.BadRequest(w, "invalid auto_recharge_amount")
			return
		}
		params.AutoRechargeAmount = &autoAmount
	}

	d, err := h.svc.Create(r.Context(), params)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, ToResponse(d))
}

// Recharge handles POST /deposits/{id}/recharge
func (h *Handler) Recharge(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	depositID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid deposit id")
		return
	}

	var req RechargeRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.BadRequest(w, "invalid amount")
		return
	}

	d, err := h.svc.Recharge(r.Context(), depositID, merchantID, amount,
		req.PaymentMethod, req.PaymentReference, uuid.NullUUID{UUID: merchantID, Valid: true})
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, ToResponse(d))
}

// Suspend handles POST /deposits/{id}/suspend
func (h *Handler) Suspend(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	depositID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid deposit id")
		return
	}

	var req SuspendRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	d, err := h.svc.Suspend(r.Context(), depositID, merchantID, req.Reason,
		uuid.NullUUID{UUID: merchantID, Valid: true})
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, ToResponse(d))
}

// UpdateThreshold handles PATCH /deposits/{id}/threshold
func (h *Handler) UpdateThreshold(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	depositID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid deposit id")
		return
	}

	var req UpdateThresholdRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	threshold, err := decimal.NewFromString(req.AlertThreshold)
	if err != nil {
		response.BadRequest(w, "invalid alert_threshold")
		return
	}

	d, err := h.svc.UpdateAlertThreshold(r.Context(), depositID, merchantID, threshold)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, ToResponse(d))
}

// ConfigureAutoRecharge handles PATCH /deposits/{id}/auto-recharge
func (h *Handler) ConfigureAutoRecharge(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	depositID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid deposit id")
		return
	}

	var req AutoRechargeRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	var amount *decimal.Decimal
	if req.Amount != "" {
		parsed, err := decimal.NewFromString(req.Amount)
		if err != nil {
			response.BadRequest(w, "invalid amount")
			return
		}
		amount = &parsed
	}

	d, err := h.svc.ConfigureAutoRecharge(r.Context(), depositID, merchantID, req.Enabled, amount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, ToResponse(d))
}

// Balance handles GET /deposits/balance
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
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

	view, err := h.svc.GetBalance(r.Context(), merchantID, campaignID)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, view)
}

// List handles GET /deposits
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

	deposits, err := h.svc.List(r.Context(), merchantID, status)
	if err != nil {
		response.InternalError(w)
		return
	}

	out := make([]*DepositResponse, 0, len(deposits))
	for _, d := range deposits {
		out = append(out, ToResponse(d))
	}
	response.OK(w, out)
}

// History handles GET /deposits/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	filters := HistoryFilters{Limit: 100}
	if raw := r.URL.Query().Get("deposit_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "invalid deposit_id")
			return
		}
		filters.DepositID = &parsed
	}
	if raw := r.URL.Query().Get("type"); raw != "" {
		txType := TxType(raw)
		filters.TxType = &txType
	}

	transactions, err := h.svc.History(r.Context(), merchantID, filters)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, transactions)
}

// Stats handles GET /deposits/stats
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
	case errors.Is(err, ErrMinimumDeposit),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidThreshold),
		errors.Is(err, ErrMinimumAutoRecharge):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrDepositNotFound):
		response.NotFound(w, "deposit not found")
	case errors.Is(err, ErrInsufficientFunds):
		response.PaymentRequired(w, "insufficient available balance")
	case errors.Is(err, ErrDepositNotActive):
		response.Conflict(w, "deposit is not active")
	case errors.Is(err, ErrReferenceConflict):
		response.Conflict(w, "payment reference already used with a different amount")
	default:
		response.InternalError(w)
	}
}
