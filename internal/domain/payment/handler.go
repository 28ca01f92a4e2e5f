package payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/leadflow/leadflow-api/internal/domain/deposit"
	"github.com/leadflow/leadflow-api/internal/middleware"
	"github.com/leadflow/leadflow-api/internal/pkg/response"
	"github.com/leadflow/leadflow-api/internal/pkg/validator"
)

// Handler handles payment HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates payment handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// InitRecharge handles POST /payments/recharge
func (h *Handler) InitRecharge(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req InitRechargeRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	depositID, err := uuid.Parse(req.DepositID)
	if err != nil {
		response.BadRequest(w, "invalid deposit_id")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		response.BadRequest(w, "invalid amount")
		return
	}

	out, err := h.svc.InitRecharge(r.Context(), CheckoutParams{
		MerchantID:  merchantID,
		DepositID:   depositID,
		Amount:      amount,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount):
			response.BadRequest(w, "invalid amount")
		case errors.Is(err, deposit.ErrDepositNotFound):
			response.NotFound(w, "deposit not found")
		default:
			log.Error().Err(err).Msg("recharge checkout failed")
			response.InternalError(w)
		}
		return
	}
	response.OK(w, out)
}

// GetHistory handles GET /payments
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit := 20
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	payments, err := h.svc.History(r.Context(), merchantID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, ToResponse(p))
	}
	response.OK(w, out)
}

// RobokassaResult handles POST/GET /webhooks/robokassa/result.
// The gateway expects a plain "OK<InvId>" body on success.
func (h *Handler) RobokassaResult(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.BadRequest(w, "invalid form data")
		return
	}

	ack, err := h.svc.ProcessResult(r.Context(), r.Form)
	if err != nil {
		log.Warn().Err(err).Str("inv_id", r.Form.Get("InvId")).Msg("robokassa result rejected")
		response.BadRequest(w, "invalid callback")
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(ack))
}

// RobokassaSuccess handles the user redirect after a successful payment.
// The actual settlement happens on the result callback.
func (h *Handler) RobokassaSuccess(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || !h.svc.VerifySuccessRedirect(r.Form) {
		response.BadRequest(w, "invalid redirect signature")
		return
	}
	response.OK(w, map[string]string{"status": "processing", "message": "payment accepted, awaiting confirmation"})
}

// RobokassaFail handles the user redirect after an abandoned payment.
func (h *Handler) RobokassaFail(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err == nil {
		if invID, err := strconv.ParseInt(r.Form.Get("InvId"), 10, 64); err == nil && invID > 0 {
			if err := h.svc.MarkFailed(r.Context(), invID); err != nil {
				log.Warn().Err(err).Int64("inv_id", invID).Msg("failed to mark payment failed")
			}
		}
	}
	response.OK(w, map[string]string{"status": "failed", "message": "payment cancelled or not completed"})
}

// Routes returns payment router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetHistory)
		r.Post("/recharge", h.InitRecharge)
	})

	r.Get("/robokassa/success", h.RobokassaSuccess)
	r.Post("/robokassa/success", h.RobokassaSuccess)
	r.Get("/robokassa/fail", h.RobokassaFail)
	r.Post("/robokassa/fail", h.RobokassaFail)

	return r
}

// WebhookRoutes returns webhook router (no auth, signature verification only)
func (h *Handler) WebhookRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/robokassa/result", h.RobokassaResult)
	r.Get("/robokassa/result", h.RobokassaResult)
	return r
}
