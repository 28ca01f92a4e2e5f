package merchant

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/leadflow/leadflow-api/internal/middleware"
	"github.com/leadflow/leadflow-api/internal/pkg/response"
	"github.com/leadflow/leadflow-api/internal/pkg/validator"
)

// Handler handles merchant HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates merchant handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register handles POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	out, err := h.svc.Register(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, out)
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	out, err := h.svc.Login(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, out)
}

// Refresh handles POST /auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	out, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, out)
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	_ = response.DecodeJSON(r.Body, &req)

	if err := h.svc.Logout(r.Context(), req.RefreshToken); err != nil {
		log.Warn().Err(err).Msg("logout failed")
	}
	response.OK(w, map[string]string{"status": "ok"})
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	m, err := h.svc.Get(r.Context(), merchantID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, ToResponse(m))
}

// UpdateProfile handles PATCH /auth/me
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	m, err := h.svc.UpdateProfile(r.Context(), merchantID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, ToResponse(m))
}

// RegisterDevice handles POST /auth/devices
func (h *Handler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req DeviceTokenRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	if err := h.svc.RegisterDevice(r.Context(), merchantID, req.Token); err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]string{"status": "registered"})
}

// UnregisterDevice handles DELETE /auth/devices
func (h *Handler) UnregisterDevice(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetUserID(r.Context())
	if merchantID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req DeviceTokenRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.svc.UnregisterDevice(r.Context(), merchantID, req.Token); err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]string{"status": "removed"})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmailAlreadyExists):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrRefreshTokenRequired),
		errors.Is(err, ErrInvalidRefreshToken):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, ErrMerchantSuspended):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrMerchantNotFound):
		response.NotFound(w, err.Error())
	default:
		log.Error().Err(err).Msg("merchant handler error")
		response.InternalError(w)
	}
}

// Routes returns auth routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/me", h.Me)
		r.Patch("/me", h.UpdateProfile)
		r.Post("/devices", h.RegisterDevice)
		r.Delete("/devices", h.UnregisterDevice)
	})

	return r
}
