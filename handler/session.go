package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/placetopay/infra/middle"
	"github.com/mstgnz/placetopay/infra/response"
	"github.com/mstgnz/placetopay/provider"
	"github.com/mstgnz/placetopay/provider/placetopay"
)

// SessionService is the part of the checkout client the relay exposes
type SessionService interface {
	Create(ctx context.Context, req provider.RedirectRequest, opts ...placetopay.CreateOption) (*provider.RedirectResponse, error)
	Outcome(ctx context.Context, requestID string) (provider.SessionOutcome, error)
}

// SessionHandler opens and inspects checkout sessions
type SessionHandler struct {
	sessions SessionService
	validate *validator.Validate
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions SessionService, validate *validator.Validate) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		validate: validate,
	}
}

// CreateSession opens a session. The buyer's IP and user agent default to the caller's.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req provider.RedirectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if req.IPAddress == "" {
		req.IPAddress = middle.GetClientIP(r)
	}
	if req.UserAgent == "" {
		req.UserAgent = r.UserAgent()
	}

	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	var opts []placetopay.CreateOption
	if locale := r.URL.Query().Get("locale"); locale != "" {
		opts = append(opts, placetopay.WithLocale(locale))
	}

	resp, err := h.sessions.Create(ctx, req, opts...)
	if err != nil {
		response.GatewayError(w, "Failed to create session", err)
		return
	}

	response.Success(w, http.StatusCreated, "Session created", resp)
}

// GetSession returns the outcome summary of a session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	requestID := chi.URLParam(r, "requestId")
	if requestID == "" {
		response.Error(w, http.StatusBadRequest, "Missing request ID", nil)
		return
	}

	outcome, err := h.sessions.Outcome(ctx, requestID)
	if err != nil {
		response.GatewayError(w, "Failed to get session", err)
		return
	}

	response.Success(w, http.StatusOK, "Session retrieved", outcome)
}
