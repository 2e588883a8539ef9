package handlers

import (
	"log/slog"
	"net/http"

	"github.com/smartvegis/marketplace/internal/auth"
	"github.com/smartvegis/marketplace/internal/middleware"
	"github.com/smartvegis/marketplace/internal/models"
)

// AuthHandler handles account sign up, sign in and sign out
type AuthHandler struct {
	service *auth.Service
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// SignUp handles POST /api/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	session, err := h.service.SignUp(r.Context(), creds)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusCreated, session, h.logger)
}

// SignIn handles POST /api/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	session, err := h.service.SignIn(r.Context(), creds)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, session, h.logger)
}

// SignOut handles POST /api/auth/signout by revoking the bearer token
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		WriteError(w, http.StatusUnauthorized, "Unauthorized: bearer token required", h.logger)
		return
	}

	if err := h.service.SignOut(r.Context(), token); err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
