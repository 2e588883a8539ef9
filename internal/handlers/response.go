package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/smartvegis/marketplace/internal/auth"
	"github.com/smartvegis/marketplace/internal/cart"
	"github.com/smartvegis/marketplace/internal/repository"
	"github.com/smartvegis/marketplace/internal/service"
)

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response in JSON format
func WriteError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}

// WriteServiceError maps a domain error to its HTTP status. Unknown errors are
// logged and reported as 500 without detail.
func WriteServiceError(w http.ResponseWriter, err error, logger *slog.Logger) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		WriteError(w, status, "Internal server error", logger)
		return
	}
	logger.Debug("request rejected", "status", status, "error", err)
	WriteError(w, status, err.Error(), logger)
}

// StatusFor returns the HTTP status for a domain error
func StatusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrProfileNotFound),
		errors.Is(err, service.ErrVendorNotFound):
		return http.StatusNotFound

	case errors.Is(err, cart.ErrNonPositiveQuantity),
		errors.Is(err, cart.ErrBelowMinimum),
		errors.Is(err, cart.ErrExceedsAvailable),
		errors.Is(err, cart.ErrTooPrecise),
		errors.Is(err, service.ErrInvalidProduct),
		errors.Is(err, service.ErrIncompleteProfile),
		errors.Is(err, service.ErrInvalidProfile),
		errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidRole):
		return http.StatusBadRequest

	case errors.Is(err, repository.ErrInsufficientStock),
		errors.Is(err, repository.ErrEmailTaken),
		errors.Is(err, repository.ErrProductExists):
		return http.StatusConflict

	case errors.Is(err, service.ErrNotProductOwner):
		return http.StatusForbidden

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized

	default:
		return http.StatusInternalServerError
	}
}
