package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"happythings/internal/services"
	"happythings/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto status codes. Anything unexpected is
// logged and hidden behind a generic 500.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrEditWindowClosed):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrBonusTooLong):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrInvalidPassword):
		http.Error(w, "invalid password", http.StatusUnauthorized)
	case errors.Is(err, services.ErrTooManyAttempts):
		http.Error(w, err.Error(), http.StatusTooManyRequests)
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, services.ErrNotConfigured):
		logger.Error("login attempted without an admin password configured")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		logger.Error("request failed", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
