// Package api holds the JSON plumbing shared by all HTTP handlers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"edunova-server/internal/metrics"
	"edunova-server/internal/models"
	"edunova-server/internal/store"
)

func WriteData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.OK(data))
}

func WriteError(w http.ResponseWriter, status int, message string) {
	metrics.HandlerErrors.Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.Fail(message))
}

// WriteFailure maps store errors to HTTP statuses and writes the error shape.
func WriteFailure(w http.ResponseWriter, err error) {
	WriteError(w, Status(err), err.Error())
}

// Status picks the HTTP status for a domain error.
func Status(err error) int {
	var ve store.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrAlreadyExists), errors.Is(err, store.ErrAlreadyEnrolled):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
