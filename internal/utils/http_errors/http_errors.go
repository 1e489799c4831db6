package utils

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"notary/internal/models"
)

type errorBody struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// WriteJSONError writes {"error": {"message": msg}} with the given status.
func WriteJSONError(w http.ResponseWriter, status int, msg string) {
	writeBody(w, status, errorBody{Message: msg})
}

// WriteError maps a service error to its status code. The body carries only the
// sentinel text from models.PublicMessage; the full chain belongs in the log.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	kind := models.KindOf(err)

	msg := models.PublicMessage(err)
	if status == http.StatusInternalServerError {
		msg = models.ErrInternal.Error()
	}

	writeBody(w, status, errorBody{Kind: kind, Message: msg})
}

// Fail logs err at a level matching its kind and writes it to w.
func Fail(log *slog.Logger, w http.ResponseWriter, msg string, err error) {
	if StatusOf(err) >= http.StatusInternalServerError {
		log.Error(msg, slog.String("error", err.Error()))
	} else {
		log.Warn(msg, slog.String("error", err.Error()))
	}

	WriteError(w, err)
}

// WriteResponse writes payload inside the {"response": ...} envelope.
func WriteResponse(log *slog.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(map[string]any{"response": payload}); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func StatusOf(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	}

	switch models.KindOf(err) {
	case models.KindDuplicateKey, models.KindInvalidState:
		return http.StatusConflict
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindValidationFailed:
		return http.StatusBadRequest
	case models.KindIntegrityMismatch:
		return http.StatusUnprocessableEntity
	case models.KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}

func writeBody(w http.ResponseWriter, status int, body errorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": body})
}
