package rest

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/optic/loan-origination/internal/domain/model"
	"github.com/optic/loan-origination/internal/domain/valueobject"
)

// envelope is the body of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

var errMalformedBody = errors.New("malformed request body")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

// writeError maps domain errors to HTTP status codes. Anything unrecognised
// is logged and reported as a 500 without its detail.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, errMalformedBody):
		status, message = http.StatusBadRequest, err.Error()
	case model.IsValidation(err):
		var ve *model.ValidationError
		errors.As(err, &ve)
		status, message = http.StatusBadRequest, ve.Error()
	case model.IsNotFound(err):
		status, message = http.StatusNotFound, rootMessage(err)
	case model.IsConflict(err), errors.Is(err, valueobject.ErrInvalidStatusTransition):
		status, message = http.StatusConflict, rootMessage(err)
	case errors.Is(err, model.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, model.ErrInvalidCredentials.Error()
	case errors.Is(err, model.ErrUserDisabled):
		status, message = http.StatusForbidden, model.ErrUserDisabled.Error()
	default:
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}

	writeJSON(w, status, envelope{Success: false, Message: message})
}

// rootMessage returns the message of the innermost wrapped error.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		return errMalformedBody
	}
	return nil
}
