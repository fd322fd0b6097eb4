// Package respond writes JSON bodies and maps ledger errors to status codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type errorResponse struct {
	Error  string                   `json:"error"`
	Fields []transaction.FieldError `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error maps err to a status code. Store failures and anything unknown are
// logged and reported as a generic 500.
func Error(w http.ResponseWriter, err error) {
	var verr *transaction.ValidationError

	switch {
	case errors.As(err, &verr):
		JSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, transaction.ErrSessionRequired):
		JSON(w, http.StatusUnauthorized, errorResponse{Error: "session required"})
	case errors.Is(err, transaction.ErrNotFound):
		JSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		slog.Error("request failed", "error", err)
		JSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// BadRequest reports a malformed request that never reached the service.
func BadRequest(w http.ResponseWriter, field, message string) {
	Error(w, &transaction.ValidationError{Fields: []transaction.FieldError{{Field: field, Message: message}}})
}
