package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/meetingguide/backend/internal/domain"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code and a human-readable
// message. Codes: no_data, bad_data, not_found, validation_error,
// internal_error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON serializes v with the given status. Encoding failures are
// logged; at that point the status line has already been sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// writeError maps a service error onto the HTTP taxonomy:
// load errors are 503 (the data set never became servable), missing slugs
// are 404, bad query input is 422, everything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNoData):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("no_data", "no data source configured or source is empty"))
	case errors.Is(err, domain.ErrBadData):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("bad_data", "data source is unreachable or malformed"))
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not_found", "meeting not found"))
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("validation_error", unwrapMessage(err)))
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody("internal_error", "internal error"))
	}
}

func errorBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel
// error. e.g. "service.DirectoryService.Filter: validation error: unknown
// mode" becomes "unknown mode".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.LastIndex(msg, "validation error: "); i >= 0 {
		return msg[i+len("validation error: "):]
	}
	return msg
}
