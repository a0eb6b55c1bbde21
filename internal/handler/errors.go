package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/timekeeper/internal/domain"
)

// ErrorDetail is the machine-readable code plus a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // the client hung up; nothing useful to do.
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// requestError rejects a request before it reaches the service layer
// (missing body, malformed JSON, unparseable parameter).
func requestError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnprocessableEntity, "validation_error", message)
}

// respondError maps a service error onto the error taxonomy.
// notFound is the message for domain.ErrNotFound because the handler is the
// layer that knows what was being looked up. Unknown errors are logged and
// answered with a generic 500 so internals never leak.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", notFound)
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "access denied")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", "a timer is already running")
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
	default:
		s.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// unwrapMessage extracts the human-readable part from a wrapped validation error.
// e.g. "service.EntryService.CreateManual: validation error: startTime is required" → "startTime is required"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	marker := domain.ErrValidation.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 && len(msg) > i+len(marker) {
		return msg[i+len(marker):]
	}
	return msg
}

// respondBodyError answers a request whose JSON body could not be decoded.
func (s *Server) respondBodyError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.respondError(w, r, err, "")
		return
	}
	requestError(w, err.Error())
}
