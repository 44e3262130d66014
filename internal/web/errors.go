package web

// errors.go maps service errors to HTTP responses.
//
// The status comes from the error's Kind:
//
//	validation             400
//	not found              404
//	duplicate parent key   409
//	foreign key violation  422 (a referenced record is missing or still in use)
//	transient              503
//	unknown                500
//
// The body is the user message from core.MapError. The technical error is
// logged with the request ID and never sent to the client, except for
// validation failures whose text lists the offending fields.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/storefront/internal/core"
	"github.com/JonMunkholm/storefront/internal/logging"
	"github.com/JonMunkholm/storefront/internal/sheet"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sheet.ErrUnsupportedFile):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, sheet.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, sheet.ErrNoHeader), errors.Is(err, core.ErrNothingToImport):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	}

	switch core.KindOf(err) {
	case core.KindValidation:
		return http.StatusBadRequest
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindDuplicateParentKey:
		return http.StatusConflict
	case core.KindForeignKeyViolation:
		return http.StatusUnprocessableEntity
	case core.KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes its user-facing JSON form.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= 500 {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request error", args...)
	}

	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}
	if core.KindOf(err) == core.KindValidation || status == http.StatusBadRequest {
		resp.Details = err.Error()
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}
	writeJSON(w, status, resp)
}

// writeJSON encodes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent; all we can do is log.
		slog.Error("json encode error", "error", err)
	}
}
