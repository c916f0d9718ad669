package helpers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"churchadmin/internal/domain"
)

// Envelope codes that are not carried by a domain error.
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeServerError  = "SERVER_ERROR"
	ErrCodeCreateFailed = "CREATE_FAILED"
)

const serverErrorMessage = "Something went wrong."

// Result is the envelope of every API response. Exactly one of Data and Errors
// is set, depending on Success.
// swagger:model Result
type Result struct {
	Success bool     `json:"success"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// Ok builds a success result.
func Ok(code, message string, data any) Result {
	return Result{Success: true, Code: code, Message: message, Data: data}
}

// Err builds a failure result.
func Err(code, message string, errs []string) Result {
	return Result{Success: false, Code: code, Message: message, Errors: errs}
}

// WriteJSON writes res with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, res Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(res)
}

// WriteJSONSuccess writes a success envelope.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, code, message string, data any) {
	WriteJSON(w, statusCode, Ok(code, message, data))
}

// WriteJSONError writes a failure envelope with optional detail messages.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string, errs ...string) {
	WriteJSON(w, statusCode, Err(code, message, errs))
}

// StatusForKind maps a domain error kind to its HTTP status.
func StatusForKind(k domain.Kind) int {
	switch k {
	case domain.KindInvalid:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError writes the envelope for err. Domain errors keep their code
// and message; anything else is logged and reported as a generic server error.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		WriteJSONError(w, StatusForKind(de.Kind), de.Code, de.Message)
		return
	}
	logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	WriteJSONError(w, http.StatusInternalServerError, ErrCodeServerError, serverErrorMessage)
}
