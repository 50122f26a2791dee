package errors

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorHandler translates pipeline errors into HTTP error responses.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// errorBody is the wire shape for failure responses.
type errorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// WriteError normalizes err to a StandardError, logs it, and writes the
// matching HTTP failure response.
func (h *ErrorHandler) WriteError(w http.ResponseWriter, err error) {
	stdErr := h.normalizeError(err)

	h.logger.Error("request failed", map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"message":   stdErr.Message,
		"details":   stdErr.Details,
		"status":    stdErr.Status,
		"retryable": stdErr.Retryable,
	})

	body := errorBody{Error: stdErr.Message}
	if stdErr.Code == ErrCodeUpstream {
		body.Status = stdErr.Status
		body.Detail = stdErr.Details
	}
	if stdErr.Code == ErrCodeUnhandled {
		body.Detail = stdErr.Details
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(HTTPStatus(stdErr.Code))
	_ = json.NewEncoder(w).Encode(body)
}

// normalizeError ensures we always have a StandardError.
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeUnhandled,
		Message:   "Unhandled error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
