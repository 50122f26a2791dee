// Package errors provides standardized error handling for the scoring pipeline.
package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeConfiguration     ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeUpstream          ErrorCode = "UPSTREAM_ERROR"
	ErrCodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
	ErrCodeUnhandled         ErrorCode = "UNHANDLED_ERROR"
)

// maxBodyExcerpt bounds the upstream body carried inside an error.
const maxBodyExcerpt = 1200

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Status    int       `json:"status,omitempty"` // upstream HTTP status, when applicable
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewMissingCredentialError creates a non-retryable configuration error for
// an absent API credential. No network call may be attempted after this.
func NewMissingCredentialError() *StandardError {
	return &StandardError{
		Code:      ErrCodeConfiguration,
		Message:   "Missing OPENAI_API_KEY",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamError creates an error for a non-success upstream status after
// all attempts are used. The body is truncated to an excerpt.
func NewUpstreamError(status int, body string) *StandardError {
	if len(body) > maxBodyExcerpt {
		body = body[:maxBodyExcerpt]
	}
	return &StandardError{
		Code:      ErrCodeUpstream,
		Message:   "OpenAI error",
		Details:   body,
		Status:    status,
		Retryable: IsRetryableStatus(status),
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedResponseError creates the recovered parse-failure error. It is
// never surfaced to callers; the validator substitutes defaults instead.
func NewMalformedResponseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedResponse,
		Message:   "Model output is not parseable JSON",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnhandledError wraps any untyped failure crossing the handler boundary.
func NewUnhandledError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnhandled,
		Message:   "Unhandled error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryableStatus reports whether an upstream HTTP status is eligible for
// the single fixed retry (rate limiting or server-side fault).
func IsRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// HTTPStatus maps an error code to the HTTP status surfaced to callers.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
