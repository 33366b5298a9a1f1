package services

import (
	"errors"
	"fmt"
)

// ValidationError marks a rejected request body or query parameter. The
// HTTP surface maps it to a 400 and its message is safe to return to the
// client.
type ValidationError struct {
	message string
}

func (e ValidationError) Error() string {
	return e.message
}

// NewValidationError returns a new error that is marked as a client input
// problem.
func NewValidationError(formatString string, a ...interface{}) ValidationError {
	return ValidationError{message: fmt.Sprintf(formatString, a...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

// UpstreamError marks a failed round trip to Shopify or cloud storage.
// Status and Body carry the upstream response for server-side logs; the
// HTTP surface must never forward them to the client.
type UpstreamError struct {
	Status int
	Body   string
	msg    string
	cause  error
}

func (e *UpstreamError) Error() string {
	s := e.msg
	if e.Status != 0 {
		s = fmt.Sprintf("%s (status %d)", s, e.Status)
	}
	if e.Body != "" {
		s = fmt.Sprintf("%s: %s", s, e.Body)
	}
	if e.cause != nil {
		s = fmt.Sprintf("%s: %v", s, e.cause)
	}
	return s
}

func (e *UpstreamError) Unwrap() error {
	return e.cause
}

// NewUpstreamError wraps a failed upstream call. cause may be nil when the
// failure is a non-2xx response rather than a transport error.
func NewUpstreamError(cause error, status int, body, message string) *UpstreamError {
	return &UpstreamError{Status: status, Body: body, msg: message, cause: cause}
}

// IsUpstream reports whether err is (or wraps) an UpstreamError.
func IsUpstream(err error) bool {
	var u *UpstreamError
	return errors.As(err, &u)
}
