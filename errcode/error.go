// Package errcode provides string-coded API errors with HTTP status
// mapping and context data, plus the JSON envelope returned to clients.
package errcode

import (
	"fmt"
	"net/http"
)

// APIError is a machine-readable error carried across the transport
// boundary. Supports error chaining, context data and HTTP status mapping.
type APIError struct {
	code       string
	msg        string
	httpStatus int
	details    map[string]interface{}
	cause      error
}

// New creates an APIError.
// code: stable machine-readable identifier (e.g. "RATE_LIMIT_EXCEEDED")
// msg: human-readable default message
// httpStatus: HTTP status the transport should respond with
func New(code, msg string, httpStatus int) *APIError {
	if httpStatus == 0 {
		httpStatus = http.StatusOK
	}
	return &APIError{
		code:       code,
		msg:        msg,
		httpStatus: httpStatus,
		details:    make(map[string]interface{}),
	}
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Code returns the machine-readable error code
func (e *APIError) Code() string {
	return e.code
}

// Message returns the human-readable message
func (e *APIError) Message() string {
	return e.msg
}

// HTTPStatus returns the mapped HTTP status code
func (e *APIError) HTTPStatus() int {
	return e.httpStatus
}

// Details returns the context data map
func (e *APIError) Details() map[string]interface{} {
	return e.details
}

// Unwrap supports errors.Is / errors.As chains
func (e *APIError) Unwrap() error {
	return e.cause
}

// WithMsg returns a copy with the message replaced
func (e *APIError) WithMsg(msg string) *APIError {
	clone := *e
	clone.msg = msg
	return &clone
}

// WithMsgf returns a copy with a formatted message
func (e *APIError) WithMsgf(format string, args ...interface{}) *APIError {
	clone := *e
	clone.msg = fmt.Sprintf(format, args...)
	return &clone
}

// WithDetail returns a copy with one context value added
func (e *APIError) WithDetail(key string, value interface{}) *APIError {
	clone := *e
	clone.details = e.cloneDetails()
	clone.details[key] = value
	return &clone
}

// WithCause returns a copy wrapping the original error
func (e *APIError) WithCause(cause error) *APIError {
	clone := *e
	clone.cause = cause
	return &clone
}

func (e *APIError) cloneDetails() map[string]interface{} {
	out := make(map[string]interface{}, len(e.details))
	for k, v := range e.details {
		out[k] = v
	}
	return out
}
