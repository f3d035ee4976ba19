package apierr

import (
	"fmt"
	"net/http"
)

// Error carries the HTTP status and client-facing message for a failure that
// crossed the service boundary. Err keeps the underlying cause for logs.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, message string, err error) *Error {
	return &Error{Status: status, Message: message, Err: err}
}

func BadRequest(message string) *Error { return New(http.StatusBadRequest, message, nil) }

func NotFound(message string) *Error { return New(http.StatusNotFound, message, nil) }

func Conflict(message string, err error) *Error { return New(http.StatusConflict, message, err) }

func Unavailable(message string) *Error { return New(http.StatusServiceUnavailable, message, nil) }
