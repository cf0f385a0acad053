package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an application error that knows which HTTP status it maps to.
type Error struct {
	Code    string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"code"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors of the same category so errors.Is works against the
// predefined values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

const (
	CodeMissingParameter   = "missing_parameter"
	CodeInvalidParameter   = "invalid_parameter"
	CodeConfigurationError = "configuration_error"
	CodeUpstreamError      = "upstream_error"
	CodeInternalError      = "internal_error"
	CodeNotFound           = "not_found"
)

var (
	ErrMissingParameter = New(CodeMissingParameter, http.StatusBadRequest, "missing required parameters")
	ErrInvalidParameter = New(CodeInvalidParameter, http.StatusBadRequest, "invalid parameter")
	ErrConfiguration    = New(CodeConfigurationError, http.StatusInternalServerError, "API key not configured")
	ErrUpstream         = New(CodeUpstreamError, http.StatusInternalServerError, "flight provider request failed")
	ErrInternal         = New(CodeInternalError, http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error. Unknown errors become
// internal errors.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, err.Error())
}

// Clone copies err, optionally overriding its message.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
