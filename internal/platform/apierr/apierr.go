package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries the HTTP status and stable machine code for a failure that
// crosses the API boundary.
type Error struct {
	Status int
	Code   string
	Param  string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(code, param string, err error) *Error {
	return &Error{Status: http.StatusBadRequest, Code: code, Param: param, Err: err}
}

// From extracts an *Error from err's chain. Anything else becomes a 500.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae
	}
	return &Error{Status: http.StatusInternalServerError, Code: "internal_error", Err: err}
}

func NotFound(code string, err error) *Error {
	return &Error{Status: http.StatusNotFound, Code: code, Err: err}
}

func Unprocessable(code string, err error) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Code: code, Err: err}
}

func Unavailable(code string, err error) *Error {
	return &Error{Status: http.StatusServiceUnavailable, Code: code, Err: err}
}
