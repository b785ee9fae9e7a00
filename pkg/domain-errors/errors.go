// Package domainerrors defines the coded error type shared across the
// service layers. Codes, not messages, drive control flow and transport
// mapping: services compare codes with HasCode and the HTTP layer
// translates them to status codes.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers that need to branch on failure kind.
type Code string

const (
	// CodeInvalidInput marks input rejected by value-object validation.
	CodeInvalidInput Code = "invalid_input"
	// CodeInvalidAddress marks an address explicitly rejected by the
	// external postal-code check. Distinct from CodeInvalidInput so the
	// transport can surface it as an unprocessable entity, not a bad request.
	CodeInvalidAddress Code = "invalid_address"
	// CodeNotFound marks a lookup for a record that does not exist.
	CodeNotFound Code = "not_found"
	// CodeUnauthorized marks a missing, expired or malformed credential.
	CodeUnauthorized Code = "unauthorized"
	// CodeConflict marks a write rejected because of concurrent state.
	CodeConflict Code = "conflict"
	// CodeUnavailable marks a dependency outage surfaced to the caller.
	CodeUnavailable Code = "unavailable"
	// CodeInternal marks unexpected failures (store errors, bugs).
	CodeInternal Code = "internal"
)

// Error is a coded error. The zero value is not meaningful; construct
// through New or Wrap.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error with no cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, keeping the
// cause reachable through errors.Is / errors.As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or any error it wraps) carries the code.
func HasCode(err error, code Code) bool {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code == code
	}
	return false
}

// CodeOf returns the code carried by err, or CodeInternal when err is
// not a coded error.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeInternal
}
