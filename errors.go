package kaveri

import (
	"errors"
	"fmt"
)

// Application error codes. These map domain failures onto a small set of
// categories that callers can branch on without string matching.
const (
	ECONFLICT     = "conflict"     // referential or uniqueness violation
	EINVALID      = "invalid"      // validation failed
	EINTERNAL     = "internal"     // internal error
	ENOTFOUND     = "not_found"    // entity does not exist
	ETIMEOUT      = "timeout"      // deadline exceeded waiting on a collaborator
	EUNAUTHORIZED = "unauthorized" // session missing, invalid, or expired
	EUNAVAILABLE  = "unavailable"  // remote service failed or returned nothing
)

// Error represents an application-specific error with a machine-readable
// code and a human-readable message.
type Error struct {
	// Code is one of the E* constants above.
	Code string

	// Message is a human-readable description safe to show to the operator.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("kaveri error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps err and returns its code, if available.
// Non-application errors report EINTERNAL; a nil error reports "".
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps err and returns its message, if available.
// Non-application errors report a generic message to avoid leaking
// internal detail; a nil error reports "".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf constructs an *Error with the given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
