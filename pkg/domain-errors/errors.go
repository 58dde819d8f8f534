// Package domainerrors provides coded domain errors. Services return these so
// transport layers can map outcomes to protocol responses without string
// matching, while the message stays stable for callers that display it.
//
// Stores do not use this package; they return pkg/platform/sentinel errors and
// services translate at the boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation marks malformed input, e.g. an empty content identifier.
	CodeValidation Code = "validation"
	// CodeNotFound marks a reference to an unknown record or entity.
	CodeNotFound Code = "not_found"
	// CodeForbidden marks a caller that lacks the required role or grant.
	CodeForbidden Code = "forbidden"
	// CodeRecordDeleted marks any access to a soft-deleted record.
	CodeRecordDeleted Code = "record_deleted"
	// CodeUnauthorized marks missing or invalid authentication.
	CodeUnauthorized Code = "unauthorized"
	// CodeBadRequest marks a request the transport layer could not interpret.
	CodeBadRequest Code = "bad_request"
	// CodeConflict marks a mutation that lost to concurrent state.
	CodeConflict Code = "conflict"
	// CodeTimeout marks an aborted transaction boundary.
	CodeTimeout Code = "timeout"
	// CodeInternal marks unexpected infrastructure failure.
	CodeInternal Code = "internal"
)

// Error is a coded domain error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is reports whether err is a domain error with the given code. Alias of
// HasCode kept for call-site readability in handlers.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the code of err, or CodeInternal when err is not a domain
// error. Useful for metrics labels and response mapping.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
