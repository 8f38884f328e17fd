package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is the machine-readable classification of a domain error.
type ErrorCode string

const (
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeConflict     ErrorCode = "CONFLICT"
	CodeInvalidState ErrorCode = "INVALID_STATE"
)

// Error is a domain error carrying a machine-readable code alongside the message.
type Error struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// NewValidationError creates an error for invalid input rejected before persistence.
func NewValidationError(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// NewNotFoundError creates an error for an entity that does not resolve.
func NewNotFoundError(resource, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s not found: %s", resource, id)}
}

// NewForbiddenError creates an error for an operation the caller may not perform.
func NewForbiddenError(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

// NewUnauthorizedError creates an error for a caller without valid credentials.
func NewUnauthorizedError(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

// NewConflictError creates an error for a concurrent-modification conflict.
func NewConflictError(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// NewInvalidStateError creates an error for a disallowed state transition.
func NewInvalidStateError(from, to string) *Error {
	return &Error{Code: CodeInvalidState, Message: fmt.Sprintf("invalid transition from %s to %s", from, to)}
}

// CodeOf extracts the ErrorCode from an error chain, if any.
func CodeOf(err error) (ErrorCode, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Code, true
	}
	return "", false
}
