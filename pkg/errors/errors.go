package errors

import (
	"errors"
	"fmt"
)

// Code is a stable reason code returned to API callers so they can render
// failures without parsing messages.
type Code string

const (
	CodeNotFound         Code = "NOT_FOUND"
	CodeUnavailable      Code = "UNAVAILABLE"
	CodeAlreadyExists    Code = "ALREADY_EXISTS"
	CodeCapacityExceeded Code = "CAPACITY_EXCEEDED"
	CodeInvalidState     Code = "INVALID_STATE"
	CodeForbidden        Code = "FORBIDDEN"
	CodeInvalidInput     Code = "INVALID_INPUT"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeInternal         Code = "INTERNAL"
)

// Common application errors with proper types for error handling
var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrUnavailable indicates the backing store or an upstream dependency could not be reached
	ErrUnavailable = errors.New("unavailable")

	// ErrAlreadyExists indicates the resource (or an equivalent live one) already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrCapacityExceeded indicates the mentor has no free mentee slots
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrInvalidState indicates the operation is not allowed in the current lifecycle state
	ErrInvalidState = errors.New("invalid state")

	// ErrForbidden indicates the actor has no right to perform the operation
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates missing or invalid authentication
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")
)

var codes = []struct {
	sentinel error
	code     Code
}{
	{ErrNotFound, CodeNotFound},
	{ErrUnavailable, CodeUnavailable},
	{ErrAlreadyExists, CodeAlreadyExists},
	{ErrCapacityExceeded, CodeCapacityExceeded},
	{ErrInvalidState, CodeInvalidState},
	{ErrForbidden, CodeForbidden},
	{ErrInvalidInput, CodeInvalidInput},
	{ErrUnauthorized, CodeUnauthorized},
}

// CodeOf returns the reason code of the first taxonomy sentinel wrapped by err.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.sentinel) {
			return c.code
		}
	}
	return CodeInternal
}

// Sentinel returns the taxonomy sentinel for a reason code. Unknown codes map to ErrInternal.
func Sentinel(code Code) error {
	for _, c := range codes {
		if c.code == code {
			return c.sentinel
		}
	}
	return ErrInternal
}

// NotFoundError creates a not found error with context
func NotFoundError(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// UnavailableError wraps an upstream failure so callers can tell it apart from a missing record
func UnavailableError(component string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s %w", component, ErrUnavailable)
	}
	return fmt.Errorf("%s %w: %w", component, ErrUnavailable, cause)
}

// AlreadyExistsError creates an already exists error with context
func AlreadyExistsError(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrAlreadyExists)
}

// CapacityExceededError reports a mentor at capacity
func CapacityExceededError(mentorID string, current, max int) error {
	return fmt.Errorf("mentor %s has %d of %d mentees: %w", mentorID, current, max, ErrCapacityExceeded)
}

// InvalidStateError reports an operation attempted in the wrong lifecycle state
func InvalidStateError(resource, state string) error {
	return fmt.Errorf("%s is %s: %w", resource, state, ErrInvalidState)
}

// ForbiddenError creates a forbidden error with context
func ForbiddenError(reason string) error {
	if reason != "" {
		return fmt.Errorf("%s: %w", reason, ErrForbidden)
	}
	return ErrForbidden
}

// InvalidInputError creates an invalid input error with context
func InvalidInputError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrInvalidInput)
}

// InternalError creates an internal error with context
func InternalError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInternal)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}
