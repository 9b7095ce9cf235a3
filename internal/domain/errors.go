// Package domain holds the wellness community model: posts and comments that
// carry votes, the tag and category inference rules, and the business errors
// adapters translate into transport status codes.
package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is or the Is helpers below; the typed
// errors carry the context an HTTP body or log line needs.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthenticated")
	ErrUnavailable  = errors.New("dependency unavailable")
)

// NotFoundError names the missing post, comment or profile.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}

	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError reports that entity id does not exist. id may be empty.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError is returned when stored state moved underneath a write, most
// often a vote saved against a stale version.
type ConflictError struct {
	Entity  string
	Reason  string
	Details string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	msg := e.Entity + ": " + e.Reason
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}

	return msg
}

// Is reports whether target is ErrConflict.
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NewConflictError reports that entity could not be written for reason.
func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}

// NewConflictErrorWithDetails is NewConflictError with extra context such as an ID.
func NewConflictErrorWithDetails(entity, reason, details string) error {
	return &ConflictError{Entity: entity, Reason: reason, Details: details}
}

// ValidationError rejects one input field. Value, when set, is the offending
// input and is only logged.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}

	return e.Field + ": " + e.Message
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError rejects field with message.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue is NewValidationError that also records the rejected value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// ForbiddenError is returned when an identified caller may not touch another
// user's post, comment or profile.
type ForbiddenError struct {
	Operation string
	Reason    string
}

// Error implements the error interface.
func (e *ForbiddenError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "not allowed"
	}

	return e.Operation + ": " + reason
}

// Is reports whether target is ErrForbidden.
func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

// NewForbiddenError denies operation to the caller for reason.
func NewForbiddenError(operation, reason string) error {
	return &ForbiddenError{Operation: operation, Reason: reason}
}

// UnauthorizedError is a rejected or missing credential.
type UnauthorizedError struct {
	Reason string
}

// Error implements the error interface.
func (e *UnauthorizedError) Error() string {
	if e.Reason == "" {
		return "authentication failed"
	}

	return "authentication failed: " + e.Reason
}

// Is reports whether target is ErrUnauthorized.
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }

// NewUnauthorizedError rejects a credential for reason.
func NewUnauthorizedError(reason string) error {
	return &UnauthorizedError{Reason: reason}
}

// UnavailableError reports that the database or the classifier could not
// serve a request.
type UnavailableError struct {
	Service string
	Reason  string
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.Reason == "" {
		return e.Service + " unavailable"
	}

	return fmt.Sprintf("%s unavailable: %s", e.Service, e.Reason)
}

// Is reports whether target is ErrUnavailable.
func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

// NewUnavailableError reports that service failed for reason.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// IsNotFound reports whether err is a missing post, comment or profile.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err is a write conflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsValidation reports whether err rejects caller input.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsForbidden reports whether err denies an ownership-checked operation.
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }

// IsUnauthorized reports whether err is a rejected or missing credential.
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

// IsUnavailable reports whether err comes from an unreachable dependency.
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
