// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// Caller mistakes surfaced back through the chat interface
	ErrInvalidDate       = errors.New("invalid date")
	ErrMissingArgument   = errors.New("missing argument")
	ErrMissingAttachment = errors.New("missing attachment")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// State errors
	ErrInvalidState           = errors.New("invalid state")
	ErrAlreadyProcessed       = errors.New("already processed")
	ErrInternalConsistency    = errors.New("internal consistency violation")
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// Infrastructure errors
	ErrStoreUnavailable   = errors.New("state store unavailable")
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "cohort", "student", "evaluation"
	Op      string // Operation that failed, e.g., "Initialize", "AwardXP"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Cohort domain errors
var (
	ErrCohortNotFound  = NewDomainError("cohort", "Find", ErrNotFound, "cohort not found")
	ErrStartDateInPast = NewDomainError("cohort", "Initialize", ErrInvalidDate, "start date is in the past")
	ErrBadStartDate    = NewDomainError("cohort", "Initialize", ErrInvalidDate, "start date is not a valid calendar date")
	ErrNoActiveCohort  = NewDomainError("registry", "Resolve", ErrNotFound, "no active cohort registered")
)

// Student domain errors
var (
	ErrStudentNotFound   = NewDomainError("student", "Find", ErrNotFound, "student not found")
	ErrInvalidStudentID  = NewDomainError("student", "Validate", ErrInvalidID, "invalid student ID")
	ErrProgressionBroken = NewDomainError("student", "AwardXP", ErrInternalConsistency, "stored XP exceeds the current level threshold")
)

// Evaluation domain errors
var (
	ErrOrphanedEvalPair = NewDomainError("evaluation", "Resolve", ErrInternalConsistency, "evaluation pair references an unknown student")
)

// Gateway errors
var (
	ErrGatewaySendFailed = NewDomainError("gateway", "Send", ErrExternalService, "failed to deliver message to the guild")
	ErrChannelNotFound   = NewDomainError("gateway", "Resolve", ErrNotFound, "channel not found in guild")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrMissingArgument) ||
		errors.Is(err, ErrMissingAttachment)
}

// IsUserFacing reports whether the error should be echoed back to the caller
// as a usage hint rather than logged as a failure.
func IsUserFacing(err error) bool {
	return IsValidation(err) || errors.Is(err, ErrUnauthorized)
}

// IsConsistency checks if the error indicates corrupted stored state.
func IsConsistency(err error) bool {
	return errors.Is(err, ErrInternalConsistency)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConcurrentModification)
}
