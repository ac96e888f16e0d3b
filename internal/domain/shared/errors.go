package shared

import "fmt"

// ErrorKind classifies a domain error so callers can map it to a transport
// response without string matching.
type ErrorKind string

const (
	KindValidation         ErrorKind = "VALIDATION"
	KindConflict           ErrorKind = "CONFLICT"
	KindAuthorization      ErrorKind = "AUTHORIZATION"
	KindIntegrity          ErrorKind = "INTEGRITY"
	KindExternalDependency ErrorKind = "EXTERNAL_DEPENDENCY"
	KindNotFound           ErrorKind = "NOT_FOUND"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	// Expected and Actual carry the aggregate states involved in a
	// conflict so the UI can refresh with a specific message.
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Kind == KindConflict && e.Expected != "" {
		return fmt.Sprintf("%s (expected status %s, actual %s)", e.Message, e.Expected, e.Actual)
	}
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: code, Message: message}
}

// NewValidationError creates an error for rejected input
func NewValidationError(code, message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: code, Message: message}
}

// NewConflictError creates an error for an operation attempted in the wrong
// aggregate state, recording the expected and actual states.
func NewConflictError(code, message, expected, actual string) *DomainError {
	return &DomainError{
		Kind:     KindConflict,
		Code:     code,
		Message:  message,
		Expected: expected,
		Actual:   actual,
	}
}

// NewAuthorizationError creates an error for a missing role or failed PIN.
// The message must never reveal which part of a PIN failed.
func NewAuthorizationError(code, message string) *DomainError {
	return &DomainError{Kind: KindAuthorization, Code: code, Message: message}
}

// NewIntegrityError creates an error for a broken uniqueness or reference
// constraint the caller could not have predicted.
func NewIntegrityError(code, message string) *DomainError {
	return &DomainError{Kind: KindIntegrity, Code: code, Message: message}
}

// NewExternalDependencyError creates an error for an unreachable collaborator
// (printer, head office). These never block the in-store transaction; the
// caller degrades to a queued retryable job.
func NewExternalDependencyError(code, message string) *DomainError {
	return &DomainError{Kind: KindExternalDependency, Code: code, Message: message}
}

// IsKind reports whether err is a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	de, ok := err.(*DomainError)
	return ok && de.Kind == kind
}

// Common domain errors
var (
	ErrNotFound            = &DomainError{Kind: KindNotFound, Code: "NOT_FOUND", Message: "Resource not found"}
	ErrAlreadyExists       = &DomainError{Kind: KindIntegrity, Code: "ALREADY_EXISTS", Message: "Resource already exists"}
	ErrInvalidInput        = &DomainError{Kind: KindValidation, Code: "INVALID_INPUT", Message: "Invalid input provided"}
	ErrConcurrencyConflict = &DomainError{Kind: KindConflict, Code: "CONCURRENCY_CONFLICT", Message: "Resource was modified by another process"}
	ErrUnauthorized        = &DomainError{Kind: KindAuthorization, Code: "UNAUTHORIZED", Message: "Not authorized to perform this action"}
	ErrForbidden           = &DomainError{Kind: KindAuthorization, Code: "FORBIDDEN", Message: "Access to this resource is forbidden"}
	ErrInvalidState        = &DomainError{Kind: KindConflict, Code: "INVALID_STATE", Message: "Operation not allowed in current state"}
	ErrSessionBlocked      = &DomainError{Kind: KindConflict, Code: "SESSION_BLOCKED", Message: "Business day is overdue for closing; new transactions are blocked"}
	ErrNoActiveSession     = &DomainError{Kind: KindConflict, Code: "NO_ACTIVE_SESSION", Message: "No active store session; open the business day first"}
)
