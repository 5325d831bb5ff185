// Package domain contains the core business entities for Sentinel Portal.
package domain

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ErrAccountNotFound indicates the requested account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountAlreadyExists indicates an account with the same username exists.
	ErrAccountAlreadyExists = errors.New("account already exists")

	// ErrInvalidCredentials indicates authentication failed. Unknown username
	// and wrong password fold into this single error so the caller cannot
	// tell which part was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrValidation indicates input was rejected before any store call.
	ErrValidation = errors.New("validation failed")

	// ErrSessionNotFound indicates the session token is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrAccessDenied indicates the session lacks permission for the action.
	ErrAccessDenied = errors.New("access denied")

	// ErrStorageUnavailable indicates a connection or IO failure at the
	// storage boundary.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// DomainError wraps a domain error with additional context.
type DomainError struct {
	// Err is the underlying domain error.
	Err error

	// Message provides additional context.
	Message string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError with context.
func NewDomainError(err error, message string) *DomainError {
	return &DomainError{Err: err, Message: message}
}
