package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedToken      = errors.New("malformed credential")
	ErrUnknownRole         = errors.New("credential carries an unknown role")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserExists          = errors.New("user already exists")
	ErrUnauthorized        = errors.New("credential rejected by backend")
	ErrForbidden           = errors.New("access forbidden")
	ErrNotFound            = errors.New("resource not found")
	ErrCredentialNotFound  = errors.New("credential not found")
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrNoRefreshCredential = errors.New("no refresh credential")
	ErrRefreshRejected     = errors.New("refresh credential rejected by backend")
	ErrProfileLocked       = errors.New("profile identifier is locked")
	ErrValidation          = errors.New("validation failed")
	ErrBackendUnavailable  = errors.New("backend unavailable")
)

// BackendError describes an unexpected reply from the CRM backend.
type BackendError struct {
	Status int
	Detail string
}

func (e *BackendError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend responded %d", e.Status)
	}
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Detail)
}

// ValidationError reports input rejected before any backend call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError from a format string.
func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
