package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDesignNotFound      = errors.New("design not found")
	ErrAlreadyDispatched   = errors.New("design already has a mockup task in flight")
	ErrAccessDenied        = errors.New("design belongs to another user")
	ErrVendorNotConfigured = errors.New("vendor API credentials are not configured")
)

// ValidationError marks bad or missing caller input (4xx at the boundary).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
