package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures.
var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidCredentials = errors.New("invalid credentials provided")
	ErrInvalidResetToken  = errors.New("invalid or expired password reset token")
	ErrForbidden          = errors.New("operation not permitted")
	ErrInUse              = errors.New("resource is still referenced by other records")
	ErrValidation         = errors.New("validation failed")
)

// ValidationError reports which fields of an input failed validation.
// It unwraps to ErrValidation so callers can match it with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError from a field→message map.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// FieldError is a shorthand for a ValidationError with a single field.
func FieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Merge copies the fields of other into e, keeping existing messages.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	for k, v := range other.Fields {
		if _, exists := e.Fields[k]; !exists {
			e.Fields[k] = v
		}
	}
}

// OrNil returns nil when no field failed, so it can be returned directly as an error.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
