package models

import (
	"errors"
	"fmt"
)

var (
	ErrNodeNotFound     = errors.New("hierarchy node not found")
	ErrDiscountNotFound = errors.New("discount rule not found")
)

// ValidationError reports a rejected input before any write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Reason)
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ComputationError is an internal invariant violation. It is a defect,
// never coerced to a default value.
type ComputationError struct {
	Detail string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation error: %s", e.Detail)
}

func NewComputationError(format string, args ...any) *ComputationError {
	return &ComputationError{Detail: fmt.Sprintf(format, args...)}
}

// IsComputationError reports whether err wraps a ComputationError.
func IsComputationError(err error) bool {
	var ce *ComputationError
	return errors.As(err, &ce)
}
