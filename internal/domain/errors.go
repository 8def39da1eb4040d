package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports an input field outside its legal range. It is
// returned before any simulation work starts and is never retried.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
