package errors

import (
	stderrors "errors"
	"fmt"
)

// ValidationError reports malformed calculator or strategy input. It always
// names the offending field and the value that was rejected.
type ValidationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

// NewValidationError creates a validation error for the given field and value.
func NewValidationError(field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return stderrors.As(err, &ve)
}

// InsufficientDataError reports that a series is too short for a calculation.
// Strategies treat this as a skip condition, not a failure.
type InsufficientDataError struct {
	Subject string
	Have    int
	Need    int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: have %d, need %d", e.Subject, e.Have, e.Need)
}

// NewInsufficientDataError creates an insufficient-data error.
func NewInsufficientDataError(subject string, have, need int) *InsufficientDataError {
	return &InsufficientDataError{Subject: subject, Have: have, Need: need}
}

// IsInsufficientData reports whether err is (or wraps) an InsufficientDataError.
func IsInsufficientData(err error) bool {
	var ie *InsufficientDataError
	return stderrors.As(err, &ie)
}
