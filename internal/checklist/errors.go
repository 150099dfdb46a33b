package checklist

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input: a missing required field, an
// unrecognized status, an identity hint that does not match the computed
// address ID, or a malformed markdown construct.
//
// Field names the offending field. Expected and Found are set when the
// failure is a mismatch between two concrete values.
type ValidationError struct {
	Field    string
	Message  string
	Expected string
	Found    string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Expected != "" || e.Found != "" {
		return fmt.Sprintf("%s: %s (expected %s, found %s)", e.Field, e.Message, e.Expected, e.Found)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports a lookup of a row that does not exist. Kind names
// the entity ("slug", "checklist"); Key is the identifier that missed.
type NotFoundError struct {
	Kind string
	Key  string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
