package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for validation failures.
var (
	ErrMissingField     = errors.New("field required")
	ErrWrongType        = errors.New("wrong type")
	ErrTooShort         = errors.New("too short")
	ErrInvalidURL       = errors.New("invalid URL")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// ValidationError wraps a sentinel with the field it was raised for.
type ValidationError struct {
	Field   string
	Value   string
	Detail  string
	Wrapped error
}

func (e *ValidationError) Error() string {
	msg := e.Wrapped.Error()
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, msg)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}

// Violations collects every field that failed validation for one record.
type Violations []*ValidationError

func (v Violations) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes each violation to errors.Is and errors.As.
func (v Violations) Unwrap() []error {
	out := make([]error, len(v))
	for i, e := range v {
		out[i] = e
	}
	return out
}

// Fields lists the violated field names in schema order.
func (v Violations) Fields() []string {
	out := make([]string, len(v))
	for i, e := range v {
		out[i] = e.Field
	}
	return out
}

// Reasons renders the violations as field/reason pairs for logging.
func (v Violations) Reasons() []map[string]string {
	out := make([]map[string]string, len(v))
	for i, e := range v {
		reason := e.Wrapped.Error()
		if e.Detail != "" {
			reason += " (" + e.Detail + ")"
		}
		out[i] = map[string]string{"field": e.Field, "reason": reason}
	}
	return out
}
