// Package shared holds the error taxonomy and JSON response helpers used by
// every layer of the service.
package shared

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWrongPassword      = errors.New("incorrect password")

	ErrFieldTooShort = errors.New("too short")
	ErrFieldTooLong  = errors.New("too long")
	ErrInvalidStatus = errors.New("invalid status")
	ErrPastDueDate   = errors.New("due date is in the past")
	ErrMissingField  = errors.New("required")

	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("forbidden")
	ErrPersistence = errors.New("persistence failure")
)

// FieldError ties a validation sentinel to the input field that caused it.
// Limit carries the length bound for FieldTooShort/FieldTooLong.
type FieldError struct {
	Field string
	Err   error
	Limit int
}

func (e *FieldError) Error() string {
	switch {
	case errors.Is(e.Err, ErrFieldTooShort):
		return fmt.Sprintf("%s: must be at least %d characters", e.Field, e.Limit)
	case errors.Is(e.Err, ErrFieldTooLong):
		return fmt.Sprintf("%s: must be at most %d characters", e.Field, e.Limit)
	default:
		return e.Field + ": " + e.Err.Error()
	}
}

func (e *FieldError) Unwrap() error { return e.Err }

// ValidationErrors collects every field problem found in one pass.
type ValidationErrors []*FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v))
	for i, fe := range v {
		errs[i] = fe
	}
	return errs
}

// Fields maps field name to message, first problem per field wins.
func (v ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, fe := range v {
		if _, ok := out[fe.Field]; !ok {
			out[fe.Field] = fe.Error()
		}
	}
	return out
}

// OrNil returns nil for an empty collection so callers can `return errs.OrNil()`.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// IsValidation reports whether err is a field-level input problem.
func IsValidation(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe)
}

// Persistence wraps a storage failure so it matches ErrPersistence while
// keeping the driver error in the chain.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
