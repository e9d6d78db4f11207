package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrPollNotFound   = errors.New("poll not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("admin access required")
	ErrValidation     = errors.New("the given data was invalid")
	ErrPollClosed     = errors.New("poll is closed")
	ErrInvalidOption  = errors.New("invalid option")
	ErrAlreadyVoted   = errors.New("user has already voted")
	ErrPollNotDeleted = errors.New("poll is not deleted")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid access token")
)

// ValidationError lists the offending input fields. It matches ErrValidation
// with errors.Is, and its cause when one is set.
type ValidationError struct {
	Fields map[string][]string
	cause  error
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Err returns nil when nothing was added, so callers can return it directly.
func (e *ValidationError) Err() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid fields: " + strings.Join(names, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}

// FieldError is a single-field validation failure tied to a sentinel.
func FieldError(cause error, field, message string) *ValidationError {
	v := NewValidationError()
	v.Add(field, message)
	v.cause = cause
	return v
}
