package errors

import (
	"fmt"
	"strings"
)

var ErrInvalidIdentifier = fmt.Errorf("invalid identifier")
var ErrMalformedCrate = fmt.Errorf("malformed crate")
var ErrContextUnavailable = fmt.Errorf("context unavailable")
var ErrValidationFailed = fmt.Errorf("validation failed")
var ErrNotFound = fmt.Errorf("not found")

type myError struct {
	msg    string
	target error
	cause  error
}

func (m myError) Error() string        { return m.msg }
func (m myError) Is(target error) bool { return target == m.target }
func (m myError) Unwrap() error        { return m.cause }

// NewInvalidIdentifierError reports an identifier that could not be parsed
func NewInvalidIdentifierError(identifier string) error {
	return &myError{
		msg:    fmt.Sprintf("invalid identifier \"%s\"", identifier),
		target: ErrInvalidIdentifier,
	}
}

func NewMalformedCrateError(msg string) error {
	return &myError{
		msg:    "malformed crate: " + msg,
		target: ErrMalformedCrate,
	}
}

func NewContextUnavailableError(source string, cause error) error {
	msg := fmt.Sprintf("context source %s unavailable", source)
	if cause != nil {
		msg = msg + ": " + cause.Error()
	}

	return &myError{
		msg:    msg,
		target: ErrContextUnavailable,
		cause:  cause,
	}
}

func NewNotFoundError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrNotFound,
	}
}

// ValidationError carries the violations reported by a validator. It matches
// ErrValidationFailed but never means that the crate is unusable.
type ValidationError struct {
	Violations []string
}

func NewValidationError(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

func (v *ValidationError) Error() string {
	if len(v.Violations) == 0 {
		return ErrValidationFailed.Error()
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed.Error(), strings.Join(v.Violations, "; "))
}

func (v *ValidationError) Is(target error) bool { return target == ErrValidationFailed }
