package errors

import (
	"errors"
	"fmt"
)

// ValidationError marks user input rejected at the service boundary.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func NewValidationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	return errors.As(err, &validationError)
}

// NotFoundError marks a scoped mutation that matched zero rows: the target
// either does not exist or belongs to a different user. The two cases are
// deliberately indistinguishable to the caller.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string {
	return e.Msg
}

func NewNotFoundError(msg string) error {
	return &NotFoundError{Msg: msg}
}

func IsNotFoundError(err error) bool {
	var notFoundError *NotFoundError
	return errors.As(err, &notFoundError)
}

// ErrUnauthorized is returned when an operation runs without a resolved
// caller identity.
var ErrUnauthorized = errors.New("unauthorized: no authenticated user")

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

var (
	ErrEmptyName     = NewValidationError("Transaction name must not be empty")
	ErrInvalidAmount = NewValidationError("Amount must be a positive number")
)
