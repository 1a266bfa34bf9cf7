package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input rejected before any state is touched.
	ErrValidation = errors.New("validation failed")

	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned for both unknown emails and wrong
	// passwords so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrNotFound        = errors.New("not found")
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrPaymentNotFound = fmt.Errorf("payment %w", ErrNotFound)

	ErrInvalidSignature = errors.New("invalid payment signature")

	// ErrPaymentClosed is returned when verifying a payment that already
	// ended in a state other than completed.
	ErrPaymentClosed = errors.New("payment is closed")
)

// ProviderError wraps a payment processor failure.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("payment provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
