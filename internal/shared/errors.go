package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates missing or malformed command fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates a referenced order, product or location is absent.
	ErrNotFound = errors.New("not found")
	// ErrPreconditionFailed indicates a guarded conditional update matched no row.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrInsufficientStock indicates a sale or purchase exceeds available quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidTransition indicates a disallowed order status move.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrStorageFailure indicates the underlying transaction could not commit.
	ErrStorageFailure = errors.New("storage failure")
)

// StorageFailure wraps a driver error as a retryable storage failure.
func StorageFailure(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, ErrStorageFailure)
}

// Invalid wraps ErrInvalidInput with a field-level reason.
func Invalid(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrInvalidInput)
}
