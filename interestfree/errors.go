package interestfree

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPeriod is returned when a billing period fails validation.
	ErrInvalidPeriod = errors.New("invalid billing period")

	// ErrInvalidTransaction is returned when a transaction fails validation.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrOutsidePeriod is returned for a transaction dated outside its period.
	ErrOutsidePeriod = errors.New("transaction date is outside the billing period")

	// ErrPeriodNotFound is returned when a billing period does not exist.
	ErrPeriodNotFound = errors.New("billing period not found")

	// ErrTransactionNotFound is returned when a transaction does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// FieldError names the offending field and wraps one of the sentinels above.
type FieldError struct {
	Field  string
	Reason string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Field, e.Reason, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
