/*
errors.go - Error types for the bill planner

ERROR CATEGORIES:
  1. Frequency errors - A rule that can never produce a next date
  2. Validation errors - Bill fields rejected at creation time
  3. Store errors - Missing records

PROPAGATION:
  Nothing in the cycle generator returns these as a failure. Each problem
  is recorded as an Issue against the bill and the run carries on with the
  remaining bills and cycles. The API and CLI surface the Issues.

SEE ALSO:
  - cycles.go: Where Issues are collected
  - bill.go: ValidateBill
*/
package planner

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownFrequency is returned for a frequency label outside the closed set.
	ErrUnknownFrequency = errors.New("unknown frequency")

	// ErrMissingCustomFrequency is returned for a Custom bill with no settings.
	ErrMissingCustomFrequency = errors.New("custom frequency settings missing")

	// ErrUnknownUnit is returned for a custom rule whose unit is not days/weeks/months/years.
	ErrUnknownUnit = errors.New("unknown custom frequency unit")

	// ErrInvalidInterval is returned for a custom interval below 1.
	ErrInvalidInterval = errors.New("custom frequency interval must be at least 1")

	// ErrInvalidWeekday is returned for a weekday index outside 0-6.
	ErrInvalidWeekday = errors.New("weekday must be between 0 (Sunday) and 6 (Saturday)")

	// ErrInvalidBill is returned when a bill fails validation.
	ErrInvalidBill = errors.New("invalid bill")

	// ErrInvalidPayCycle is returned for unusable pay-cycle parameters.
	ErrInvalidPayCycle = errors.New("invalid pay cycle")

	// ErrNotFound is returned when a bill does not exist.
	ErrNotFound = errors.New("bill not found")

	// ErrStalledRecurrence is returned if a recurrence step fails to move forward.
	ErrStalledRecurrence = errors.New("recurrence did not advance")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FrequencyError names the offending label.
type FrequencyError struct {
	Label string
	Err   error
}

func (e *FrequencyError) Error() string {
	return fmt.Sprintf("frequency %q: %v", e.Label, e.Err)
}

func (e *FrequencyError) Unwrap() error { return e.Err }

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap exposes both ErrInvalidBill and the underlying cause.
func (e *ValidationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidBill, e.Err}
	}
	return []error{ErrInvalidBill}
}
