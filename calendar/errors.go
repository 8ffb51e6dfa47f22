package calendar

import (
	"errors"
	"fmt"
)

// ErrInvalidDate is returned for any date string ParseDate cannot read.
var ErrInvalidDate = errors.New("invalid date")

// DateError carries the rejected input.
type DateError struct {
	Input  string
	Reason string
}

func (e *DateError) Error() string {
	return fmt.Sprintf("invalid date %q: %s", e.Input, e.Reason)
}

func (e *DateError) Unwrap() error { return ErrInvalidDate }
