/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Request bodies and response wrappers specific to the HTTP API. The
  shared JSON shapes (bills, cycles, billing periods, export files) live in
  factory so that the CLI and export files use the same ones.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *Response: Response wrappers

VALIDATION:
  Validation is done in the services, not in DTOs. DTOs are pure data
  carriers; handlers only parse dates.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/: Shared wire types
*/
package api

import (
	"github.com/Fezbot3000/Interestfree-tracker/factory"
	"github.com/Fezbot3000/Interestfree-tracker/money"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// PreviewRequest projects an ad-hoc bill list without touching the store.
type PreviewRequest struct {
	Bills    []factory.BillJSON   `json:"bills"`
	PayCycle factory.PayCycleJSON `json:"payCycle"`
	Count    int                  `json:"count,omitempty"`
}

// PeriodRequest creates or edits a billing period. Zero days means the
// configured default on create and "unchanged" on edit.
type PeriodRequest struct {
	StartDate              string `json:"startDate"`
	EndDate                string `json:"endDate"`
	InterestFreePeriodDays int    `json:"interestFreePeriodDays,omitempty"`
}

type TransactionRequest struct {
	Date        string       `json:"date"`
	Description string       `json:"description"`
	Amount      money.Amount `json:"amount"`
	Type        string       `json:"type"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type RolloverResponse struct {
	PayCycle factory.PayCycleJSON `json:"payCycle"`
	Moved    bool                 `json:"moved"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}
