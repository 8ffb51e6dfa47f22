/*
Package planner projects recurring bills across pay cycles.

PURPOSE:
  Given a master list of bills and pay-cycle parameters, the planner works
  out which dated occurrences of each bill land in each pay cycle. It is a
  pure, synchronous computation: storage and display belong to callers.

PIPELINE:
  Bill ──Classify──▶ CategorizedBill ──NextOccurrence──▶ dates
                                   │
                                   └──GenerateCycles──▶ []Cycle + []Issue

  1. Classify fixes the anchor date and its DateCategory once
  2. NextOccurrence steps a date forward by the bill's Frequency
  3. GenerateCycles builds contiguous pay cycles and walks each bill into them

KEY INVARIANT:
  A bill's DateCategory is decided once, from the anchor's day-of-month,
  and never recomputed. A bill that carries a stored category keeps it.

SEE ALSO:
  - frequency.go: The Frequency sum type
  - recurrence.go: Next-date rules
  - cycles.go: Cycle generator
  - calendar/category.go: Clamping rules per category
*/
package planner

import (
	"strings"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
	"github.com/Fezbot3000/Interestfree-tracker/money"
)

// =============================================================================
// BILL - Master record
// =============================================================================

type BillID string

// Bill is a master record as entered by the user. Date is kept as the raw
// string so that a malformed anchor surfaces when the bill is projected
// rather than when it is loaded.
type Bill struct {
	ID        BillID
	Name      string
	Amount    money.Amount
	Date      string
	Frequency Frequency
	Group     string

	// DateCategory is the memoised category from an earlier Classify.
	// Empty until the bill has been classified once.
	DateCategory calendar.DateCategory
}

// =============================================================================
// CLASSIFIER
// =============================================================================

// CategorizedBill is a bill with its anchor parsed and category fixed.
// Treat it as an immutable value.
type CategorizedBill struct {
	Bill     Bill
	Anchor   calendar.TimePoint
	Category calendar.DateCategory
}

// Classify parses the anchor and decides the category. A valid stored
// category wins over the computed one so that classification happens once
// for the life of the record. The input is not modified.
func Classify(b Bill) (CategorizedBill, error) {
	anchor, err := calendar.ParseDate(b.Date)
	if err != nil {
		return CategorizedBill{}, err
	}

	category := b.DateCategory
	if !category.Valid() {
		category = calendar.CategoryForDay(anchor.Day())
	}

	b.DateCategory = category
	return CategorizedBill{Bill: b, Anchor: anchor, Category: category}, nil
}

// Categorize returns a copy of b with DateCategory memoised. Calling it on
// an already categorised bill returns the bill unchanged.
func Categorize(b Bill) (Bill, error) {
	if b.DateCategory.Valid() {
		return b, nil
	}
	cb, err := Classify(b)
	if err != nil {
		return b, err
	}
	return cb.Bill, nil
}

// =============================================================================
// VALIDATION - Applied when bills are created or edited
// =============================================================================

// ValidateBill applies the creation-time rules. Stored or imported records
// may still be invalid; the generator tolerates them.
func ValidateBill(b Bill) error {
	if strings.TrimSpace(b.Name) == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if !b.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if _, err := calendar.ParseDate(b.Date); err != nil {
		return &ValidationError{Field: "date", Reason: "unparseable", Err: err}
	}
	if err := b.Frequency.Validate(); err != nil {
		return &ValidationError{Field: "frequency", Reason: "unsupported", Err: err}
	}
	if strings.TrimSpace(b.Group) == "" {
		return &ValidationError{Field: "group", Reason: "required"}
	}
	return nil
}
