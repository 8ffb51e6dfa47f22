/*
Package interestfree tracks credit-card billing periods with an
interest-free window.

PURPOSE:
  A billing period is a statement window [Start, End]. Purchases made in
  it are interest-free for InterestFreeDays counted from Start, so the
  balance has to be repaid by InterestFreeEnd. The package records expenses
  and repayments against a period and reports what is still owing and how
  many interest-free days remain.

KEY FORMULAS:
  InterestFreeEnd = Start + InterestFreeDays - 1
  TotalOwing      = sum(expenses) - sum(repayments)
  RemainingDays   = max(0, InterestFreeDays - daysElapsed(Start, today))

SEE ALSO:
  - service.go: Validation and persistence
  - factory/period.go: Wire format
*/
package interestfree

import (
	"sort"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
	"github.com/Fezbot3000/Interestfree-tracker/money"
)

// DefaultInterestFreeDays is the usual card offer.
const DefaultInterestFreeDays = 55

// =============================================================================
// TRANSACTIONS
// =============================================================================

type TransactionID string

type TransactionType string

const (
	Expense   TransactionType = "expense"
	Repayment TransactionType = "repayment"
)

func (t TransactionType) Valid() bool { return t == Expense || t == Repayment }

// DefaultDescription is used when a transaction is entered without one.
func (t TransactionType) DefaultDescription() string {
	if t == Repayment {
		return "Payment"
	}
	return "Transaction"
}

type Transaction struct {
	ID          TransactionID
	Date        calendar.TimePoint
	Description string
	Amount      money.Amount
	Type        TransactionType
}

// =============================================================================
// BILLING PERIOD
// =============================================================================

type PeriodID string

type BillingPeriod struct {
	ID               PeriodID
	Start            calendar.TimePoint
	End              calendar.TimePoint
	InterestFreeDays int
	InterestFreeEnd  calendar.TimePoint
	Transactions     []Transaction
}

// Status of a period relative to its interest-free window.
type Status string

const (
	StatusActive  Status = "Active"
	StatusExpired Status = "Expired"
)

// Window is the statement window as a Period.
func (p BillingPeriod) Window() calendar.Period {
	return calendar.Period{Start: p.Start, End: p.End}
}

// ComputeInterestFreeEnd returns the last interest-free day.
func (p BillingPeriod) ComputeInterestFreeEnd() calendar.TimePoint {
	return p.Start.AddDays(p.InterestFreeDays - 1)
}

// Migrate fills in fields missing from records written by older versions.
// It reports whether anything changed.
func (p *BillingPeriod) Migrate() bool {
	changed := false
	if p.InterestFreeDays <= 0 {
		p.InterestFreeDays = DefaultInterestFreeDays
		changed = true
	}
	if p.InterestFreeEnd.IsZero() {
		p.InterestFreeEnd = p.ComputeInterestFreeEnd()
		changed = true
	}
	return changed
}

func (p BillingPeriod) Expenses() money.Amount   { return p.sum(Expense) }
func (p BillingPeriod) Repayments() money.Amount { return p.sum(Repayment) }

// TotalOwing is expenses minus repayments. It goes negative on overpayment.
func (p BillingPeriod) TotalOwing() money.Amount {
	return p.Expenses().Sub(p.Repayments())
}

func (p BillingPeriod) sum(t TransactionType) money.Amount {
	total := money.Zero()
	for _, tx := range p.Transactions {
		if tx.Type == t {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// RemainingDays is how many interest-free days are left as of today.
func (p BillingPeriod) RemainingDays(today calendar.TimePoint) int {
	remaining := p.InterestFreeDays - calendar.DaysBetween(p.Start, today)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (p BillingPeriod) Status(today calendar.TimePoint) Status {
	if p.RemainingDays(today) > 0 {
		return StatusActive
	}
	return StatusExpired
}

// SortedTransactions returns the transactions oldest first. Ties keep entry order.
func (p BillingPeriod) SortedTransactions() []Transaction {
	out := make([]Transaction, len(p.Transactions))
	copy(out, p.Transactions)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Summary is the computed view of a period at a point in time.
type Summary struct {
	Expenses      money.Amount
	Repayments    money.Amount
	TotalOwing    money.Amount
	RemainingDays int
	Status        Status
}

func (p BillingPeriod) Summarize(today calendar.TimePoint) Summary {
	return Summary{
		Expenses:      p.Expenses(),
		Repayments:    p.Repayments(),
		TotalOwing:    p.TotalOwing(),
		RemainingDays: p.RemainingDays(today),
		Status:        p.Status(today),
	}
}

// SortNewestFirst orders periods by start date, most recent first.
func SortNewestFirst(periods []BillingPeriod) {
	sort.SliceStable(periods, func(i, j int) bool { return periods[i].Start.After(periods[j].Start) })
}
