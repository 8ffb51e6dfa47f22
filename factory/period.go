package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
	"github.com/Fezbot3000/Interestfree-tracker/interestfree"
	"github.com/Fezbot3000/Interestfree-tracker/money"
)

// =============================================================================
// BILLING PERIOD JSON
// =============================================================================

// FlexibleID accepts a JSON string or number. Older export files carry
// numeric timestamp IDs.
type FlexibleID string

func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = FlexibleID(n.String())
	return nil
}

type TransactionJSON struct {
	ID          FlexibleID   `json:"id"`
	Date        string       `json:"date"`
	Description string       `json:"description"`
	Amount      money.Amount `json:"amount"`
	Type        string       `json:"type"`
}

// BillingPeriodJSON is the JSON representation of a billing period.
// InterestFreeEndDate may be absent in older files.
type BillingPeriodJSON struct {
	ID                     FlexibleID        `json:"id"`
	StartDate              string            `json:"startDate"`
	EndDate                string            `json:"endDate"`
	InterestFreePeriodDays int               `json:"interestFreePeriodDays"`
	InterestFreeEndDate    string            `json:"interestFreeEndDate,omitempty"`
	Transactions           []TransactionJSON `json:"transactions"`
}

// PeriodViewJSON adds the computed figures shown alongside a period.
type PeriodViewJSON struct {
	BillingPeriodJSON
	TotalExpenses   money.Amount `json:"totalExpenses"`
	TotalRepayments money.Amount `json:"totalRepayments"`
	TotalOwing      money.Amount `json:"totalOwing"`
	RemainingDays   int          `json:"remainingDays"`
	Status          string       `json:"status"`
}

func PeriodToJSON(p interestfree.BillingPeriod) BillingPeriodJSON {
	pj := BillingPeriodJSON{
		ID:                     FlexibleID(p.ID),
		StartDate:              p.Start.String(),
		EndDate:                p.End.String(),
		InterestFreePeriodDays: p.InterestFreeDays,
		Transactions:           make([]TransactionJSON, 0, len(p.Transactions)),
	}
	if !p.InterestFreeEnd.IsZero() {
		pj.InterestFreeEndDate = p.InterestFreeEnd.String()
	}
	for _, t := range p.Transactions {
		pj.Transactions = append(pj.Transactions, TransactionToJSON(t))
	}
	return pj
}

func PeriodsToJSON(periods []interestfree.BillingPeriod) []BillingPeriodJSON {
	out := make([]BillingPeriodJSON, 0, len(periods))
	for _, p := range periods {
		out = append(out, PeriodToJSON(p))
	}
	return out
}

func PeriodToView(p interestfree.BillingPeriod, today calendar.TimePoint) PeriodViewJSON {
	s := p.Summarize(today)
	return PeriodViewJSON{
		BillingPeriodJSON: PeriodToJSON(p),
		TotalExpenses:     s.Expenses,
		TotalRepayments:   s.Repayments,
		TotalOwing:        s.TotalOwing,
		RemainingDays:     s.RemainingDays,
		Status:            string(s.Status),
	}
}

func TransactionToJSON(t interestfree.Transaction) TransactionJSON {
	return TransactionJSON{
		ID:          FlexibleID(t.ID),
		Date:        t.Date.String(),
		Description: t.Description,
		Amount:      t.Amount,
		Type:        string(t.Type),
	}
}

// ToPeriod parses dates. A missing interest-free end is left zero for
// BillingPeriod.Migrate to fill in.
func (pj BillingPeriodJSON) ToPeriod() (interestfree.BillingPeriod, error) {
	p := interestfree.BillingPeriod{
		ID:               interestfree.PeriodID(pj.ID),
		InterestFreeDays: pj.InterestFreePeriodDays,
		Transactions:     make([]interestfree.Transaction, 0, len(pj.Transactions)),
	}

	var err error
	if p.Start, err = calendar.ParseDate(pj.StartDate); err != nil {
		return p, fmt.Errorf("period %s: startDate: %w", pj.ID, err)
	}
	if p.End, err = calendar.ParseDate(pj.EndDate); err != nil {
		return p, fmt.Errorf("period %s: endDate: %w", pj.ID, err)
	}
	if strings.TrimSpace(pj.InterestFreeEndDate) != "" {
		if p.InterestFreeEnd, err = calendar.ParseDate(pj.InterestFreeEndDate); err != nil {
			return p, fmt.Errorf("period %s: interestFreeEndDate: %w", pj.ID, err)
		}
	}

	for _, tj := range pj.Transactions {
		t, err := tj.ToTransaction()
		if err != nil {
			return p, fmt.Errorf("period %s: %w", pj.ID, err)
		}
		p.Transactions = append(p.Transactions, t)
	}
	return p, nil
}

func (tj TransactionJSON) ToTransaction() (interestfree.Transaction, error) {
	date, err := calendar.ParseDate(tj.Date)
	if err != nil {
		return interestfree.Transaction{}, fmt.Errorf("transaction %s: date: %w", tj.ID, err)
	}
	t := interestfree.Transaction{
		ID:          interestfree.TransactionID(tj.ID),
		Date:        date,
		Description: tj.Description,
		Amount:      tj.Amount,
		Type:        interestfree.TransactionType(tj.Type),
	}
	if !t.Type.Valid() {
		return t, fmt.Errorf("transaction %s: type %q: %w", tj.ID, tj.Type, interestfree.ErrInvalidTransaction)
	}
	if strings.TrimSpace(t.Description) == "" {
		t.Description = t.Type.DefaultDescription()
	}
	return t, nil
}
