/*
Package factory converts between the JSON wire format and the domain types.

PURPOSE:
  Every boundary (HTTP API, export files, CLI input) speaks the same JSON
  shapes. This package owns them so that planner, interestfree and the
  stores never see a JSON tag.

JSON SCHEMA (bill):
  {
    "id": "5f0c...",
    "name": "Rent",
    "amount": 1000,
    "date": "2024-01-31",
    "frequency": "Custom",
    "group": "Housing",
    "customFrequency": {"value": 2, "unit": "weeks", "days": [1, 4]},
    "dateCategory": "day31"
  }

  Amounts are accepted as numbers or strings. Dates are accepted as
  YYYY-MM-DD, DD/MM/YYYY or a full ISO timestamp. Frequency labels outside
  the known set are kept as-is and reported when projected.

SEE ALSO:
  - cycles.go: Projected cycle output
  - period.go: Interest-free billing periods
  - document.go: Import/export files
*/
package factory

import (
	"fmt"
	"time"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
	"github.com/Fezbot3000/Interestfree-tracker/money"
	"github.com/Fezbot3000/Interestfree-tracker/planner"
)

// =============================================================================
// BILL JSON
// =============================================================================

// BillJSON is the JSON representation of a bill.
type BillJSON struct {
	ID              string               `json:"id,omitempty"`
	Name            string               `json:"name"`
	Amount          money.Amount         `json:"amount"`
	Date            string               `json:"date"`
	Frequency       string               `json:"frequency"`
	Group           string               `json:"group"`
	CustomFrequency *CustomFrequencyJSON `json:"customFrequency,omitempty"`
	DateCategory    string               `json:"dateCategory,omitempty"`
}

// CustomFrequencyJSON represents a custom recurrence rule. Days are weekday
// indices, 0 = Sunday.
type CustomFrequencyJSON struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"`
	Days  []int  `json:"days,omitempty"`
}

// BillToJSON converts a bill to its wire form.
func BillToJSON(b planner.Bill) BillJSON {
	bj := BillJSON{
		ID:           string(b.ID),
		Name:         b.Name,
		Amount:       b.Amount,
		Date:         b.Date,
		Frequency:    b.Frequency.Label(),
		Group:        b.Group,
		DateCategory: string(b.DateCategory),
	}
	if c := b.Frequency.Custom; c != nil {
		bj.CustomFrequency = &CustomFrequencyJSON{Value: c.Value, Unit: string(c.Unit)}
		for _, d := range c.Weekdays {
			bj.CustomFrequency.Days = append(bj.CustomFrequency.Days, int(d))
		}
	}
	return bj
}

// BillsToJSON converts a list, preserving order. A nil list becomes empty.
func BillsToJSON(bills []planner.Bill) []BillJSON {
	out := make([]BillJSON, 0, len(bills))
	for _, b := range bills {
		out = append(out, BillToJSON(b))
	}
	return out
}

// ToBill converts to the domain type. It never fails: malformed dates and
// unknown frequencies are carried through for the planner to report.
func (bj BillJSON) ToBill() planner.Bill {
	var rule *planner.CustomRule
	if cf := bj.CustomFrequency; cf != nil {
		rule = &planner.CustomRule{Value: cf.Value, Unit: planner.Unit(cf.Unit)}
		for _, d := range cf.Days {
			rule.Weekdays = append(rule.Weekdays, time.Weekday(d))
		}
	}

	return planner.Bill{
		ID:           planner.BillID(bj.ID),
		Name:         bj.Name,
		Amount:       bj.Amount,
		Date:         bj.Date,
		Frequency:    planner.ParseFrequency(bj.Frequency, rule),
		Group:        bj.Group,
		DateCategory: calendar.DateCategory(bj.DateCategory),
	}
}

// =============================================================================
// PAY CYCLE JSON
// =============================================================================

// PayCycleJSON is the JSON representation of the pay-cycle settings.
type PayCycleJSON struct {
	Start     string       `json:"start"`
	Frequency string       `json:"frequency"`
	Income    money.Amount `json:"income"`
}

func PayCycleToJSON(pc planner.PayCycle) PayCycleJSON {
	return PayCycleJSON{
		Start:     pc.Start.String(),
		Frequency: string(pc.Frequency),
		Income:    pc.Income,
	}
}

// ToPayCycle parses the start date. Frequency and income are checked by
// PayCycle.Validate.
func (pj PayCycleJSON) ToPayCycle() (planner.PayCycle, error) {
	start, err := calendar.ParseDate(pj.Start)
	if err != nil {
		return planner.PayCycle{}, fmt.Errorf("start: %w", err)
	}
	return planner.PayCycle{
		Start:     start,
		Frequency: planner.PayFrequency(pj.Frequency),
		Income:    pj.Income,
	}, nil
}
