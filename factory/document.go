/*
document.go - Import/export file format

PURPOSE:
  Reads and writes the backup files the finance tracker has always
  produced, so that files exported before the move to a server still
  import.

JSON SCHEMA:
  {
    "interestFreeData": {
      "billingPeriods": [ BillingPeriodJSON, ... ]
    },
    "billPlannerData": {
      "payCycleStart": "2024-01-04",
      "payCycleFrequency": "Fortnightly",
      "payCycleIncome": "2450.75",
      "billData": "[{\"name\":\"Rent\", ...}]"
    }
  }

  billData is the bill list encoded as a JSON string, not an array. Any
  billPlannerData field may be null. Either section may be absent.

LEGACY FORMS:
  ParseDocument also accepts a bare array of billing periods and an object
  with a top-level billingPeriods array.

SCOPES:
  interest-free  Billing periods only
  bill-planner   Bills and pay-cycle settings only
  both           Everything
*/
package factory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
	"github.com/Fezbot3000/Interestfree-tracker/interestfree"
	"github.com/Fezbot3000/Interestfree-tracker/money"
	"github.com/Fezbot3000/Interestfree-tracker/planner"
)

var (
	// ErrUnknownScope is returned for a scope outside interest-free, bill-planner and both.
	ErrUnknownScope = errors.New("unknown export scope")

	// ErrMissingSection is returned when a file lacks the section a scope requires.
	ErrMissingSection = errors.New("file has no data for the requested scope")

	// ErrInvalidDocument is returned for a file that is not a recognised export.
	ErrInvalidDocument = errors.New("invalid export file")
)

// =============================================================================
// SCOPE
// =============================================================================

type Scope string

const (
	ScopeInterestFree Scope = "interest-free"
	ScopeBillPlanner  Scope = "bill-planner"
	ScopeBoth         Scope = "both"
)

func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeInterestFree, ScopeBillPlanner, ScopeBoth:
		return Scope(s), nil
	case "":
		return ScopeBoth, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScope, s)
}

func (s Scope) IncludesPeriods() bool { return s == ScopeInterestFree || s == ScopeBoth }
func (s Scope) IncludesPlanner() bool { return s == ScopeBillPlanner || s == ScopeBoth }

// Filename is the download name for an export made on day.
func (s Scope) Filename(day calendar.TimePoint) string {
	switch s {
	case ScopeInterestFree:
		return "interest_free_tracker_" + day.String() + ".json"
	case ScopeBillPlanner:
		return "bill_planner_" + day.String() + ".json"
	default:
		return "finance_tracker_all_" + day.String() + ".json"
	}
}

// =============================================================================
// DOCUMENT
// =============================================================================

type Document struct {
	InterestFreeData *InterestFreeData `json:"interestFreeData,omitempty"`
	BillPlannerData  *BillPlannerData  `json:"billPlannerData,omitempty"`
}

type InterestFreeData struct {
	BillingPeriods []BillingPeriodJSON `json:"billingPeriods"`
}

type BillPlannerData struct {
	PayCycleStart     *string `json:"payCycleStart"`
	PayCycleFrequency *string `json:"payCycleFrequency"`
	PayCycleIncome    *string `json:"payCycleIncome"`
	BillData          *string `json:"billData"`
}

// Snapshot is the decoded content of a document. A nil slice means the
// file did not carry that collection; an empty one means it carried none.
type Snapshot struct {
	Bills    []planner.Bill
	PayCycle PayCyclePatch
	Periods  []interestfree.BillingPeriod
}

// PayCyclePatch holds the pay-cycle fields present in a file. Absent fields
// leave the current setting alone.
type PayCyclePatch struct {
	Start     *calendar.TimePoint
	Frequency *planner.PayFrequency
	Income    *money.Amount
}

func (p PayCyclePatch) Empty() bool {
	return p.Start == nil && p.Frequency == nil && p.Income == nil
}

// Apply overlays the present fields onto pc.
func (p PayCyclePatch) Apply(pc planner.PayCycle) planner.PayCycle {
	if p.Start != nil {
		pc.Start = *p.Start
	}
	if p.Frequency != nil {
		pc.Frequency = *p.Frequency
	}
	if p.Income != nil {
		pc.Income = *p.Income
	}
	return pc
}

// BuildDocument assembles an export for scope. pc is nil when no settings
// have been saved.
func BuildDocument(scope Scope, bills []planner.Bill, pc *planner.PayCycle, periods []interestfree.BillingPeriod) (Document, error) {
	var doc Document

	if scope.IncludesPeriods() {
		doc.InterestFreeData = &InterestFreeData{BillingPeriods: PeriodsToJSON(periods)}
	}

	if scope.IncludesPlanner() {
		data, err := json.Marshal(BillsToJSON(bills))
		if err != nil {
			return Document{}, fmt.Errorf("failed to encode bills: %w", err)
		}
		bp := &BillPlannerData{BillData: ptr(string(data))}
		if pc != nil {
			bp.PayCycleStart = ptr(pc.Start.String())
			bp.PayCycleFrequency = ptr(string(pc.Frequency))
			bp.PayCycleIncome = ptr(pc.Income.String())
		}
		doc.BillPlannerData = bp
	}

	return doc, nil
}

// ParseDocument reads an export file, accepting the legacy forms.
func ParseDocument(data []byte) (Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Document{}, ErrInvalidDocument
	}

	if data[0] == '[' {
		var periods []BillingPeriodJSON
		if err := json.Unmarshal(data, &periods); err != nil {
			return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		return Document{InterestFreeData: &InterestFreeData{BillingPeriods: periods}}, nil
	}

	var raw struct {
		Document
		BillingPeriods []BillingPeriodJSON `json:"billingPeriods"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	doc := raw.Document
	if doc.InterestFreeData == nil && raw.BillingPeriods != nil {
		doc.InterestFreeData = &InterestFreeData{BillingPeriods: raw.BillingPeriods}
	}
	if doc.InterestFreeData == nil && doc.BillPlannerData == nil {
		return Document{}, ErrInvalidDocument
	}
	return doc, nil
}

// Decode extracts the collections scope asks for. A single-section scope
// fails if its section is missing; ScopeBoth takes whatever is present.
func (d Document) Decode(scope Scope) (Snapshot, error) {
	var snap Snapshot

	if scope.IncludesPeriods() {
		if d.InterestFreeData == nil {
			if scope == ScopeInterestFree {
				return Snapshot{}, fmt.Errorf("%w: %s", ErrMissingSection, scope)
			}
		} else {
			snap.Periods = make([]interestfree.BillingPeriod, 0, len(d.InterestFreeData.BillingPeriods))
			for _, pj := range d.InterestFreeData.BillingPeriods {
				p, err := pj.ToPeriod()
				if err != nil {
					return Snapshot{}, err
				}
				snap.Periods = append(snap.Periods, p)
			}
		}
	}

	if scope.IncludesPlanner() {
		if d.BillPlannerData == nil {
			if scope == ScopeBillPlanner {
				return Snapshot{}, fmt.Errorf("%w: %s", ErrMissingSection, scope)
			}
		} else {
			if err := d.BillPlannerData.decodeInto(&snap); err != nil {
				return Snapshot{}, err
			}
		}
	}

	return snap, nil
}

func (bp BillPlannerData) decodeInto(snap *Snapshot) error {
	if bp.PayCycleStart != nil && *bp.PayCycleStart != "" {
		start, err := calendar.ParseDate(*bp.PayCycleStart)
		if err != nil {
			return fmt.Errorf("payCycleStart: %w", err)
		}
		snap.PayCycle.Start = &start
	}
	if bp.PayCycleFrequency != nil && *bp.PayCycleFrequency != "" {
		f := planner.PayFrequency(*bp.PayCycleFrequency)
		snap.PayCycle.Frequency = &f
	}
	if bp.PayCycleIncome != nil && *bp.PayCycleIncome != "" {
		income, err := money.Parse(*bp.PayCycleIncome)
		if err != nil {
			return fmt.Errorf("payCycleIncome: %w", err)
		}
		snap.PayCycle.Income = &income
	}

	if bp.BillData != nil && *bp.BillData != "" {
		var bills []BillJSON
		if err := json.Unmarshal([]byte(*bp.BillData), &bills); err != nil {
			return fmt.Errorf("billData: %w", err)
		}
		snap.Bills = make([]planner.Bill, 0, len(bills))
		for _, bj := range bills {
			snap.Bills = append(snap.Bills, bj.ToBill())
		}
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
