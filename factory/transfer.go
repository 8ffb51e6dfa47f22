package factory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
	"github.com/Fezbot3000/Interestfree-tracker/interestfree"
	"github.com/Fezbot3000/Interestfree-tracker/planner"
)

// =============================================================================
// TRANSFER - Export from and import into the stores
// =============================================================================

// Transfer moves whole collections between the stores and Documents.
type Transfer struct {
	Bills   planner.Store
	Periods interestfree.Store
}

func NewTransfer(bills planner.Store, periods interestfree.Store) *Transfer {
	return &Transfer{Bills: bills, Periods: periods}
}

// Export reads the collections scope covers.
func (t *Transfer) Export(ctx context.Context, scope Scope) (Document, error) {
	var (
		bills   []planner.Bill
		pc      *planner.PayCycle
		periods []interestfree.BillingPeriod
	)

	if scope.IncludesPlanner() {
		var err error
		if bills, err = t.Bills.ListBills(ctx); err != nil {
			return Document{}, err
		}
		stored, ok, err := t.Bills.PayCycle(ctx)
		if err != nil {
			return Document{}, err
		}
		if ok {
			pc = &stored
		}
	}

	if scope.IncludesPeriods() {
		var err error
		if periods, err = t.Periods.ListPeriods(ctx); err != nil {
			return Document{}, err
		}
		interestfree.SortNewestFirst(periods)
	}

	return BuildDocument(scope, bills, pc, periods)
}

// ImportResult counts what an import replaced.
type ImportResult struct {
	Bills           int  `json:"bills"`
	BillingPeriods  int  `json:"billingPeriods"`
	PayCycleUpdated bool `json:"payCycleUpdated"`
}

// Import replaces the collections scope covers with the document's
// content. Bills are not validated: a bill the planner cannot project is
// reported as an Issue when projected, as it would be if entered directly.
func (t *Transfer) Import(ctx context.Context, doc Document, scope Scope) (ImportResult, error) {
	snap, err := doc.Decode(scope)
	if err != nil {
		return ImportResult{}, err
	}

	var result ImportResult

	if snap.Bills != nil {
		bills := make([]planner.Bill, 0, len(snap.Bills))
		for _, b := range snap.Bills {
			bills = append(bills, prepareBill(b))
		}
		if err := t.Bills.ReplaceBills(ctx, bills); err != nil {
			return result, fmt.Errorf("importing bills: %w", err)
		}
		result.Bills = len(bills)
	}

	if !snap.PayCycle.Empty() {
		current, ok, err := t.Bills.PayCycle(ctx)
		if err != nil {
			return result, err
		}
		if !ok {
			current = planner.PayCycle{Start: calendar.Today(), Frequency: planner.PayFortnightly}
		}
		pc := snap.PayCycle.Apply(current)
		if err := pc.Validate(); err != nil {
			return result, err
		}
		if err := t.Bills.SavePayCycle(ctx, pc); err != nil {
			return result, fmt.Errorf("importing pay cycle: %w", err)
		}
		result.PayCycleUpdated = true
	}

	if snap.Periods != nil {
		periods := make([]interestfree.BillingPeriod, 0, len(snap.Periods))
		for _, p := range snap.Periods {
			periods = append(periods, preparePeriod(p))
		}
		if err := t.Periods.ReplacePeriods(ctx, periods); err != nil {
			return result, fmt.Errorf("importing billing periods: %w", err)
		}
		result.BillingPeriods = len(periods)
	}

	return result, nil
}

// prepareBill assigns a missing ID, rewrites a parseable legacy date as
// YYYY-MM-DD and memoises the category. A malformed date is left as-is.
func prepareBill(b planner.Bill) planner.Bill {
	if b.ID == "" {
		b.ID = planner.BillID(uuid.NewString())
	}
	categorized, err := planner.Categorize(b)
	if err != nil {
		return b
	}
	if anchor, err := calendar.ParseDate(categorized.Date); err == nil {
		categorized.Date = anchor.String()
	}
	return categorized
}

func preparePeriod(p interestfree.BillingPeriod) interestfree.BillingPeriod {
	if p.ID == "" {
		p.ID = interestfree.PeriodID(uuid.NewString())
	}
	p.Migrate()
	for i := range p.Transactions {
		if p.Transactions[i].ID == "" {
			p.Transactions[i].ID = interestfree.TransactionID(uuid.NewString())
		}
	}
	return p
}
