/*
scenarios.go - Demo data sets for trying the planner

PURPOSE:
	Provides pre-built scenarios that replace all stored data with a
	realistic household: a pay cycle, a bill list and interest-free billing
	periods. Dates are laid out relative to today so the projection always
	has something to show.

AVAILABLE SCENARIOS:

	monthly-household:  Monthly pay, month-end rent, weekly groceries
	fortnightly-renter: Fortnightly pay, fortnightly rent, legacy gym bill
	card-juggler:       Interest-free card with an expired and an active period
	empty:              Clears everything

HOW SCENARIOS WORK:
 1. Build bills, pay cycle and periods in memory
 2. Encode them as an export file (same format as a backup)
 3. Import the file with scope "both", which replaces all data

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "monthly-household"}

NOTE:

	Loading a scenario overwrites stored data. Export a backup first.

SEE ALSO:
  - factory/transfer.go: Import
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
	"github.com/Fezbot3000/Interestfree-tracker/factory"
	"github.com/Fezbot3000/Interestfree-tracker/interestfree"
	"github.com/Fezbot3000/Interestfree-tracker/money"
	"github.com/Fezbot3000/Interestfree-tracker/planner"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// ScenarioDTO describes a loadable data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type scenarioData struct {
	bills    []planner.Bill
	payCycle planner.PayCycle
	periods  []interestfree.BillingPeriod
}

type scenario struct {
	ScenarioDTO
	build func(today calendar.TimePoint) scenarioData
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "monthly-household",
			Name:        "Monthly Household",
			Description: "Monthly pay, rent on the 31st, weekly groceries and a yearly insurance bill",
		},
		build: monthlyHousehold,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "fortnightly-renter",
			Name:        "Fortnightly Renter",
			Description: "Fortnightly pay and rent, a legacy weekly gym bill and a one-off dentist visit",
		},
		build: fortnightlyRenter,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "card-juggler",
			Name:        "Card Juggler",
			Description: "Interest-free card with an expired period and an active one",
		},
		build: cardJuggler,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "empty",
			Name:        "Empty",
			Description: "No bills and no billing periods",
		},
		build: func(today calendar.TimePoint) scenarioData {
			return scenarioData{
				bills:    []planner.Bill{},
				payCycle: planner.PayCycle{Start: today, Frequency: planner.PayFortnightly, Income: money.Zero()},
				periods:  []interestfree.BillingPeriod{},
			}
		},
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	out := make([]ScenarioDTO, 0, len(scenarios))
	for _, s := range scenarios {
		out = append(out, s.ScenarioDTO)
	}
	writeJSON(w, http.StatusOK, out)
}

// LoadScenario replaces all data with a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.loadScenario(r.Context(), req.ScenarioID)
	if err != nil {
		if errors.Is(err, errUnknownScenario) {
			writeError(w, http.StatusNotFound, "Unknown scenario", err)
			return
		}
		h.writeDomainError(w, "Failed to load scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

var errUnknownScenario = errors.New("unknown scenario")

func (h *Handler) loadScenario(ctx context.Context, id string) (factory.ImportResult, error) {
	for _, s := range scenarios {
		if s.ID != id {
			continue
		}
		data := s.build(h.InterestFree.Today())
		doc, err := factory.BuildDocument(factory.ScopeBoth, data.bills, &data.payCycle, data.periods)
		if err != nil {
			return factory.ImportResult{}, err
		}
		result, err := h.Transfer.Import(ctx, doc, factory.ScopeBoth)
		if err != nil {
			return result, err
		}
		h.log().WithField("scenario", id).Info("scenario loaded")
		return result, nil
	}
	return factory.ImportResult{}, fmt.Errorf("%w: %q", errUnknownScenario, id)
}

// =============================================================================
// SCENARIO BUILDERS
// =============================================================================

func monthlyHousehold(today calendar.TimePoint) scenarioData {
	start := calendar.StartOfMonth(today.Year(), today.Month())
	last := calendar.EndOfMonth(today.Year(), today.Month())

	return scenarioData{
		payCycle: planner.PayCycle{Start: start, Frequency: planner.PayMonthly, Income: money.MustParse("5200")},
		bills: []planner.Bill{
			demoBill("Rent", "2100", last, planner.Monthly(), "Housing"),
			demoBill("Phone", "45", start.AddDays(27), planner.Monthly(), "Utilities"),
			demoBill("Electricity", "180", start.AddDays(14), planner.Custom(2, planner.UnitMonths), "Utilities"),
			demoBill("Groceries", "160", start, planner.Custom(1, planner.UnitWeeks, time.Saturday), "Food"),
			demoBill("Car Insurance", "940", start.AddDays(9), planner.Yearly(), "Transport"),
			demoBill("Council Rates", "620", start.AddDays(19), planner.SixMonthly(), "Housing"),
		},
		periods: []interestfree.BillingPeriod{},
	}
}

func fortnightlyRenter(today calendar.TimePoint) scenarioData {
	start := today.AddDays(-3)

	return scenarioData{
		payCycle: planner.PayCycle{Start: start, Frequency: planner.PayFortnightly, Income: money.MustParse("2350")},
		bills: []planner.Bill{
			demoBill("Rent", "980", start.AddDays(1), planner.Fortnightly(), "Housing"),
			demoBill("Gym", "18", start, planner.LegacyWeeklyMonday(), "Health"),
			demoBill("Streaming", "22.99", start.AddDays(5), planner.Monthly(), "Entertainment"),
			demoBill("Dentist", "240", start.AddDays(20), planner.OneOff(), "Health"),
			demoBill("Internet", "89", start.AddDays(8), planner.Monthly(), "Utilities"),
		},
		periods: []interestfree.BillingPeriod{},
	}
}

func cardJuggler(today calendar.TimePoint) scenarioData {
	currentStart := calendar.StartOfMonth(today.Year(), today.Month())
	current := demoPeriod("current", currentStart, calendar.EndOfMonth(today.Year(), today.Month()),
		demoTx("current-1", currentStart, "Laptop", "1899", interestfree.Expense),
		demoTx("current-2", currentStart.AddDays(2), "Groceries", "212.40", interestfree.Expense),
	)

	prev := currentStart.AddDays(-1)
	prevStart := calendar.StartOfMonth(prev.Year(), prev.Month())
	previous := demoPeriod("previous", prevStart, prev,
		demoTx("previous-1", prevStart.AddDays(4), "Couch", "1450", interestfree.Expense),
		demoTx("previous-2", prevStart.AddDays(20), "", "700", interestfree.Repayment),
	)

	oldEnd := prevStart.AddDays(-1)
	oldStart := calendar.StartOfMonth(oldEnd.Year(), oldEnd.Month()).AddDays(-60)
	old := demoPeriod("old", oldStart, oldStart.AddDays(30),
		demoTx("old-1", oldStart.AddDays(3), "Fridge", "1100", interestfree.Expense),
		demoTx("old-2", oldStart.AddDays(25), "", "1100", interestfree.Repayment),
	)

	return scenarioData{
		bills:    []planner.Bill{demoBill("Card Repayment", "650", currentStart.AddDays(24), planner.Monthly(), "Debt")},
		payCycle: planner.PayCycle{Start: currentStart, Frequency: planner.PayMonthly, Income: money.MustParse("4800")},
		periods:  []interestfree.BillingPeriod{old, previous, current},
	}
}

func demoBill(name, amount string, date calendar.TimePoint, freq planner.Frequency, group string) planner.Bill {
	return planner.Bill{
		Name:      name,
		Amount:    money.MustParse(amount),
		Date:      date.String(),
		Frequency: freq,
		Group:     group,
	}
}

func demoPeriod(id string, start, end calendar.TimePoint, txs ...interestfree.Transaction) interestfree.BillingPeriod {
	p := interestfree.BillingPeriod{
		ID:               interestfree.PeriodID(id),
		Start:            start,
		End:              end,
		InterestFreeDays: interestfree.DefaultInterestFreeDays,
		Transactions:     txs,
	}
	p.InterestFreeEnd = p.ComputeInterestFreeEnd()
	return p
}

func demoTx(id string, date calendar.TimePoint, desc, amount string, typ interestfree.TransactionType) interestfree.Transaction {
	if desc == "" {
		desc = typ.DefaultDescription()
	}
	return interestfree.Transaction{
		ID:          interestfree.TransactionID(id),
		Date:        date,
		Description: desc,
		Amount:      money.MustParse(amount),
		Type:        typ,
	}
}
