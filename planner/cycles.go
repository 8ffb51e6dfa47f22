/*
cycles.go - Pay cycle generation and bill placement

PURPOSE:
  Builds a fixed number of contiguous pay cycles from a start date and pay
  frequency, then places every dated occurrence of every bill into the
  cycle whose window contains it.

ALGORITHM (per cycle i):
  1. cycleEnd = start + 1 month - 1 day (Monthly) or start + 13 days (Fortnightly)
  2. For each bill, take the anchor date. For i > 0, step the recurrence
     forward while the candidate is before cycleStart.
  3. Emit the candidate if it is inside [cycleStart, cycleEnd].
  4. For sub-cycle rules (Fortnightly, weekly), keep stepping from the
     candidate and emit every further date still inside the window.
  5. Next cycle starts the day after cycleEnd.

  Cycle 0 does not walk: a bill anchored before the first cycle only shows
  up there through the multi-occurrence step.

WALK CURSOR:
  The recurrence chain of a bill is fixed by its anchor and category, so
  the walk for cycle i resumes where the walk for cycle i-1 stopped instead
  of restarting from the anchor. This keeps generation linear in the number
  of elapsed periods rather than quadratic.

PARTIAL RESULTS:
  Problems are per bill. A malformed anchor excludes that bill; a rule that
  cannot produce a next date stops that bill's walk. Each is recorded once
  as an Issue and logged; every other bill and cycle is unaffected.

EXAMPLE:
  proj := planner.GenerateCycles(bills, planner.PayCycle{
      Start:     calendar.MustParseDate("2024-01-01"),
      Frequency: planner.PayMonthly,
      Income:    money.NewAmount(2000),
  }, planner.Options{CycleCount: 3})

  for _, c := range proj.Cycles {
      fmt.Println(c.Period, c.Expenses(), c.Balance())
  }
*/
package planner

import (
	"github.com/sirupsen/logrus"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
	"github.com/Fezbot3000/Interestfree-tracker/money"
)

// DefaultCycleCount is used when Options.CycleCount is not positive.
const DefaultCycleCount = 26

// =============================================================================
// PAY CYCLE PARAMETERS
// =============================================================================

type PayFrequency string

const (
	PayMonthly     PayFrequency = "Monthly"
	PayFortnightly PayFrequency = "Fortnightly"
)

func (f PayFrequency) Valid() bool { return f == PayMonthly || f == PayFortnightly }

// PayCycle holds the parameters cycles are generated from.
type PayCycle struct {
	Start     calendar.TimePoint
	Frequency PayFrequency
	Income    money.Amount
}

// Validate rejects parameters the generator would otherwise have to guess at.
func (pc PayCycle) Validate() error {
	if pc.Start.IsZero() {
		return &ValidationError{Field: "start", Reason: "required", Err: ErrInvalidPayCycle}
	}
	if !pc.Frequency.Valid() {
		return &ValidationError{Field: "frequency", Reason: "must be Monthly or Fortnightly", Err: ErrInvalidPayCycle}
	}
	if pc.Income.IsNegative() {
		return &ValidationError{Field: "income", Reason: "must not be negative", Err: ErrInvalidPayCycle}
	}
	return nil
}

// EndFor returns the last day of the cycle starting at start.
func (f PayFrequency) EndFor(start calendar.TimePoint) calendar.TimePoint {
	if f == PayMonthly {
		return start.AdvanceMonthsByCategory(1, calendar.CategoryNormal).AddDays(-1)
	}
	return start.AddDays(13)
}

// =============================================================================
// OUTPUT TYPES
// =============================================================================

// Occurrence is one dated instance of a bill inside a cycle. Bill is a copy
// of the master record; Date replaces its anchor for this instance.
type Occurrence struct {
	Bill        Bill
	Date        calendar.TimePoint
	OriginalDay int
}

type Cycle struct {
	Index  int
	Period calendar.Period
	Bills  []Occurrence
	Income money.Amount

	// Attention lists bills that could not be placed in this cycle. Only
	// populated with Options.SurfaceUnresolved.
	Attention []Issue
}

type IssueKind string

const (
	IssueInvalidAnchor        IssueKind = "invalid_anchor"
	IssueUnresolvedRecurrence IssueKind = "unresolved_recurrence"
	IssueInvalidInterval      IssueKind = "invalid_interval"
)

// Issue is a per-bill problem found while generating. Cycle is the index of
// the cycle being built when it was found, or -1 if found up front.
type Issue struct {
	BillID    BillID
	BillName  string
	Frequency string
	Kind      IssueKind
	Cycle     int
	Err       error
}

func (i Issue) Error() string {
	return string(i.Kind) + ": " + i.BillName + ": " + i.Err.Error()
}

type Projection struct {
	Cycles []Cycle
	Issues []Issue
}

// Options tunes a generation run. The zero value is usable.
type Options struct {
	// CycleCount is the number of cycles to build (DefaultCycleCount if <= 0).
	CycleCount int

	// SurfaceUnresolved adds unresolved bills to Cycle.Attention for every
	// cycle from the one where the walk stopped. Issues are always returned.
	SurfaceUnresolved bool

	// Logger receives a warning per Issue. Nil disables logging.
	Logger logrus.FieldLogger
}

// =============================================================================
// GENERATOR
// =============================================================================

type billCursor struct {
	bill     CategorizedBill
	position calendar.TimePoint
	stopped  *Issue
}

// GenerateCycles projects bills across contiguous pay cycles. bills is not
// modified. The result always has exactly CycleCount cycles.
func GenerateCycles(bills []Bill, pc PayCycle, opts Options) Projection {
	count := opts.CycleCount
	if count <= 0 {
		count = DefaultCycleCount
	}

	var proj Projection
	report := func(issue Issue) {
		proj.Issues = append(proj.Issues, issue)
		if opts.Logger != nil {
			opts.Logger.WithFields(logrus.Fields{
				"bill":      issue.BillName,
				"frequency": issue.Frequency,
				"kind":      issue.Kind,
				"cycle":     issue.Cycle,
			}).Warnf("bill projection: %v", issue.Err)
		}
	}

	cursors := make([]*billCursor, 0, len(bills))
	for _, b := range bills {
		cb, err := Classify(b)
		if err != nil {
			report(Issue{BillID: b.ID, BillName: b.Name, Frequency: b.Frequency.Label(), Kind: IssueInvalidAnchor, Cycle: -1, Err: err})
			continue
		}
		if c := cb.Bill.Frequency.Custom; cb.Bill.Frequency.Kind == KindCustom && c != nil && c.Value < 1 {
			report(Issue{BillID: b.ID, BillName: b.Name, Frequency: b.Frequency.Label(), Kind: IssueInvalidInterval, Cycle: -1,
				Err: &FrequencyError{Label: LabelCustom, Err: ErrInvalidInterval}})
		}
		cursors = append(cursors, &billCursor{bill: cb, position: cb.Anchor})
	}

	cycleStart := pc.Start.Normalize()
	proj.Cycles = make([]Cycle, 0, count)

	for i := 0; i < count; i++ {
		cycleEnd := pc.Frequency.EndFor(cycleStart)
		cycle := Cycle{
			Index:  i,
			Period: calendar.Period{Start: cycleStart, End: cycleEnd},
			Bills:  []Occurrence{},
			Income: pc.Income,
		}

		for _, cur := range cursors {
			if cur.stopped != nil {
				if opts.SurfaceUnresolved {
					cycle.Attention = append(cycle.Attention, *cur.stopped)
				}
				continue
			}

			if i > 0 {
				if issue := cur.walkTo(cycleStart, i); issue != nil {
					cur.stopped = issue
					report(*issue)
					if opts.SurfaceUnresolved {
						cycle.Attention = append(cycle.Attention, *issue)
					}
					continue
				}
			}

			cycle.Bills = append(cycle.Bills, cur.occurrencesIn(cycle.Period)...)
		}

		proj.Cycles = append(proj.Cycles, cycle)
		cycleStart = cycleEnd.AddDays(1)
	}

	return proj
}

// walkTo advances the cursor until it reaches or passes start. It returns an
// Issue if the chain breaks for any reason other than a One-Off ending.
func (c *billCursor) walkTo(start calendar.TimePoint, cycle int) *Issue {
	for c.position.Before(start) {
		next, ok := c.bill.NextOccurrence(c.position)
		if !ok {
			err := c.bill.Bill.Frequency.Resolvable()
			if err == nil {
				// One-Off: no further occurrences
				return nil
			}
			return c.issue(IssueUnresolvedRecurrence, cycle, err)
		}
		if !next.After(c.position) {
			return c.issue(IssueUnresolvedRecurrence, cycle, ErrStalledRecurrence)
		}
		c.position = next
	}
	return nil
}

// occurrencesIn emits the cursor date if it is inside the window, then any
// further sub-cycle occurrences. The cursor itself does not move.
func (c *billCursor) occurrencesIn(window calendar.Period) []Occurrence {
	var out []Occurrence
	emit := func(d calendar.TimePoint) {
		out = append(out, Occurrence{Bill: c.bill.Bill, Date: d, OriginalDay: c.bill.Anchor.Day()})
	}

	if window.Contains(c.position) {
		emit(c.position)
	}

	if !c.bill.Bill.Frequency.IsSubCycle() {
		return out
	}

	prev := c.position
	next, ok := c.bill.NextOccurrence(prev)
	for ok && next.After(prev) && window.Contains(next) {
		emit(next)
		prev = next
		next, ok = c.bill.NextOccurrence(prev)
	}
	return out
}

func (c *billCursor) issue(kind IssueKind, cycle int, err error) *Issue {
	b := c.bill.Bill
	return &Issue{BillID: b.ID, BillName: b.Name, Frequency: b.Frequency.Label(), Kind: kind, Cycle: cycle, Err: err}
}

// =============================================================================
// CYCLE TOTALS
// =============================================================================

// Expenses is the sum of all occurrence amounts in the cycle.
func (c Cycle) Expenses() money.Amount {
	total := money.Zero()
	for _, o := range c.Bills {
		total = total.Add(o.Bill.Amount)
	}
	return total
}

// Balance is income minus expenses; negative means the cycle is short.
func (c Cycle) Balance() money.Amount { return c.Income.Sub(c.Expenses()) }

// Group is the display grouping of a cycle's occurrences.
type Group struct {
	Name  string
	Bills []Occurrence
	Total money.Amount
}

// Groups buckets occurrences by Bill.Group in first-seen order.
func (c Cycle) Groups() []Group {
	index := make(map[string]int)
	var groups []Group
	for _, o := range c.Bills {
		i, ok := index[o.Bill.Group]
		if !ok {
			i = len(groups)
			index[o.Bill.Group] = i
			groups = append(groups, Group{Name: o.Bill.Group, Total: money.Zero()})
		}
		groups[i].Bills = append(groups[i].Bills, o)
		groups[i].Total = groups[i].Total.Add(o.Bill.Amount)
	}
	return groups
}
