package factory

import (
	"github.com/Fezbot3000/Interestfree-tracker/money"
	"github.com/Fezbot3000/Interestfree-tracker/planner"
)

// =============================================================================
// PROJECTION JSON
// =============================================================================

// OccurrenceJSON is a bill copy with its date rewritten to the occurrence
// date. OriginalDay is the anchor's day-of-month.
type OccurrenceJSON struct {
	BillJSON
	OriginalDay int `json:"_originalDay"`
}

type GroupJSON struct {
	Name  string           `json:"name"`
	Total money.Amount     `json:"total"`
	Bills []OccurrenceJSON `json:"bills"`
}

type IssueJSON struct {
	BillID    string `json:"billId,omitempty"`
	BillName  string `json:"billName"`
	Frequency string `json:"frequency,omitempty"`
	Kind      string `json:"kind"`
	Cycle     int    `json:"cycle"`
	Error     string `json:"error"`
}

type CycleJSON struct {
	Index      int              `json:"index"`
	CycleStart string           `json:"cycleStart"`
	CycleEnd   string           `json:"cycleEnd"`
	Income     money.Amount     `json:"income"`
	Expenses   money.Amount     `json:"expenses"`
	Balance    money.Amount     `json:"balance"`
	Bills      []OccurrenceJSON `json:"bills"`
	Groups     []GroupJSON      `json:"groups"`
	Attention  []IssueJSON      `json:"attention,omitempty"`
}

type ProjectionJSON struct {
	PayCycle PayCycleJSON `json:"payCycle"`
	Cycles   []CycleJSON  `json:"cycles"`
	Issues   []IssueJSON  `json:"issues"`
}

func OccurrenceToJSON(o planner.Occurrence) OccurrenceJSON {
	bj := BillToJSON(o.Bill)
	bj.Date = o.Date.String()
	return OccurrenceJSON{BillJSON: bj, OriginalDay: o.OriginalDay}
}

func IssueToJSON(i planner.Issue) IssueJSON {
	return IssueJSON{
		BillID:    string(i.BillID),
		BillName:  i.BillName,
		Frequency: i.Frequency,
		Kind:      string(i.Kind),
		Cycle:     i.Cycle,
		Error:     i.Err.Error(),
	}
}

func CycleToJSON(c planner.Cycle) CycleJSON {
	cj := CycleJSON{
		Index:      c.Index,
		CycleStart: c.Period.Start.String(),
		CycleEnd:   c.Period.End.String(),
		Income:     c.Income,
		Expenses:   c.Expenses(),
		Balance:    c.Balance(),
		Bills:      occurrencesToJSON(c.Bills),
		Groups:     []GroupJSON{},
	}
	for _, g := range c.Groups() {
		cj.Groups = append(cj.Groups, GroupJSON{Name: g.Name, Total: g.Total, Bills: occurrencesToJSON(g.Bills)})
	}
	for _, i := range c.Attention {
		cj.Attention = append(cj.Attention, IssueToJSON(i))
	}
	return cj
}

// ProjectionToJSON converts a generator run together with the settings it
// was generated from.
func ProjectionToJSON(pc planner.PayCycle, p planner.Projection) ProjectionJSON {
	out := ProjectionJSON{
		PayCycle: PayCycleToJSON(pc),
		Cycles:   make([]CycleJSON, 0, len(p.Cycles)),
		Issues:   make([]IssueJSON, 0, len(p.Issues)),
	}
	for _, c := range p.Cycles {
		out.Cycles = append(out.Cycles, CycleToJSON(c))
	}
	for _, i := range p.Issues {
		out.Issues = append(out.Issues, IssueToJSON(i))
	}
	return out
}

func occurrencesToJSON(occs []planner.Occurrence) []OccurrenceJSON {
	out := make([]OccurrenceJSON, 0, len(occs))
	for _, o := range occs {
		out = append(out, OccurrenceToJSON(o))
	}
	return out
}
