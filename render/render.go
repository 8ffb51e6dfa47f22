package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
	"github.com/Fezbot3000/Interestfree-tracker/interestfree"
	"github.com/Fezbot3000/Interestfree-tracker/planner"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	positiveStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	negativeStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table. The first column is left-aligned,
// the rest right-aligned. A row of exactly {"---"} draws a separator.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var b strings.Builder
	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(fmt.Sprintf(" %-*s ", widths[i], h)))
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
		rule("├", "┼", "┤")
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			rule("├", "┼", "┤")
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			if i == 0 {
				b.WriteString(valueStyle.Render(" " + cell + strings.Repeat(" ", pad) + " "))
			} else {
				b.WriteString(valueStyle.Render(" " + strings.Repeat(" ", pad) + cell + " "))
			}
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
	}

	rule("╰", "┴", "╯")
	return b.String()
}

// =============================================================================
// PROJECTION
// =============================================================================

// Projection writes one table per cycle followed by any issues.
func Projection(w io.Writer, pc planner.PayCycle, proj planner.Projection) error {
	var b strings.Builder

	b.WriteString(RenderTitle(fmt.Sprintf("BILL PLANNER  %s pay from %s", pc.Frequency, FormatDate(pc.Start))))
	b.WriteString("\n\n")

	for _, c := range proj.Cycles {
		b.WriteString(renderCycle(c))
		b.WriteString("\n")
	}

	if len(proj.Issues) > 0 {
		b.WriteString("  ")
		b.WriteString(warnStyle.Render("Bills needing attention"))
		b.WriteString("\n")
		for _, issue := range proj.Issues {
			b.WriteString("  ")
			b.WriteString(warnStyle.Render("! "))
			b.WriteString(fmt.Sprintf("%s: %v", issue.BillName, issue.Err))
			if issue.Cycle >= 0 {
				b.WriteString(mutedStyle.Render(fmt.Sprintf(" (from cycle %d)", issue.Cycle+1)))
			}
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func renderCycle(c planner.Cycle) string {
	t := Table{
		Title:   fmt.Sprintf("Cycle %d (%s - %s)", c.Index+1, FormatDate(c.Period.Start), FormatDate(c.Period.End)),
		Headers: []string{"Bill", "Date", "Frequency", "Amount"},
	}

	for _, g := range c.Groups() {
		name := g.Name
		if name == "" {
			name = "Ungrouped"
		}
		t.Rows = append(t.Rows, []string{name, "", "", FormatMoney(g.Total)})
		for _, o := range g.Bills {
			t.Rows = append(t.Rows, []string{
				"  " + o.Bill.Name,
				FormatDate(o.Date),
				o.Bill.Frequency.String(),
				FormatMoney(o.Bill.Amount),
			})
		}
	}
	if len(c.Bills) == 0 {
		t.Rows = append(t.Rows, []string{"No bills this cycle", "", "", ""})
	}

	t.Rows = append(t.Rows,
		[]string{"---"},
		[]string{"Income", "", "", FormatMoney(c.Income)},
		[]string{"Expenses", "", "", FormatMoney(c.Expenses())},
		[]string{"Balance", "", "", balance(c)},
	)

	out := RenderTable(t)
	for _, issue := range c.Attention {
		out += "  " + warnStyle.Render("! "+issue.BillName+" could not be placed") + "\n"
	}
	return out
}

func balance(c planner.Cycle) string {
	bal := c.Balance()
	if bal.IsNegative() {
		return negativeStyle.Render(FormatMoney(bal))
	}
	return positiveStyle.Render(FormatMoney(bal))
}

// =============================================================================
// BILLING PERIODS
// =============================================================================

// Periods writes a summary table of billing periods as of today.
func Periods(w io.Writer, periods []interestfree.BillingPeriod, today calendar.TimePoint) error {
	var b strings.Builder

	b.WriteString(RenderTitle("INTEREST-FREE PERIODS"))
	b.WriteString("\n\n")

	if len(periods) == 0 {
		b.WriteString("  No billing periods yet.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	t := Table{Headers: []string{"Period", "Interest-free until", "Owing", "Remaining", "Status"}}
	for _, p := range periods {
		s := p.Summarize(today)
		status := string(s.Status)
		if s.Status == interestfree.StatusExpired && s.TotalOwing.IsPositive() {
			status = negativeStyle.Render(status)
		}
		t.Rows = append(t.Rows, []string{
			FormatDate(p.Start) + " - " + FormatDate(p.End),
			FormatDate(p.InterestFreeEnd),
			FormatMoney(s.TotalOwing),
			FormatDays(s.RemainingDays),
			status,
		})
	}
	b.WriteString(RenderTable(t))

	_, err := io.WriteString(w, b.String())
	return err
}

// Period writes one billing period with its transactions, oldest first.
func Period(w io.Writer, p interestfree.BillingPeriod, today calendar.TimePoint) error {
	s := p.Summarize(today)

	t := Table{
		Title:   fmt.Sprintf("%s - %s", FormatDate(p.Start), FormatDate(p.End)),
		Headers: []string{"Description", "Date", "Type", "Amount"},
	}
	for _, tx := range p.SortedTransactions() {
		amount := FormatMoney(tx.Amount)
		if tx.Type == interestfree.Repayment {
			amount = positiveStyle.Render("-" + amount)
		}
		t.Rows = append(t.Rows, []string{tx.Description, FormatDate(tx.Date), string(tx.Type), amount})
	}
	t.Rows = append(t.Rows,
		[]string{"---"},
		[]string{"Total expenses", "", "", FormatMoney(s.Expenses)},
		[]string{"Total repayments", "", "", FormatMoney(s.Repayments)},
		[]string{"Total owing", "", "", FormatMoney(s.TotalOwing)},
		[]string{"Interest-free until", "", "", FormatDate(p.InterestFreeEnd)},
		[]string{"Remaining", "", "", FormatDays(s.RemainingDays)},
	)

	_, err := io.WriteString(w, RenderTable(t))
	return err
}
