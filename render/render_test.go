package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
	"github.com/Fezbot3000/Interestfree-tracker/interestfree"
	"github.com/Fezbot3000/Interestfree-tracker/money"
	"github.com/Fezbot3000/Interestfree-tracker/planner"
)

func TestFormatDate(t *testing.T) {
	tests := map[string]string{
		"2025-01-09": "9th Jan 2025",
		"2025-01-01": "1st Jan 2025",
		"2025-03-02": "2nd Mar 2025",
		"2025-04-23": "23rd Apr 2025",
		"2025-05-11": "11th May 2025",
		"2025-05-12": "12th May 2025",
		"2025-05-13": "13th May 2025",
		"2025-12-31": "31st Dec 2025",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatDate(calendar.MustParseDate(in)), in)
	}
	assert.Equal(t, "-", FormatDate(calendar.TimePoint{}))
}

func TestFormatMoney(t *testing.T) {
	tests := map[string]string{
		"0":          "$0.00",
		"12.5":       "$12.50",
		"999.99":     "$999.99",
		"1234.5":     "$1,234.50",
		"1234567.01": "$1,234,567.01",
		"-20":        "-$20.00",
		"-4500":      "-$4,500.00",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatMoney(money.MustParse(in)), in)
	}
}

func TestFormatDays(t *testing.T) {
	assert.Equal(t, "0 days", FormatDays(0))
	assert.Equal(t, "1 day", FormatDays(1))
	assert.Equal(t, "45 days", FormatDays(45))
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Bill", "Amount"},
		Rows: [][]string{
			{"Rent", "$1,200.00"},
			{"---"},
			{"Phone", "$45.00"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 7)
	for _, l := range lines[1:] {
		assert.Equal(t, len([]rune(lines[0])), len([]rune(l)), l)
	}
	assert.Contains(t, out, "│    $45.00 │")
	assert.Empty(t, RenderTable(Table{}))
}

func TestProjection(t *testing.T) {
	pc := planner.PayCycle{
		Start:     calendar.MustParseDate("2024-01-01"),
		Frequency: planner.PayMonthly,
		Income:    money.MustParse("1000"),
	}
	bills := []planner.Bill{
		{ID: "1", Name: "Rent", Amount: money.MustParse("1200"), Date: "2024-01-31", Frequency: planner.Monthly(), Group: "Housing"},
		{ID: "2", Name: "Mystery", Amount: money.MustParse("5"), Date: "2023-12-01", Frequency: planner.ParseFrequency("Quarterly", nil)},
	}
	proj := planner.GenerateCycles(bills, pc, planner.Options{CycleCount: 2})

	var sb strings.Builder
	require.NoError(t, Projection(&sb, pc, proj))
	out := sb.String()

	assert.Contains(t, out, "Cycle 1 (1st Jan 2024 - 31st Jan 2024)")
	assert.Contains(t, out, "Cycle 2 (1st Feb 2024 - 29th Feb 2024)")
	assert.Contains(t, out, "29th Feb 2024")
	assert.Contains(t, out, "-$200.00")
	assert.Contains(t, out, "Bills needing attention")
	assert.Contains(t, out, "Mystery")
}

func TestPeriods(t *testing.T) {
	p := interestfree.BillingPeriod{
		ID:               "p1",
		Start:            calendar.MustParseDate("2025-01-01"),
		End:              calendar.MustParseDate("2025-01-31"),
		InterestFreeDays: 55,
		Transactions: []interestfree.Transaction{
			{ID: "t1", Date: calendar.MustParseDate("2025-01-05"), Description: "TV", Amount: money.MustParse("500"), Type: interestfree.Expense},
			{ID: "t2", Date: calendar.MustParseDate("2025-01-02"), Description: "Payment", Amount: money.MustParse("100"), Type: interestfree.Repayment},
		},
	}
	p.InterestFreeEnd = p.ComputeInterestFreeEnd()
	today := calendar.MustParseDate("2025-01-11")

	var sb strings.Builder
	require.NoError(t, Periods(&sb, []interestfree.BillingPeriod{p}, today))
	assert.Contains(t, sb.String(), "1st Jan 2025 - 31st Jan 2025")
	assert.Contains(t, sb.String(), "24th Feb 2025")
	assert.Contains(t, sb.String(), "$400.00")
	assert.Contains(t, sb.String(), "45 days")

	sb.Reset()
	require.NoError(t, Period(&sb, p, today))
	out := sb.String()
	assert.Less(t, strings.Index(out, "Payment"), strings.Index(out, "TV"))

	sb.Reset()
	require.NoError(t, Periods(&sb, nil, today))
	assert.Contains(t, sb.String(), "No billing periods yet")
}
