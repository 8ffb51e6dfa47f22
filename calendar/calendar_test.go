package calendar_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
)

func date(s string) calendar.TimePoint { return calendar.MustParseDate(s) }

// =============================================================================
// NORMALISATION
// =============================================================================

func TestNormalize_PinsNoonAndIsIdempotent(t *testing.T) {
	loc := time.FixedZone("AEST", 10*60*60)
	tp := calendar.TimePoint{Time: time.Date(2024, time.March, 31, 0, 30, 0, 0, loc)}

	n := tp.Normalize()
	assert.Equal(t, calendar.NormalHour, n.Time.Hour())
	assert.Equal(t, "2024-03-31", n.String())
	assert.True(t, n.Equal(n.Normalize()))
}

func TestComparison_IgnoresTimeOfDay(t *testing.T) {
	morning := calendar.TimePoint{Time: time.Date(2024, 5, 1, 1, 0, 0, 0, time.UTC)}
	evening := calendar.TimePoint{Time: time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)}

	assert.True(t, morning.Equal(evening))
	assert.False(t, morning.Before(evening))
	assert.True(t, morning.BeforeOrEqual(evening))
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		from string
		n    int
		want string
	}{
		{"2024-01-31", 1, "2024-02-01"},
		{"2024-02-28", 1, "2024-02-29"},
		{"2023-02-28", 1, "2023-03-01"},
		{"2024-01-01", -1, "2023-12-31"},
		{"2024-03-30", 14, "2024-04-13"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, date(tt.from).AddDays(tt.n).String(), "%s %+d", tt.from, tt.n)
	}
	assert.Equal(t, "2024-01-15", date("2024-01-01").AddWeeks(2).String())
}

func TestDaysBetween_AcrossDSTTransitions(t *testing.T) {
	// Dates are pinned to noon UTC so a DST change in any local zone
	// cannot shift the count.
	assert.Equal(t, 1, calendar.DaysBetween(date("2024-03-30"), date("2024-03-31")))
	assert.Equal(t, 1, calendar.DaysBetween(date("2024-10-05"), date("2024-10-06")))
	assert.Equal(t, 366, calendar.DaysBetween(date("2024-01-01"), date("2025-01-01")))
	assert.Equal(t, -14, calendar.DaysBetween(date("2024-01-15"), date("2024-01-01")))
}

// =============================================================================
// PARSING
// =============================================================================

func TestParseDate_Forms(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-01-31", "2024-01-31"},
		{"2024-01-31T00:00:00.000Z", "2024-01-31"},
		{"31/01/2024", "2024-01-31"},
		{"1/2/2024", "2024-02-01"},
		{" 2024-06-15 ", "2024-06-15"},
	}
	for _, tt := range tests {
		got, err := calendar.ParseDate(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got.String(), tt.in)
	}
}

func TestParseDate_Malformed(t *testing.T) {
	for _, in := range []string{"", "tomorrow", "2024-13-01", "31/02/2024", "00/01/2024", "1/2", "aa/bb/cccc"} {
		_, err := calendar.ParseDate(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, calendar.ErrInvalidDate), in)
	}
}

func TestTimePoint_TextRoundTrip(t *testing.T) {
	var tp calendar.TimePoint
	require.NoError(t, tp.UnmarshalText([]byte("15/08/2025")))

	out, err := tp.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2025-08-15", string(out))
}

// =============================================================================
// CATEGORY CLAMPING
// =============================================================================

func TestCategoryForDay(t *testing.T) {
	assert.Equal(t, calendar.CategoryDay31, calendar.CategoryForDay(31))
	assert.Equal(t, calendar.CategoryDay30, calendar.CategoryForDay(30))
	assert.Equal(t, calendar.CategoryDay29, calendar.CategoryForDay(29))
	assert.Equal(t, calendar.CategoryDay28, calendar.CategoryForDay(28))
	assert.Equal(t, calendar.CategoryNormal, calendar.CategoryForDay(27))
	assert.Equal(t, calendar.CategoryNormal, calendar.CategoryForDay(1))
}

func TestAdvanceMonths_Day31AlwaysLandsOnMonthEnd(t *testing.T) {
	current := date("2024-01-31")
	for i := 1; i <= 36; i++ {
		next := current.AdvanceMonthsByCategory(1, calendar.CategoryDay31)
		assert.Equal(t, calendar.DaysIn(next.Year(), next.Month()), next.Day(), next.String())
		current = next
	}

	assert.Equal(t, "2024-02-29", date("2024-01-31").AdvanceMonthsByCategory(1, calendar.CategoryDay31).String())
	assert.Equal(t, "2024-03-31", date("2024-02-29").AdvanceMonthsByCategory(1, calendar.CategoryDay31).String())
	assert.Equal(t, "2023-02-28", date("2023-01-31").AdvanceMonthsByCategory(1, calendar.CategoryDay31).String())
}

func TestAdvanceMonths_Day28NeverMovesPast28(t *testing.T) {
	current := date("2024-01-28")
	for i := 1; i <= 24; i++ {
		current = current.AdvanceMonthsByCategory(1, calendar.CategoryDay28)
		assert.Equal(t, 28, current.Day(), current.String())
	}
}

func TestAdvanceMonths_Day30AndDay29(t *testing.T) {
	assert.Equal(t, "2024-02-29", date("2024-01-30").AdvanceMonthsByCategory(1, calendar.CategoryDay30).String())
	assert.Equal(t, "2024-03-30", date("2024-02-29").AdvanceMonthsByCategory(1, calendar.CategoryDay30).String())
	assert.Equal(t, "2023-02-28", date("2023-01-29").AdvanceMonthsByCategory(1, calendar.CategoryDay29).String())
	assert.Equal(t, "2023-03-29", date("2023-02-28").AdvanceMonthsByCategory(1, calendar.CategoryDay29).String())
}

func TestAdvanceMonths_NormalClampsToMonthEnd(t *testing.T) {
	assert.Equal(t, "2024-02-15", date("2024-01-15").AdvanceMonthsByCategory(1, calendar.CategoryNormal).String())
	// normal uses the current day, so a clamped date stays clamped
	clamped := date("2024-03-31").AdvanceMonthsByCategory(1, calendar.CategoryNormal)
	assert.Equal(t, "2024-04-30", clamped.String())
	assert.Equal(t, "2024-05-30", clamped.AdvanceMonthsByCategory(1, calendar.CategoryNormal).String())
}

func TestAdvanceMonths_YearRollover(t *testing.T) {
	assert.Equal(t, "2025-01-31", date("2024-12-31").AdvanceMonthsByCategory(1, calendar.CategoryDay31).String())
	assert.Equal(t, "2026-06-10", date("2024-12-10").AdvanceMonthsByCategory(18, calendar.CategoryNormal).String())
	assert.Equal(t, "2023-11-30", date("2024-01-31").AdvanceMonthsByCategory(-2, calendar.CategoryDay31).String())
	assert.Equal(t, "2025-02-28", date("2024-02-29").AdvanceMonthsByCategory(12, calendar.CategoryDay29).String())
}

// =============================================================================
// PERIOD
// =============================================================================

func TestPeriod_ContainsIsInclusive(t *testing.T) {
	p := calendar.Period{Start: date("2024-01-01"), End: date("2024-01-31")}

	assert.True(t, p.Contains(date("2024-01-01")))
	assert.True(t, p.Contains(date("2024-01-31")))
	assert.False(t, p.Contains(date("2023-12-31")))
	assert.False(t, p.Contains(date("2024-02-01")))
	assert.Equal(t, 31, p.Length())
	assert.Len(t, p.Days(), 31)
	assert.True(t, calendar.IsInRange(date("2024-01-15"), p.Start, p.End))
}
