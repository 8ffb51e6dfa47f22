/*
Package calendar provides the date arithmetic used by the bill planner.

PURPOSE:
  Bills and pay cycles are scheduled on calendar dates, never on instants.
  Every value in this package is a TimePoint pinned to 12:00 UTC so that
  subtraction, comparison and month arithmetic can never drift across a
  day boundary because of daylight saving or midnight rounding.

KEY CONCEPTS:
  - TimePoint: A calendar date normalised to noon
  - Period: An inclusive [Start, End] window of dates
  - DateCategory: How a day-of-month clamps when advanced by months

WIRE FORMAT:
  Dates cross every boundary (storage, HTTP, export files) as YYYY-MM-DD.
  ParseDate also accepts the legacy DD/MM/YYYY form and full ISO timestamps,
  keeping only the date part.

SEE ALSO:
  - category.go: Month-end clamping rules
  - period.go: Inclusive date windows
*/
package calendar

import (
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// TIME POINT - A calendar date pinned to noon
// =============================================================================

// NormalHour is the fixed time-of-day every TimePoint carries.
const NormalHour = 12

// StorageLayout is the canonical YYYY-MM-DD layout.
const StorageLayout = "2006-01-02"

type TimePoint struct {
	Time time.Time
}

// Constructors

// NewTimePoint builds a normalised date. Out-of-range days and months roll
// over the way time.Date does.
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, NormalHour, 0, 0, 0, time.UTC)}
}

// FromTime keeps the calendar date of t as seen in t's own location.
func FromTime(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

func Today() TimePoint { return FromTime(time.Now()) }

// Normalize returns the same calendar date pinned to noon UTC. Idempotent.
func (tp TimePoint) Normalize() TimePoint {
	return NewTimePoint(tp.Time.Year(), tp.Time.Month(), tp.Time.Day())
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.unix() < other.unix() }
func (tp TimePoint) After(other TimePoint) bool         { return tp.unix() > other.unix() }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.unix() == other.unix() }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

func (tp TimePoint) unix() int64 { return tp.Normalize().Time.Unix() }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint {
	n0 := tp.Normalize()
	return NewTimePoint(n0.Year(), n0.Month(), n0.Day()+n)
}

func (tp TimePoint) AddWeeks(n int) TimePoint { return tp.AddDays(7 * n) }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

// String returns the storage form, YYYY-MM-DD.
func (tp TimePoint) String() string { return tp.Time.Format(StorageLayout) }

// MarshalText implements encoding.TextMarshaler using the storage form.
func (tp TimePoint) MarshalText() ([]byte, error) {
	return []byte(tp.String()), nil
}

// UnmarshalText accepts anything ParseDate accepts.
func (tp *TimePoint) UnmarshalText(data []byte) error {
	parsed, err := ParseDate(string(data))
	if err != nil {
		return err
	}
	*tp = parsed
	return nil
}

// =============================================================================
// PARSING
// =============================================================================

// ParseDate reads a calendar date in one of three forms:
//
//	YYYY-MM-DD                canonical storage form
//	YYYY-MM-DDTHH:MM:SS...    ISO timestamp, time part ignored
//	DD/MM/YYYY                legacy form written by older exports
func ParseDate(s string) (TimePoint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TimePoint{}, &DateError{Input: s, Reason: "empty date"}
	}

	if strings.Contains(s, "/") {
		return parseLegacy(s)
	}

	if len(s) > len(StorageLayout) && s[len(StorageLayout)] == 'T' {
		s = s[:len(StorageLayout)]
	}

	t, err := time.Parse(StorageLayout, s)
	if err != nil {
		return TimePoint{}, &DateError{Input: s, Reason: "expected YYYY-MM-DD"}
	}
	return FromTime(t), nil
}

// MustParseDate panics on malformed input. Intended for tests and literals.
func MustParseDate(s string) TimePoint {
	tp, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return tp
}

func parseLegacy(s string) (TimePoint, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return TimePoint{}, &DateError{Input: s, Reason: "expected DD/MM/YYYY"}
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return TimePoint{}, &DateError{Input: s, Reason: "expected DD/MM/YYYY"}
		}
		nums[i] = n
	}
	day, month, year := nums[0], nums[1], nums[2]

	if month < 1 || month > 12 {
		return TimePoint{}, &DateError{Input: s, Reason: "month out of range"}
	}
	if day < 1 || day > DaysIn(year, time.Month(month)) {
		return TimePoint{}, &DateError{Input: s, Reason: "day out of range"}
	}
	return NewTimePoint(year, time.Month(month), day), nil
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween counts whole days from -> to. Negative when to is earlier.
func DaysBetween(from, to TimePoint) int {
	return int((to.unix() - from.unix()) / 86400)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, NormalHour, 0, 0, 0, time.UTC).Day()
}

func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }
func EndOfMonth(year int, month time.Month) TimePoint {
	return NewTimePoint(year, month, DaysIn(year, month))
}

// Format renders a date for storage. Equivalent to tp.String().
func Format(tp TimePoint) string { return tp.String() }
