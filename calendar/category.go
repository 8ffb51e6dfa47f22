package calendar

import "time"

// =============================================================================
// DATE CATEGORY - How an anchor day clamps when advanced by months
// =============================================================================

// DateCategory classifies an anchor day-of-month.
//
// The rules are deliberately asymmetric:
//   - day31 always lands on the last day of the target month
//   - day30 and day29 keep their day when the month has it, else month end
//   - day28 always lands on the 28th, never later
//   - normal keeps the current day, clamped to month end
type DateCategory string

const (
	CategoryDay28  DateCategory = "day28"
	CategoryDay29  DateCategory = "day29"
	CategoryDay30  DateCategory = "day30"
	CategoryDay31  DateCategory = "day31"
	CategoryNormal DateCategory = "normal"
)

// CategoryForDay maps a day-of-month to its category.
func CategoryForDay(day int) DateCategory {
	switch day {
	case 31:
		return CategoryDay31
	case 30:
		return CategoryDay30
	case 29:
		return CategoryDay29
	case 28:
		return CategoryDay28
	default:
		return CategoryNormal
	}
}

// Valid reports whether c is one of the known categories.
func (c DateCategory) Valid() bool {
	switch c {
	case CategoryDay28, CategoryDay29, CategoryDay30, CategoryDay31, CategoryNormal:
		return true
	}
	return false
}

// TargetDay picks the day-of-month to land on in a month of lastDay days.
// currentDay is only consulted for the normal category.
func (c DateCategory) TargetDay(currentDay, lastDay int) int {
	switch c {
	case CategoryDay31:
		return lastDay
	case CategoryDay30:
		return min(30, lastDay)
	case CategoryDay29:
		return min(29, lastDay)
	case CategoryDay28:
		return 28
	default:
		return min(currentDay, lastDay)
	}
}

// AdvanceMonthsByCategory moves tp by n months (n may be negative) and
// picks the landing day with the category's clamping rule. Year rollover
// uses floor division on the month index.
func (tp TimePoint) AdvanceMonthsByCategory(n int, category DateCategory) TimePoint {
	index := int(tp.Month()-1) + n
	year := tp.Year() + floorDiv(index, 12)
	month := time.Month(floorMod(index, 12) + 1)

	day := category.TargetDay(tp.Day(), DaysIn(year, month))
	return NewTimePoint(year, month, day)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
