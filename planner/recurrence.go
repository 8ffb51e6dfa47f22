package planner

import (
	"time"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
)

// =============================================================================
// RECURRENCE CALCULATOR
// =============================================================================

// NextOccurrence returns the occurrence after current, or ok=false when the
// bill has no further occurrences. ok=false is normal for One-Off bills;
// for any other rule call Frequency.Resolvable to learn why.
//
//	Monthly      +1 month by category
//	Fortnightly  +14 days
//	Yearly       +12 months by category
//	6-Monthly    +6 months by category
//	Custom       +N days / weeks (then first configured weekday) / months / years
//	Legacy       next Monday strictly after current
func (cb CategorizedBill) NextOccurrence(current calendar.TimePoint) (calendar.TimePoint, bool) {
	current = current.Normalize()

	switch f := cb.Bill.Frequency; f.Kind {
	case KindMonthly:
		return current.AdvanceMonthsByCategory(1, cb.Category), true

	case KindFortnightly:
		return current.AddDays(14), true

	case KindYearly:
		return current.AdvanceMonthsByCategory(12, cb.Category), true

	case KindSixMonthly:
		return current.AdvanceMonthsByCategory(6, cb.Category), true

	case KindCustom:
		if f.Custom == nil {
			return calendar.TimePoint{}, false
		}
		return nextCustom(*f.Custom, current, cb.Category)

	case KindLegacyWeeklyMonday:
		return nextWeekday(current.AddDays(1), time.Monday), true

	default:
		// One-Off and unknown labels
		return calendar.TimePoint{}, false
	}
}

func nextCustom(rule CustomRule, current calendar.TimePoint, category calendar.DateCategory) (calendar.TimePoint, bool) {
	n := rule.Interval()

	switch rule.Unit {
	case UnitDays:
		return current.AddDays(n), true

	case UnitWeeks:
		next := current.AddWeeks(n)
		if len(rule.Weekdays) == 0 {
			return next, true
		}
		for i := 0; i < 7; i++ {
			candidate := next.AddDays(i)
			if rule.HasWeekday(candidate.Weekday()) {
				return candidate, true
			}
		}
		return next, true

	case UnitMonths:
		return current.AdvanceMonthsByCategory(n, category), true

	case UnitYears:
		return current.AdvanceMonthsByCategory(n*12, category), true
	}

	return calendar.TimePoint{}, false
}

// nextWeekday returns the first date on or after from that falls on wd.
func nextWeekday(from calendar.TimePoint, wd time.Weekday) calendar.TimePoint {
	offset := (7 + int(wd) - int(from.Weekday())) % 7
	return from.AddDays(offset)
}
