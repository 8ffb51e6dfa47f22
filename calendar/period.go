package calendar

// =============================================================================
// PERIOD - An inclusive window of calendar dates
// =============================================================================

// Period is the inclusive window [Start, End]. Pay cycles and interest-free
// billing periods are both Periods.
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the date is within [Start, End].
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Valid reports whether End is not before Start.
func (p Period) Valid() bool { return p.Start.BeforeOrEqual(p.End) }

// Length is the number of days in the period, both ends included.
func (p Period) Length() int { return DaysBetween(p.Start, p.End) + 1 }

// Days returns all days in the period as a slice of TimePoints.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start.Normalize()
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// IsInRange is the inclusive comparison used throughout the planner.
func IsInRange(date, start, end TimePoint) bool {
	return Period{Start: start, End: end}.Contains(date)
}
