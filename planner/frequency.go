package planner

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// =============================================================================
// FREQUENCY - Closed set of recurrence rules
// =============================================================================

// FrequencyKind tags the variant held by a Frequency.
type FrequencyKind int

const (
	KindUnknown FrequencyKind = iota
	KindMonthly
	KindFortnightly
	KindYearly
	KindSixMonthly
	KindCustom
	KindOneOff
	// KindLegacyWeeklyMonday is the stray "Every 1 weeks on Mo" label older
	// data stored as a frequency. Deprecated: supported for reading old
	// records only; new bills use Custom(1, UnitWeeks, time.Monday).
	KindLegacyWeeklyMonday
)

// Wire labels, exactly as stored by the browser app.
const (
	LabelMonthly            = "Monthly"
	LabelFortnightly        = "Fortnightly"
	LabelYearly             = "Yearly"
	LabelSixMonthly         = "6-Monthly"
	LabelCustom             = "Custom"
	LabelOneOff             = "One-Off"
	LabelLegacyWeeklyMonday = "Every 1 weeks on Mo"
)

// Unit is the interval unit of a custom rule.
type Unit string

const (
	UnitDays   Unit = "days"
	UnitWeeks  Unit = "weeks"
	UnitMonths Unit = "months"
	UnitYears  Unit = "years"
)

func (u Unit) Valid() bool {
	switch u {
	case UnitDays, UnitWeeks, UnitMonths, UnitYears:
		return true
	}
	return false
}

// CustomRule is the payload of a Custom frequency. Weekdays only apply
// when Unit is UnitWeeks.
type CustomRule struct {
	Value    int
	Unit     Unit
	Weekdays []time.Weekday
}

// Interval is Value floored to 1 so a bad record can never stall the walk.
func (r CustomRule) Interval() int {
	if r.Value < 1 {
		return 1
	}
	return r.Value
}

func (r CustomRule) HasWeekday(wd time.Weekday) bool {
	return slices.Contains(r.Weekdays, wd)
}

// Frequency is a tagged union over the recurrence rules. Custom is set iff
// Kind is KindCustom and the record carried its settings; Raw keeps the
// original label of an unrecognised frequency for reporting.
type Frequency struct {
	Kind   FrequencyKind
	Custom *CustomRule
	Raw    string
}

func Monthly() Frequency            { return Frequency{Kind: KindMonthly} }
func Fortnightly() Frequency        { return Frequency{Kind: KindFortnightly} }
func Yearly() Frequency             { return Frequency{Kind: KindYearly} }
func SixMonthly() Frequency         { return Frequency{Kind: KindSixMonthly} }
func OneOff() Frequency             { return Frequency{Kind: KindOneOff} }
func LegacyWeeklyMonday() Frequency { return Frequency{Kind: KindLegacyWeeklyMonday} }

func Custom(value int, unit Unit, weekdays ...time.Weekday) Frequency {
	return Frequency{Kind: KindCustom, Custom: &CustomRule{Value: value, Unit: unit, Weekdays: weekdays}}
}

// ParseFrequency maps a stored label to a Frequency. Unknown labels are not
// an error here: they become KindUnknown and are reported when projected.
func ParseFrequency(label string, custom *CustomRule) Frequency {
	switch label {
	case LabelMonthly:
		return Monthly()
	case LabelFortnightly:
		return Fortnightly()
	case LabelYearly:
		return Yearly()
	case LabelSixMonthly:
		return SixMonthly()
	case LabelCustom:
		return Frequency{Kind: KindCustom, Custom: custom}
	case LabelOneOff:
		return OneOff()
	case LabelLegacyWeeklyMonday:
		return LegacyWeeklyMonday()
	default:
		return Frequency{Kind: KindUnknown, Raw: label}
	}
}

// Label is the stored wire label.
func (f Frequency) Label() string {
	switch f.Kind {
	case KindMonthly:
		return LabelMonthly
	case KindFortnightly:
		return LabelFortnightly
	case KindYearly:
		return LabelYearly
	case KindSixMonthly:
		return LabelSixMonthly
	case KindCustom:
		return LabelCustom
	case KindOneOff:
		return LabelOneOff
	case KindLegacyWeeklyMonday:
		return LabelLegacyWeeklyMonday
	default:
		return f.Raw
	}
}

var weekdayShort = [...]string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

// String is the display form: the label, or "Every 2 weeks on Mo, Th" for
// custom rules.
func (f Frequency) String() string {
	if f.Kind != KindCustom || f.Custom == nil {
		return f.Label()
	}
	s := fmt.Sprintf("Every %d %s", f.Custom.Value, f.Custom.Unit)
	if f.Custom.Unit == UnitWeeks && len(f.Custom.Weekdays) > 0 {
		names := make([]string, 0, len(f.Custom.Weekdays))
		for _, wd := range f.Custom.Weekdays {
			if wd >= time.Sunday && wd <= time.Saturday {
				names = append(names, weekdayShort[wd])
			}
		}
		s += " on " + strings.Join(names, ", ")
	}
	return s
}

// IsSubCycle reports whether the rule can recur more than once inside a
// single pay cycle, which switches on multi-occurrence emission.
func (f Frequency) IsSubCycle() bool {
	switch f.Kind {
	case KindFortnightly, KindLegacyWeeklyMonday:
		return true
	case KindCustom:
		return f.Custom != nil && f.Custom.Unit == UnitWeeks
	}
	return false
}

// Resolvable returns nil if NextOccurrence can ever produce a date for this
// rule, or the reason it cannot. One-Off is resolvable: it simply ends.
func (f Frequency) Resolvable() error {
	switch f.Kind {
	case KindUnknown:
		return &FrequencyError{Label: f.Raw, Err: ErrUnknownFrequency}
	case KindCustom:
		if f.Custom == nil {
			return &FrequencyError{Label: LabelCustom, Err: ErrMissingCustomFrequency}
		}
		if !f.Custom.Unit.Valid() {
			return &FrequencyError{Label: string(f.Custom.Unit), Err: ErrUnknownUnit}
		}
	}
	return nil
}

// Validate is the stricter check applied when a bill is created.
func (f Frequency) Validate() error {
	if err := f.Resolvable(); err != nil {
		return err
	}
	if f.Kind != KindCustom {
		return nil
	}
	if f.Custom.Value < 1 {
		return &FrequencyError{Label: LabelCustom, Err: ErrInvalidInterval}
	}
	for _, wd := range f.Custom.Weekdays {
		if wd < time.Sunday || wd > time.Saturday {
			return &FrequencyError{Label: LabelCustom, Err: ErrInvalidWeekday}
		}
	}
	return nil
}
