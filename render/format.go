// Package render formats projections and billing periods for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
	"github.com/Fezbot3000/Interestfree-tracker/money"
)

var monthShort = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// FormatDate formats a date as "9th Jan 2025".
func FormatDate(tp calendar.TimePoint) string {
	if tp.IsZero() {
		return "-"
	}
	day := tp.Day()
	return fmt.Sprintf("%d%s %s %d", day, ordinalSuffix(day), monthShort[tp.Month()-1], tp.Year())
}

func ordinalSuffix(day int) string {
	switch day {
	case 1, 21, 31:
		return "st"
	case 2, 22:
		return "nd"
	case 3, 23:
		return "rd"
	default:
		return "th"
	}
}

// FormatMoney formats an amount as dollars with comma separators.
// e.g., 1234.5 -> "$1,234.50", -20 -> "-$20.00"
func FormatMoney(a money.Amount) string {
	if a.IsNegative() {
		return "-" + FormatMoney(a.Neg())
	}
	whole, frac, _ := strings.Cut(a.String(), ".")
	return "$" + groupThousands(whole) + "." + frac
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatDays formats a remaining-day count.
func FormatDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
