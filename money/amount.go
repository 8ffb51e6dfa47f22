// Package money holds the decimal currency amount shared by the bill
// planner and the interest-free tracker.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Currency value without a currency
// =============================================================================

// Amount is a decimal currency value. Single-currency by construction.
type Amount struct {
	Value decimal.Decimal
}

func Zero() Amount { return Amount{Value: decimal.Zero} }

func NewAmount(value float64) Amount {
	return Amount{Value: decimal.NewFromFloat(value)}
}

func NewAmountFromInt(value int64) Amount {
	return Amount{Value: decimal.NewFromInt(value)}
}

// Parse reads a decimal string such as "1000" or "12.50".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount{Value: d}, nil
}

func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Add(b Amount) Amount       { return Amount{Value: a.Value.Add(b.Value)} }
func (a Amount) Sub(b Amount) Amount       { return Amount{Value: a.Value.Sub(b.Value)} }
func (a Amount) Neg() Amount               { return Amount{Value: a.Value.Neg()} }
func (a Amount) Abs() Amount               { return Amount{Value: a.Value.Abs()} }
func (a Amount) IsNegative() bool          { return a.Value.IsNegative() }
func (a Amount) IsZero() bool              { return a.Value.IsZero() }
func (a Amount) IsPositive() bool          { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool    { return a.Value.LessThan(b.Value) }
func (a Amount) Equal(b Amount) bool       { return a.Value.Equal(b.Value) }

// Float64 is for display and chart payloads only.
func (a Amount) Float64() float64 {
	f, _ := a.Value.Float64()
	return f
}

// String renders two decimal places, the way amounts are shown to users.
func (a Amount) String() string { return a.Value.StringFixed(2) }

// Exact renders every stored digit. Use it for persistence.
func (a Amount) Exact() string { return a.Value.String() }

// Sum adds all amounts. An empty list sums to zero.
func Sum(amounts ...Amount) Amount {
	total := Zero()
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// =============================================================================
// ENCODING
// =============================================================================

// MarshalJSON writes a bare JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Value.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string; the
// browser app stored transaction amounts as strings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		a.Value = decimal.Zero
		return nil
	}
	return a.Value.UnmarshalJSON(data)
}
