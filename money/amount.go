/*
Package money provides the monetary value type used throughout the salary engine.

PURPOSE:
  Salary figures are quoted either per month (basic, HRA, deductions) or per
  year (CTC, taxable income, annual deductions). Mixing the two is the most
  common source of payroll bugs, so every Amount carries its Period.

KEY CONCEPTS:
  - Amount: a decimal value with a Period (e.g., ₹41,666.67 monthly)
  - Period: Monthly or Annual
  - ToMonthly / ToAnnual: the only conversions (÷12 and ×12); both panic on
    an Amount whose Period is not set

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal everywhere, no float64 arithmetic
  2. Late rounding: intermediate values are carried at full precision;
     callers round once with Round() when producing output
  3. Value semantics: Amount is immutable, every operation returns a new value

USAGE:
  ctc := money.NewFromInt(1000000, money.Annual)
  basic := ctc.Mul(decimal.RequireFromString("0.5")).ToMonthly()

SEE ALSO:
  - salary/allocator.go: first consumer of ToMonthly
  - salary/breakdown.go: final rounding step
*/
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PERIOD
// =============================================================================

type Period string

const (
	Monthly Period = "monthly"
	Annual  Period = "annual"
)

// Valid reports whether p is Monthly or Annual. The zero Period is not valid.
func (p Period) Valid() bool {
	return p == Monthly || p == Annual
}

// MonthsPerYear converts between Monthly and Annual amounts.
var MonthsPerYear = decimal.NewFromInt(12)

// =============================================================================
// AMOUNT
// =============================================================================

type Amount struct {
	Value  decimal.Decimal
	Period Period
}

func New(value decimal.Decimal, period Period) Amount {
	return Amount{Value: value, Period: period}
}

func NewFromInt(value int64, period Period) Amount {
	return Amount{Value: decimal.NewFromInt(value), Period: period}
}

func NewFromFloat(value float64, period Period) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Period: period}
}

// Parse parses a decimal string such as "1800" or "41666.67".
func Parse(s string, period Period) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return Amount{Value: d, Period: period}, nil
}

// MustParse parses a decimal string and panics on malformed input.
// Intended for package-level policy constants.
func MustParse(s string, period Period) Amount {
	return Amount{Value: decimal.RequireFromString(s), Period: period}
}

func Zero(period Period) Amount { return Amount{Value: decimal.Zero, Period: period} }

func (a Amount) Zero() Amount                      { return Amount{Value: decimal.Zero, Period: a.Period} }
func (a Amount) Add(b Amount) Amount               { return Amount{Value: a.Value.Add(b.Value), Period: a.Period} }
func (a Amount) Sub(b Amount) Amount               { return Amount{Value: a.Value.Sub(b.Value), Period: a.Period} }
func (a Amount) Mul(s decimal.Decimal) Amount      { return Amount{Value: a.Value.Mul(s), Period: a.Period} }
func (a Amount) Neg() Amount                       { return Amount{Value: a.Value.Neg(), Period: a.Period} }
func (a Amount) IsNegative() bool                  { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                      { return a.Value.IsZero() }
func (a Amount) IsPositive() bool                  { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool         { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool            { return a.Value.LessThan(b.Value) }
func (a Amount) LessThanOrEqual(b Amount) bool     { return a.Value.LessThanOrEqual(b.Value) }
func (a Amount) Equal(b Amount) bool               { return a.Period == b.Period && a.Value.Equal(b.Value) }
func (a Amount) Round(places int32) Amount         { return Amount{Value: a.Value.Round(places), Period: a.Period} }
func (a Amount) InexactFloat64() float64           { return a.Value.InexactFloat64() }

func (a Amount) Min(b Amount) Amount {
	if a.LessThan(b) {
		return a
	}
	return b
}

func (a Amount) Max(b Amount) Amount {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// ClampZero floors the amount at zero.
func (a Amount) ClampZero() Amount {
	if a.IsNegative() {
		return a.Zero()
	}
	return a
}

// ToMonthly returns the monthly equivalent. Monthly amounts are returned unchanged.
// It panics if the amount has no valid Period.
func (a Amount) ToMonthly() Amount {
	switch a.Period {
	case Monthly:
		return a
	case Annual:
		return Amount{Value: a.Value.Div(MonthsPerYear), Period: Monthly}
	}
	panic(fmt.Sprintf("money: ToMonthly on amount %s with unknown period %q", a.Value, a.Period))
}

// ToAnnual returns the annual equivalent. Annual amounts are returned unchanged.
// It panics if the amount has no valid Period.
func (a Amount) ToAnnual() Amount {
	switch a.Period {
	case Annual:
		return a
	case Monthly:
		return Amount{Value: a.Value.Mul(MonthsPerYear), Period: Annual}
	}
	panic(fmt.Sprintf("money: ToAnnual on amount %s with unknown period %q", a.Value, a.Period))
}

func (a Amount) String() string {
	return fmt.Sprintf("%s/%s", a.Value.String(), a.Period)
}
