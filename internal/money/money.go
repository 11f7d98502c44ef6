// Package money implements amounts as non-negative integer counts of minor
// units (cents). Floating point never touches an Amount; decimal strings are
// converted with shopspring/decimal at the edges.
package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"water-delivery/internal/apperr"
)

// Amount is a count of currency minor units. The zero value is zero cents.
type Amount int64

const minorDigits = 2

// New validates that minor is not negative.
func New(minor int64) (Amount, error) {
	if minor < 0 {
		return 0, apperr.NegativeAmount("amount must not be negative")
	}
	return Amount(minor), nil
}

func (a Amount) Int64() int64 {
	return int64(a)
}

func (a Amount) Add(b Amount) Amount {
	return a + b
}

// Mul multiplies the amount by a quantity. Negative quantities and results
// that do not fit in an int64 are rejected.
func (a Amount) Mul(qty int64) (Amount, error) {
	if qty < 0 {
		return 0, apperr.NegativeAmount("quantity must not be negative")
	}
	if qty != 0 && int64(a) > math.MaxInt64/qty {
		return 0, apperr.Validation("amount", "amount overflows")
	}
	return Amount(int64(a) * qty), nil
}

// Sub fails with a negative-amount error when b exceeds a.
func (a Amount) Sub(b Amount) (Amount, error) {
	if b > a {
		return 0, apperr.NegativeAmount("subtraction result below zero")
	}
	return a - b, nil
}

// SubClamped returns a-b, or zero when b exceeds a.
func (a Amount) SubClamped(b Amount) Amount {
	if b > a {
		return 0
	}
	return a - b
}

// Sum adds all amounts.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}

// String renders the amount as a decimal currency string, e.g. "23.50".
func (a Amount) String() string {
	return decimal.New(int64(a), -minorDigits).StringFixed(minorDigits)
}

// Parse converts a decimal currency string to minor units, rounding half away
// from zero to the nearest unit. Both "23.50" and "23,50" are accepted; when
// both separators appear the last one is the decimal separator.
func Parse(s string) (Amount, error) {
	s = normalizeSeparators(strings.TrimSpace(s))
	if s == "" {
		return 0, apperr.Validation("amount", "amount is required")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, apperr.Validation("amount", "amount is not a decimal number")
	}
	if d.IsNegative() {
		return 0, apperr.NegativeAmount("amount must not be negative")
	}

	minor := d.Round(minorDigits).Shift(minorDigits)
	if !minor.LessThanOrEqual(decimal.NewFromInt(math.MaxInt64)) {
		return 0, apperr.Validation("amount", "amount overflows")
	}
	return Amount(minor.IntPart()), nil
}

func normalizeSeparators(s string) string {
	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case comma < 0:
		return s
	case dot < 0:
		return strings.ReplaceAll(s, ",", ".")
	case comma > dot:
		return strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	default:
		return strings.ReplaceAll(s, ",", "")
	}
}
