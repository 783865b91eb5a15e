// Package money holds the decimal helpers used for prices, line totals and
// payment amounts. Prices travel as strings and are never held in floats.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse reads a price string such as "19.99". Empty or malformed input is an
// error; negative amounts are rejected.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("money: invalid amount %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("money: negative amount %q", s)
	}
	return d, nil
}

// MustParse is Parse for values already checked by validation.
// Malformed input yields zero.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Line returns price * quantity.
func Line(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// MinorUnits converts an amount to integer cents, rounding half away from zero.
func MinorUnits(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

// Format renders an amount with exactly two fraction digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Normalize rewrites a price string into its canonical two-digit form.
func Normalize(s string) (string, error) {
	d, err := Parse(s)
	if err != nil {
		return "", err
	}
	return Format(d), nil
}
