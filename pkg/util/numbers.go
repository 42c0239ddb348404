package util

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Bounds for user-supplied prices. Decimal comparisons rescale to the wider
// exponent.
const (
	maxDecimalExponent = 32
	maxDecimalDigits   = 40
)

// ParseDecimal parses a decimal number. Returns (d, true) only for numeric
// input whose exponent and digit count stay within sane price bounds.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 2*maxDecimalDigits {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if exp := d.Exponent(); exp > maxDecimalExponent || exp < -maxDecimalExponent {
		return decimal.Zero, false
	}
	if d.NumDigits() > maxDecimalDigits {
		return decimal.Zero, false
	}
	return d, true
}

// ParseDecimalDefault parses a decimal or returns default if empty/invalid.
func ParseDecimalDefault(s string, def decimal.Decimal) decimal.Decimal {
	if d, ok := ParseDecimal(s); ok {
		return d
	}
	return def
}
