// Package money converts between decimal amounts exchanged with clients and
// the integer minor units stored by the ledger.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of minor-unit digits in a major unit.
const Scale = 2

var (
	// ErrTooPrecise is returned for amounts with more than Scale fractional digits
	ErrTooPrecise = errors.New("amount has more than 2 decimal places")

	// ErrOutOfRange is returned for amounts that do not fit in int64 minor units
	ErrOutOfRange = errors.New("amount out of range")

	maxMinorUnits = decimal.NewFromInt(math.MaxInt64)
	minMinorUnits = decimal.NewFromInt(math.MinInt64)
)

// ParseAmount parses a decimal string such as "12.50" into minor units (1250).
func ParseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

// FromDecimal converts a major-unit decimal into minor units without rounding.
func FromDecimal(d decimal.Decimal) (int64, error) {
	minor := d.Shift(Scale)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, ErrTooPrecise
	}
	if minor.GreaterThan(maxMinorUnits) || minor.LessThan(minMinorUnits) {
		return 0, ErrOutOfRange
	}
	return minor.IntPart(), nil
}

// ToDecimal converts minor units to a major-unit decimal.
func ToDecimal(minor int64) decimal.Decimal {
	return decimal.New(minor, -Scale)
}

// Format renders minor units with exactly Scale fractional digits: 1250 -> "12.50".
func Format(minor int64) string {
	return ToDecimal(minor).StringFixed(Scale)
}
