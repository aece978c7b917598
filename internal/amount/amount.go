// Package amount converts between user input and integer minor currency units.
package amount

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/compta/internal/model"
)

// MaxMinor is the largest amount accepted on one line, in minor units.
// It keeps the sums of thousands of lines far from int64 overflow.
const MaxMinor int64 = 1_000_000_000_000_000

// Accepted: digits, optionally followed by ',' or '.' and one or two digits.
var amountPattern = regexp.MustCompile(`^(\d+)(?:[,.](\d{1,2}))?$`)

// Parse converts "142,02" to 14202 and "142" to 14200.
// Anything else fails with a model.ValidationError.
func Parse(s string) (int64, error) {
	m := amountPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, model.Invalid("amount", "invalid amount format %q, expected e.g. 142,02", s)
	}

	frac := m[2]
	for len(frac) < 2 {
		frac += "0"
	}

	v, err := strconv.ParseInt(m[1]+frac, 10, 64)
	if err != nil || v > MaxMinor {
		return 0, model.Invalid("amount", "amount %q is out of range", s)
	}
	return v, nil
}

// Decimal returns minor units as an exact decimal in major units.
func Decimal(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// String renders minor units as "142.02".
func String(minor int64) string {
	return Decimal(minor).StringFixed(2)
}

// Format renders minor units for display in the given ISO currency.
func Format(minor int64, currency string) string {
	if currency == "" {
		return String(minor)
	}
	return money.New(minor, currency).Display()
}
