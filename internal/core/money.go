// Package core holds the back-office domain: tenants, expenses, incomes,
// suppliers and the value types shared by storage and analytics.
//
// This file contains amount parsing. Amounts arrive from forms and JSON as
// strings with either a dot (12.34) or comma (12,34) decimal separator.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to Money rounded half-up to cents.
//
// Zero is accepted (discounts and shipping costs are often zero); signs,
// exponents and more than one separator are rejected.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,34")  -> 12.34
//	ParseAmount("12.345") -> 12.35
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return Money{}, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	if s == "." {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Decimal: d.Round(2)}, nil
}

// MustAmount is ParseAmount for literals known to be valid, such as test
// fixtures. It panics on an invalid literal.
func MustAmount(s string) Money {
	m, err := ParseAmount(s)
	if err != nil {
		panic("core: invalid amount literal " + s)
	}
	return m
}
