// Package core holds the expense entity and its parsing/validation rules.
//
// This file contains amount parsing from raw form input. Amounts are kept as
// arbitrary-precision decimals; floats are only ever a storage representation.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a raw amount string to a positive decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Returns ErrInvalidAmount for anything unparseable, zero, or negative.
//
// Examples:
//
//	ParseAmount("12.50") -> 12.5, nil
//	ParseAmount("12,50") -> 12.5, nil
//	ParseAmount("0")     -> ErrInvalidAmount
//	ParseAmount("-3")    -> ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
