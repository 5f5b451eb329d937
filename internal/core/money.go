// Package core holds the ledger domain types shared by the storage,
// report and transport layers.
//
// This file contains monetary amount parsing and conversion helpers.
// Amounts are decimal values pre-converted to a single display currency;
// persistence uses integer cents.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered decimal string to an amount with
// two fractional digits, half-up rounded. Both dot (12.34) and comma
// (12,34) separators are accepted. Only strictly positive amounts are
// valid.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// AmountFromCents converts persisted integer cents to a decimal amount.
func AmountFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// AmountToCents converts a decimal amount to integer cents for
// persistence, half-up rounding any sub-cent remainder.
func AmountToCents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}
