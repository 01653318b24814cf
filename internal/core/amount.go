// Package core provides the canonical record schema shared by the sheet
// parser, the record store and the aggregation queries.
//
// This file handles amount cells. Workbook cells arrive as raw strings and
// are frequently blank or polluted (currency symbols, thousands separators,
// stray text); a single bad cell must never abort a sheet import, so parsing
// coerces instead of failing and reports when it did.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var currencyPrefixes = []string{"₹", "Rs.", "Rs", "€", "$"}

// ParseAmountCell converts a raw sheet cell into Money.
//
// A blank cell is worth zero and is not considered coerced; empty planned or
// actual columns are ordinary filler in the source workbook. A non-blank cell
// that fails to parse as a number also becomes zero but returns coerced=true
// so callers can count malformed cells for diagnostics. Negative amounts pass
// through unchanged. Cents are rounded half away from zero on the third
// decimal.
func ParseAmountCell(cell string) (amount Money, coerced bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return Money{}, false
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	for _, p := range currencyPrefixes {
		s = strings.TrimPrefix(s, p)
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, true
	}
	if neg {
		d = d.Neg()
	}
	cents := d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return Money{Cents: cents}, false
}

// Value returns the amount in whole currency units for display purposes.
// Calculations stay in cents to avoid floating-point drift.
func (m Money) Value() float64 {
	return float64(m.Cents) / 100.0
}
