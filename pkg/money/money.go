// Package money bridges decimal amounts and user-facing Brazilian real
// formatting.
package money

import (
	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Cents converts a two-decimal amount to integer cents.
func Cents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// FromDecimal wraps an amount as a BRL money value.
func FromDecimal(d decimal.Decimal) *gomoney.Money {
	return gomoney.New(Cents(d), gomoney.BRL)
}

// DisplayBRL renders an amount the way a Brazilian user expects it,
// e.g. "R$1.234,56".
func DisplayBRL(d decimal.Decimal) string {
	return FromDecimal(d).Display()
}
