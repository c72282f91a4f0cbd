package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

const (
	// CurrencyCode is the ISO code sent to the payment gateway.
	CurrencyCode = "BDT"

	// CurrencyGlyph prefixes every displayed amount.
	CurrencyGlyph = "৳"
)

// ShippingCost is the flat shipping rate added to every order.
var ShippingCost = decimal.NewFromInt(50)

// FormatPrice renders an amount with the currency glyph and two decimals.
func FormatPrice(d decimal.Decimal) string {
	return CurrencyGlyph + d.StringFixed(2)
}

// Money is an amount paired with its display string.
type Money struct {
	Amount    decimal.Decimal `json:"amount"`
	Formatted string          `json:"formatted"`
}

// NewMoney builds a Money from a decimal amount.
func NewMoney(d decimal.Decimal) Money {
	return Money{Amount: d, Formatted: FormatPrice(d)}
}

// JSONNumber renders d as an exact JSON number literal.
func JSONNumber(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
