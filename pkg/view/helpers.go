package view

import "github.com/shopspring/decimal"

// Currency is the single currency the storefront sells in.
const Currency = "EUR"

// Money renders an amount the way the storefront shows prices, e.g. "1099 EUR"
// or "12.5 EUR".
func Money(amount decimal.Decimal) string {
	return amount.String() + " " + Currency
}
