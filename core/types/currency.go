// Package types - Currency and amount formatting
package types

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"inventory-valuation/internal/errors"
)

// Currency represents a currency code
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the currency is supported
func (c Currency) IsValid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP:
		return true
	}
	return false
}

// ParseCurrency parses a currency code case-insensitively. Empty input yields USD.
func ParseCurrency(s string) (Currency, error) {
	if s == "" {
		return CurrencyUSD, nil
	}
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", errors.Newf(errors.TypeInput, "unsupported currency %q", s).
			WithContext("supported", "USD, EUR, GBP")
	}
	return c, nil
}

// Symbol returns the display symbol, falling back to the code
func (c Currency) Symbol() string {
	switch c {
	case CurrencyUSD, "":
		return "$"
	case CurrencyEUR:
		return "€"
	case CurrencyGBP:
		return "£"
	default:
		return string(c) + " "
	}
}

// Format renders an amount with two decimals and thousands separators, e.g. "-$1,000.00"
func (c Currency) Format(amount decimal.Decimal) string {
	sign := ""
	amount = amount.Round(2)
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	return sign + c.Symbol() + FormatAmount(amount)
}

// FormatAmount renders a non-currency amount with two decimals and thousands separators
func FormatAmount(amount decimal.Decimal) string {
	return humanize.FormatFloat("#,###.##", amount.Round(2).InexactFloat64())
}

// FormatQuantity renders a quantity with thousands separators and no trailing zeros
func FormatQuantity(q decimal.Decimal) string {
	s := humanize.Commaf(q.InexactFloat64())
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}
