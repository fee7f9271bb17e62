package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used for organizations that never picked one.
const DefaultCurrency = "GHS"

type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

var currencies = []Currency{
	{Code: "GHS", Symbol: "₵", Name: "Ghanaian Cedi"},
	{Code: "USD", Symbol: "$", Name: "US Dollar"},
	{Code: "EUR", Symbol: "€", Name: "Euro"},
	{Code: "GBP", Symbol: "£", Name: "British Pound"},
	{Code: "NGN", Symbol: "₦", Name: "Nigerian Naira"},
}

// Currencies returns the supported currencies in display order.
func Currencies() []Currency {
	out := make([]Currency, len(currencies))
	copy(out, currencies)
	return out
}

// Symbol returns the display symbol for code. Unknown codes are returned as is.
func Symbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}
	for _, c := range currencies {
		if c.Code == code {
			return c.Symbol
		}
	}
	return code
}

func IsSupported(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range currencies {
		if c.Code == code {
			return true
		}
	}
	return false
}

// IsCents reports whether amount has at most two decimal places.
// Money columns are DECIMAL(14,2); anything finer would be rounded on store.
func IsCents(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(2))
}

// FormatCode renders amount behind the ISO code, e.g. "GHS 12.50", for outputs limited to Latin-1 glyphs.
func FormatCode(code string, amount decimal.Decimal) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}
	return code + " " + amount.StringFixed(2)
}

// Format renders amount with two decimals behind the currency symbol, e.g. "₵12.50" or "-$3.00".
func Format(code string, amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	return sign + Symbol(code) + amount.StringFixed(2)
}
