package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSymbol(t *testing.T) {
	assert.Equal(t, "₵", Symbol("GHS"))
	assert.Equal(t, "$", Symbol("usd"))
	assert.Equal(t, "€", Symbol(" EUR "))
	assert.Equal(t, "£", Symbol("GBP"))
	assert.Equal(t, "₦", Symbol("NGN"))
	assert.Equal(t, "₵", Symbol(""), "empty code falls back to default currency")
	assert.Equal(t, "KES", Symbol("KES"), "unknown code is its own symbol")
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "₵12.50", Format("GHS", decimal.RequireFromString("12.5")))
	assert.Equal(t, "-$3.00", Format("USD", decimal.NewFromInt(-3)))
	assert.Equal(t, "€0.00", Format("EUR", decimal.Zero))
}

func TestCurrenciesIsACopy(t *testing.T) {
	list := Currencies()
	assert.Len(t, list, 5)
	list[0].Symbol = "X"
	assert.Equal(t, "₵", Symbol("GHS"))
	assert.True(t, IsSupported("ngn"))
	assert.False(t, IsSupported("JPY"))
}

func TestIsCents(t *testing.T) {
	for _, s := range []string{"0", "10", "9.99", "9.90", "10.000", "-3.5"} {
		assert.True(t, IsCents(decimal.RequireFromString(s)), s)
	}
	for _, s := range []string{"9.995", "0.001", "-0.125"} {
		assert.False(t, IsCents(decimal.RequireFromString(s)), s)
	}
}

func TestFormatCode(t *testing.T) {
	assert.Equal(t, "GHS 12.50", FormatCode("ghs", decimal.RequireFromString("12.5")))
	assert.Equal(t, "NGN -3.00", FormatCode("NGN", decimal.NewFromInt(-3)))
	assert.Equal(t, "GHS 0.00", FormatCode("", decimal.Zero))
}
