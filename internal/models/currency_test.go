package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsValidCurrency(t *testing.T) {
	for _, code := range Currencies() {
		assert.True(t, IsValidCurrency(code), code)
	}
	assert.False(t, IsValidCurrency("GBP"))
	assert.False(t, IsValidCurrency(""))
	assert.False(t, IsValidCurrency("yer"))
}

func TestCurrencySymbol(t *testing.T) {
	assert.Equal(t, "$", CurrencySymbol(CurrencyUSD))
	assert.Equal(t, "ر.ي", CurrencySymbol(CurrencyYER))
	assert.Equal(t, "XYZ", CurrencySymbol("XYZ"))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   decimal.Decimal
		currency string
		want     string
	}{
		{decimal.NewFromInt(1500), CurrencyUSD, "1,500.00 $"},
		{decimal.NewFromInt(0), CurrencyUSD, "0.00 $"},
		{decimal.NewFromFloat(999.5), CurrencyEUR, "999.50 €"},
		{decimal.NewFromInt(1000000), CurrencyYER, "1,000,000.00 ر.ي"},
		{decimal.NewFromFloat(-12345.67), CurrencySAR, "-12,345.67 ر.س"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.amount, tt.currency))
	}
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "100.00", groupThousands("100.00"))
	assert.Equal(t, "1,000.00", groupThousands("1000.00"))
	assert.Equal(t, "123,456,789.12", groupThousands("123456789.12"))
	assert.Equal(t, "-1,234.00", groupThousands("-1234.00"))
	assert.Equal(t, "1,234", groupThousands("1234"))
}
