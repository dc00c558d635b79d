package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency codes supported by the finance office
const (
	CurrencyYER = "YER"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencySAR = "SAR"
)

var currencySymbols = map[string]string{
	CurrencyYER: "ر.ي",
	CurrencyUSD: "$",
	CurrencyEUR: "€",
	CurrencySAR: "ر.س",
}

var currencyNames = map[string]string{
	CurrencyYER: "Yemeni Rial",
	CurrencyUSD: "US Dollar",
	CurrencyEUR: "Euro",
	CurrencySAR: "Saudi Riyal",
}

// Currencies returns the supported currency codes in display order
func Currencies() []string {
	return []string{CurrencyYER, CurrencyUSD, CurrencyEUR, CurrencySAR}
}

// IsValidCurrency returns true if code is a supported currency
func IsValidCurrency(code string) bool {
	_, ok := currencySymbols[code]
	return ok
}

// CurrencySymbol returns the display symbol for a currency code.
// Unknown codes fall back to the code itself.
func CurrencySymbol(code string) string {
	if s, ok := currencySymbols[code]; ok {
		return s
	}
	return code
}

// CurrencyName returns the English name for a currency code
func CurrencyName(code string) string {
	if n, ok := currencyNames[code]; ok {
		return n
	}
	return code
}

// FormatAmount renders an amount with thousands separators and the
// currency symbol, e.g. "1,500.00 $"
func FormatAmount(amount decimal.Decimal, code string) string {
	return fmt.Sprintf("%s %s", groupThousands(amount.StringFixed(2)), CurrencySymbol(code))
}

// groupThousands inserts comma separators into the integer part of a
// fixed-point decimal string
func groupThousands(s string) string {
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			intPart = s[:i]
			fracPart = s[i:]
			break
		}
	}

	var out []byte
	for i, c := range []byte(intPart) {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}

	result := string(out) + fracPart
	if neg {
		result = "-" + result
	}
	return result
}
