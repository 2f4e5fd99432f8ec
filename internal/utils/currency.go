package utils

import (
	"fmt"
)

type Currency struct {
	Code          string `json:"code"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	MinorPerMajor int64  `json:"minor_per_major"`
}

var SupportedCurrencies = map[string]Currency{
	"XOF": {Code: "XOF", Symbol: "CFA", Name: "West African CFA Franc", MinorPerMajor: 1},
	"XAF": {Code: "XAF", Symbol: "FCFA", Name: "Central African CFA Franc", MinorPerMajor: 1},
	"NGN": {Code: "NGN", Symbol: "₦", Name: "Nigerian Naira", MinorPerMajor: 100},
	"GHS": {Code: "GHS", Symbol: "GH₵", Name: "Ghanaian Cedi", MinorPerMajor: 100},
	"USD": {Code: "USD", Symbol: "$", Name: "US Dollar", MinorPerMajor: 100},
	"EUR": {Code: "EUR", Symbol: "€", Name: "Euro", MinorPerMajor: 100},
}

// FormatAmount renders an integer minor-unit amount for display. Zero-decimal
// currencies (XOF, XAF) print whole units; others split out the minor part.
func FormatAmount(amount int64, currencyCode string) string {
	currency, exists := SupportedCurrencies[currencyCode]
	if !exists {
		currency = SupportedCurrencies[BaseCurrency]
	}

	if currency.MinorPerMajor == 1 {
		return fmt.Sprintf("%s %d", currency.Symbol, amount)
	}

	major := amount / currency.MinorPerMajor
	minor := amount % currency.MinorPerMajor
	if minor < 0 {
		minor = -minor
	}
	return fmt.Sprintf("%s %d.%02d", currency.Symbol, major, minor)
}

func IsValidCurrency(currencyCode string) bool {
	_, exists := SupportedCurrencies[currencyCode]
	return exists
}
