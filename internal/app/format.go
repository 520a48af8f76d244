package app

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const defaultCurrency = "EUR"

var currencySymbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
}

var pricePrinter = message.NewPrinter(language.English)

// formatPrice renders amount with two decimals, thousands separators and the
// currency symbol, e.g. €1,234.50. The amount itself is never rounded upstream.
func formatPrice(amount decimal.Decimal, currency string) string {
	currency = strings.ToUpper(currency)

	formatted := pricePrinter.Sprintf("%v", number.Decimal(amount.Round(2).InexactFloat64(), number.Scale(2)))

	if symbol, ok := currencySymbols[currency]; ok {
		if amount.IsNegative() {
			return "-" + symbol + strings.TrimPrefix(formatted, "-")
		}

		return symbol + formatted
	}

	return currency + " " + formatted
}
