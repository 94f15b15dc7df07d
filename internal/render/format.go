// Package render turns an invoice into presentable output: a view model
// shared by every renderer, a plain-text preview and a paginated PDF.
package render

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"invoicer/pkg/models"
)

type currencyFormat struct {
	locale   language.Tag
	symbol   string
	suffix   bool // symbol after the number, as in "1.234,50 €"
	fraction int32
}

var currencyFormats = map[string]currencyFormat{
	models.CurrencyIDR: {locale: language.MustParse("id-ID"), symbol: "Rp ", fraction: 0},
	models.CurrencyUSD: {locale: language.MustParse("en-US"), symbol: "$", fraction: 2},
	models.CurrencyEUR: {locale: language.MustParse("de-DE"), symbol: " €", suffix: true, fraction: 2},
	models.CurrencySGD: {locale: language.MustParse("en-SG"), symbol: "S$", fraction: 2},
	models.CurrencyJPY: {locale: language.MustParse("ja-JP"), symbol: "¥", fraction: 0},
}

// FractionDigits returns how many decimals amounts in currency are shown with.
func FractionDigits(currency string) int32 {
	if f, ok := currencyFormats[currency]; ok {
		return f.fraction
	}
	return 2
}

// Round rounds v half away from zero to the display precision of currency.
// Non-finite values round to 0.
func Round(v float64, currency string) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(FractionDigits(currency)).InexactFloat64()
}

// FormatCurrency formats v for display, e.g. "Rp 200.000", "$1,234.50" or
// "1.234,50 €". Unknown currency codes are printed as a prefix with two
// decimals.
func FormatCurrency(v float64, currency string) string {
	f, ok := currencyFormats[currency]
	if !ok {
		return fmt.Sprintf("%s %.2f", currency, Round(v, currency))
	}

	d := decimal.NewFromFloat(Round(v, currency))
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	p := message.NewPrinter(f.locale)
	digits := p.Sprintf("%v", number.Decimal(d.InexactFloat64(), number.Scale(int(f.fraction))))

	if f.suffix {
		return sign + digits + f.symbol
	}
	return sign + f.symbol + digits
}

// FormatPercent prints a rate without trailing zeros, e.g. "10" or "12.5".
func FormatPercent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "0"
	}
	return decimal.NewFromFloat(p).String()
}

// FormatQuantity prints a quantity the same way as a percent.
func FormatQuantity(q float64) string {
	return FormatPercent(q)
}
