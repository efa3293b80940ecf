// Package export renders computed views for people: terminal tables,
// spreadsheets and locale-aware amounts.
package export

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"pixnox/internal/core"
)

// DefaultCurrency is used when none is configured.
const DefaultCurrency = "EUR"

// Currency formats amounts with a currency symbol in a locale.
type Currency struct {
	Code    string // "EUR", "USD", ...
	unit    currency.Unit
	symbol  string
	prefix  bool
	printer *message.Printer
}

// defaultLocaleForCurrency is the "home" locale of a currency, used for
// grouping and decimal separators.
var defaultLocaleForCurrency = map[string]language.Tag{
	"EUR": language.German,
	"USD": language.AmericanEnglish,
	"GBP": language.BritishEnglish,
	"CHF": language.German,
	"SEK": language.Swedish,
	"NOK": language.Norwegian,
	"DKK": language.Danish,
	"JPY": language.Japanese,
	"CAD": language.CanadianFrench,
	"AUD": language.MustParse("en-AU"),
	"BRL": language.BrazilianPortuguese,
	"PLN": language.Polish,
	"CZK": language.Czech,
	"INR": language.MustParse("en-IN"),
}

var symbolOverrides = map[string]string{
	"SEK": "kr",
	"NOK": "kr",
	"DKK": "kr",
}

// x/text does not expose CLDR symbol placement, so prefix currencies are listed.
var prefixCurrencies = map[string]bool{
	"USD": true, "GBP": true, "JPY": true, "CAD": true, "AUD": true, "INR": true,
}

// NewCurrency returns the Currency for an ISO code in its home locale.
// Unknown codes format with English separators and the code as symbol.
func NewCurrency(code string) Currency {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}
	tag, ok := defaultLocaleForCurrency[code]
	if !ok {
		tag = language.English
	}
	return NewCurrencyWithLocale(code, tag)
}

// NewCurrencyWithLocale returns a Currency formatted in a specific locale.
func NewCurrencyWithLocale(code string, tag language.Tag) Currency {
	code = strings.ToUpper(strings.TrimSpace(code))
	c := Currency{
		Code:    code,
		prefix:  prefixCurrencies[code],
		printer: message.NewPrinter(tag),
	}

	unit, err := currency.ParseISO(code)
	switch {
	case err != nil:
		c.unit = currency.EUR
		c.symbol = code
	case symbolOverrides[code] != "":
		c.unit = unit
		c.symbol = symbolOverrides[code]
	default:
		c.unit = unit
		c.symbol = c.printer.Sprint(currency.NarrowSymbol(unit))
	}
	return c
}

// Format renders m with two fraction digits and the currency symbol.
func (c Currency) Format(m core.Money) string {
	formatted := c.printer.Sprint(number.Decimal(m.Units(),
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
	if c.prefix {
		return c.symbol + formatted
	}
	return formatted + " " + c.symbol
}

// Percent renders a change such as "+12.5%" in the currency's locale.
func (c Currency) Percent(p float64) string {
	sign := ""
	if p > 0 {
		sign = "+"
	}
	return sign + c.printer.Sprint(number.Decimal(p,
		number.MinFractionDigits(1), number.MaxFractionDigits(1))) + "%"
}
