// Package shop provides storefront template helpers: money, stock and cart labels.
package shop

import (
	"html/template"
	"log/slog"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Options configures price rendering.
type Options struct {
	// Currency is an ISO 4217 code; unknown or empty codes fall back to USD.
	Currency string
	// Locale is a BCP 47 tag; invalid or empty tags fall back to en-US.
	Locale string
	Logger *slog.Logger
}

// Formatter renders amounts in one currency and locale.
type Formatter struct {
	printer *message.Printer
	symbol  string
	scale   int
}

// NewFormatter resolves opts into a Formatter.
func NewFormatter(opts Options) *Formatter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tag := language.AmericanEnglish
	if opts.Locale != "" {
		parsed, err := language.Parse(opts.Locale)
		if err != nil {
			logger.Warn("invalid price locale, using en-US", "locale", opts.Locale, "error", err)
		} else {
			tag = parsed
		}
	}

	unit := currency.USD
	if opts.Currency != "" {
		parsed, err := currency.ParseISO(opts.Currency)
		if err != nil {
			logger.Warn("invalid price currency, using USD", "currency", opts.Currency, "error", err)
		} else {
			unit = parsed
		}
	}

	printer := message.NewPrinter(tag)
	scale, _ := currency.Standard.Rounding(unit)
	return &Formatter{
		printer: printer,
		symbol:  printer.Sprint(currency.Symbol(unit)),
		scale:   scale,
	}
}

// Price formats amount with the currency symbol and locale grouping, e.g. "$1,234.50".
func (f *Formatter) Price(amount float64) string {
	return f.symbol + f.printer.Sprint(number.Decimal(amount, number.Scale(f.scale)))
}

// Funcs returns the template helpers backed by f.
func Funcs(f *Formatter) template.FuncMap {
	return template.FuncMap{
		"price": f.Price,
		"stockLabel": func(stock int) string {
			switch {
			case stock <= 0:
				return "Out of stock"
			case stock < lowStock:
				return f.printer.Sprintf("Only %d left", stock)
			default:
				return "In stock"
			}
		},
		"pluralize": func(n int, singular, plural string) string {
			if n == 1 {
				return singular
			}
			return plural
		},
	}
}

const lowStock = 5
