package dashboard

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrencySymbol is the symbol prices are shown with unless configured otherwise.
const DefaultCurrencySymbol = "₹"

// PriceFormatter renders prices as symbol + grouped amount with two decimals.
type PriceFormatter struct {
	symbol  string
	printer *message.Printer
}

func NewPriceFormatter(symbol string, tag language.Tag) *PriceFormatter {
	return &PriceFormatter{symbol: symbol, printer: message.NewPrinter(tag)}
}

var defaultFormatter = NewPriceFormatter(DefaultCurrencySymbol, language.English)

// FormatPrice formats v with the default symbol and English grouping, e.g. ₹1,234.50.
func FormatPrice(v float64) string {
	return defaultFormatter.Format(v)
}

func (f *PriceFormatter) Format(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = math.Abs(v)
	}
	return sign + f.symbol + f.printer.Sprintf("%.2f", v)
}
