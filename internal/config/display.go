package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

type DisplayConfig struct {
	CurrencySymbol string `koanf:"currencysymbol"`
	// Locale drives digit grouping in prices, e.g. "en-IN" or "de".
	Locale string `koanf:"locale"`
}

func (c *DisplayConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Display ---\n")
	b.WriteString(fmt.Sprintf("  display.currencysymbol: %s\n", c.CurrencySymbol))
	b.WriteString(fmt.Sprintf("  display.locale: %s\n", c.Locale))
	return b.String()
}

func (c *DisplayConfig) Validate() error {
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("invalid display locale %q: %w", c.Locale, err)
	}
	return nil
}
