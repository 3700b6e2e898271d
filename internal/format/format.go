// Package format holds presentation helpers for CLI output.
package format

import (
	"fmt"
	"strings"
	"time"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"CAD": "CA$",
	"AUD": "A$",
}

// Currency renders an amount in minor units (cents) as a currency string.
func Currency(amount int64, currency string) string {
	symbol, ok := currencySymbols[strings.ToUpper(currency)]
	if !ok {
		symbol = strings.ToUpper(currency) + " "
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, symbol, amount/100, amount%100)
}

// CardNumber renders a masked card reference like "**** **** **** 1234".
func CardNumber(last4 string) string {
	return "**** **** **** " + last4
}

// Expiry renders a card expiry as MM/YY.
func Expiry(month, year int) string {
	return fmt.Sprintf("%02d/%02d", month, year%100)
}

// Date renders a timestamp in the short form used across the CLI.
func Date(t time.Time) string {
	return t.Format("Jan 02, 2006")
}

// DateTime renders a timestamp with the time of day.
func DateTime(t time.Time) string {
	return t.Format("Jan 02, 2006 15:04")
}

// Title turns an enum value like "food_and_dining" into "Food And Dining".
func Title(v string) string {
	words := strings.Split(v, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// Truncate shortens text to maxLen runes, appending an ellipsis.
func Truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}
