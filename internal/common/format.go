package common

import (
	"fmt"
	"strings"
)

// currencySymbol prefixes all monetary output. Configurable via SetCurrencySymbol.
var currencySymbol = "¥"

// SetCurrencySymbol sets the symbol used by the money formatters.
func SetCurrencySymbol(symbol string) {
	if symbol != "" {
		currencySymbol = symbol
	}
}

// FormatMoney formats a monetary value with the currency symbol and
// thousands separators, e.g. "¥12,345.67".
func FormatMoney(v float64) string {
	return currencySymbol + groupThousands(fmt.Sprintf("%.2f", v))
}

// FormatSignedMoney formats a monetary value with an explicit sign,
// e.g. "+¥1,234.00" / "-¥56.78".
func FormatSignedMoney(v float64) string {
	if v < 0 {
		return "-" + currencySymbol + groupThousands(fmt.Sprintf("%.2f", -v))
	}
	return "+" + currencySymbol + groupThousands(fmt.Sprintf("%.2f", v))
}

// FormatSignedPct formats a percentage with an explicit sign, e.g. "+2.78%".
func FormatSignedPct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

// FormatPct formats a percentage to one decimal place, e.g. "45.0%".
func FormatPct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// groupThousands inserts commas into the integer part of a fixed-point
// decimal string.
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	sb.WriteString(fracPart)
	return sb.String()
}
