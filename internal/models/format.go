package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders a revenue amount for the metrics row and tables:
// euro sign, thousands separators, two decimal places.
func FormatCurrency(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}

	return sign + "€" + grouped.String() + "." + fracPart
}
