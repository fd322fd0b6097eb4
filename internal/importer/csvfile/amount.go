package csvfile

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount accepts plain ("1234.56") and European ("1.234,56") notation.
// When both separators appear, the rightmost one is the decimal mark. A lone
// comma is always a decimal mark; repeated dots are thousands separators.
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '€', '$':
			return -1
		}

		return r
	}, s)

	lastDot := strings.LastIndex(clean, ".")
	lastComma := strings.LastIndex(clean, ",")

	switch {
	case lastComma > lastDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case lastDot > lastComma && lastComma >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	case strings.Count(clean, ".") > 1:
		clean = strings.ReplaceAll(clean, ".", "")
	}

	return decimal.NewFromString(clean)
}
