package generic

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places every persisted amount carries.
const MoneyPlaces = 2

// RoundMoney rounds half to even (banker's rounding) to MoneyPlaces.
// 100.005 becomes 100.00 and 100.015 becomes 100.02.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(MoneyPlaces)
}

// ParseDecimal reads a decimal written either with a dot or a comma as the
// decimal separator ("2000.50", "2000,50", " 2 000,50 "). Spaces, including
// non-breaking ones, are treated as thousands separators.
func ParseDecimal(s string) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		case ',':
			return '.'
		}
		return r
	}, strings.TrimSpace(s))
	return decimal.NewFromString(clean)
}
