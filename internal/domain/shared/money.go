package shared

import "github.com/shopspring/decimal"

// MoneyPlaces is the scale of every stored amount (NUMERIC(14, 2))
const MoneyPlaces = 2

// ValidAmount reports whether d is positive and fits the stored scale without rounding
func ValidAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Round(MoneyPlaces))
}
