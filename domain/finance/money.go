package finance

import (
	"math"

	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount in pounds with two decimals, e.g. "£1234.50".
func FormatMoney(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "£n/a"
	}
	return "£" + decimal.NewFromFloat(amount).StringFixed(2)
}

// RoundMoney rounds an amount to whole pence.
func RoundMoney(amount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return amount
	}
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}
