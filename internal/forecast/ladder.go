// Package forecast produces short projections of income and savings series:
// a deterministic salary ladder, linear extrapolation, and three statistical
// forecasters that run side by side.
package forecast

import (
	"fmt"
)

const (
	// AnnualIncrease is applied at every 12th month
	AnnualIncrease  = 0.03
	FirstYearMonths = 12
	ExtendedMonths  = 48
)

// Ladder is a salary projection: the next 12 months, then the following 4 years.
type Ladder struct {
	Base      float64
	FirstYear []float64
	Extended  []float64
	// Bonus is the first-year total plus one month of the base income
	Bonus float64
}

// All returns the 60 projected months in order
func (l *Ladder) All() []float64 {
	return append(append([]float64(nil), l.FirstYear...), l.Extended...)
}

// SalaryLadder projects base income forward. custom maps month (1-12) to a one-off
// increase paid in that month only; the salary reverts the following month. The 3%
// raise applies whenever the month counter of a segment reaches a multiple of 12,
// in both the first-year and the extended segment.
func SalaryLadder(base float64, custom map[int]float64) (*Ladder, error) {
	if base < 0 {
		return nil, fmt.Errorf("base income must not be negative")
	}
	for month, amount := range custom {
		if month < 1 || month > FirstYearMonths {
			return nil, fmt.Errorf("custom increase for month %d is outside 1-%d", month, FirstYearMonths)
		}
		if amount < 0 {
			return nil, fmt.Errorf("custom increase for month %d must not be negative", month)
		}
	}

	ladder := &Ladder{
		Base:      base,
		FirstYear: make([]float64, 0, FirstYearMonths),
		Extended:  make([]float64, 0, ExtendedMonths),
	}

	salary := base
	for month := 1; month <= FirstYearMonths; month++ {
		if month%12 == 0 {
			salary *= 1 + AnnualIncrease
		}
		ladder.FirstYear = append(ladder.FirstYear, salary+custom[month])
	}

	for month := 1; month <= ExtendedMonths; month++ {
		if month%12 == 0 {
			salary *= 1 + AnnualIncrease
		}
		ladder.Extended = append(ladder.Extended, salary)
	}

	total := 0.0
	for _, v := range ladder.FirstYear {
		total += v
	}
	ladder.Bonus = total + base
	return ladder, nil
}
