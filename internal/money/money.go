// Package money centralises decimal arithmetic for monetary values.
// Amounts are carried as decimals end to end; floats only appear at the
// JSON boundary.
package money

import "github.com/shopspring/decimal"

// Hundred is the percent divisor.
var Hundred = decimal.NewFromInt(100)

// Round2 rounds to two decimal places, half up.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Sum adds the given amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
