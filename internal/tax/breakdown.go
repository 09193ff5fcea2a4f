// Package tax computes VAT breakdowns for expenses and sales.
package tax

import (
	"github.com/shopspring/decimal"

	"github.com/gemlot/gemlot/internal/money"
)

// StandardRates are the VAT rates offered in the UI. The calculator itself
// accepts any non-negative rate.
var StandardRates = []decimal.Decimal{
	decimal.Zero,
	decimal.NewFromInt(5),
	decimal.NewFromInt(20),
}

// Amounts is the VAT breakdown persisted alongside the gross amount.
type Amounts struct {
	ExVAT     decimal.Decimal `json:"amount_ex_vat"`
	VATAmount decimal.Decimal `json:"vat_amount"`
	IncVAT    decimal.Decimal `json:"amount_inc_vat"`
}

// Breakdown splits an entered amount into ex-VAT, VAT and inc-VAT figures.
//
// When includeVAT is false the amount carries no VAT: ExVAT and IncVAT both
// equal the entered amount and VATAmount is zero. When includeVAT is true
// the entered amount is treated as VAT-inclusive. ExVAT is rounded to two
// decimal places and VATAmount is the remainder against the original amount,
// so ExVAT + VATAmount always reproduces the entered amount exactly.
func Breakdown(amount decimal.Decimal, includeVAT bool, ratePercent decimal.Decimal) Amounts {
	if !includeVAT {
		return Amounts{ExVAT: amount, VATAmount: decimal.Zero, IncVAT: amount}
	}
	divisor := decimal.NewFromInt(1).Add(ratePercent.Div(money.Hundred))
	exVAT := money.Round2(amount.Div(divisor))
	vatAmount := money.Round2(amount.Sub(exVAT))
	return Amounts{ExVAT: exVAT, VATAmount: vatAmount, IncVAT: amount}
}
