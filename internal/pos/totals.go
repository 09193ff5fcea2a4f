package pos

import (
	"github.com/shopspring/decimal"

	"github.com/gemlot/gemlot/internal/money"
)

// Totals carries the derived figures for a cart.
type Totals struct {
	Subtotal         decimal.Decimal `json:"subtotal"`
	Discount         decimal.Decimal `json:"discount"`
	Tax              decimal.Decimal `json:"tax"`
	Total            decimal.Decimal `json:"total"`
	PXAllowanceTotal decimal.Decimal `json:"px_allowance_total"`
	NetTotal         decimal.Decimal `json:"net_total"`
}

// LineRevenue is quantity * unit price minus the flat line discount. The
// discount applies before tax and never touches cost.
func LineRevenue(quantity int, unitPrice, discount decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Sub(discount)
}

// LineTax is the tax charged on the discounted line revenue.
func LineTax(revenue, taxRatePercent decimal.Decimal) decimal.Decimal {
	if taxRatePercent.IsZero() {
		return decimal.Zero
	}
	return money.Round2(revenue.Mul(taxRatePercent).Div(money.Hundred))
}

// ComputeTotals derives cart totals. The net total is the cart total minus
// the summed part-exchange allowances; a negative net total means money is
// owed back to the customer.
func ComputeTotals(items []SaleItem, allowances []decimal.Decimal) Totals {
	t := Totals{
		Subtotal:         decimal.Zero,
		Discount:         decimal.Zero,
		Tax:              decimal.Zero,
		PXAllowanceTotal: decimal.Zero,
	}
	for _, item := range items {
		revenue := LineRevenue(item.Quantity, item.UnitPrice, item.Discount)
		t.Subtotal = t.Subtotal.Add(revenue)
		t.Discount = t.Discount.Add(item.Discount)
		t.Tax = t.Tax.Add(LineTax(revenue, item.TaxRate))
	}
	t.Total = t.Subtotal.Add(t.Tax)
	t.PXAllowanceTotal = money.Sum(allowances...)
	t.NetTotal = t.Total.Sub(t.PXAllowanceTotal)
	return t
}

// RequiresOwnerApproval reports whether completing the sale needs the owner
// PIN. Only negative net totals are gated.
func (t Totals) RequiresOwnerApproval() bool {
	return t.NetTotal.IsNegative()
}
