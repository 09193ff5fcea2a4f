package pos

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestLineRevenueAppliesFlatDiscount(t *testing.T) {
	rev := LineRevenue(2, d("450.00"), d("50.00"))
	require.True(t, rev.Equal(d("850.00")))
}

func TestLineTaxOnDiscountedRevenue(t *testing.T) {
	rev := LineRevenue(1, d("100.00"), d("10.00"))
	tax := LineTax(rev, d("20"))
	require.True(t, tax.Equal(d("18.00")))
}

func TestComputeTotals(t *testing.T) {
	items := []SaleItem{
		{Quantity: 1, UnitPrice: d("1200.00"), Discount: d("100.00"), TaxRate: d("20")},
		{Quantity: 2, UnitPrice: d("75.00"), Discount: decimal.Zero, TaxRate: decimal.Zero},
	}
	totals := ComputeTotals(items, []decimal.Decimal{d("300.00")})

	require.True(t, totals.Subtotal.Equal(d("1250.00")))
	require.True(t, totals.Discount.Equal(d("100.00")))
	require.True(t, totals.Tax.Equal(d("220.00")))
	require.True(t, totals.Total.Equal(d("1470.00")))
	require.True(t, totals.PXAllowanceTotal.Equal(d("300.00")))
	require.True(t, totals.NetTotal.Equal(d("1170.00")))
	require.False(t, totals.RequiresOwnerApproval())
}

func TestAllowancesExceedingCartGateCheckout(t *testing.T) {
	items := []SaleItem{
		{Quantity: 1, UnitPrice: d("200.00"), Discount: decimal.Zero, TaxRate: decimal.Zero},
	}
	totals := ComputeTotals(items, []decimal.Decimal{d("150.00"), d("120.00")})

	require.True(t, totals.NetTotal.Equal(d("-70.00")))
	require.True(t, totals.RequiresOwnerApproval())
}

func TestZeroNetTotalNeedsNoApproval(t *testing.T) {
	items := []SaleItem{
		{Quantity: 1, UnitPrice: d("100.00"), Discount: decimal.Zero, TaxRate: decimal.Zero},
	}
	totals := ComputeTotals(items, []decimal.Decimal{d("100.00")})

	require.True(t, totals.NetTotal.IsZero())
	require.False(t, totals.RequiresOwnerApproval())
}

func TestMapPaymentLabel(t *testing.T) {
	cases := map[string]PaymentMethod{
		"Cash":          PaymentCash,
		"card":          PaymentCard,
		"Bank Transfer": PaymentTransfer,
		"Direct Debit":  PaymentTransfer,
		"Other":         PaymentOther,
	}
	for label, want := range cases {
		got, ok := MapPaymentLabel(label)
		require.True(t, ok, label)
		require.Equal(t, want, got)
	}

	_, ok := MapPaymentLabel("barter")
	require.False(t, ok)
}
