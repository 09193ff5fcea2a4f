package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestBreakdownInclusiveStandardCase(t *testing.T) {
	got := Breakdown(dec("120.00"), true, dec("20"))
	require.True(t, got.ExVAT.Equal(dec("100.00")), "ex vat: %s", got.ExVAT)
	require.True(t, got.VATAmount.Equal(dec("20.00")), "vat: %s", got.VATAmount)
	require.True(t, got.IncVAT.Equal(dec("120.00")), "inc vat: %s", got.IncVAT)
}

func TestBreakdownExclusivePassesAmountThrough(t *testing.T) {
	got := Breakdown(dec("99.99"), false, dec("20"))
	require.True(t, got.ExVAT.Equal(dec("99.99")))
	require.True(t, got.IncVAT.Equal(dec("99.99")))
	require.True(t, got.VATAmount.IsZero())
}

func TestBreakdownRoundTrip(t *testing.T) {
	amounts := []string{"0.01", "0.03", "1.00", "7.77", "119.99", "120.00", "1234.56", "99999.95"}
	rates := []string{"0", "5", "20"}
	for _, a := range amounts {
		for _, r := range rates {
			got := Breakdown(dec(a), true, dec(r))
			sum := got.ExVAT.Add(got.VATAmount)
			require.True(t, sum.Equal(dec(a)), "amount=%s rate=%s: %s + %s != %s", a, r, got.ExVAT, got.VATAmount, a)
		}
	}
}

func TestBreakdownZeroRate(t *testing.T) {
	got := Breakdown(dec("45.50"), true, decimal.Zero)
	require.True(t, got.ExVAT.Equal(dec("45.50")))
	require.True(t, got.VATAmount.IsZero())
}

func TestBreakdownAcceptsNonStandardRate(t *testing.T) {
	got := Breakdown(dec("107.25"), true, dec("12.5"))
	require.True(t, got.ExVAT.Add(got.VATAmount).Equal(dec("107.25")))
	require.True(t, got.ExVAT.Equal(dec("95.33")), "ex vat: %s", got.ExVAT)
}

func TestBreakdownRoundsHalfUp(t *testing.T) {
	// 100.05 / 1.20 = 83.375 -> 83.38 half up.
	got := Breakdown(dec("100.05"), true, dec("20"))
	require.True(t, got.ExVAT.Equal(dec("83.38")), "ex vat: %s", got.ExVAT)
	require.True(t, got.VATAmount.Equal(dec("16.67")), "vat: %s", got.VATAmount)
}
