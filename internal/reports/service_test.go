package reports

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/gemlot/gemlot/internal/platform/cache"
)

type memStore struct {
	lines    []SaleLineRow
	pxBySale map[uuid.UUID][]PartExchangeRef
	expenses ExpenseTotals
	reads    int
}

func (m *memStore) SaleLines(_ context.Context, _, _ time.Time) ([]SaleLineRow, error) {
	m.reads++
	return m.lines, nil
}

func (m *memStore) PartExchanges(_ context.Context, _, _ time.Time) (map[uuid.UUID][]PartExchangeRef, error) {
	return m.pxBySale, nil
}

func (m *memStore) ExpenseTotals(_ context.Context, _, _ time.Time) (ExpenseTotals, error) {
	return m.expenses, nil
}

func fixtureStore() *memStore {
	paid := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	pxSale := uuid.New()
	supplier := int64(3)
	consignor := int64(8)
	customer := int64(15)

	return &memStore{
		lines: []SaleLineRow{
			// owned ring
			{SaleID: uuid.New(), ProductID: 1, Category: "ring", Quantity: 1,
				UnitPrice: d("600.00"), UnitCost: d("250.00"), SupplierID: &supplier},
			// trade-in watch funded by a PX allowance
			{SaleID: pxSale, ProductID: 2, Category: "watch", Quantity: 1,
				UnitPrice: d("500.00"), UnitCost: d("0.00"), IsTradeIn: true},
			// settled consignment necklace
			{SaleID: uuid.New(), ProductID: 3, Category: "necklace", Quantity: 1,
				UnitPrice: d("800.00"), UnitCost: d("500.00"), IsConsignment: true,
				ConsignmentSupplierID: &consignor,
				Settlement:            &SettlementRef{PayoutAmount: ptr(d("550.00")), PaidAt: &paid}},
			// unsettled consignment bracelet
			{SaleID: uuid.New(), ProductID: 4, Category: "bracelet", Quantity: 1,
				UnitPrice: d("400.00"), UnitCost: d("200.00"), IsConsignment: true,
				ConsignmentSupplierID: &consignor,
				Settlement:            &SettlementRef{PayoutAmount: ptr(d("300.00"))}},
		},
		pxBySale: map[uuid.UUID][]PartExchangeRef{
			pxSale: {{Allowance: d("150.00"), CustomerSupplierID: &customer}},
		},
		expenses: ExpenseTotals{
			Gross: d("360.00"), ExVAT: d("300.00"), COGS: d("100.00"), Count: 4,
		},
	}
}

func period() (time.Time, time.Time) {
	return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
}

func TestPnLAggregation(t *testing.T) {
	store := fixtureStore()
	svc := NewService(store, nil, nil)
	from, to := period()

	report, err := svc.PnL(context.Background(), from, to)
	require.NoError(t, err)

	// 600 + 500 + 800 + 400
	require.True(t, report.Revenue.Equal(d("2300.00")))
	// 250 owned + 150 px allowance + 550 settled payout + 300 unsettled payout
	require.True(t, report.COGS.Equal(d("1250.00")))
	require.True(t, report.GrossProfit.Equal(d("1050.00")))
	// gross profit minus all expenses ex-VAT
	require.True(t, report.NetProfit.Equal(d("750.00")))
	require.Equal(t, 4, report.LinesResolved)
}

func TestPnLConsignmentSummaryKeepsSumsIndependent(t *testing.T) {
	svc := NewService(fixtureStore(), nil, nil)
	from, to := period()

	report, err := svc.PnL(context.Background(), from, to)
	require.NoError(t, err)

	require.True(t, report.Consignment.SettledGrossProfit.Equal(d("250.00")))
	require.Equal(t, 1, report.Consignment.SettledCount)
	require.True(t, report.Consignment.UnsettledTotal.Equal(d("300.00")))
	require.Equal(t, 1, report.Consignment.UnsettledCount)
}

func TestPnLSupplierAttribution(t *testing.T) {
	svc := NewService(fixtureStore(), nil, nil)
	from, to := period()

	report, err := svc.PnL(context.Background(), from, to)
	require.NoError(t, err)

	bySupplier := map[int64]SupplierRollup{}
	for _, s := range report.BySupplier {
		bySupplier[s.SupplierID] = s
	}
	// owned line to its supplier, trade-in to the PX customer, both
	// consignment lines to the consignor
	require.Equal(t, 1, bySupplier[3].Lines)
	require.Equal(t, 1, bySupplier[15].Lines)
	require.Equal(t, 2, bySupplier[8].Lines)
	require.True(t, bySupplier[8].GrossProfit.Equal(d("350.00")))
}

func TestPnLCategoryRollups(t *testing.T) {
	svc := NewService(fixtureStore(), nil, nil)
	from, to := period()

	report, err := svc.PnL(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, report.ByCategory, 4)

	byCat := map[string]CategoryRollup{}
	for _, c := range report.ByCategory {
		byCat[c.Category] = c
	}
	require.True(t, byCat["watch"].COGS.Equal(d("150.00")))
	require.True(t, byCat["watch"].GrossProfit.Equal(d("350.00")))
}

func TestPnLServedFromCacheUntilInvalidated(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	qc := cache.NewQueryCache(client, time.Minute)

	store := fixtureStore()
	svc := NewService(store, qc, nil)
	from, to := period()

	_, err := svc.PnL(context.Background(), from, to)
	require.NoError(t, err)
	_, err = svc.PnL(context.Background(), from, to)
	require.NoError(t, err)
	require.Equal(t, 1, store.reads)

	require.NoError(t, qc.Invalidate(context.Background(), "reports"))
	report, err := svc.PnL(context.Background(), from, to)
	require.NoError(t, err)
	require.Equal(t, 2, store.reads)
	require.True(t, report.Revenue.Equal(d("2300.00")))
}
