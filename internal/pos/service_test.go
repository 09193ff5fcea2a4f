package pos

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/gemlot/gemlot/internal/shared"
)

type memStore struct {
	products      map[int64]*ProductSnapshot
	sales         map[uuid.UUID]*Sale
	tradeIns      []TradeInProduct
	nextProductID int64
	nextRowID     int64
}

func newMemStore() *memStore {
	return &memStore{
		products:      make(map[int64]*ProductSnapshot),
		sales:         make(map[uuid.UUID]*Sale),
		nextProductID: 1000,
	}
}

func (m *memStore) GetSale(_ context.Context, id uuid.UUID) (*Sale, error) {
	s, ok := m.sales[id]
	if !ok {
		return nil, ErrSaleNotFound
	}
	return s, nil
}

func (m *memStore) ListSales(_ context.Context, _ ListSalesRequest) ([]Sale, int, error) {
	out := make([]Sale, 0, len(m.sales))
	for _, s := range m.sales {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *memStore) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	snapshot := make(map[int64]ProductSnapshot, len(m.products))
	for id, p := range m.products {
		snapshot[id] = *p
	}
	if err := fn(ctx, m); err != nil {
		// crude rollback: restore product quantities, drop the sale
		for id := range m.products {
			p := snapshot[id]
			m.products[id] = &p
		}
		return err
	}
	return nil
}

func (m *memStore) GetProduct(_ context.Context, id int64) (*ProductSnapshot, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, ErrProductUnavailable
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) AdjustStock(_ context.Context, id int64, delta int) error {
	p, ok := m.products[id]
	if !ok {
		return ErrProductUnavailable
	}
	if p.Quantity+delta < 0 {
		return ErrInsufficientStock
	}
	p.Quantity += delta
	return nil
}

func (m *memStore) InsertTradeInProduct(_ context.Context, p TradeInProduct) (int64, error) {
	m.tradeIns = append(m.tradeIns, p)
	m.nextProductID++
	m.products[m.nextProductID] = &ProductSnapshot{
		ID:       m.nextProductID,
		Name:     p.Name,
		Price:    p.Price,
		UnitCost: p.UnitCost,
		Quantity: 1,
		IsActive: true,
	}
	return m.nextProductID, nil
}

func (m *memStore) InsertSale(_ context.Context, s Sale) error {
	cp := s
	m.sales[s.ID] = &cp
	return nil
}

func (m *memStore) InsertSaleItem(_ context.Context, _ SaleItem) (int64, error) {
	m.nextRowID++
	return m.nextRowID, nil
}

func (m *memStore) InsertPartExchange(_ context.Context, _ PartExchange) (int64, error) {
	m.nextRowID++
	return m.nextRowID, nil
}

type stubApprover struct {
	pin string
}

func (a *stubApprover) Verify(pin string) error {
	if pin != a.pin {
		return shared.ErrApprovalDenied
	}
	return nil
}

type recordedApproval struct {
	action shared.ApprovalAction
	ref    uuid.UUID
}

type memApprovals struct {
	records []recordedApproval
}

func (m *memApprovals) Record(_ context.Context, log shared.ApprovalLog) error {
	m.records = append(m.records, recordedApproval{action: log.Action, ref: log.RefID})
	return nil
}

func seedProduct(store *memStore, id int64, price, cost string, qty int) {
	store.products[id] = &ProductSnapshot{
		ID: id, Name: "Item", Price: d(price), UnitCost: d(cost), Quantity: qty, IsActive: true,
	}
}

func newCheckoutService(store *memStore, approvals *memApprovals) *Service {
	return NewService(store, &stubApprover{pin: "4321"}, approvals, nil, nil, nil)
}

func TestCheckoutSnapshotsCostAndDecrementsStock(t *testing.T) {
	store := newMemStore()
	seedProduct(store, 1, "500.00", "210.00", 3)
	svc := newCheckoutService(store, &memApprovals{})

	sale, err := svc.Checkout(context.Background(), CheckoutRequest{
		Items:        []CheckoutItem{{ProductID: 1, Quantity: 2}},
		PaymentLabel: "Cash",
	})
	require.NoError(t, err)
	require.Len(t, sale.Items, 1)
	require.True(t, sale.Items[0].UnitCost.Equal(d("210.00")))
	require.True(t, sale.Total.Equal(d("1000.00")))
	require.True(t, sale.NetTotal.Equal(d("1000.00")))
	require.False(t, sale.OwnerApproved)
	require.Equal(t, 1, store.products[1].Quantity)
}

func TestCheckoutRejectsInsufficientStock(t *testing.T) {
	store := newMemStore()
	seedProduct(store, 1, "500.00", "210.00", 1)
	svc := newCheckoutService(store, &memApprovals{})

	_, err := svc.Checkout(context.Background(), CheckoutRequest{
		Items:        []CheckoutItem{{ProductID: 1, Quantity: 2}},
		PaymentLabel: "Cash",
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, 1, store.products[1].Quantity)
}

func TestNegativeNetTotalBlockedWithoutPIN(t *testing.T) {
	store := newMemStore()
	seedProduct(store, 1, "100.00", "40.00", 1)
	svc := newCheckoutService(store, &memApprovals{})

	_, err := svc.Checkout(context.Background(), CheckoutRequest{
		Items:        []CheckoutItem{{ProductID: 1, Quantity: 1}},
		PaymentLabel: "Cash",
		PartExchanges: []PartExchangeInput{
			{Description: "Old watch", Allowance: d("250.00")},
		},
	})
	require.ErrorIs(t, err, ErrApprovalRequired)
	require.Empty(t, store.sales)
	require.Equal(t, 1, store.products[1].Quantity)
}

func TestNegativeNetTotalDeniedWithWrongPIN(t *testing.T) {
	store := newMemStore()
	seedProduct(store, 1, "100.00", "40.00", 1)
	approvals := &memApprovals{}
	svc := newCheckoutService(store, approvals)

	_, err := svc.Checkout(context.Background(), CheckoutRequest{
		Items:        []CheckoutItem{{ProductID: 1, Quantity: 1}},
		PaymentLabel: "Cash",
		OwnerPIN:     "0000",
		PartExchanges: []PartExchangeInput{
			{Description: "Old watch", Allowance: d("250.00")},
		},
	})
	require.ErrorIs(t, err, shared.ErrApprovalDenied)
	require.Empty(t, store.sales)
	require.Len(t, approvals.records, 1)
	require.Equal(t, shared.ApprovalDeny, approvals.records[0].action)
}

func TestNegativeNetTotalCompletesWithOwnerPIN(t *testing.T) {
	store := newMemStore()
	seedProduct(store, 1, "100.00", "40.00", 1)
	approvals := &memApprovals{}
	svc := newCheckoutService(store, approvals)

	sale, err := svc.Checkout(context.Background(), CheckoutRequest{
		Items:        []CheckoutItem{{ProductID: 1, Quantity: 1}},
		PaymentLabel: "Cash",
		OwnerPIN:     "4321",
		PartExchanges: []PartExchangeInput{
			{Description: "Old watch", Allowance: d("250.00")},
		},
	})
	require.NoError(t, err)
	require.True(t, sale.NetTotal.Equal(d("-150.00")))
	require.True(t, sale.OwnerApproved)
	require.Len(t, approvals.records, 1)
	require.Equal(t, shared.ApprovalGrant, approvals.records[0].action)
	require.Equal(t, sale.ID, approvals.records[0].ref)
}

func TestTradeInTakenIntoStock(t *testing.T) {
	store := newMemStore()
	seedProduct(store, 1, "900.00", "400.00", 1)
	svc := newCheckoutService(store, &memApprovals{})

	supplierID := int64(7)
	sale, err := svc.Checkout(context.Background(), CheckoutRequest{
		Items:        []CheckoutItem{{ProductID: 1, Quantity: 1}},
		PaymentLabel: "Bank Transfer",
		PartExchanges: []PartExchangeInput{
			{
				Description:        "Vintage signet ring",
				Allowance:          d("150.00"),
				CustomerSupplierID: &supplierID,
				TakeIntoStock:      true,
				ResalePrice:        decimalPtr(d("295.00")),
			},
		},
	})
	require.NoError(t, err)
	require.Equal(t, PaymentTransfer, sale.PaymentMethod)
	require.Len(t, store.tradeIns, 1)
	require.True(t, store.tradeIns[0].UnitCost.Equal(d("150.00")))
	require.True(t, store.tradeIns[0].Price.Equal(d("295.00")))
	require.Len(t, sale.PartExchanges, 1)
	require.NotNil(t, sale.PartExchanges[0].ProductID)
}

func TestCheckoutRejectsNegativeAllowance(t *testing.T) {
	store := newMemStore()
	seedProduct(store, 1, "100.00", "40.00", 1)
	svc := newCheckoutService(store, &memApprovals{})

	_, err := svc.Checkout(context.Background(), CheckoutRequest{
		Items:        []CheckoutItem{{ProductID: 1, Quantity: 1}},
		PaymentLabel: "Cash",
		PartExchanges: []PartExchangeInput{
			{Description: "Bad", Allowance: d("-5.00")},
		},
	})
	require.ErrorIs(t, err, ErrNegativeAllowance)
}

func TestCheckoutRejectsUnknownPaymentLabel(t *testing.T) {
	store := newMemStore()
	seedProduct(store, 1, "100.00", "40.00", 1)
	svc := newCheckoutService(store, &memApprovals{})

	_, err := svc.Checkout(context.Background(), CheckoutRequest{
		Items:        []CheckoutItem{{ProductID: 1, Quantity: 1}},
		PaymentLabel: "cheque",
	})
	require.ErrorIs(t, err, ErrUnknownPayment)
}

func decimalPtr(v decimal.Decimal) *decimal.Decimal { return &v }
