package consignment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	settlements map[int64]*Settlement
	nextID      int64
}

func newMemStore() *memStore {
	return &memStore{settlements: make(map[int64]*Settlement)}
}

func (m *memStore) Get(_ context.Context, id int64) (*Settlement, error) {
	s, ok := m.settlements[id]
	if !ok {
		return nil, ErrSettlementNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) Create(_ context.Context, s Settlement) (int64, error) {
	m.nextID++
	s.ID = m.nextID
	s.CreatedAt = time.Now()
	m.settlements[s.ID] = &s
	return s.ID, nil
}

func (m *memStore) Update(_ context.Context, id int64, updates map[string]interface{}) error {
	s, ok := m.settlements[id]
	if !ok {
		return ErrSettlementNotFound
	}
	if s.PaidAt != nil {
		return ErrAlreadySettled
	}
	for col, v := range updates {
		switch col {
		case "agreed_price":
			price := v.(decimal.Decimal)
			s.AgreedPrice = &price
		case "payout_amount":
			amount := v.(decimal.Decimal)
			s.PayoutAmount = &amount
		case "notes":
			notes := v.(string)
			s.Notes = &notes
		}
	}
	return nil
}

func (m *memStore) MarkPaid(_ context.Context, id int64, paidAt time.Time) error {
	s, ok := m.settlements[id]
	if !ok {
		return ErrSettlementNotFound
	}
	if s.PaidAt != nil {
		return ErrAlreadySettled
	}
	s.PaidAt = &paidAt
	return nil
}

func (m *memStore) List(_ context.Context, req ListSettlementsRequest) ([]Settlement, int, error) {
	out := []Settlement{}
	for _, s := range m.settlements {
		if req.SupplierID != nil && s.SupplierID != *req.SupplierID {
			continue
		}
		if req.Status != nil && s.Status() != *req.Status {
			continue
		}
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *memStore) SupplierBalances(_ context.Context) ([]SupplierBalance, error) {
	by := map[int64]*SupplierBalance{}
	for _, s := range m.settlements {
		if s.PaidAt != nil {
			continue
		}
		b, ok := by[s.SupplierID]
		if !ok {
			b = &SupplierBalance{SupplierID: s.SupplierID, UnsettledTotal: decimal.Zero}
			by[s.SupplierID] = b
		}
		b.UnsettledCount++
		b.UnsettledTotal = b.UnsettledTotal.Add(s.EffectivePayout())
	}
	out := []SupplierBalance{}
	for _, b := range by {
		out = append(out, *b)
	}
	return out, nil
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func create(t *testing.T, svc *Service, supplierID int64, agreed, payout *decimal.Decimal) *Settlement {
	t.Helper()
	settlement, err := svc.Create(context.Background(), CreateSettlementRequest{
		ProductID:    1,
		SaleID:       uuid.New(),
		SupplierID:   supplierID,
		AgreedPrice:  agreed,
		PayoutAmount: payout,
	})
	require.NoError(t, err)
	return settlement
}

func ptr(v decimal.Decimal) *decimal.Decimal { return &v }

func TestNewSettlementIsUnsettled(t *testing.T) {
	svc := NewService(newMemStore(), nil, nil, nil)
	settlement := create(t, svc, 5, ptr(d("400.00")), nil)

	require.Equal(t, StatusUnsettled, settlement.Status())
	require.Nil(t, settlement.PaidAt)
	require.True(t, settlement.EffectivePayout().Equal(d("400.00")))
}

func TestEffectivePayoutPrecedence(t *testing.T) {
	require.True(t, Settlement{
		AgreedPrice:  ptr(d("400.00")),
		PayoutAmount: ptr(d("380.00")),
	}.EffectivePayout().Equal(d("380.00")))

	require.True(t, Settlement{AgreedPrice: ptr(d("400.00"))}.EffectivePayout().Equal(d("400.00")))

	// both missing degrades to zero
	require.True(t, Settlement{}.EffectivePayout().IsZero())
}

func TestMarkPaidIsIrreversible(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil, nil, nil)
	settlement := create(t, svc, 5, ptr(d("400.00")), nil)

	paid, err := svc.MarkPaid(context.Background(), settlement.ID)
	require.NoError(t, err)
	require.Equal(t, StatusSettled, paid.Status())
	require.NotNil(t, paid.PaidAt)

	_, err = svc.MarkPaid(context.Background(), settlement.ID)
	require.ErrorIs(t, err, ErrAlreadySettled)

	_, err = svc.Update(context.Background(), settlement.ID, UpdateSettlementRequest{
		PayoutAmount: ptr(d("1.00")),
	})
	require.ErrorIs(t, err, ErrAlreadySettled)
}

func TestListFiltersByStatus(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil, nil, nil)
	a := create(t, svc, 5, ptr(d("400.00")), nil)
	create(t, svc, 5, ptr(d("250.00")), nil)

	_, err := svc.MarkPaid(context.Background(), a.ID)
	require.NoError(t, err)

	settled := StatusSettled
	items, total, err := svc.List(context.Background(), ListSettlementsRequest{Status: &settled})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, a.ID, items[0].ID)

	unsettled := StatusUnsettled
	items, total, err = svc.List(context.Background(), ListSettlementsRequest{Status: &unsettled})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, StatusUnsettled, items[0].Status())
}

func TestSupplierBalancesCountUnsettledOnly(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil, nil, nil)
	a := create(t, svc, 5, ptr(d("400.00")), ptr(d("380.00")))
	create(t, svc, 5, ptr(d("250.00")), nil)
	create(t, svc, 9, nil, ptr(d("120.00")))

	_, err := svc.MarkPaid(context.Background(), a.ID)
	require.NoError(t, err)

	balances, err := svc.SupplierBalances(context.Background())
	require.NoError(t, err)
	require.Len(t, balances, 2)

	byID := map[int64]SupplierBalance{}
	for _, b := range balances {
		byID[b.SupplierID] = b
	}
	require.Equal(t, 1, byID[5].UnsettledCount)
	require.True(t, byID[5].UnsettledTotal.Equal(d("250.00")))
	require.True(t, byID[9].UnsettledTotal.Equal(d("120.00")))
}
