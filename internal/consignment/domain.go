package consignment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementStatus is derived strictly from PaidAt. The only transition is
// unsettled to settled; there is no unsettle operation.
type SettlementStatus string

const (
	StatusUnsettled SettlementStatus = "unsettled"
	StatusSettled   SettlementStatus = "settled"
)

// Settlement is the agreed payout to a consignment supplier for one sold
// product. PayoutAmount falls back to AgreedPrice as the line's cost basis
// once settled.
type Settlement struct {
	ID           int64            `json:"id"`
	ProductID    int64            `json:"product_id"`
	SaleID       uuid.UUID        `json:"sale_id"`
	SupplierID   int64            `json:"supplier_id"`
	AgreedPrice  *decimal.Decimal `json:"agreed_price,omitempty"`
	PayoutAmount *decimal.Decimal `json:"payout_amount,omitempty"`
	PaidAt       *time.Time       `json:"paid_at,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// Status reports the settlement state.
func (s Settlement) Status() SettlementStatus {
	if s.PaidAt != nil {
		return StatusSettled
	}
	return StatusUnsettled
}

// EffectivePayout is the amount owed: payout amount when agreed, otherwise
// the agreed price, otherwise zero. Missing data degrades to zero rather
// than erroring so reports always render a number.
func (s Settlement) EffectivePayout() decimal.Decimal {
	if s.PayoutAmount != nil {
		return *s.PayoutAmount
	}
	if s.AgreedPrice != nil {
		return *s.AgreedPrice
	}
	return decimal.Zero
}

type CreateSettlementRequest struct {
	ProductID    int64            `json:"product_id" validate:"required"`
	SaleID       uuid.UUID        `json:"sale_id" validate:"required"`
	SupplierID   int64            `json:"supplier_id" validate:"required"`
	AgreedPrice  *decimal.Decimal `json:"agreed_price,omitempty"`
	PayoutAmount *decimal.Decimal `json:"payout_amount,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
}

type UpdateSettlementRequest struct {
	AgreedPrice  *decimal.Decimal `json:"agreed_price,omitempty"`
	PayoutAmount *decimal.Decimal `json:"payout_amount,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
}

type ListSettlementsRequest struct {
	SupplierID *int64            `json:"supplier_id,omitempty"`
	Status     *SettlementStatus `json:"status,omitempty" validate:"omitempty,oneof=unsettled settled"`
	Limit      int               `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int               `json:"offset" validate:"gte=0"`
}

// SupplierBalance is the unsettled exposure to one consignment supplier.
type SupplierBalance struct {
	SupplierID     int64           `json:"supplier_id"`
	UnsettledCount int             `json:"unsettled_count"`
	UnsettledTotal decimal.Decimal `json:"unsettled_total"`
}
