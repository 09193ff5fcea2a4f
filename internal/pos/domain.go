package pos

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates stored payment methods. Checkout accepts the
// richer UI labels and maps them down via MapPaymentLabel.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentOther    PaymentMethod = "other"
)

// MapPaymentLabel maps a checkout UI label onto the stored payment method
// set. "Bank Transfer" and "Direct Debit" both persist as transfer.
func MapPaymentLabel(label string) (PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "cash":
		return PaymentCash, true
	case "card", "credit card", "debit card":
		return PaymentCard, true
	case "transfer", "bank transfer", "direct debit":
		return PaymentTransfer, true
	case "other":
		return PaymentOther, true
	}
	return "", false
}

// Sale is one completed POS transaction.
type Sale struct {
	ID               uuid.UUID       `json:"id"`
	DocNumber        string          `json:"doc_number"`
	SoldAt           time.Time       `json:"sold_at"`
	PaymentMethod    PaymentMethod   `json:"payment_method"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	Discount         decimal.Decimal `json:"discount"`
	Tax              decimal.Decimal `json:"tax"`
	Total            decimal.Decimal `json:"total"`
	PXAllowanceTotal decimal.Decimal `json:"px_allowance_total"`
	NetTotal         decimal.Decimal `json:"net_total"`
	OwnerApproved    bool            `json:"owner_approved"`
	Notes            *string         `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`

	Items         []SaleItem     `json:"items,omitempty"`
	PartExchanges []PartExchange `json:"part_exchanges,omitempty"`
}

// SaleItem is one line of a sale. UnitCost is the cost snapshot captured at
// sale time; reporting recomputes trade-in and consignment cost bases from
// linked records instead of this snapshot, but the snapshot itself is never
// rewritten.
type SaleItem struct {
	ID        int64           `json:"id"`
	SaleID    uuid.UUID       `json:"sale_id"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Discount  decimal.Decimal `json:"discount"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
}

// PartExchange is a trade-in credited against a sale. Once linked to a sale
// it is immutable history; the allowance becomes the cost basis of any
// resulting inventory item.
type PartExchange struct {
	ID                 int64           `json:"id"`
	SaleID             uuid.UUID       `json:"sale_id"`
	ProductID          *int64          `json:"product_id,omitempty"`
	CustomerSupplierID *int64          `json:"customer_supplier_id,omitempty"`
	Description        string          `json:"description"`
	Serial             *string         `json:"serial,omitempty"`
	Allowance          decimal.Decimal `json:"allowance"`
	CreatedAt          time.Time       `json:"created_at"`
}

// ProductSnapshot is the slice of a product the checkout flow needs.
type ProductSnapshot struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	UnitCost decimal.Decimal
	Quantity int
	IsActive bool
}

// TradeInProduct describes the inventory line created when a trade-in item
// is taken into stock.
type TradeInProduct struct {
	SKU        string
	Name       string
	Category   string
	UnitCost   decimal.Decimal
	Price      decimal.Decimal
	SupplierID *int64
	Serial     *string
}

type CheckoutItem struct {
	ProductID int64            `json:"product_id" validate:"required"`
	Quantity  int              `json:"quantity" validate:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Discount  decimal.Decimal  `json:"discount"`
	TaxRate   decimal.Decimal  `json:"tax_rate"`
}

type PartExchangeInput struct {
	Description        string          `json:"description" validate:"required,max=200"`
	Allowance          decimal.Decimal `json:"allowance"`
	CustomerSupplierID *int64          `json:"customer_supplier_id,omitempty"`
	Serial             *string         `json:"serial,omitempty" validate:"omitempty,max=100"`

	// TakeIntoStock creates the resulting trade-in product with the
	// allowance as its cost basis.
	TakeIntoStock bool             `json:"take_into_stock"`
	ResalePrice   *decimal.Decimal `json:"resale_price,omitempty"`
	Category      *string          `json:"category,omitempty" validate:"omitempty,max=100"`
}

type CheckoutRequest struct {
	Items         []CheckoutItem      `json:"items" validate:"required,min=1,max=100,dive"`
	PartExchanges []PartExchangeInput `json:"part_exchanges,omitempty" validate:"omitempty,max=20,dive"`
	PaymentLabel  string              `json:"payment_method" validate:"required"`
	SoldAt        *time.Time          `json:"sold_at,omitempty"`
	Notes         *string             `json:"notes,omitempty"`

	// OwnerPIN is only consulted when the net total goes negative.
	OwnerPIN string `json:"owner_pin,omitempty"`
}

type ListSalesRequest struct {
	From   *time.Time `json:"from,omitempty"`
	To     *time.Time `json:"to,omitempty"`
	Limit  int        `json:"limit" validate:"gte=0,lte=1000"`
	Offset int        `json:"offset" validate:"gte=0"`
}
