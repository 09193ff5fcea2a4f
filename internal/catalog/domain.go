package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductCategory is free-form in the store; these are the built-in values.
const (
	CategoryRing     = "ring"
	CategoryNecklace = "necklace"
	CategoryBracelet = "bracelet"
	CategoryWatch    = "watch"
	CategoryEarrings = "earrings"
	CategoryOther    = "other"
)

// Product is one inventory line. At most one of IsTradeIn/IsConsignment
// drives cost-basis selection; trade-in wins when raw data carries both.
type Product struct {
	ID                    int64           `json:"id"`
	SKU                   string          `json:"sku"`
	Barcode               *string         `json:"barcode,omitempty"`
	Name                  string          `json:"name"`
	Category              string          `json:"category"`
	Description           *string         `json:"description,omitempty"`
	UnitCost              decimal.Decimal `json:"unit_cost"`
	Price                 decimal.Decimal `json:"price"`
	Quantity              int             `json:"quantity"`
	SupplierID            *int64          `json:"supplier_id,omitempty"`
	ConsignmentSupplierID *int64          `json:"consignment_supplier_id,omitempty"`
	IsTradeIn             bool            `json:"is_trade_in"`
	IsConsignment         bool            `json:"is_consignment"`
	Serial                *string         `json:"serial,omitempty"`
	IsActive              bool            `json:"is_active"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

type CreateProductRequest struct {
	SKU                   string          `json:"sku" validate:"required,max=50"`
	Barcode               *string         `json:"barcode,omitempty" validate:"omitempty,max=64"`
	Name                  string          `json:"name" validate:"required,max=200"`
	Category              string          `json:"category" validate:"required,max=100"`
	Description           *string         `json:"description,omitempty"`
	UnitCost              decimal.Decimal `json:"unit_cost"`
	Price                 decimal.Decimal `json:"price"`
	Quantity              int             `json:"quantity" validate:"gte=0"`
	SupplierID            *int64          `json:"supplier_id,omitempty"`
	ConsignmentSupplierID *int64          `json:"consignment_supplier_id,omitempty"`
	IsTradeIn             bool            `json:"is_trade_in"`
	IsConsignment         bool            `json:"is_consignment"`
	Serial                *string         `json:"serial,omitempty" validate:"omitempty,max=100"`
}

type UpdateProductRequest struct {
	Barcode               *string          `json:"barcode,omitempty" validate:"omitempty,max=64"`
	Name                  *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Category              *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	Description           *string          `json:"description,omitempty"`
	UnitCost              *decimal.Decimal `json:"unit_cost,omitempty"`
	Price                 *decimal.Decimal `json:"price,omitempty"`
	Quantity              *int             `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	SupplierID            *int64           `json:"supplier_id,omitempty"`
	ConsignmentSupplierID *int64           `json:"consignment_supplier_id,omitempty"`
	IsActive              *bool            `json:"is_active,omitempty"`
}

type ListProductsRequest struct {
	Category      *string `json:"category,omitempty"`
	SupplierID    *int64  `json:"supplier_id,omitempty"`
	IsTradeIn     *bool   `json:"is_trade_in,omitempty"`
	IsConsignment *bool   `json:"is_consignment,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
	Search        *string `json:"search,omitempty"`
	Limit         int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset        int     `json:"offset" validate:"gte=0"`
}
