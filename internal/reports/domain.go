package reports

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleLineRow is one sold line joined with its product flags and linked
// settlement, as fetched for a reporting period.
type SaleLineRow struct {
	SaleID      uuid.UUID
	SoldAt      time.Time
	ProductID   int64
	ProductName string
	Category    string

	Quantity  int
	UnitPrice decimal.Decimal
	UnitCost  decimal.Decimal
	Discount  decimal.Decimal

	IsTradeIn             bool
	IsConsignment         bool
	SupplierID            *int64
	ConsignmentSupplierID *int64

	Settlement *SettlementRef
}

// ExpenseTotals aggregates expenses over a period. ExVAT uses the ex-VAT
// figure where a breakdown was captured and the gross amount otherwise.
type ExpenseTotals struct {
	Gross decimal.Decimal `json:"gross"`
	ExVAT decimal.Decimal `json:"ex_vat"`
	COGS  decimal.Decimal `json:"cogs"`
	Count int             `json:"count"`
}

// CategoryRollup sums resolved lines per product category.
type CategoryRollup struct {
	Category    string          `json:"category"`
	Revenue     decimal.Decimal `json:"revenue"`
	COGS        decimal.Decimal `json:"cogs"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	Lines       int             `json:"lines"`
}

// SupplierRollup sums resolved lines per attributed supplier.
type SupplierRollup struct {
	SupplierID  int64           `json:"supplier_id"`
	Revenue     decimal.Decimal `json:"revenue"`
	COGS        decimal.Decimal `json:"cogs"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	Lines       int             `json:"lines"`
}

// ConsignmentSummary reports settled gross profit and unsettled payout
// exposure as two independent sums. Unsettled lines never net into the
// settled figure.
type ConsignmentSummary struct {
	SettledGrossProfit decimal.Decimal `json:"settled_gross_profit"`
	SettledCount       int             `json:"settled_count"`
	UnsettledTotal     decimal.Decimal `json:"unsettled_total"`
	UnsettledCount     int             `json:"unsettled_count"`
}

// PnLReport is the aggregated profit-and-loss view for a period.
type PnLReport struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	Revenue     decimal.Decimal `json:"revenue"`
	COGS        decimal.Decimal `json:"cogs"`
	GrossProfit decimal.Decimal `json:"gross_profit"`

	Expenses      ExpenseTotals   `json:"expenses"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	LinesResolved int             `json:"lines_resolved"`

	ByCategory  []CategoryRollup   `json:"by_category"`
	BySupplier  []SupplierRollup   `json:"by_supplier"`
	Consignment ConsignmentSummary `json:"consignment"`
}
