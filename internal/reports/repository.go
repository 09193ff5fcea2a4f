package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the joined rows the resolver and aggregations consume.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaleLines fetches sold lines in [from, to) with product flags and any
// linked settlement.
func (r *Repository) SaleLines(ctx context.Context, from, to time.Time) ([]SaleLineRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT si.sale_id, s.sold_at, si.product_id,
COALESCE(p.name, si.name), COALESCE(p.category, 'other'),
si.quantity, si.unit_price, si.unit_cost, si.discount,
COALESCE(p.is_trade_in, FALSE), COALESCE(p.is_consignment, FALSE),
p.supplier_id, p.consignment_supplier_id,
cs.agreed_price, cs.payout_amount, cs.paid_at
FROM sale_items si
JOIN sales s ON s.id = si.sale_id
LEFT JOIN products p ON p.id = si.product_id
LEFT JOIN consignment_settlements cs ON cs.product_id = si.product_id AND cs.sale_id = si.sale_id
WHERE s.sold_at >= $1 AND s.sold_at < $2
ORDER BY s.sold_at, si.id`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []SaleLineRow{}
	for rows.Next() {
		var row SaleLineRow
		var settlement SettlementRef
		if err := rows.Scan(&row.SaleID, &row.SoldAt, &row.ProductID, &row.ProductName, &row.Category,
			&row.Quantity, &row.UnitPrice, &row.UnitCost, &row.Discount,
			&row.IsTradeIn, &row.IsConsignment, &row.SupplierID, &row.ConsignmentSupplierID,
			&settlement.AgreedPrice, &settlement.PayoutAmount, &settlement.PaidAt); err != nil {
			return nil, err
		}
		if settlement.AgreedPrice != nil || settlement.PayoutAmount != nil || settlement.PaidAt != nil {
			row.Settlement = &settlement
		}
		lines = append(lines, row)
	}
	return lines, rows.Err()
}

// PartExchanges returns the trade-ins grouped by sale for sales in
// [from, to).
func (r *Repository) PartExchanges(ctx context.Context, from, to time.Time) (map[uuid.UUID][]PartExchangeRef, error) {
	rows, err := r.pool.Query(ctx, `SELECT px.sale_id, px.allowance, px.customer_supplier_id
FROM part_exchanges px
JOIN sales s ON s.id = px.sale_id
WHERE s.sold_at >= $1 AND s.sold_at < $2
ORDER BY px.id`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bySale := map[uuid.UUID][]PartExchangeRef{}
	for rows.Next() {
		var saleID uuid.UUID
		var ref PartExchangeRef
		if err := rows.Scan(&saleID, &ref.Allowance, &ref.CustomerSupplierID); err != nil {
			return nil, err
		}
		bySale[saleID] = append(bySale[saleID], ref)
	}
	return bySale, rows.Err()
}

// ExpenseTotals aggregates expenses incurred in [from, to).
func (r *Repository) ExpenseTotals(ctx context.Context, from, to time.Time) (ExpenseTotals, error) {
	var t ExpenseTotals
	err := r.pool.QueryRow(ctx, `SELECT
COALESCE(SUM(amount), 0),
COALESCE(SUM(COALESCE(amount_ex_vat, amount)), 0),
COALESCE(SUM(CASE WHEN is_cogs THEN COALESCE(amount_ex_vat, amount) ELSE 0 END), 0),
COUNT(*)
FROM expenses WHERE incurred_at >= $1 AND incurred_at < $2`, from, to).
		Scan(&t.Gross, &t.ExVAT, &t.COGS, &t.Count)
	return t, err
}
