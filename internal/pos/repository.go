package pos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gemlot/gemlot/internal/platform/db"
)

// ErrDuplicateDocNumber indicates a document number collision.
var ErrDuplicateDocNumber = errors.New("duplicate sale document number")

// Repository persists sales in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txStore struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	if r == nil {
		return errors.New("pos repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txStore{tx: tx})
	})
}

func (t *txStore) GetProduct(ctx context.Context, id int64) (*ProductSnapshot, error) {
	var p ProductSnapshot
	err := t.tx.QueryRow(ctx, `SELECT id, name, price, unit_cost, quantity, is_active
FROM products WHERE id=$1 FOR UPDATE`, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.UnitCost, &p.Quantity, &p.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: product %d", ErrProductUnavailable, id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *txStore) AdjustStock(ctx context.Context, id int64, delta int) error {
	tag, err := t.tx.Exec(ctx, `UPDATE products SET quantity = quantity + $1, updated_at = NOW()
WHERE id=$2 AND quantity + $1 >= 0`, delta, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %d", ErrInsufficientStock, id)
	}
	return nil
}

func (t *txStore) InsertTradeInProduct(ctx context.Context, p TradeInProduct) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO products
(sku, name, category, unit_cost, price, quantity, supplier_id, serial, is_trade_in, is_consignment, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 1, $6, $7, TRUE, FALSE, TRUE, NOW(), NOW())
RETURNING id`, p.SKU, p.Name, p.Category, p.UnitCost, p.Price, p.SupplierID, p.Serial).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (t *txStore) InsertSale(ctx context.Context, s Sale) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO sales
(id, doc_number, sold_at, payment_method, subtotal, discount, tax, total, px_allowance_total, net_total, owner_approved, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())`,
		s.ID, s.DocNumber, s.SoldAt, string(s.PaymentMethod), s.Subtotal, s.Discount,
		s.Tax, s.Total, s.PXAllowanceTotal, s.NetTotal, s.OwnerApproved, s.Notes)
	return mapSaleInsertErr(err)
}

// mapSaleInsertErr surfaces doc-number collisions as a domain error.
func mapSaleInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName == "sales_doc_number_key" {
		return ErrDuplicateDocNumber
	}
	return err
}

func (t *txStore) InsertSaleItem(ctx context.Context, item SaleItem) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO sale_items
(sale_id, product_id, name, quantity, unit_price, unit_cost, discount, tax_rate)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`, item.SaleID, item.ProductID, item.Name, item.Quantity,
		item.UnitPrice, item.UnitCost, item.Discount, item.TaxRate).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (t *txStore) InsertPartExchange(ctx context.Context, px PartExchange) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO part_exchanges
(sale_id, product_id, customer_supplier_id, description, serial, allowance, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())
RETURNING id`, px.SaleID, px.ProductID, px.CustomerSupplierID, px.Description,
		px.Serial, px.Allowance).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

const saleColumns = `id, doc_number, sold_at, payment_method, subtotal, discount, tax, total,
px_allowance_total, net_total, owner_approved, notes, created_at`

func scanSale(row pgx.Row) (*Sale, error) {
	var s Sale
	var payment string
	err := row.Scan(&s.ID, &s.DocNumber, &s.SoldAt, &payment, &s.Subtotal, &s.Discount,
		&s.Tax, &s.Total, &s.PXAllowanceTotal, &s.NetTotal, &s.OwnerApproved, &s.Notes, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	s.PaymentMethod = PaymentMethod(payment)
	return &s, nil
}

// GetSale loads one sale with its items and part exchanges.
func (r *Repository) GetSale(ctx context.Context, id uuid.UUID) (*Sale, error) {
	sale, err := scanSale(r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM sales WHERE id=$1`, saleColumns), id))
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, sale_id, product_id, name, quantity, unit_price, unit_cost, discount, tax_rate
FROM sale_items WHERE sale_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.Name, &item.Quantity,
			&item.UnitPrice, &item.UnitCost, &item.Discount, &item.TaxRate); err != nil {
			return nil, err
		}
		sale.Items = append(sale.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pxRows, err := r.pool.Query(ctx, `SELECT id, sale_id, product_id, customer_supplier_id, description, serial, allowance, created_at
FROM part_exchanges WHERE sale_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer pxRows.Close()
	for pxRows.Next() {
		var px PartExchange
		if err := pxRows.Scan(&px.ID, &px.SaleID, &px.ProductID, &px.CustomerSupplierID,
			&px.Description, &px.Serial, &px.Allowance, &px.CreatedAt); err != nil {
			return nil, err
		}
		sale.PartExchanges = append(sale.PartExchanges, px)
	}
	if err := pxRows.Err(); err != nil {
		return nil, err
	}
	return sale, nil
}

// ListSales returns sale headers in a date range, newest first.
func (r *Repository) ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	i := 1
	if req.From != nil {
		conditions = append(conditions, fmt.Sprintf("sold_at >= $%d", i))
		args = append(args, *req.From)
		i++
	}
	if req.To != nil {
		conditions = append(conditions, fmt.Sprintf("sold_at < $%d", i))
		args = append(args, *req.To)
		i++
	}
	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM sales WHERE %s`, where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM sales WHERE %s ORDER BY sold_at DESC LIMIT $%d OFFSET $%d`,
		saleColumns, where, i, i+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	sales := []Sale{}
	for rows.Next() {
		var s Sale
		var payment string
		if err := rows.Scan(&s.ID, &s.DocNumber, &s.SoldAt, &payment, &s.Subtotal, &s.Discount,
			&s.Tax, &s.Total, &s.PXAllowanceTotal, &s.NetTotal, &s.OwnerApproved, &s.Notes, &s.CreatedAt); err != nil {
			return nil, 0, err
		}
		s.PaymentMethod = PaymentMethod(payment)
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}
