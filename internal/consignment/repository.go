package consignment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrSettlementNotFound = errors.New("settlement not found")
	// ErrAlreadySettled guards the irreversible paid transition and blocks
	// edits to settled records.
	ErrAlreadySettled = errors.New("settlement already paid")
)

// Repository persists consignment settlements in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const settlementColumns = `id, product_id, sale_id, supplier_id, agreed_price, payout_amount, paid_at, notes, created_at`

func scanSettlement(row pgx.Row) (*Settlement, error) {
	var s Settlement
	err := row.Scan(&s.ID, &s.ProductID, &s.SaleID, &s.SupplierID, &s.AgreedPrice,
		&s.PayoutAmount, &s.PaidAt, &s.Notes, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSettlementNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Get loads one settlement.
func (r *Repository) Get(ctx context.Context, id int64) (*Settlement, error) {
	return scanSettlement(r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM consignment_settlements WHERE id=$1`, settlementColumns), id))
}

// Create inserts a settlement and returns its ID.
func (r *Repository) Create(ctx context.Context, s Settlement) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO consignment_settlements
(product_id, sale_id, supplier_id, agreed_price, payout_amount, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())
RETURNING id`, s.ProductID, s.SaleID, s.SupplierID, s.AgreedPrice, s.PayoutAmount, s.Notes).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update applies partial changes to an unsettled record.
func (r *Repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	set := make([]string, 0, len(updates))
	args := []interface{}{}
	i := 1
	for col, v := range updates {
		set = append(set, fmt.Sprintf("%s=$%d", col, i))
		args = append(args, v)
		i++
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE consignment_settlements SET %s WHERE id=$%d AND paid_at IS NULL`,
		strings.Join(set, ", "), i)
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return ErrAlreadySettled
	}
	return nil
}

// MarkPaid stamps paid_at once. A second call finds no unsettled row and
// reports ErrAlreadySettled.
func (r *Repository) MarkPaid(ctx context.Context, id int64, paidAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE consignment_settlements SET paid_at=$1 WHERE id=$2 AND paid_at IS NULL`, paidAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return ErrAlreadySettled
	}
	return nil
}

// List returns filtered settlements, newest first.
func (r *Repository) List(ctx context.Context, req ListSettlementsRequest) ([]Settlement, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	i := 1
	if req.SupplierID != nil {
		conditions = append(conditions, fmt.Sprintf("supplier_id=$%d", i))
		args = append(args, *req.SupplierID)
		i++
	}
	if req.Status != nil {
		if *req.Status == StatusSettled {
			conditions = append(conditions, "paid_at IS NOT NULL")
		} else {
			conditions = append(conditions, "paid_at IS NULL")
		}
	}
	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM consignment_settlements WHERE %s`, where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM consignment_settlements WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		settlementColumns, where, i, i+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	settlements := []Settlement{}
	for rows.Next() {
		var s Settlement
		if err := rows.Scan(&s.ID, &s.ProductID, &s.SaleID, &s.SupplierID, &s.AgreedPrice,
			&s.PayoutAmount, &s.PaidAt, &s.Notes, &s.CreatedAt); err != nil {
			return nil, 0, err
		}
		settlements = append(settlements, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return settlements, total, nil
}

// SupplierBalances aggregates unsettled exposure per supplier.
func (r *Repository) SupplierBalances(ctx context.Context) ([]SupplierBalance, error) {
	rows, err := r.pool.Query(ctx, `SELECT supplier_id, COUNT(*),
COALESCE(SUM(COALESCE(payout_amount, agreed_price, 0)), 0)
FROM consignment_settlements WHERE paid_at IS NULL
GROUP BY supplier_id ORDER BY supplier_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := []SupplierBalance{}
	for rows.Next() {
		var b SupplierBalance
		if err := rows.Scan(&b.SupplierID, &b.UnsettledCount, &b.UnsettledTotal); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}
