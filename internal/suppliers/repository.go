package suppliers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("supplier not found")
)

// Repository persists suppliers in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const supplierColumns = `id, name, email, phone, is_consignor, notes, is_active, created_at, updated_at`

func scanSupplier(row pgx.Row) (*Supplier, error) {
	var s Supplier
	if err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.IsConsignor, &s.Notes, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*Supplier, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id=$1`, id)
	return scanSupplier(row)
}

func (r *Repository) Create(ctx context.Context, s Supplier) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO suppliers (name, email, phone, is_consignor, notes, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,TRUE,NOW(),NOW()) RETURNING id`, s.Name, s.Email, s.Phone, s.IsConsignor, s.Notes).Scan(&id)
	return id, err
}

func (r *Repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	setClauses := make([]string, 0, len(updates)+1)
	args := make([]interface{}, 0, len(updates)+1)
	i := 1
	for col, val := range updates {
		setClauses = append(setClauses, fmt.Sprintf("%s=$%d", col, i))
		args = append(args, val)
		i++
	}
	setClauses = append(setClauses, "updated_at=NOW()")
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE suppliers SET %s WHERE id=$%d`, strings.Join(setClauses, ", "), i)
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context, req ListSuppliersRequest) ([]Supplier, int, error) {
	where := []string{"TRUE"}
	args := []interface{}{}
	i := 1
	if req.IsConsignor != nil {
		where = append(where, fmt.Sprintf("is_consignor=$%d", i))
		args = append(args, *req.IsConsignor)
		i++
	}
	if req.IsActive != nil {
		where = append(where, fmt.Sprintf("is_active=$%d", i))
		args = append(args, *req.IsActive)
		i++
	}
	if req.Search != nil && *req.Search != "" {
		where = append(where, fmt.Sprintf("name ILIKE $%d", i))
		args = append(args, "%"+*req.Search+"%")
		i++
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM suppliers WHERE %s ORDER BY name ASC LIMIT $%d OFFSET $%d`, supplierColumns, cond, i, i+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := []Supplier{}
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.IsConsignor, &s.Notes, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}
