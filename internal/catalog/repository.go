package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("product not found")
	ErrDuplicate = errors.New("duplicate barcode or sku")
)

// Repository persists catalog data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `id, sku, barcode, name, category, description, unit_cost, price, quantity,
supplier_id, consignment_supplier_id, is_trade_in, is_consignment, serial, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SKU, &p.Barcode, &p.Name, &p.Category, &p.Description,
		&p.UnitCost, &p.Price, &p.Quantity, &p.SupplierID, &p.ConsignmentSupplierID,
		&p.IsTradeIn, &p.IsConsignment, &p.Serial, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	return scanProduct(row)
}

func (r *Repository) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE sku=$1`, sku)
	return scanProduct(row)
}

func (r *Repository) Create(ctx context.Context, p Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO products
(sku, barcode, name, category, description, unit_cost, price, quantity, supplier_id,
 consignment_supplier_id, is_trade_in, is_consignment, serial, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,TRUE,NOW(),NOW()) RETURNING id`,
		p.SKU, p.Barcode, p.Name, p.Category, p.Description, p.UnitCost, p.Price, p.Quantity,
		p.SupplierID, p.ConsignmentSupplierID, p.IsTradeIn, p.IsConsignment, p.Serial).Scan(&id)
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
	query := fmt.Sprintf(`UPDATE products SET %s WHERE id=$%d`, strings.Join(setClauses, ", "), i)
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) AdjustQuantity(ctx context.Context, id int64, delta int) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET quantity=quantity+$1, updated_at=NOW() WHERE id=$2`, delta, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	where := []string{"TRUE"}
	args := []interface{}{}
	i := 1
	add := func(cond string, val interface{}) {
		where = append(where, fmt.Sprintf(cond, i))
		args = append(args, val)
		i++
	}
	if req.Category != nil {
		add("category=$%d", *req.Category)
	}
	if req.SupplierID != nil {
		where = append(where, fmt.Sprintf("(supplier_id=$%d OR consignment_supplier_id=$%d)", i, i))
		args = append(args, *req.SupplierID)
		i++
	}
	if req.IsTradeIn != nil {
		add("is_trade_in=$%d", *req.IsTradeIn)
	}
	if req.IsConsignment != nil {
		add("is_consignment=$%d", *req.IsConsignment)
	}
	if req.IsActive != nil {
		add("is_active=$%d", *req.IsActive)
	}
	if req.Search != nil && *req.Search != "" {
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR sku ILIKE $%d)", i, i))
		args = append(args, "%"+*req.Search+"%")
		i++
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, productColumns, cond, i, i+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Barcode, &p.Name, &p.Category, &p.Description,
			&p.UnitCost, &p.Price, &p.Quantity, &p.SupplierID, &p.ConsignmentSupplierID,
			&p.IsTradeIn, &p.IsConsignment, &p.Serial, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

func (r *Repository) InsertDocument(ctx context.Context, d Document) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO product_documents (product_id, doc_type, filename, size_bytes, storage_key, uploaded_at)
VALUES ($1,$2,$3,$4,$5,NOW()) RETURNING id`, d.ProductID, string(d.Type), d.Filename, d.SizeBytes, d.StorageKey).Scan(&id)
	return id, err
}

func (r *Repository) ListDocuments(ctx context.Context, productID int64) ([]Document, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, product_id, doc_type, filename, size_bytes, storage_key, uploaded_at
FROM product_documents WHERE product_id=$1 ORDER BY uploaded_at DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	docs := []Document{}
	for rows.Next() {
		var d Document
		var docType string
		if err := rows.Scan(&d.ID, &d.ProductID, &docType, &d.Filename, &d.SizeBytes, &d.StorageKey, &d.UploadedAt); err != nil {
			return nil, err
		}
		d.Type = DocumentType(docType)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
