package expenses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gemlot/gemlot/internal/platform/db"
)

var (
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrTemplateNotFound = errors.New("expense template not found")
)

// Repository persists expenses and templates in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxStore exposes transactional operations used by the service.
type TxStore interface {
	InsertExpense(ctx context.Context, e Expense) (int64, error)
	InsertTemplate(ctx context.Context, t Template) (int64, error)
	AdvanceTemplate(ctx context.Context, id int64, nextDue time.Time) error
	DetachExpenses(ctx context.Context, templateID int64) error
	DeleteTemplate(ctx context.Context, templateID int64) error
}

type txStore struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	if r == nil {
		return errors.New("expenses repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txStore{tx: tx})
	})
}

const expenseColumns = `id, description, amount, amount_ex_vat, vat_amount, vat_rate, amount_inc_vat,
category, payment_method, supplier_id, incurred_at, is_cogs, notes, template_id, created_at, updated_at`

func scanExpense(row pgx.Row) (*Expense, error) {
	var e Expense
	var method string
	err := row.Scan(&e.ID, &e.Description, &e.Amount, &e.AmountExVAT, &e.VATAmount, &e.VATRate,
		&e.AmountIncVAT, &e.Category, &method, &e.SupplierID, &e.IncurredAt, &e.IsCOGS,
		&e.Notes, &e.TemplateID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}
	e.PaymentMethod = PaymentMethod(method)
	return &e, nil
}

func (r *Repository) GetExpense(ctx context.Context, id int64) (*Expense, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id=$1`, id)
	return scanExpense(row)
}

func (s *txStore) InsertExpense(ctx context.Context, e Expense) (int64, error) {
	var id int64
	err := s.tx.QueryRow(ctx, `INSERT INTO expenses
(description, amount, amount_ex_vat, vat_amount, vat_rate, amount_inc_vat, category,
 payment_method, supplier_id, incurred_at, is_cogs, notes, template_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW(),NOW()) RETURNING id`,
		e.Description, e.Amount, e.AmountExVAT, e.VATAmount, e.VATRate, e.AmountIncVAT,
		e.Category, string(e.PaymentMethod), e.SupplierID, e.IncurredAt, e.IsCOGS, e.Notes,
		e.TemplateID).Scan(&id)
	return id, err
}

func (r *Repository) UpdateExpense(ctx context.Context, id int64, updates map[string]interface{}) error {
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
	query := fmt.Sprintf(`UPDATE expenses SET %s WHERE id=$%d`, strings.Join(setClauses, ", "), i)
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

func (r *Repository) DeleteExpense(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

func (r *Repository) ListExpenses(ctx context.Context, req ListExpensesRequest) ([]Expense, int, error) {
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
	if req.PaymentMethod != nil {
		add("payment_method=$%d", string(*req.PaymentMethod))
	}
	if req.SupplierID != nil {
		add("supplier_id=$%d", *req.SupplierID)
	}
	if req.TemplateID != nil {
		add("template_id=$%d", *req.TemplateID)
	}
	if req.IsCOGS != nil {
		add("is_cogs=$%d", *req.IsCOGS)
	}
	if req.From != nil {
		add("incurred_at >= $%d", *req.From)
	}
	if req.To != nil {
		add("incurred_at <= $%d", *req.To)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM expenses WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM expenses WHERE %s ORDER BY incurred_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		expenseColumns, cond, i, i+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := []Expense{}
	for rows.Next() {
		var e Expense
		var method string
		if err := rows.Scan(&e.ID, &e.Description, &e.Amount, &e.AmountExVAT, &e.VATAmount, &e.VATRate,
			&e.AmountIncVAT, &e.Category, &method, &e.SupplierID, &e.IncurredAt, &e.IsCOGS,
			&e.Notes, &e.TemplateID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		e.PaymentMethod = PaymentMethod(method)
		list = append(list, e)
	}
	return list, total, rows.Err()
}

const templateColumns = `id, description, amount, category, payment_method, supplier_id, vat_rate,
frequency, next_due_date, is_active, notes, created_at, updated_at`

func scanTemplate(row pgx.Row) (*Template, error) {
	var t Template
	var method, freq string
	err := row.Scan(&t.ID, &t.Description, &t.Amount, &t.Category, &method, &t.SupplierID,
		&t.VATRate, &freq, &t.NextDueDate, &t.IsActive, &t.Notes, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	t.PaymentMethod = PaymentMethod(method)
	t.Frequency = Frequency(freq)
	return &t, nil
}

func (r *Repository) GetTemplate(ctx context.Context, id int64) (*Template, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+templateColumns+` FROM expense_templates WHERE id=$1`, id)
	return scanTemplate(row)
}

func (s *txStore) InsertTemplate(ctx context.Context, t Template) (int64, error) {
	var id int64
	err := s.tx.QueryRow(ctx, `INSERT INTO expense_templates
(description, amount, category, payment_method, supplier_id, vat_rate, frequency, next_due_date,
 is_active, notes, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW(),NOW()) RETURNING id`,
		t.Description, t.Amount, t.Category, string(t.PaymentMethod), t.SupplierID, t.VATRate,
		string(t.Frequency), t.NextDueDate, t.IsActive, t.Notes).Scan(&id)
	return id, err
}

func (r *Repository) UpdateTemplate(ctx context.Context, id int64, updates map[string]interface{}) error {
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
	query := fmt.Sprintf(`UPDATE expense_templates SET %s WHERE id=$%d`, strings.Join(setClauses, ", "), i)
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (s *txStore) AdvanceTemplate(ctx context.Context, id int64, nextDue time.Time) error {
	tag, err := s.tx.Exec(ctx, `UPDATE expense_templates SET next_due_date=$1, updated_at=NOW()
WHERE id=$2 AND next_due_date < $1`, nextDue, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (s *txStore) DetachExpenses(ctx context.Context, templateID int64) error {
	_, err := s.tx.Exec(ctx, `UPDATE expenses SET template_id=NULL, updated_at=NOW() WHERE template_id=$1`, templateID)
	return err
}

func (s *txStore) DeleteTemplate(ctx context.Context, templateID int64) error {
	tag, err := s.tx.Exec(ctx, `DELETE FROM expense_templates WHERE id=$1`, templateID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (r *Repository) ListTemplates(ctx context.Context, activeOnly bool) ([]Template, error) {
	query := `SELECT ` + templateColumns + ` FROM expense_templates ORDER BY next_due_date ASC`
	if activeOnly {
		query = `SELECT ` + templateColumns + ` FROM expense_templates WHERE is_active ORDER BY next_due_date ASC`
	}
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTemplates(rows)
}

// ListDue returns active templates whose next_due_date is on or before asOf.
func (r *Repository) ListDue(ctx context.Context, asOf time.Time) ([]Template, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+templateColumns+` FROM expense_templates
WHERE is_active AND next_due_date <= $1 ORDER BY next_due_date ASC`, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTemplates(rows)
}

func collectTemplates(rows pgx.Rows) ([]Template, error) {
	list := []Template{}
	for rows.Next() {
		var t Template
		var method, freq string
		if err := rows.Scan(&t.ID, &t.Description, &t.Amount, &t.Category, &method, &t.SupplierID,
			&t.VATRate, &freq, &t.NextDueDate, &t.IsActive, &t.Notes, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.PaymentMethod = PaymentMethod(method)
		t.Frequency = Frequency(freq)
		list = append(list, t)
	}
	return list, rows.Err()
}
