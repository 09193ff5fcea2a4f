package expenses

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gemlot/gemlot/internal/shared"
	"github.com/gemlot/gemlot/internal/tax"
)

var (
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrTemplateInactive  = errors.New("template is paused")
)

// Invalidator drops cached report reads after a mutation.
type Invalidator interface {
	Invalidate(ctx context.Context, groups ...string) error
}

// Store abstracts persistence for the service.
type Store interface {
	GetExpense(ctx context.Context, id int64) (*Expense, error)
	UpdateExpense(ctx context.Context, id int64, updates map[string]interface{}) error
	DeleteExpense(ctx context.Context, id int64) error
	ListExpenses(ctx context.Context, req ListExpensesRequest) ([]Expense, int, error)

	GetTemplate(ctx context.Context, id int64) (*Template, error)
	UpdateTemplate(ctx context.Context, id int64, updates map[string]interface{}) error
	ListTemplates(ctx context.Context, activeOnly bool) ([]Template, error)
	ListDue(ctx context.Context, asOf time.Time) ([]Template, error)

	WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error
}

// Service provides business logic for expenses and recurring templates.
type Service struct {
	store  Store
	audit  *shared.AuditLogger
	cache  Invalidator
	logger *slog.Logger
}

// NewService constructs an expense service.
func NewService(store Store, audit *shared.AuditLogger, cache Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, audit: audit, cache: cache, logger: logger}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "reports", "expenses"); err != nil {
		s.logger.Warn("invalidate expense cache", slog.Any("error", err))
	}
}

func (s *Service) recordAudit(ctx context.Context, action, entity string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  0,
		Action:   action,
		Entity:   entity,
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("record audit", slog.Any("error", err))
	}
}

// applyVAT fills the ex/vat/inc trio on an expense. Without VAT input the
// gross amount stays the sole authoritative figure and the trio is null.
func applyVAT(e *Expense, amount decimal.Decimal, vat *VATInput) {
	if vat == nil {
		e.Amount = amount
		e.AmountExVAT, e.VATAmount, e.VATRate, e.AmountIncVAT = nil, nil, nil, nil
		return
	}
	breakdown := tax.Breakdown(amount, vat.IncludeVAT, vat.Rate)
	rate := vat.Rate
	e.Amount = breakdown.IncVAT
	e.AmountExVAT = &breakdown.ExVAT
	e.VATAmount = &breakdown.VATAmount
	e.VATRate = &rate
	e.AmountIncVAT = &breakdown.IncVAT
}

// CreateExpense records a new expense; when req.Recurring is set the
// matching template is created in the same transaction with the expense as
// its first occurrence.
func (s *Service) CreateExpense(ctx context.Context, req CreateExpenseRequest) (*Expense, *Template, error) {
	if !req.Amount.IsPositive() {
		return nil, nil, ErrNonPositiveAmount
	}
	if req.VAT != nil && req.VAT.Rate.IsNegative() {
		return nil, nil, fmt.Errorf("%w: vat rate", ErrNonPositiveAmount)
	}

	expense := Expense{
		Description:   req.Description,
		Category:      NormalizeCategory(req.Category),
		PaymentMethod: req.PaymentMethod,
		SupplierID:    req.SupplierID,
		IncurredAt:    req.IncurredAt,
		IsCOGS:        req.IsCOGS,
		Notes:         req.Notes,
	}
	applyVAT(&expense, req.Amount, req.VAT)

	var template *Template
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		if req.Recurring != nil {
			nextDue, err := NextDueDate(dateOnly(req.IncurredAt), req.Recurring.Frequency)
			if err != nil {
				return err
			}
			t := Template{
				Description:   expense.Description,
				Amount:        expense.Amount,
				Category:      expense.Category,
				PaymentMethod: expense.PaymentMethod,
				SupplierID:    expense.SupplierID,
				VATRate:       expense.VATRate,
				Frequency:     req.Recurring.Frequency,
				NextDueDate:   nextDue,
				IsActive:      true,
				Notes:         expense.Notes,
			}
			id, err := tx.InsertTemplate(ctx, t)
			if err != nil {
				return err
			}
			t.ID = id
			template = &t
			expense.TemplateID = &id
		}
		id, err := tx.InsertExpense(ctx, expense)
		if err != nil {
			return err
		}
		expense.ID = id
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create expense: %w", err)
	}

	s.recordAudit(ctx, "expense.create", "expense", expense.ID, nil)
	s.invalidate(ctx)
	return &expense, template, nil
}

// UpdateExpense applies partial changes; amount or VAT changes recompute the
// persisted breakdown trio.
func (s *Service) UpdateExpense(ctx context.Context, id int64, req UpdateExpenseRequest) (*Expense, error) {
	existing, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = NormalizeCategory(*req.Category)
	}
	if req.PaymentMethod != nil {
		updates["payment_method"] = string(*req.PaymentMethod)
	}
	if req.SupplierID != nil {
		updates["supplier_id"] = *req.SupplierID
	}
	if req.IncurredAt != nil {
		updates["incurred_at"] = *req.IncurredAt
	}
	if req.IsCOGS != nil {
		updates["is_cogs"] = *req.IsCOGS
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if req.Amount != nil || req.VAT != nil {
		amount := existing.Amount
		if req.Amount != nil {
			if !req.Amount.IsPositive() {
				return nil, ErrNonPositiveAmount
			}
			amount = *req.Amount
		}
		vat := req.VAT
		if vat == nil && existing.VATRate != nil {
			vat = &VATInput{IncludeVAT: true, Rate: *existing.VATRate}
		}
		var scratch Expense
		applyVAT(&scratch, amount, vat)
		updates["amount"] = scratch.Amount
		updates["amount_ex_vat"] = scratch.AmountExVAT
		updates["vat_amount"] = scratch.VATAmount
		updates["vat_rate"] = scratch.VATRate
		updates["amount_inc_vat"] = scratch.AmountIncVAT
	}

	if len(updates) > 0 {
		if err := s.store.UpdateExpense(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update expense: %w", err)
		}
		s.recordAudit(ctx, "expense.update", "expense", id, nil)
		s.invalidate(ctx)
	}
	return s.store.GetExpense(ctx, id)
}

// DeleteExpense removes one expense.
func (s *Service) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "expense.delete", "expense", id, nil)
	s.invalidate(ctx)
	return nil
}

// GetExpense retrieves one expense.
func (s *Service) GetExpense(ctx context.Context, id int64) (*Expense, error) {
	return s.store.GetExpense(ctx, id)
}

// ListExpenses returns a filtered, paginated listing.
func (s *Service) ListExpenses(ctx context.Context, req ListExpensesRequest) ([]Expense, int, error) {
	return s.store.ListExpenses(ctx, req)
}

// CreateTemplate registers a recurring schedule. The first due date is one
// frequency unit after the anchor date.
func (s *Service) CreateTemplate(ctx context.Context, req CreateTemplateRequest) (*Template, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	nextDue, err := NextDueDate(dateOnly(req.AnchorDate), req.Frequency)
	if err != nil {
		return nil, err
	}
	t := Template{
		Description:   req.Description,
		Amount:        req.Amount,
		Category:      NormalizeCategory(req.Category),
		PaymentMethod: req.PaymentMethod,
		SupplierID:    req.SupplierID,
		VATRate:       req.VATRate,
		Frequency:     req.Frequency,
		NextDueDate:   nextDue,
		IsActive:      true,
		Notes:         req.Notes,
	}
	err = s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		id, err := tx.InsertTemplate(ctx, t)
		if err != nil {
			return err
		}
		t.ID = id
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	s.recordAudit(ctx, "template.create", "expense_template", t.ID, nil)
	return &t, nil
}

// UpdateTemplate applies partial changes. A frequency change recomputes the
// next due date from the template's current anchor; it never compounds the
// old interval with the new one.
func (s *Service) UpdateTemplate(ctx context.Context, id int64, req UpdateTemplateRequest) (*Template, error) {
	existing, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, ErrNonPositiveAmount
		}
		updates["amount"] = *req.Amount
	}
	if req.Category != nil {
		updates["category"] = NormalizeCategory(*req.Category)
	}
	if req.PaymentMethod != nil {
		updates["payment_method"] = string(*req.PaymentMethod)
	}
	if req.SupplierID != nil {
		updates["supplier_id"] = *req.SupplierID
	}
	if req.VATRate != nil {
		updates["vat_rate"] = *req.VATRate
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.Frequency != nil && *req.Frequency != existing.Frequency {
		nextDue, err := Reschedule(dateOnly(existing.NextDueDate), *req.Frequency)
		if err != nil {
			return nil, err
		}
		updates["frequency"] = string(*req.Frequency)
		updates["next_due_date"] = nextDue
	}

	if len(updates) > 0 {
		if err := s.store.UpdateTemplate(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update template: %w", err)
		}
		s.recordAudit(ctx, "template.update", "expense_template", id, nil)
	}
	return s.store.GetTemplate(ctx, id)
}

// SetTemplateActive pauses or resumes a template. The toggle is reversible
// and leaves next_due_date untouched.
func (s *Service) SetTemplateActive(ctx context.Context, id int64, active bool) (*Template, error) {
	if _, err := s.store.GetTemplate(ctx, id); err != nil {
		return nil, err
	}
	if err := s.store.UpdateTemplate(ctx, id, map[string]interface{}{"is_active": active}); err != nil {
		return nil, fmt.Errorf("toggle template: %w", err)
	}
	action := "template.pause"
	if active {
		action = "template.resume"
	}
	s.recordAudit(ctx, action, "expense_template", id, nil)
	return s.store.GetTemplate(ctx, id)
}

// DeleteTemplate removes a schedule and detaches its expense history. The
// expenses themselves are never cascade-deleted.
func (s *Service) DeleteTemplate(ctx context.Context, id int64) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		if err := tx.DetachExpenses(ctx, id); err != nil {
			return err
		}
		return tx.DeleteTemplate(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	s.recordAudit(ctx, "template.delete", "expense_template", id, nil)
	return nil
}

// GetTemplate retrieves one template.
func (s *Service) GetTemplate(ctx context.Context, id int64) (*Template, error) {
	return s.store.GetTemplate(ctx, id)
}

// ListTemplates returns all templates, optionally active only.
func (s *Service) ListTemplates(ctx context.Context, activeOnly bool) ([]Template, error) {
	return s.store.ListTemplates(ctx, activeOnly)
}

// ListDue returns active templates due on or before asOf. Nothing in the
// system acts on these automatically; the list feeds reminders and the UI.
func (s *Service) ListDue(ctx context.Context, asOf time.Time) ([]Template, error) {
	return s.store.ListDue(ctx, asOf)
}

// Materialize creates the next concrete expense from a template and
// advances its due date by one frequency unit. This is the only way an
// occurrence is generated; it is always user-initiated.
func (s *Service) Materialize(ctx context.Context, id int64) (*Expense, *Template, error) {
	t, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !t.IsActive {
		return nil, nil, ErrTemplateInactive
	}

	expense := Expense{
		Description:   t.Description,
		Category:      t.Category,
		PaymentMethod: t.PaymentMethod,
		SupplierID:    t.SupplierID,
		IncurredAt:    t.NextDueDate,
		Notes:         t.Notes,
		TemplateID:    &t.ID,
	}
	var vat *VATInput
	if t.VATRate != nil {
		vat = &VATInput{IncludeVAT: true, Rate: *t.VATRate}
	}
	applyVAT(&expense, t.Amount, vat)

	nextDue, err := NextDueDate(dateOnly(t.NextDueDate), t.Frequency)
	if err != nil {
		return nil, nil, err
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		eid, err := tx.InsertExpense(ctx, expense)
		if err != nil {
			return err
		}
		expense.ID = eid
		return tx.AdvanceTemplate(ctx, t.ID, nextDue)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("materialize template: %w", err)
	}

	t.NextDueDate = nextDue
	s.recordAudit(ctx, "template.materialize", "expense_template", t.ID,
		map[string]any{"expense_id": expense.ID})
	s.invalidate(ctx)
	return &expense, t, nil
}

// BulkDelete removes expenses one at a time, collecting per-item results.
// Earlier deletions stay committed when a later one fails.
func (s *Service) BulkDelete(ctx context.Context, req BulkDeleteRequest) []BulkResult {
	results := make([]BulkResult, 0, len(req.IDs))
	for _, id := range req.IDs {
		res := BulkResult{ID: id, OK: true}
		if err := s.store.DeleteExpense(ctx, id); err != nil {
			res.OK = false
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	s.invalidate(ctx)
	return results
}

// BulkRecategorize reassigns expenses to a category one at a time.
func (s *Service) BulkRecategorize(ctx context.Context, req BulkRecategorizeRequest) []BulkResult {
	category := NormalizeCategory(req.Category)
	results := make([]BulkResult, 0, len(req.IDs))
	for _, id := range req.IDs {
		res := BulkResult{ID: id, OK: true}
		if err := s.store.UpdateExpense(ctx, id, map[string]interface{}{"category": category}); err != nil {
			res.OK = false
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	s.invalidate(ctx)
	return results
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
