package expenses

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates accepted payment methods. Checkout additionally
// offers "Bank Transfer"/"Direct Debit"/"Other" labels mapped onto this set.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentOther    PaymentMethod = "other"
)

// Expense is one concrete financial outflow. Amount is the gross figure and
// stays authoritative when no VAT rate was captured; when a rate is present
// the ex/vat/inc trio is persisted alongside it.
type Expense struct {
	ID            int64            `json:"id"`
	Description   string           `json:"description"`
	Amount        decimal.Decimal  `json:"amount"`
	AmountExVAT   *decimal.Decimal `json:"amount_ex_vat,omitempty"`
	VATAmount     *decimal.Decimal `json:"vat_amount,omitempty"`
	VATRate       *decimal.Decimal `json:"vat_rate,omitempty"`
	AmountIncVAT  *decimal.Decimal `json:"amount_inc_vat,omitempty"`
	Category      string           `json:"category"`
	PaymentMethod PaymentMethod    `json:"payment_method"`
	SupplierID    *int64           `json:"supplier_id,omitempty"`
	IncurredAt    time.Time        `json:"incurred_at"`
	IsCOGS        bool             `json:"is_cogs"`
	Notes         *string          `json:"notes,omitempty"`
	TemplateID    *int64           `json:"template_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Template is a recurring-expense definition. NextDueDate only ever moves
// forward, by exactly one frequency unit per materialized occurrence.
type Template struct {
	ID            int64            `json:"id"`
	Description   string           `json:"description"`
	Amount        decimal.Decimal  `json:"amount"`
	Category      string           `json:"category"`
	PaymentMethod PaymentMethod    `json:"payment_method"`
	SupplierID    *int64           `json:"supplier_id,omitempty"`
	VATRate       *decimal.Decimal `json:"vat_rate,omitempty"`
	Frequency     Frequency        `json:"frequency"`
	NextDueDate   time.Time        `json:"next_due_date"`
	IsActive      bool             `json:"is_active"`
	Notes         *string          `json:"notes,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// VATInput captures how the user entered the amount on the form.
type VATInput struct {
	IncludeVAT bool            `json:"include_vat"`
	Rate       decimal.Decimal `json:"rate" validate:"omitempty"`
}

type CreateExpenseRequest struct {
	Description   string          `json:"description" validate:"required,max=500"`
	Amount        decimal.Decimal `json:"amount"`
	VAT           *VATInput       `json:"vat,omitempty"`
	Category      string          `json:"category" validate:"required,max=100"`
	PaymentMethod PaymentMethod   `json:"payment_method" validate:"required,oneof=cash card transfer other"`
	SupplierID    *int64          `json:"supplier_id,omitempty"`
	IncurredAt    time.Time       `json:"incurred_at" validate:"required"`
	IsCOGS        bool            `json:"is_cogs"`
	Notes         *string         `json:"notes,omitempty"`

	// Recurring marks the expense as the first occurrence of a new template.
	Recurring *RecurringInput `json:"recurring,omitempty"`
}

// RecurringInput carries the schedule when an expense is marked recurring.
type RecurringInput struct {
	Frequency Frequency `json:"frequency" validate:"required,oneof=weekly monthly quarterly annually"`
}

type UpdateExpenseRequest struct {
	Description   *string          `json:"description,omitempty" validate:"omitempty,max=500"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	VAT           *VATInput        `json:"vat,omitempty"`
	Category      *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	PaymentMethod *PaymentMethod   `json:"payment_method,omitempty" validate:"omitempty,oneof=cash card transfer other"`
	SupplierID    *int64           `json:"supplier_id,omitempty"`
	IncurredAt    *time.Time       `json:"incurred_at,omitempty"`
	IsCOGS        *bool            `json:"is_cogs,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

type CreateTemplateRequest struct {
	Description   string           `json:"description" validate:"required,max=500"`
	Amount        decimal.Decimal  `json:"amount"`
	Category      string           `json:"category" validate:"required,max=100"`
	PaymentMethod PaymentMethod    `json:"payment_method" validate:"required,oneof=cash card transfer other"`
	SupplierID    *int64           `json:"supplier_id,omitempty"`
	VATRate       *decimal.Decimal `json:"vat_rate,omitempty"`
	Frequency     Frequency        `json:"frequency" validate:"required,oneof=weekly monthly quarterly annually"`
	AnchorDate    time.Time        `json:"anchor_date" validate:"required"`
	Notes         *string          `json:"notes,omitempty"`
}

type UpdateTemplateRequest struct {
	Description   *string          `json:"description,omitempty" validate:"omitempty,max=500"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Category      *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	PaymentMethod *PaymentMethod   `json:"payment_method,omitempty" validate:"omitempty,oneof=cash card transfer other"`
	SupplierID    *int64           `json:"supplier_id,omitempty"`
	VATRate       *decimal.Decimal `json:"vat_rate,omitempty"`
	Frequency     *Frequency       `json:"frequency,omitempty" validate:"omitempty,oneof=weekly monthly quarterly annually"`
	Notes         *string          `json:"notes,omitempty"`
}

type ListExpensesRequest struct {
	Category      *string        `json:"category,omitempty"`
	PaymentMethod *PaymentMethod `json:"payment_method,omitempty"`
	SupplierID    *int64         `json:"supplier_id,omitempty"`
	TemplateID    *int64         `json:"template_id,omitempty"`
	IsCOGS        *bool          `json:"is_cogs,omitempty"`
	From          *time.Time     `json:"from,omitempty"`
	To            *time.Time     `json:"to,omitempty"`
	Limit         int            `json:"limit" validate:"gte=0,lte=1000"`
	Offset        int            `json:"offset" validate:"gte=0"`
}

// BulkResult records the outcome for one item of a sequential bulk
// operation. Items before a failure stay committed.
type BulkResult struct {
	ID    int64  `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type BulkDeleteRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,max=500"`
}

type BulkRecategorizeRequest struct {
	IDs      []int64 `json:"ids" validate:"required,min=1,max=500"`
	Category string  `json:"category" validate:"required,max=100"`
}
