package suppliers

import "time"

// Supplier covers both trade suppliers and consignors. Walk-in customers who
// trade items in are recorded here too, so part-exchange lines can attribute
// cost to them.
type Supplier struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	IsConsignor bool      `json:"is_consignor"`
	Notes       *string   `json:"notes,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateSupplierRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	IsConsignor bool    `json:"is_consignor"`
	Notes       *string `json:"notes,omitempty"`
}

type UpdateSupplierRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	IsConsignor *bool   `json:"is_consignor,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type ListSuppliersRequest struct {
	IsConsignor *bool   `json:"is_consignor,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	Search      *string `json:"search,omitempty"`
	Limit       int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset      int     `json:"offset" validate:"gte=0"`
}
