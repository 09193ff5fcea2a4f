package suppliers

import (
	"context"
	"fmt"
)

// Store abstracts persistence for the service.
type Store interface {
	Get(ctx context.Context, id int64) (*Supplier, error)
	Create(ctx context.Context, s Supplier) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	List(ctx context.Context, req ListSuppliersRequest) ([]Supplier, int, error)
}

// Service provides business logic for the supplier registry.
type Service struct {
	store Store
}

// NewService constructs a supplier service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create registers a new supplier.
func (s *Service) Create(ctx context.Context, req CreateSupplierRequest) (*Supplier, error) {
	supplier := Supplier{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		IsConsignor: req.IsConsignor,
		Notes:       req.Notes,
		IsActive:    true,
	}
	id, err := s.store.Create(ctx, supplier)
	if err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}
	supplier.ID = id
	return &supplier, nil
}

// Update applies partial changes to a supplier.
func (s *Service) Update(ctx context.Context, id int64, req UpdateSupplierRequest) (*Supplier, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.IsConsignor != nil {
		updates["is_consignor"] = *req.IsConsignor
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		if err := s.store.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update supplier: %w", err)
		}
	}
	return s.store.Get(ctx, id)
}

// Get retrieves a supplier by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Supplier, error) {
	return s.store.Get(ctx, id)
}

// List returns a paginated supplier listing.
func (s *Service) List(ctx context.Context, req ListSuppliersRequest) ([]Supplier, int, error) {
	return s.store.List(ctx, req)
}
