package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gemlot/gemlot/internal/shared"
)

// Invalidator drops cached report reads after a mutation; the next read
// refetches from the store.
type Invalidator interface {
	Invalidate(ctx context.Context, groups ...string) error
}

// Store abstracts persistence for the service.
type Store interface {
	Get(ctx context.Context, id int64) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
	Create(ctx context.Context, p Product) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	AdjustQuantity(ctx context.Context, id int64, delta int) error
	List(ctx context.Context, req ListProductsRequest) ([]Product, int, error)
	InsertDocument(ctx context.Context, d Document) (int64, error)
	ListDocuments(ctx context.Context, productID int64) ([]Document, error)
}

// Service provides business logic for the product catalog.
type Service struct {
	store  Store
	cache  Invalidator
	logger *slog.Logger
}

// NewService constructs a catalog service.
func NewService(store Store, cache Invalidator, logger *slog.Logger) *Service {
	return &Service{store: store, cache: cache, logger: logger}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "reports", "products"); err != nil {
		s.logger.Warn("invalidate product cache", slog.Any("error", err))
	}
}

// Create registers a new product.
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*Product, error) {
	existing, err := s.store.GetBySKU(ctx, req.SKU)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check existing product: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: sku %s", ErrDuplicate, req.SKU)
	}

	product := Product{
		SKU:                   req.SKU,
		Barcode:               req.Barcode,
		Name:                  req.Name,
		Category:              req.Category,
		Description:           req.Description,
		UnitCost:              req.UnitCost,
		Price:                 req.Price,
		Quantity:              req.Quantity,
		SupplierID:            req.SupplierID,
		ConsignmentSupplierID: req.ConsignmentSupplierID,
		IsTradeIn:             req.IsTradeIn,
		IsConsignment:         req.IsConsignment,
		Serial:                req.Serial,
		IsActive:              true,
	}
	id, err := s.store.Create(ctx, product)
	if err != nil {
		if msg := shared.TranslateConstraint(err); msg != "" {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, msg)
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	product.ID = id
	s.invalidate(ctx)
	return &product, nil
}

// Update applies partial changes to a product.
func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) (*Product, error) {
	updates := make(map[string]interface{})
	if req.Barcode != nil {
		updates["barcode"] = *req.Barcode
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.UnitCost != nil {
		updates["unit_cost"] = *req.UnitCost
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.SupplierID != nil {
		updates["supplier_id"] = *req.SupplierID
	}
	if req.ConsignmentSupplierID != nil {
		updates["consignment_supplier_id"] = *req.ConsignmentSupplierID
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		if err := s.store.Update(ctx, id, updates); err != nil {
			if msg := shared.TranslateConstraint(err); msg != "" {
				return nil, fmt.Errorf("%w: %s", ErrDuplicate, msg)
			}
			return nil, fmt.Errorf("update product: %w", err)
		}
		s.invalidate(ctx)
	}
	return s.store.Get(ctx, id)
}

// Get retrieves a product by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.store.Get(ctx, id)
}

// List returns a paginated product listing.
func (s *Service) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	return s.store.List(ctx, req)
}

// AttachDocuments validates and records attachment metadata, one file at a
// time. A failure partway leaves earlier inserts committed.
func (s *Service) AttachDocuments(ctx context.Context, productID int64, req AttachRequest) ([]Document, error) {
	if err := ValidateAttach(req); err != nil {
		return nil, err
	}
	if _, err := s.store.Get(ctx, productID); err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(req.Files))
	for _, f := range req.Files {
		doc := Document{
			ProductID:  productID,
			Type:       f.Type,
			Filename:   f.Filename,
			SizeBytes:  f.SizeBytes,
			StorageKey: fmt.Sprintf("products/%d/%s", productID, f.Filename),
		}
		id, err := s.store.InsertDocument(ctx, doc)
		if err != nil {
			return docs, fmt.Errorf("attach %s: %w", f.Filename, err)
		}
		doc.ID = id
		docs = append(docs, doc)
	}
	return docs, nil
}

// Documents lists attachment metadata for a product.
func (s *Service) Documents(ctx context.Context, productID int64) ([]Document, error) {
	return s.store.ListDocuments(ctx, productID)
}
