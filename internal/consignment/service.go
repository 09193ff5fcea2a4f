package consignment

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gemlot/gemlot/internal/shared"
)

// Invalidator drops cached report reads after a mutation.
type Invalidator interface {
	Invalidate(ctx context.Context, groups ...string) error
}

// Store abstracts settlement persistence.
type Store interface {
	Get(ctx context.Context, id int64) (*Settlement, error)
	Create(ctx context.Context, s Settlement) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	MarkPaid(ctx context.Context, id int64, paidAt time.Time) error
	List(ctx context.Context, req ListSettlementsRequest) ([]Settlement, int, error)
	SupplierBalances(ctx context.Context) ([]SupplierBalance, error)
}

// Service provides settlement business logic.
type Service struct {
	store  Store
	audit  *shared.AuditLogger
	cache  Invalidator
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a consignment service.
func NewService(store Store, audit *shared.AuditLogger, cache Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, audit: audit, cache: cache, logger: logger, now: time.Now}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "reports", "consignments"); err != nil {
		s.logger.Warn("invalidate consignment cache", slog.Any("error", err))
	}
}

func (s *Service) recordAudit(ctx context.Context, action string, id int64) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "consignment_settlement",
		EntityID: strconv.FormatInt(id, 10),
	})
	if err != nil {
		s.logger.Warn("record audit", slog.Any("error", err))
	}
}

// Create registers the payout agreement for one sold consignment product.
func (s *Service) Create(ctx context.Context, req CreateSettlementRequest) (*Settlement, error) {
	settlement := Settlement{
		ProductID:    req.ProductID,
		SaleID:       req.SaleID,
		SupplierID:   req.SupplierID,
		AgreedPrice:  req.AgreedPrice,
		PayoutAmount: req.PayoutAmount,
		Notes:        req.Notes,
	}
	id, err := s.store.Create(ctx, settlement)
	if err != nil {
		return nil, fmt.Errorf("create settlement: %w", err)
	}
	s.recordAudit(ctx, "settlement.create", id)
	s.invalidate(ctx)
	return s.store.Get(ctx, id)
}

// Update edits an unsettled record. Settled records are immutable.
func (s *Service) Update(ctx context.Context, id int64, req UpdateSettlementRequest) (*Settlement, error) {
	updates := make(map[string]interface{})
	if req.AgreedPrice != nil {
		updates["agreed_price"] = *req.AgreedPrice
	}
	if req.PayoutAmount != nil {
		updates["payout_amount"] = *req.PayoutAmount
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) > 0 {
		if err := s.store.Update(ctx, id, updates); err != nil {
			return nil, err
		}
		s.recordAudit(ctx, "settlement.update", id)
		s.invalidate(ctx)
	}
	return s.store.Get(ctx, id)
}

// MarkPaid performs the single irreversible transition to settled. From
// this point the line's gross profit counts toward settled aggregates.
func (s *Service) MarkPaid(ctx context.Context, id int64) (*Settlement, error) {
	if err := s.store.MarkPaid(ctx, id, s.now()); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, "settlement.paid", id)
	s.invalidate(ctx)
	return s.store.Get(ctx, id)
}

// Get retrieves one settlement.
func (s *Service) Get(ctx context.Context, id int64) (*Settlement, error) {
	return s.store.Get(ctx, id)
}

// List returns filtered settlements.
func (s *Service) List(ctx context.Context, req ListSettlementsRequest) ([]Settlement, int, error) {
	return s.store.List(ctx, req)
}

// SupplierBalances returns the unsettled exposure per supplier.
func (s *Service) SupplierBalances(ctx context.Context) ([]SupplierBalance, error) {
	return s.store.SupplierBalances(ctx)
}
