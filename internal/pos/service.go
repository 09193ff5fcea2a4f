package pos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gemlot/gemlot/internal/shared"
)

var (
	ErrSaleNotFound       = errors.New("sale not found")
	ErrUnknownPayment     = errors.New("unknown payment method")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrNegativeAllowance  = errors.New("allowance must not be negative")
	// ErrApprovalRequired blocks a negative-net-total checkout until the
	// owner PIN is supplied.
	ErrApprovalRequired = errors.New("owner approval required")
)

// Approver verifies the owner PIN for elevated checkouts.
type Approver interface {
	Verify(pin string) error
}

// ApprovalSink persists approval history.
type ApprovalSink interface {
	Record(ctx context.Context, log shared.ApprovalLog) error
}

// Invalidator drops cached report reads after a mutation.
type Invalidator interface {
	Invalidate(ctx context.Context, groups ...string) error
}

// Store abstracts sale persistence.
type Store interface {
	GetSale(ctx context.Context, id uuid.UUID) (*Sale, error)
	ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, int, error)
	WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error
}

// TxStore exposes the operations a checkout runs inside one transaction.
type TxStore interface {
	GetProduct(ctx context.Context, id int64) (*ProductSnapshot, error)
	AdjustStock(ctx context.Context, id int64, delta int) error
	InsertTradeInProduct(ctx context.Context, p TradeInProduct) (int64, error)
	InsertSale(ctx context.Context, s Sale) error
	InsertSaleItem(ctx context.Context, item SaleItem) (int64, error)
	InsertPartExchange(ctx context.Context, px PartExchange) (int64, error)
}

// Service implements the checkout flow.
type Service struct {
	store     Store
	approver  Approver
	approvals ApprovalSink
	audit     *shared.AuditLogger
	cache     Invalidator
	logger    *slog.Logger
}

// NewService constructs a POS service.
func NewService(store Store, approver Approver, approvals ApprovalSink, audit *shared.AuditLogger, cache Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		approver:  approver,
		approvals: approvals,
		audit:     audit,
		cache:     cache,
		logger:    logger,
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "reports", "sales", "products"); err != nil {
		s.logger.Warn("invalidate pos cache", slog.Any("error", err))
	}
}

func (s *Service) recordApproval(ctx context.Context, saleID uuid.UUID, action shared.ApprovalAction, note string) {
	if s.approvals == nil {
		return
	}
	err := s.approvals.Record(ctx, shared.ApprovalLog{
		Module:  "pos",
		RefID:   saleID,
		ActorID: 1,
		Action:  action,
		Note:    note,
	})
	if err != nil {
		s.logger.Warn("record approval", slog.Any("error", err))
	}
}

// Checkout completes a sale: snapshots unit costs, computes totals, gates
// negative net totals behind the owner PIN, decrements stock, and records
// part exchanges plus any resulting trade-in products.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*Sale, error) {
	payment, ok := MapPaymentLabel(req.PaymentLabel)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPayment, req.PaymentLabel)
	}
	for _, px := range req.PartExchanges {
		if px.Allowance.IsNegative() {
			return nil, ErrNegativeAllowance
		}
	}

	soldAt := time.Now()
	if req.SoldAt != nil {
		soldAt = *req.SoldAt
	}
	saleID := uuid.New()

	sale := Sale{
		ID:            saleID,
		DocNumber:     docNumber(soldAt, saleID),
		SoldAt:        soldAt,
		PaymentMethod: payment,
		Notes:         req.Notes,
	}
	approved := false

	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		items := make([]SaleItem, 0, len(req.Items))
		for _, line := range req.Items {
			product, err := tx.GetProduct(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if !product.IsActive {
				return fmt.Errorf("%w: %s", ErrProductUnavailable, product.Name)
			}
			if product.Quantity < line.Quantity {
				return fmt.Errorf("%w: %s has %d in stock", ErrInsufficientStock, product.Name, product.Quantity)
			}
			price := product.Price
			if line.UnitPrice != nil {
				price = *line.UnitPrice
			}
			items = append(items, SaleItem{
				SaleID:    saleID,
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  line.Quantity,
				UnitPrice: price,
				UnitCost:  product.UnitCost,
				Discount:  line.Discount,
				TaxRate:   line.TaxRate,
			})
		}

		allowances := make([]decimal.Decimal, 0, len(req.PartExchanges))
		for _, px := range req.PartExchanges {
			allowances = append(allowances, px.Allowance)
		}
		totals := ComputeTotals(items, allowances)

		if totals.RequiresOwnerApproval() {
			if req.OwnerPIN == "" {
				return ErrApprovalRequired
			}
			if s.approver == nil {
				return ErrApprovalRequired
			}
			if err := s.approver.Verify(req.OwnerPIN); err != nil {
				return err
			}
			approved = true
		}

		sale.Subtotal = totals.Subtotal
		sale.Discount = totals.Discount
		sale.Tax = totals.Tax
		sale.Total = totals.Total
		sale.PXAllowanceTotal = totals.PXAllowanceTotal
		sale.NetTotal = totals.NetTotal
		sale.OwnerApproved = approved

		if err := tx.InsertSale(ctx, sale); err != nil {
			return err
		}
		for i := range items {
			id, err := tx.InsertSaleItem(ctx, items[i])
			if err != nil {
				return err
			}
			items[i].ID = id
			if err := tx.AdjustStock(ctx, items[i].ProductID, -items[i].Quantity); err != nil {
				return err
			}
		}
		sale.Items = items

		for i, input := range req.PartExchanges {
			px := PartExchange{
				SaleID:             saleID,
				CustomerSupplierID: input.CustomerSupplierID,
				Description:        input.Description,
				Serial:             input.Serial,
				Allowance:          input.Allowance,
			}
			if input.TakeIntoStock {
				price := input.Allowance
				if input.ResalePrice != nil {
					price = *input.ResalePrice
				}
				category := "other"
				if input.Category != nil {
					category = *input.Category
				}
				productID, err := tx.InsertTradeInProduct(ctx, TradeInProduct{
					SKU:        tradeInSKU(saleID, i),
					Name:       input.Description,
					Category:   category,
					UnitCost:   input.Allowance,
					Price:      price,
					SupplierID: input.CustomerSupplierID,
					Serial:     input.Serial,
				})
				if err != nil {
					return err
				}
				px.ProductID = &productID
			}
			id, err := tx.InsertPartExchange(ctx, px)
			if err != nil {
				return err
			}
			px.ID = id
			sale.PartExchanges = append(sale.PartExchanges, px)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrApprovalDenied) {
			s.recordApproval(ctx, saleID, shared.ApprovalDeny, "negative net total checkout")
		}
		return nil, err
	}

	if approved {
		s.recordApproval(ctx, saleID, shared.ApprovalGrant,
			fmt.Sprintf("negative net total %s", sale.NetTotal.StringFixed(2)))
	}
	if s.audit != nil {
		err := s.audit.Record(ctx, shared.AuditLog{
			Action:   "pos.checkout",
			Entity:   "sale",
			EntityID: saleID.String(),
			Meta:     map[string]any{"net_total": sale.NetTotal.StringFixed(2)},
		})
		if err != nil {
			s.logger.Warn("record audit", slog.Any("error", err))
		}
	}
	s.invalidate(ctx)
	return &sale, nil
}

// GetSale returns one sale with its items and part exchanges.
func (s *Service) GetSale(ctx context.Context, id uuid.UUID) (*Sale, error) {
	return s.store.GetSale(ctx, id)
}

// ListSales returns sales in a date range.
func (s *Service) ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, int, error) {
	return s.store.ListSales(ctx, req)
}

func docNumber(soldAt time.Time, id uuid.UUID) string {
	return fmt.Sprintf("S-%s-%s", soldAt.Format("20060102"), strings.ToUpper(id.String()[:8]))
}

func tradeInSKU(saleID uuid.UUID, index int) string {
	return fmt.Sprintf("PX-%s-%d", strings.ToUpper(saleID.String()[:8]), index+1)
}
