package reports

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store abstracts the joined-row reads behind the aggregations.
type Store interface {
	SaleLines(ctx context.Context, from, to time.Time) ([]SaleLineRow, error)
	PartExchanges(ctx context.Context, from, to time.Time) (map[uuid.UUID][]PartExchangeRef, error)
	ExpenseTotals(ctx context.Context, from, to time.Time) (ExpenseTotals, error)
}

// Reader is the tag-keyed query cache the report reads go through.
type Reader interface {
	Read(ctx context.Context, group string, parts []string, dest any, build func(context.Context) (any, error)) error
}

// Service builds period reports over resolved sale lines.
type Service struct {
	store  Store
	cache  Reader
	logger *slog.Logger
}

// NewService constructs a reports service.
func NewService(store Store, cache Reader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, cache: cache, logger: logger}
}

// PnL returns the profit-and-loss report for [from, to). Reads are served
// from the query cache until a mutation invalidates the reports group.
func (s *Service) PnL(ctx context.Context, from, to time.Time) (*PnLReport, error) {
	build := func(ctx context.Context) (any, error) {
		return s.buildPnL(ctx, from, to)
	}
	if s.cache == nil {
		report, err := build(ctx)
		if err != nil {
			return nil, err
		}
		return report.(*PnLReport), nil
	}
	var report PnLReport
	parts := []string{"pnl", from.Format("2006-01-02"), to.Format("2006-01-02")}
	if err := s.cache.Read(ctx, "reports", parts, &report, build); err != nil {
		return nil, err
	}
	return &report, nil
}

// Consignment returns only the consignment gross-profit summary.
func (s *Service) Consignment(ctx context.Context, from, to time.Time) (*ConsignmentSummary, error) {
	report, err := s.PnL(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary := report.Consignment
	return &summary, nil
}

func (s *Service) buildPnL(ctx context.Context, from, to time.Time) (*PnLReport, error) {
	lines, err := s.store.SaleLines(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load sale lines: %w", err)
	}
	pxBySale, err := s.store.PartExchanges(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load part exchanges: %w", err)
	}
	expenses, err := s.store.ExpenseTotals(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load expense totals: %w", err)
	}

	report := &PnLReport{
		From:        from,
		To:          to,
		Revenue:     decimal.Zero,
		COGS:        decimal.Zero,
		GrossProfit: decimal.Zero,
		Expenses:    expenses,
	}
	categories := map[string]*CategoryRollup{}
	suppliers := map[int64]*SupplierRollup{}

	for _, row := range lines {
		res := ResolveLine(LineInput{
			Quantity:              row.Quantity,
			UnitPrice:             row.UnitPrice,
			UnitCost:              row.UnitCost,
			Discount:              row.Discount,
			IsTradeIn:             row.IsTradeIn,
			IsConsignment:         row.IsConsignment,
			SupplierID:            row.SupplierID,
			ConsignmentSupplierID: row.ConsignmentSupplierID,
			PartExchanges:         pxBySale[row.SaleID],
			Settlement:            row.Settlement,
		})
		report.LinesResolved++
		report.Revenue = report.Revenue.Add(res.Revenue)
		report.COGS = report.COGS.Add(res.COGS)

		cat, ok := categories[row.Category]
		if !ok {
			cat = &CategoryRollup{Category: row.Category,
				Revenue: decimal.Zero, COGS: decimal.Zero, GrossProfit: decimal.Zero}
			categories[row.Category] = cat
		}
		cat.Revenue = cat.Revenue.Add(res.Revenue)
		cat.COGS = cat.COGS.Add(res.COGS)
		cat.GrossProfit = cat.GrossProfit.Add(res.GrossProfit)
		cat.Lines++

		if res.AttributedSupplierID != nil {
			sup, ok := suppliers[*res.AttributedSupplierID]
			if !ok {
				sup = &SupplierRollup{SupplierID: *res.AttributedSupplierID,
					Revenue: decimal.Zero, COGS: decimal.Zero, GrossProfit: decimal.Zero}
				suppliers[*res.AttributedSupplierID] = sup
			}
			sup.Revenue = sup.Revenue.Add(res.Revenue)
			sup.COGS = sup.COGS.Add(res.COGS)
			sup.GrossProfit = sup.GrossProfit.Add(res.GrossProfit)
			sup.Lines++
		}

		if res.CostBasis == CostBasisConsignment {
			if res.Settled {
				report.Consignment.SettledGrossProfit = report.Consignment.SettledGrossProfit.Add(res.GrossProfit)
				report.Consignment.SettledCount++
			} else {
				report.Consignment.UnsettledTotal = report.Consignment.UnsettledTotal.Add(res.UnsettledAmount)
				report.Consignment.UnsettledCount++
			}
		}
	}

	report.GrossProfit = report.Revenue.Sub(report.COGS)
	report.NetProfit = report.GrossProfit.Sub(expenses.ExVAT)

	for _, c := range categories {
		report.ByCategory = append(report.ByCategory, *c)
	}
	sort.Slice(report.ByCategory, func(i, j int) bool {
		return report.ByCategory[i].Category < report.ByCategory[j].Category
	})
	for _, s := range suppliers {
		report.BySupplier = append(report.BySupplier, *s)
	}
	sort.Slice(report.BySupplier, func(i, j int) bool {
		return report.BySupplier[i].SupplierID < report.BySupplier[j].SupplierID
	})
	return report, nil
}
