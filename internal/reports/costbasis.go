package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostBasis names the source of a sold line's cost figure.
type CostBasis string

const (
	CostBasisTradeIn     CostBasis = "trade_in"
	CostBasisConsignment CostBasis = "consignment"
	CostBasisOwned       CostBasis = "owned"
)

// PartExchangeRef is a trade-in linked to the line's sale.
type PartExchangeRef struct {
	Allowance          decimal.Decimal
	CustomerSupplierID *int64
}

// SettlementRef is the consignment settlement linked to (product, sale).
type SettlementRef struct {
	AgreedPrice  *decimal.Decimal
	PayoutAmount *decimal.Decimal
	PaidAt       *time.Time
}

func (s SettlementRef) effectivePayout() decimal.Decimal {
	if s.PayoutAmount != nil {
		return *s.PayoutAmount
	}
	if s.AgreedPrice != nil {
		return *s.AgreedPrice
	}
	return decimal.Zero
}

// LineInput is one sold line joined with its product flags and linked
// records.
type LineInput struct {
	Quantity  int
	UnitPrice decimal.Decimal
	UnitCost  decimal.Decimal
	Discount  decimal.Decimal

	IsTradeIn     bool
	IsConsignment bool

	SupplierID            *int64
	ConsignmentSupplierID *int64

	PartExchanges []PartExchangeRef
	Settlement    *SettlementRef
}

// LineResult is the resolved profit attribution for one line.
type LineResult struct {
	Revenue     decimal.Decimal `json:"revenue"`
	COGS        decimal.Decimal `json:"cogs"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	CostBasis   CostBasis       `json:"cost_basis"`

	// Settled gates inclusion in settled-only consignment aggregates.
	// Non-consignment lines are always settled.
	Settled bool `json:"settled"`

	// UnsettledAmount is the payout owed on an unsettled consignment line.
	UnsettledAmount decimal.Decimal `json:"unsettled_amount"`

	// AttributedSupplierID is display-only and never affects profit.
	AttributedSupplierID *int64 `json:"attributed_supplier_id,omitempty"`
}

// costBasisRule pairs a predicate with its cost resolution. Rules are
// evaluated in declaration order and the first match wins, so a line is
// never double-classified.
type costBasisRule struct {
	kind    CostBasis
	matches func(LineInput) bool
	resolve func(LineInput, *LineResult)
}

var costBasisRules = []costBasisRule{
	{
		kind: CostBasisTradeIn,
		matches: func(in LineInput) bool {
			return in.IsTradeIn && len(in.PartExchanges) > 0
		},
		resolve: func(in LineInput, out *LineResult) {
			cogs := decimal.Zero
			for _, px := range in.PartExchanges {
				cogs = cogs.Add(px.Allowance)
			}
			out.COGS = cogs
			out.Settled = true
			if len(in.PartExchanges) > 0 {
				out.AttributedSupplierID = in.PartExchanges[0].CustomerSupplierID
			}
		},
	},
	{
		kind: CostBasisConsignment,
		matches: func(in LineInput) bool {
			return in.IsConsignment
		},
		resolve: func(in LineInput, out *LineResult) {
			qty := decimal.NewFromInt(int64(in.Quantity))
			if in.Settlement != nil {
				payout := in.Settlement.effectivePayout()
				out.COGS = qty.Mul(payout)
				out.Settled = in.Settlement.PaidAt != nil
				if !out.Settled {
					out.UnsettledAmount = qty.Mul(payout)
				}
			} else {
				out.COGS = qty.Mul(in.UnitCost)
				out.Settled = false
			}
			out.AttributedSupplierID = in.ConsignmentSupplierID
		},
	},
	{
		kind: CostBasisOwned,
		matches: func(LineInput) bool {
			return true
		},
		resolve: func(in LineInput, out *LineResult) {
			out.COGS = decimal.NewFromInt(int64(in.Quantity)).Mul(in.UnitCost)
			out.Settled = true
			out.AttributedSupplierID = in.SupplierID
		},
	},
}

// ResolveLine attributes revenue, cost, and gross profit to one sold line.
// Contradictory flags resolve deterministically through the rule order;
// missing linked data degrades to the owned cost basis or zero rather than
// erroring.
func ResolveLine(in LineInput) LineResult {
	out := LineResult{
		Revenue:         in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity))).Sub(in.Discount),
		UnsettledAmount: decimal.Zero,
	}
	for _, rule := range costBasisRules {
		if rule.matches(in) {
			out.CostBasis = rule.kind
			rule.resolve(in, &out)
			break
		}
	}
	out.GrossProfit = out.Revenue.Sub(out.COGS)
	return out
}
