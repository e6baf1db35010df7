package engine

import (
	"github.com/PortBackRank/PortBackRank/types"
	"github.com/shopspring/decimal"
)

// portfolio is the per-run mutable state: an ordered lot list (slice order
// is FIFO order) plus a cash balance. The cost-basis total is maintained
// incrementally on every buy and sell.
type portfolio struct {
	cash      decimal.Decimal
	lots      []*types.Lot
	totalCost decimal.Decimal
}

func newPortfolio(initialCash decimal.Decimal) *portfolio {
	return &portfolio{cash: initialCash, totalCost: decimal.Zero}
}

// buy appends a new lot and pays for it. The caller guarantees the lot is
// affordable; cash never goes negative.
func (p *portfolio) buy(lot *types.Lot) {
	p.lots = append(p.lots, lot)
	cost := lot.Cost()
	p.cash = p.cash.Sub(cost)
	p.totalCost = p.totalCost.Add(cost)
}

// sell liquidates qty shares of the lot at price, crediting the proceeds.
// The lot keeps its purchase price and date; a fully consumed lot is left
// with zero quantity for the caller to drop.
func (p *portfolio) sell(lot *types.Lot, qty int64, price decimal.Decimal) {
	q := decimal.NewFromInt(qty)
	p.cash = p.cash.Add(price.Mul(q))
	p.totalCost = p.totalCost.Sub(lot.Price.Mul(q))
	lot.Quantity -= qty
}

// sectorCosts recomputes the cost-basis value held per sector from the
// current lot list.
func (p *portfolio) sectorCosts() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, lot := range p.lots {
		out[lot.Sector] = out[lot.Sector].Add(lot.Cost())
	}
	return out
}

// snapshot copies the open lots for timelines and results, so later
// mutations of the live lots cannot leak into recorded state.
func (p *portfolio) snapshot() []types.Lot {
	out := make([]types.Lot, len(p.lots))
	for i, lot := range p.lots {
		out[i] = *lot
	}
	return out
}
