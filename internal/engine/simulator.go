package engine

import (
	"fmt"
	"time"

	"github.com/PortBackRank/PortBackRank/types"
	"github.com/shopspring/decimal"
)

// minTradeCash is the floor at which the buy phase stops walking the
// ranking. It is a fixed policy value, not a tunable parameter.
var minTradeCash = decimal.NewFromInt(2)

// maxDailyCandidates caps how deep the buy phase walks each day's ranking.
const maxDailyCandidates = 40

// Simulator executes one full simulation for one risk configuration across
// a date range. All mutable state lives inside Run, so a Simulator is cheap
// to construct and one instance is made per run.
type Simulator struct {
	risk   RiskConfig
	ranker Ranker
	data   MarketData
}

func NewSimulator(risk RiskConfig, ranker Ranker, data MarketData) *Simulator {
	return &Simulator{risk: risk, ranker: ranker, data: data}
}

// Run walks every calendar date in the inclusive range, selling lots that
// hit the profit or loss threshold, then buying down the day's ranking
// under the diversification and volume constraints, then recording a
// timeline entry. Dates without market data for a symbol are skipped for
// that symbol, never treated as errors.
func (s *Simulator) Run(start, end time.Time, strategyParams types.Params, initialCash decimal.Decimal) (*types.SimulationResult, error) {
	pf := newPortfolio(initialCash)
	result := &types.SimulationResult{
		RiskParams:     s.risk.params(),
		StrategyParams: strategyParams.Clone(),
	}

	last := types.DateOf(end)
	for date := types.DateOf(start); !date.After(last); date = date.AddDate(0, 0, 1) {
		s.sellPhase(date, pf, result)
		if err := s.buyPhase(date, strategyParams, pf, result); err != nil {
			return nil, err
		}
		result.Timeline = append(result.Timeline, types.TimelineEntry{
			Date:      date,
			Cash:      pf.cash,
			Portfolio: pf.snapshot(),
		})
	}

	result.FinalCash = pf.cash
	result.Portfolio = pf.snapshot()
	return result, nil
}

// sellPhase liquidates lots whose fractional price change crossed the
// profit or loss threshold. Sales are capped by the day's traded volume;
// the per-symbol volume budget is shared across lots, so a constrained sell
// consumes the oldest lot first and later lots keep the remainder.
func (s *Simulator) sellPhase(date time.Time, pf *portfolio, result *types.SimulationResult) {
	if len(pf.lots) == 0 {
		return
	}

	volumeLeft := make(map[string]int64)
	kept := pf.lots[:0]
	for _, lot := range pf.lots {
		bar, ok := s.data.Bar(lot.Symbol, date)
		if !ok {
			kept = append(kept, lot)
			continue
		}

		change := bar.Close.Sub(lot.Price).Div(lot.Price)
		if change.LessThan(s.risk.Profit) && change.GreaterThan(s.risk.Loss.Neg()) {
			kept = append(kept, lot)
			continue
		}

		if _, seen := volumeLeft[lot.Symbol]; !seen {
			volumeLeft[lot.Symbol] = bar.Volume
		}
		qty := volumeLeft[lot.Symbol]
		if qty > lot.Quantity {
			qty = lot.Quantity
		}
		if qty <= 0 {
			kept = append(kept, lot)
			continue
		}
		volumeLeft[lot.Symbol] -= qty

		result.SellLog = append(result.SellLog, types.SellRecord{
			Date:          date,
			Symbol:        lot.Symbol,
			Quantity:      qty,
			PurchasePrice: lot.Price,
			SalePrice:     bar.Close,
			Profit:        bar.Close.Sub(lot.Price).Mul(decimal.NewFromInt(qty)),
			PurchaseDate:  lot.Date,
		})
		pf.sell(lot, qty, bar.Close)
		if lot.Quantity > 0 {
			kept = append(kept, lot)
		}
	}
	pf.lots = kept
}

// buyPhase walks the day's ranking best-first, opening one lot per eligible
// candidate. The sector ceiling is available cash times diversification for
// a sector the portfolio has no exposure to, otherwise diversification
// times total cost-basis value minus the sector's current value.
func (s *Simulator) buyPhase(date time.Time, strategyParams types.Params, pf *portfolio, result *types.SimulationResult) error {
	if pf.cash.LessThanOrEqual(minTradeCash) {
		return nil
	}

	ranked, err := s.ranker.Rank(date, strategyParams, s.data)
	if err != nil {
		return fmt.Errorf("rank %s: %w", date.Format(time.DateOnly), err)
	}
	if len(ranked) > maxDailyCandidates {
		ranked = ranked[:maxDailyCandidates]
	}

	sectorCost := pf.sectorCosts()
	total := pf.totalCost
	bought := make(map[string]int64)

	for _, symbol := range ranked {
		if pf.cash.LessThanOrEqual(minTradeCash) {
			break
		}
		info, ok := s.data.Info(symbol)
		if !ok || info.Sector == "" {
			continue
		}
		bar, ok := s.data.Bar(symbol, date)
		if !ok {
			continue
		}

		current, held := sectorCost[info.Sector]
		var ceiling decimal.Decimal
		if total.IsZero() || !held {
			ceiling = pf.cash.Mul(s.risk.Diversification)
		} else {
			ceiling = s.risk.Diversification.Mul(total).Sub(current)
		}

		qty := pf.cash.Div(bar.Close).IntPart()
		if bySector := ceiling.Div(bar.Close).IntPart(); bySector < qty {
			qty = bySector
		}
		if byVolume := bar.Volume - bought[symbol]; byVolume < qty {
			qty = byVolume
		}
		if qty <= 0 {
			continue
		}

		lot := &types.Lot{
			Symbol:   symbol,
			Quantity: qty,
			Price:    bar.Close,
			Date:     date,
			Sector:   info.Sector,
		}
		pf.buy(lot)
		bought[symbol] += qty
		total = total.Add(lot.Cost())
		sectorCost[info.Sector] = current.Add(lot.Cost())

		result.BuyLog = append(result.BuyLog, types.BuyRecord{
			Date:     date,
			Symbol:   symbol,
			Quantity: qty,
			Price:    bar.Close,
			Sector:   info.Sector,
		})
	}
	return nil
}
