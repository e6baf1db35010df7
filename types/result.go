package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimelineEntry snapshots cash and the full lot list at end of one
// simulated day. Appended once per day, never mutated afterwards.
type TimelineEntry struct {
	Date      time.Time       `json:"date"`
	Cash      decimal.Decimal `json:"cash"`
	Portfolio []Lot           `json:"portfolio"`
}

// SellRecord logs one (possibly partial) liquidation of a lot.
type SellRecord struct {
	Date          time.Time       `json:"date"`
	Symbol        string          `json:"symbol"`
	Quantity      int64           `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Profit        decimal.Decimal `json:"profit"`
	PurchaseDate  time.Time       `json:"purchase_date"`
}

// BuyRecord logs one lot opening.
type BuyRecord struct {
	Date     time.Time       `json:"date"`
	Symbol   string          `json:"symbol"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Sector   string          `json:"sector"`
}

// SimulationResult is the immutable outcome of one simulator run.
type SimulationResult struct {
	FinalCash      decimal.Decimal `json:"final_cash"`
	Portfolio      []Lot           `json:"portfolio"`
	Timeline       []TimelineEntry `json:"timeline"`
	SellLog        []SellRecord    `json:"sell_log"`
	BuyLog         []BuyRecord     `json:"buy_log"`
	RiskParams     Params          `json:"risk_params"`
	StrategyParams Params          `json:"strategy_params"`
}

// ResultRow is one line of the orchestrator's result table. PortfolioValue
// is the cost-basis value of the remaining lots, not mark-to-market.
type ResultRow struct {
	RiskParams     Params          `json:"risk_params"`
	StrategyParams Params          `json:"strategy_params"`
	FinalCash      decimal.Decimal `json:"final_cash"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	TotalReturn    decimal.Decimal `json:"total_return"`
}
