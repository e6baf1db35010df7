package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot is one open purchase. Multiple lots of the same symbol may coexist
// (no averaging); sells consume the oldest lot of a symbol first.
type Lot struct {
	Symbol   string          `json:"symbol"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Date     time.Time       `json:"date"`
	Sector   string          `json:"sector"`
}

// Cost is the lot's cost-basis value: quantity times purchase price.
func (l Lot) Cost() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(l.Quantity))
}
