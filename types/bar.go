package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one trading day of price/volume history for a symbol.
type Bar struct {
	Date   time.Time       `json:"date"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// DateOf truncates a timestamp to its calendar date in UTC. All dates in
// bars, lots and timelines are normalized with it so map lookups and
// comparisons never depend on wall-clock components.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
