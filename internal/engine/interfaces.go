package engine

import (
	"time"

	"github.com/PortBackRank/PortBackRank/types"
)

// MarketData is the read-only snapshot the simulator and rankers consume.
// It is fully constructed before a batch starts and implementations must be
// safe for concurrent readers; the engine never mutates it.
type MarketData interface {
	// Symbols returns the simulatable universe in a stable order.
	Symbols() []string
	// Bar returns the symbol's close/volume for one calendar date, if the
	// date was a trading day for the symbol.
	Bar(symbol string, date time.Time) (types.Bar, bool)
	// History returns the symbol's full daily series in ascending date
	// order. Callers must treat the slice as read-only.
	History(symbol string) []types.Bar
	// Info returns the symbol's static attributes (sector at minimum).
	Info(symbol string) (types.AssetInfo, bool)
}

// Ranker orders candidate symbols best-first for one trading date. Rankings
// must be deterministic given identical inputs and must not mutate the data
// provider. An error aborts the run; missing market data for individual
// symbols is not an error.
type Ranker interface {
	Rank(date time.Time, params types.Params, data MarketData) ([]string, error)
}

// RankerFactory builds a fresh Ranker for one simulation run. Rankers may
// keep per-run caches, so instances are never shared between runs.
type RankerFactory func() Ranker
