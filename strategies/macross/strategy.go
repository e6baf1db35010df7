// Package macross ranks symbols by fresh moving-average crossovers: a
// symbol qualifies on a date when its short SMA closed at or below the long
// SMA on the prior trading day and above it on the requested day.
package macross

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/PortBackRank/PortBackRank/internal/engine"
	"github.com/PortBackRank/PortBackRank/types"
	"github.com/markcheno/go-talib"
)

// Window parameter names expected in the strategy grid.
const (
	ParamShort = "short"
	ParamLong  = "long"
)

var ErrBadWindows = errors.New("macross: short window must be positive and smaller than long window")

type windows struct {
	short int
	long  int
}

type smaPair struct {
	short []float64
	long  []float64
}

// Ranker caches per-symbol SMA series per window pair. One instance serves
// one simulation run; the cache is not safe for concurrent use.
type Ranker struct {
	series map[windows]map[string]smaPair
}

func New() *Ranker {
	return &Ranker{series: make(map[windows]map[string]smaPair)}
}

// Rank orders symbols by crossover strength, short/long - 1, descending.
// Symbols with enough history but no fresh crossover on the date rank last,
// in ticker order; symbols with fewer than `long` preceding trading days
// are excluded entirely.
func (r *Ranker) Rank(date time.Time, params types.Params, data engine.MarketData) ([]string, error) {
	w, err := windowsFrom(params)
	if err != nil {
		return nil, err
	}
	cache := r.seriesFor(w, data)
	day := types.DateOf(date)

	type candidate struct {
		symbol   string
		strength float64
		crossed  bool
	}
	var candidates []candidate

	for _, symbol := range data.Symbols() {
		bars := data.History(symbol)
		// Position of the first bar at or after the requested date; this is
		// also the count of preceding trading days.
		idx := sort.Search(len(bars), func(i int) bool {
			return !bars[i].Date.Before(day)
		})
		if idx < w.long {
			continue
		}

		c := candidate{symbol: symbol, strength: math.Inf(-1)}
		if idx < len(bars) && bars[idx].Date.Equal(day) {
			pair := cache[symbol]
			prevBelow := pair.short[idx-1] <= pair.long[idx-1]
			nowAbove := pair.short[idx] > pair.long[idx]
			if prevBelow && nowAbove {
				c.crossed = true
				c.strength = pair.short[idx]/pair.long[idx] - 1
			}
		}
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.crossed != b.crossed {
			return a.crossed
		}
		if a.strength != b.strength {
			return a.strength > b.strength
		}
		return a.symbol < b.symbol
	})

	ranked := make([]string, len(candidates))
	for i, c := range candidates {
		ranked[i] = c.symbol
	}
	return ranked, nil
}

func windowsFrom(params types.Params) (windows, error) {
	short, okShort := params[ParamShort]
	long, okLong := params[ParamLong]
	if !okShort || !okLong {
		return windows{}, ErrBadWindows
	}
	w := windows{short: int(short), long: int(long)}
	if w.short <= 0 || w.short >= w.long {
		return windows{}, ErrBadWindows
	}
	return w, nil
}

func (r *Ranker) seriesFor(w windows, data engine.MarketData) map[string]smaPair {
	if cached, ok := r.series[w]; ok {
		return cached
	}

	out := make(map[string]smaPair)
	for _, symbol := range data.Symbols() {
		bars := data.History(symbol)
		// A crossover needs SMAs on the date and the prior day, so anything
		// shorter than long+1 bars can never qualify.
		if len(bars) < w.long+1 {
			continue
		}
		closes := make([]float64, len(bars))
		for i, bar := range bars {
			closes[i] = bar.Close.InexactFloat64()
		}
		out[symbol] = smaPair{
			short: talib.Sma(closes, w.short),
			long:  talib.Sma(closes, w.long),
		}
	}
	r.series[w] = out
	return out
}
