// Package marketdata holds the immutable in-memory snapshot of daily price
// history and asset attributes a simulation batch runs against. It is
// populated once, before any simulator starts, and is safe for concurrent
// readers.
package marketdata

import (
	"sort"
	"time"

	"github.com/PortBackRank/PortBackRank/types"
)

// coverageRatio is the universe coverage filter: a symbol must have at
// least this fraction of the trading days of the best-covered symbol in
// the interval, otherwise it is dropped from the simulatable universe.
const coverageRatio = 0.95

// Provider serves a fixed asset universe over a fixed date interval.
type Provider struct {
	symbols []string
	history map[string][]types.Bar
	index   map[string]map[time.Time]int
	info    map[string]types.AssetInfo
}

// NewProvider builds a provider from raw per-symbol series and attribute
// records. Bars with a non-positive close or negative volume are dropped
// (invalid data is treated as missing), symbols without a sector record are
// dropped, and the coverage filter removes symbols with materially sparse
// history.
func NewProvider(history map[string][]types.Bar, info map[string]types.AssetInfo) *Provider {
	cleaned := make(map[string][]types.Bar, len(history))
	best := 0
	for symbol, bars := range history {
		attrs, ok := info[symbol]
		if !ok || attrs.Sector == "" {
			continue
		}
		series := sanitize(bars)
		if len(series) == 0 {
			continue
		}
		cleaned[symbol] = series
		if len(series) > best {
			best = len(series)
		}
	}

	p := &Provider{
		history: make(map[string][]types.Bar, len(cleaned)),
		index:   make(map[string]map[time.Time]int, len(cleaned)),
		info:    make(map[string]types.AssetInfo, len(cleaned)),
	}
	for symbol, series := range cleaned {
		if float64(len(series)) < coverageRatio*float64(best) {
			continue
		}
		idx := make(map[time.Time]int, len(series))
		for i, bar := range series {
			idx[bar.Date] = i
		}
		p.history[symbol] = series
		p.index[symbol] = idx
		p.info[symbol] = info[symbol]
		p.symbols = append(p.symbols, symbol)
	}
	sort.Strings(p.symbols)
	return p
}

// sanitize drops invalid bars, normalizes dates to UTC midnight and returns
// the series in ascending date order. The first bar wins on duplicate dates.
func sanitize(bars []types.Bar) []types.Bar {
	out := make([]types.Bar, 0, len(bars))
	seen := make(map[time.Time]bool, len(bars))
	for _, bar := range bars {
		if !bar.Close.IsPositive() || bar.Volume < 0 {
			continue
		}
		day := types.DateOf(bar.Date)
		if seen[day] {
			continue
		}
		seen[day] = true
		bar.Date = day
		out = append(out, bar)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Symbols returns the filtered universe in ascending ticker order. The
// returned slice is the caller's to keep or reorder.
func (p *Provider) Symbols() []string {
	return append([]string(nil), p.symbols...)
}

// Bar returns the symbol's bar for the given calendar date, if that date
// was a trading day for the symbol.
func (p *Provider) Bar(symbol string, date time.Time) (types.Bar, bool) {
	idx, ok := p.index[symbol]
	if !ok {
		return types.Bar{}, false
	}
	i, ok := idx[types.DateOf(date)]
	if !ok {
		return types.Bar{}, false
	}
	return p.history[symbol][i], true
}

// History returns the symbol's full series in ascending date order. The
// returned slice is shared and must not be modified.
func (p *Provider) History(symbol string) []types.Bar {
	return p.history[symbol]
}

// Info returns the symbol's static attribute record.
func (p *Provider) Info(symbol string) (types.AssetInfo, bool) {
	info, ok := p.info[symbol]
	return info, ok
}
