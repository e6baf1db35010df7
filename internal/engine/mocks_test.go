package engine

import (
	"sort"
	"time"

	"github.com/PortBackRank/PortBackRank/types"
	"github.com/shopspring/decimal"
)

// fakeData is a minimal in-memory MarketData for engine tests.
type fakeData struct {
	history map[string][]types.Bar
	info    map[string]types.AssetInfo
}

func newFakeData(history map[string][]types.Bar, info map[string]types.AssetInfo) *fakeData {
	for symbol, bars := range history {
		for i := range bars {
			bars[i].Date = types.DateOf(bars[i].Date)
		}
		sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
		history[symbol] = bars
	}
	return &fakeData{history: history, info: info}
}

func (f *fakeData) Symbols() []string {
	symbols := make([]string, 0, len(f.history))
	for symbol := range f.history {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

func (f *fakeData) Bar(symbol string, date time.Time) (types.Bar, bool) {
	day := types.DateOf(date)
	for _, bar := range f.history[symbol] {
		if bar.Date.Equal(day) {
			return bar, true
		}
	}
	return types.Bar{}, false
}

func (f *fakeData) History(symbol string) []types.Bar {
	return f.history[symbol]
}

func (f *fakeData) Info(symbol string) (types.AssetInfo, bool) {
	info, ok := f.info[symbol]
	return info, ok
}

// listRanker returns a fixed ordering every day.
type listRanker struct {
	order []string
}

func (r listRanker) Rank(time.Time, types.Params, MarketData) ([]string, error) {
	return r.order, nil
}

// scheduleRanker returns a per-day ordering, empty for unlisted days.
type scheduleRanker struct {
	orders map[time.Time][]string
}

func (r scheduleRanker) Rank(date time.Time, _ types.Params, _ MarketData) ([]string, error) {
	return r.orders[types.DateOf(date)], nil
}

// errRanker fails every call.
type errRanker struct {
	err error
}

func (r errRanker) Rank(time.Time, types.Params, MarketData) ([]string, error) {
	return nil, r.err
}

func day(n int) time.Time {
	return time.Date(2024, time.January, n, 0, 0, 0, 0, time.UTC)
}

func bar(n int, close float64, volume int64) types.Bar {
	return types.Bar{Date: day(n), Close: decimal.NewFromFloat(close), Volume: volume}
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func riskConfig(profit, loss, diversification float64) RiskConfig {
	return RiskConfig{
		Profit:          dec(profit),
		Loss:            dec(loss),
		Diversification: dec(diversification),
	}
}
