package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PortBackRank/PortBackRank/types"
)

// GetDailyBars returns one ticker's daily close/volume series inside the
// inclusive interval, ascending by day.
func (db *Database) GetDailyBars(ctx context.Context, ticker string, start, end time.Time) ([]types.Bar, error) {
	rows, err := db.conn.Query(ctx, `
		SELECT b.day, b.close, b.volume
		FROM daily_bars b
		JOIN assets a ON a.id = b.asset_id
		WHERE a.ticker = $1 AND b.day BETWEEN $2 AND $3
		ORDER BY b.day`, ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("query daily bars: %w", err)
	}
	defer rows.Close()

	var bars []types.Bar
	for rows.Next() {
		var bar types.Bar
		if err := rows.Scan(&bar.Date, &bar.Close, &bar.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		bar.Date = types.DateOf(bar.Date)
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("ticker %s: %w", ticker, ErrNoBars)
	}
	return bars, nil
}

// LoadMarketData loads the history and attribute maps the in-memory
// provider is constructed from. Tickers with no bars in the interval are
// skipped, not errors; the provider's coverage filter handles sparse ones.
func (db *Database) LoadMarketData(ctx context.Context, start, end time.Time) (map[string][]types.Bar, map[string]types.AssetInfo, error) {
	universe, err := db.GetUniverse(ctx)
	if err != nil {
		return nil, nil, err
	}

	history := make(map[string][]types.Bar, len(universe))
	info := make(map[string]types.AssetInfo, len(universe))
	for _, asset := range universe {
		bars, err := db.GetDailyBars(ctx, asset.Ticker, start, end)
		if err != nil {
			if errors.Is(err, ErrNoBars) {
				continue
			}
			return nil, nil, err
		}
		history[asset.Ticker] = bars
		info[asset.Ticker] = asset
	}
	return history, info, nil
}
