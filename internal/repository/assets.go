package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/PortBackRank/PortBackRank/types"
	"github.com/jackc/pgx/v5"
)

// GetUniverse returns every asset that carries a sector label; assets
// without one can never pass the buy phase and are excluded at the source.
func (db *Database) GetUniverse(ctx context.Context) ([]types.AssetInfo, error) {
	rows, err := db.conn.Query(ctx, `
		SELECT ticker, name, sector
		FROM assets
		WHERE sector IS NOT NULL AND sector <> ''
		ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("query universe: %w", err)
	}
	defer rows.Close()

	var assets []types.AssetInfo
	for rows.Next() {
		var info types.AssetInfo
		if err := rows.Scan(&info.Ticker, &info.Name, &info.Sector); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assets, nil
}

// GetAssetInfo retrieves a single asset's attributes by ticker.
func (db *Database) GetAssetInfo(ctx context.Context, ticker string) (types.AssetInfo, error) {
	var info types.AssetInfo
	err := db.conn.QueryRow(ctx, `
		SELECT ticker, name, sector
		FROM assets
		WHERE ticker = $1`, ticker).Scan(&info.Ticker, &info.Name, &info.Sector)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.AssetInfo{}, fmt.Errorf("ticker %s %w", ticker, ErrAssetNotFound)
		}
		return types.AssetInfo{}, err
	}
	return info, nil
}
