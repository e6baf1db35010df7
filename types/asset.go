package types

// AssetInfo holds the static attributes of one asset in the universe.
// Sector is the label the diversification constraint groups by.
type AssetInfo struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
}
