package engine

import (
	"errors"
	"fmt"

	"github.com/PortBackRank/PortBackRank/types"
	"github.com/shopspring/decimal"
)

// Risk parameter names expected in a risk grid.
const (
	ParamProfit          = "profit"
	ParamLoss            = "loss"
	ParamDiversification = "diversification"
)

var ErrMissingRiskParam = errors.New("missing risk parameter")

// RiskConfig is the immutable risk configuration of one simulator run.
type RiskConfig struct {
	// Profit is the fractional gain at which a lot is sold, e.g. 0.1 = 10%.
	Profit decimal.Decimal
	// Loss is the fractional loss at which a lot is cut, as a positive
	// number, e.g. 0.05 sells at a 5% drawdown.
	Loss decimal.Decimal
	// Diversification caps the fraction of cost-basis portfolio value
	// allowed in any single sector.
	Diversification decimal.Decimal
}

// RiskConfigFromParams extracts a RiskConfig from one grid combination.
func RiskConfigFromParams(p types.Params) (RiskConfig, error) {
	var cfg RiskConfig
	for _, field := range []struct {
		name string
		dst  *decimal.Decimal
	}{
		{ParamProfit, &cfg.Profit},
		{ParamLoss, &cfg.Loss},
		{ParamDiversification, &cfg.Diversification},
	} {
		value, ok := p[field.name]
		if !ok {
			return RiskConfig{}, fmt.Errorf("%w: %s", ErrMissingRiskParam, field.name)
		}
		*field.dst = decimal.NewFromFloat(value)
	}
	return cfg, nil
}

func (c RiskConfig) params() types.Params {
	return types.Params{
		ParamProfit:          c.Profit.InexactFloat64(),
		ParamLoss:            c.Loss.InexactFloat64(),
		ParamDiversification: c.Diversification.InexactFloat64(),
	}
}
