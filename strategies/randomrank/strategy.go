// Package randomrank ranks the universe as a seeded pseudo-random
// permutation. It is the baseline strategy the grid search compares the
// real strategies against.
package randomrank

import (
	"errors"
	"math/rand"
	"time"

	"github.com/PortBackRank/PortBackRank/internal/engine"
	"github.com/PortBackRank/PortBackRank/types"
)

// ParamSeed selects the permutation; it comes from the strategy grid.
const ParamSeed = "seed"

var ErrMissingSeed = errors.New("randomrank: missing seed parameter")

type Ranker struct{}

func New() *Ranker {
	return &Ranker{}
}

// Rank returns a seeded pseudo-random permutation of the full universe. A
// local source is reseeded on every call, so the output depends only on the
// seed and universe, never on process-wide rand state or run order.
func (r *Ranker) Rank(_ time.Time, params types.Params, data engine.MarketData) ([]string, error) {
	seed, ok := params[ParamSeed]
	if !ok {
		return nil, ErrMissingSeed
	}

	symbols := append([]string(nil), data.Symbols()...)
	rng := rand.New(rand.NewSource(int64(seed)))
	rng.Shuffle(len(symbols), func(i, j int) {
		symbols[i], symbols[j] = symbols[j], symbols[i]
	})
	return symbols, nil
}
