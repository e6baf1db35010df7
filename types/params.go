package types

// Params is one concrete parameter assignment for a single simulation run,
// e.g. {"profit": 0.1, "loss": 0.05, "diversification": 0.2} or
// {"seed": 42}.
type Params map[string]float64

// Clone returns an independent copy of the parameter set.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for name, value := range p {
		out[name] = value
	}
	return out
}

// Grid maps a parameter name to its candidate values. The Cartesian product
// across all names defines one Params per combination.
type Grid map[string][]float64
