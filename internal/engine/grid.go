package engine

import (
	"sort"

	"github.com/PortBackRank/PortBackRank/types"
)

// ExpandGrid returns one Params per combination of the grid's values. The
// expansion is deterministic: names are iterated in sorted order, values in
// the order the grid lists them. An empty grid yields a single empty
// combination; a name with no values yields no combinations at all.
func ExpandGrid(grid types.Grid) []types.Params {
	names := make([]string, 0, len(grid))
	for name := range grid {
		names = append(names, name)
	}
	sort.Strings(names)

	combos := []types.Params{{}}
	for _, name := range names {
		values := grid[name]
		next := make([]types.Params, 0, len(combos)*len(values))
		for _, combo := range combos {
			for _, value := range values {
				expanded := combo.Clone()
				expanded[name] = value
				next = append(next, expanded)
			}
		}
		combos = next
	}
	return combos
}
