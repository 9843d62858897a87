package route

import (
	"sort"

	"cross-chain-flow/pkg/types"
)

// Rank returns the routes ordered by expected output, highest first. Routes with
// equal output keep their arrival order; unparseable outputs rank as zero.
func Rank(routes []types.Route) []types.Route {
	ranked := make([]types.Route, len(routes))
	copy(ranked, routes)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ParseAmount(ranked[i].ExpectedOutput).GreaterThan(ParseAmount(ranked[j].ExpectedOutput))
	})

	return ranked
}

// Best returns the first route of an already ranked list, or nil if there is none
func Best(ranked []types.Route) *types.Route {
	if len(ranked) == 0 {
		return nil
	}
	best := ranked[0]
	return &best
}
