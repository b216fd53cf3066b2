package swap

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/phantasma-io/go-phantasma/internal/core/number"
)

// maxRouteHops bounds route search; the pool graph is small and anything
// longer than four hops loses more to fees than it gains.
const maxRouteHops = 4

// poolGraph is an adjacency view over the current pools, neighbors sorted
// for deterministic traversal.
type poolGraph map[string][]string

func (c *Contract) buildGraph() (poolGraph, error) {
	pools, err := c.GetPools()
	if err != nil {
		return nil, err
	}
	g := make(poolGraph)
	for _, p := range pools {
		if p.Amount0.Sign() <= 0 || p.Amount1.Sign() <= 0 {
			continue
		}
		g[p.Symbol0] = append(g[p.Symbol0], p.Symbol1)
		g[p.Symbol1] = append(g[p.Symbol1], p.Symbol0)
	}
	for sym := range g {
		sort.Strings(g[sym])
	}
	return g, nil
}

// FastestRoute returns the route with the fewest hops between two symbols.
// Ties resolve to the lexicographically first path.
func (c *Contract) FastestRoute(fromSymbol, toSymbol string) (Route, error) {
	if fromSymbol == toSymbol {
		return nil, ErrSameSymbol
	}
	g, err := c.buildGraph()
	if err != nil {
		return nil, err
	}
	prev := map[string]string{fromSymbol: fromSymbol}
	frontier := []string{fromSymbol}
	for len(frontier) > 0 && prev[toSymbol] == "" {
		var next []string
		for _, sym := range frontier {
			for _, n := range g[sym] {
				if _, seen := prev[n]; seen {
					continue
				}
				prev[n] = sym
				next = append(next, n)
			}
		}
		frontier = next
	}
	if prev[toSymbol] == "" {
		return nil, fmt.Errorf("%w: %s to %s", ErrNoRoute, fromSymbol, toSymbol)
	}
	var route Route
	for sym := toSymbol; sym != fromSymbol; sym = prev[sym] {
		route = append(Route{{In: prev[sym], Out: sym}}, route...)
	}
	return route, nil
}

// BestRoute returns the route with the least summed price impact for a unit
// probe trade, bounded at maxRouteHops. A direct pool wins unless a longer
// route has strictly lower impact; remaining ties go to the shorter, then
// lexicographically first, route.
func (c *Contract) BestRoute(fromSymbol, toSymbol string) (Route, error) {
	if fromSymbol == toSymbol {
		return nil, ErrSameSymbol
	}
	g, err := c.buildGraph()
	if err != nil {
		return nil, err
	}
	maxDec := c.maxDecimals()
	probe := c.probeAmount(fromSymbol)

	var best Route
	var bestImpact *big.Int
	visited := map[string]bool{fromSymbol: true}
	var walk func(sym string, amount *big.Int, path Route, impact *big.Int) error
	walk = func(sym string, amount *big.Int, path Route, impact *big.Int) error {
		if sym == toSymbol {
			if better(impact, len(path), bestImpact, len(best)) {
				best = append(Route(nil), path...)
				bestImpact = new(big.Int).Set(impact)
			}
			return nil
		}
		if len(path) == maxRouteHops {
			return nil
		}
		for _, n := range g[sym] {
			if visited[n] {
				continue
			}
			pool, err := c.GetPool(sym, n)
			if err != nil {
				return err
			}
			hop, err := quoteHop(pool, sym, amount)
			if err != nil {
				continue // dust on this leg, skip the branch
			}
			reserveOut := pool.Amount1
			if sym != pool.Symbol0 {
				reserveOut = pool.Amount0
			}
			hopImpact := new(big.Int).Mul(hop.amountOut, number.Pow10(maxDec))
			hopImpact.Quo(hopImpact, reserveOut)

			visited[n] = true
			err = walk(n, hop.amountOut, append(path, RouteItem{In: sym, Out: n}),
				new(big.Int).Add(impact, hopImpact))
			visited[n] = false
			if err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(fromSymbol, probe, nil, new(big.Int)); err != nil {
		return nil, err
	}
	if best == nil {
		return nil, fmt.Errorf("%w: %s to %s", ErrNoRoute, fromSymbol, toSymbol)
	}
	return best, nil
}

// probeAmount is one whole token of the input symbol, used to rank routes by
// impact independent of trade size.
func (c *Contract) probeAmount(symbol string) *big.Int {
	if t, err := c.rt.Ledger().Get(symbol); err == nil {
		return number.Pow10(t.Decimals)
	}
	return big.NewInt(1)
}

func better(impact *big.Int, hops int, bestImpact *big.Int, bestHops int) bool {
	if bestImpact == nil {
		return true
	}
	switch impact.Cmp(bestImpact) {
	case -1:
		return true
	case 1:
		return false
	}
	return hops < bestHops
}
