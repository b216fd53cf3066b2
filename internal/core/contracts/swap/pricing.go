package swap

import (
	"fmt"
	"math/big"

	"github.com/phantasma-io/go-phantasma/internal/core/number"
	"github.com/phantasma-io/go-phantasma/internal/core/runtime"
	"github.com/phantasma-io/go-phantasma/internal/core/state"
	"github.com/phantasma-io/go-phantasma/internal/core/token"
	"github.com/phantasma-io/go-phantasma/internal/core/types"
)

const feeDenominator = 1000

// computeSwapOut returns the output of a constant-product swap with the
// pool's per-mille fee charged on the input, truncating in the pool's
// favor.
func computeSwapOut(reserveIn, reserveOut, amountIn *big.Int, feeRatio int64) *big.Int {
	inWithFee := new(big.Int).Mul(amountIn, big.NewInt(feeDenominator-feeRatio))
	num := new(big.Int).Mul(reserveOut, inWithFee)
	den := new(big.Int).Mul(reserveIn, big.NewInt(feeDenominator))
	den.Add(den, inWithFee)
	return num.Quo(num, den)
}

// computeSwapIn returns the input needed to withdraw amountOut, rounding up
// so the pool never underprices.
func computeSwapIn(reserveIn, reserveOut, amountOut *big.Int, feeRatio int64) *big.Int {
	num := new(big.Int).Mul(reserveIn, amountOut)
	num.Mul(num, big.NewInt(feeDenominator))
	den := new(big.Int).Sub(reserveOut, amountOut)
	den.Mul(den, big.NewInt(feeDenominator-feeRatio))
	return number.DivCeil(num, den)
}

// hopResult carries the state changes of one pool traversal before they are
// applied.
type hopResult struct {
	pool      *Pool
	inIsZero  bool // input token is the pool's Symbol0
	amountIn  *big.Int
	amountOut *big.Int
	fee       *big.Int
}

// quoteHop prices amountIn through the pool without touching state.
func quoteHop(pool *Pool, symbolIn string, amountIn *big.Int) (*hopResult, error) {
	inIsZero := symbolIn == pool.Symbol0
	reserveIn, reserveOut := pool.Amount0, pool.Amount1
	if !inIsZero {
		reserveIn, reserveOut = pool.Amount1, pool.Amount0
	}
	gross := new(big.Int).Mul(reserveOut, amountIn)
	gross.Quo(gross, new(big.Int).Add(reserveIn, amountIn))
	net := computeSwapOut(reserveIn, reserveOut, amountIn, pool.FeeRatio)
	if net.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s output rounds to zero", ErrDustSwap, pairKey(pool.Symbol0, pool.Symbol1))
	}
	return &hopResult{
		pool:      pool,
		inIsZero:  inIsZero,
		amountIn:  new(big.Int).Set(amountIn),
		amountOut: net,
		fee:       new(big.Int).Sub(gross, net),
	}, nil
}

// applyHop commits one traversal: moves reserves, carves the retained fee
// share out of the output reserve, credits liquidity providers and the pool
// owner, and persists the pool.
func (c *Contract) applyHop(hop *hopResult) error {
	pool := hop.pool
	retainPct := c.rt.GetGovernanceValue(runtime.GovExchangeDexDefaultFee)
	lpPct := c.rt.GetGovernanceValue(runtime.GovExchangeDexPoolPercent)

	retained := new(big.Int).Mul(hop.fee, big.NewInt(retainPct))
	retained.Quo(retained, big.NewInt(100))
	lpShare := new(big.Int).Mul(retained, big.NewInt(lpPct))
	lpShare.Quo(lpShare, big.NewInt(100))
	ownerShare := new(big.Int).Sub(retained, lpShare)

	outSymbol := pool.Symbol1
	if !hop.inIsZero {
		outSymbol = pool.Symbol0
	}

	distributed, err := c.distributeFees(pool, !hop.inIsZero, lpShare)
	if err != nil {
		return err
	}
	if ownerShare.Sign() > 0 {
		if err := c.rt.Ledger().Transfer(outSymbol, Address, pool.Owner, ownerShare); err != nil {
			return err
		}
	}

	carved := new(big.Int).Add(distributed, ownerShare)
	if hop.inIsZero {
		pool.Amount0 = new(big.Int).Add(pool.Amount0, hop.amountIn)
		pool.Amount1 = new(big.Int).Sub(pool.Amount1, hop.amountOut)
		pool.Amount1.Sub(pool.Amount1, carved)
		pool.FeesForUsers1 = new(big.Int).Add(pool.FeesForUsers1, distributed)
		pool.FeesForOwner1 = new(big.Int).Add(pool.FeesForOwner1, ownerShare)
		if pool.Amount1.Sign() <= 0 {
			return fmt.Errorf("%w: %s", ErrReserveDrained, pairKey(pool.Symbol0, pool.Symbol1))
		}
	} else {
		pool.Amount1 = new(big.Int).Add(pool.Amount1, hop.amountIn)
		pool.Amount0 = new(big.Int).Sub(pool.Amount0, hop.amountOut)
		pool.Amount0.Sub(pool.Amount0, carved)
		pool.FeesForUsers0 = new(big.Int).Add(pool.FeesForUsers0, distributed)
		pool.FeesForOwner0 = new(big.Int).Add(pool.FeesForOwner0, ownerShare)
		if pool.Amount0.Sign() <= 0 {
			return fmt.Errorf("%w: %s", ErrReserveDrained, pairKey(pool.Symbol0, pool.Symbol1))
		}
	}
	c.putPool(pool)
	c.recordVolume(pool, hop)
	return nil
}

// distributeFees splits an LP fee share pro rata over holder records by the
// liquidity each position carries. Records whose NFT no longer exists are
// skipped; the undistributed remainder stays in the reserve.
func (c *Contract) distributeFees(pool *Pool, side0 bool, share *big.Int) (*big.Int, error) {
	distributed := new(big.Int)
	if share.Sign() <= 0 || pool.TotalLiquidity.Sign() <= 0 {
		return distributed, nil
	}
	holders := c.holders(pairKey(pool.Symbol0, pool.Symbol1))
	keys, err := holders.Keys()
	if err != nil {
		return nil, err
	}
	ledger := c.rt.Ledger()
	for _, k := range keys {
		raw, err := holders.Get(k)
		if err != nil {
			return nil, err
		}
		rec, err := deserializeHolder(raw)
		if err != nil {
			return nil, err
		}
		if !ledger.NFTExists(LPSeries, rec.NFTID) {
			continue
		}
		nft, err := ledger.ReadNFT(LPSeries, rec.NFTID)
		if err != nil {
			return nil, err
		}
		ram, err := deserializeLPRAM(nft.RAM)
		if err != nil {
			return nil, err
		}
		cut := new(big.Int).Mul(share, ram.Liquidity)
		cut.Quo(cut, pool.TotalLiquidity)
		if cut.Sign() <= 0 {
			continue
		}
		if side0 {
			rec.Unclaimed0.Add(rec.Unclaimed0, cut)
		} else {
			rec.Unclaimed1.Add(rec.Unclaimed1, cut)
		}
		holders.Put(k, serializeHolder(rec))
		distributed.Add(distributed, cut)
	}
	return distributed, nil
}

// recordVolume accumulates per-day traded amounts for the pool, both sides
// in their native units.
func (c *Contract) recordVolume(pool *Pool, hop *hopResult) {
	t := c.rt.Time()
	day := uint32(t.Year()*10000 + int(t.Month())*100 + t.Day())
	pair := pairKey(pool.Symbol0, pool.Symbol1)
	volumes := state.NewMap(c.rt.State(), "swap/volume/"+pair)
	key := state.Uint64Key(uint64(day))

	vol := &DayVolume{Day: day, Volume0: new(big.Int), Volume1: new(big.Int)}
	if raw, err := volumes.Get(key); err == nil && raw != nil {
		if prev, err := deserializeVolume(raw); err == nil {
			vol = prev
		}
	}
	if hop.inIsZero {
		vol.Volume0.Add(vol.Volume0, hop.amountIn)
		vol.Volume1.Add(vol.Volume1, hop.amountOut)
	} else {
		vol.Volume1.Add(vol.Volume1, hop.amountIn)
		vol.Volume0.Add(vol.Volume0, hop.amountOut)
	}
	volumes.Put(key, serializeVolume(vol))
}

// SwapTokens trades an exact input along the lowest-impact route between the
// two symbols. Returns the amount received.
func (c *Contract) SwapTokens(from types.Address, fromSymbol, toSymbol string, amount *big.Int) (*big.Int, error) {
	if err := c.rt.ExpectWitness(from); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	route, err := c.BestRoute(fromSymbol, toSymbol)
	if err != nil {
		return nil, err
	}
	return c.swapAlong(from, route, amount)
}

// swapAlong executes a priced route: the input leaves the caller once, each
// pool is traversed in order, and the final output is paid out.
func (c *Contract) swapAlong(from types.Address, route Route, amount *big.Int) (*big.Int, error) {
	ledger := c.rt.Ledger()
	if err := ledger.Transfer(route[0].In, from, Address, amount); err != nil {
		return nil, err
	}
	current := amount
	for _, leg := range route {
		pool, err := c.GetPool(leg.In, leg.Out)
		if err != nil {
			return nil, err
		}
		hop, err := quoteHop(pool, leg.In, current)
		if err != nil {
			return nil, err
		}
		if err := c.applyHop(hop); err != nil {
			return nil, err
		}
		current = hop.amountOut
	}
	out := route[len(route)-1].Out
	if err := ledger.Transfer(out, Address, from, current); err != nil {
		return nil, err
	}
	c.rt.Notify(runtime.EventTokenSwap, from, Name, serializeSwapEvent(route[0].In, out, amount, current))
	return current, nil
}

// SwapReverse trades for an exact output through the direct pool, charging
// whatever input the current reserves demand. Returns the input spent.
func (c *Contract) SwapReverse(from types.Address, fromSymbol, toSymbol string, desired *big.Int) (*big.Int, error) {
	if err := c.rt.ExpectWitness(from); err != nil {
		return nil, err
	}
	if desired == nil || desired.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	pool, err := c.GetPool(fromSymbol, toSymbol)
	if err != nil {
		return nil, err
	}
	reserveIn, reserveOut := pool.Amount0, pool.Amount1
	if fromSymbol != pool.Symbol0 {
		reserveIn, reserveOut = pool.Amount1, pool.Amount0
	}
	if desired.Cmp(reserveOut) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrReserveDrained, pairKey(fromSymbol, toSymbol))
	}
	amountIn := computeSwapIn(reserveIn, reserveOut, desired, pool.FeeRatio)
	if amountIn.Sign() <= 0 {
		return nil, ErrDustSwap
	}
	route := Route{{In: fromSymbol, Out: toSymbol}}
	if _, err := c.swapAlong(from, route, amountIn); err != nil {
		return nil, err
	}
	return amountIn, nil
}

// SwapFee converts just enough of the caller's tokens into fuel to cover a
// fee, routing through the staking token when no direct fuel pool exists.
// Returns the input spent.
func (c *Contract) SwapFee(from types.Address, fromSymbol string, feeAmount *big.Int) (*big.Int, error) {
	if err := c.rt.ExpectWitness(from); err != nil {
		return nil, err
	}
	if fromSymbol == token.FuelSymbol {
		return nil, fmt.Errorf("%w: already holding %s", ErrSameSymbol, token.FuelSymbol)
	}
	fuel, err := c.rt.Ledger().Get(token.FuelSymbol)
	if err != nil {
		return nil, err
	}
	minimum := number.MinimumQuantity(fuel.Decimals)
	target := feeAmount
	if target == nil || target.Cmp(minimum) < 0 {
		target = minimum
	}

	var route Route
	if c.PoolExists(fromSymbol, token.FuelSymbol) {
		route = Route{{In: fromSymbol, Out: token.FuelSymbol}}
	} else if fromSymbol != token.StakingSymbol &&
		c.PoolExists(fromSymbol, token.StakingSymbol) &&
		c.PoolExists(token.StakingSymbol, token.FuelSymbol) {
		route = Route{
			{In: fromSymbol, Out: token.StakingSymbol},
			{In: token.StakingSymbol, Out: token.FuelSymbol},
		}
	} else {
		return nil, fmt.Errorf("%w: %s to %s", ErrNoRoute, fromSymbol, token.FuelSymbol)
	}

	// Work the target backwards through the route to size the input.
	needed := target
	for i := len(route) - 1; i >= 0; i-- {
		pool, err := c.GetPool(route[i].In, route[i].Out)
		if err != nil {
			return nil, err
		}
		reserveIn, reserveOut := pool.Amount0, pool.Amount1
		if route[i].In != pool.Symbol0 {
			reserveIn, reserveOut = pool.Amount1, pool.Amount0
		}
		if needed.Cmp(reserveOut) >= 0 {
			return nil, fmt.Errorf("%w: %s", ErrReserveDrained, pairKey(route[i].In, route[i].Out))
		}
		needed = computeSwapIn(reserveIn, reserveOut, needed, pool.FeeRatio)
	}
	if needed.Sign() <= 0 {
		return nil, ErrDustSwap
	}
	if _, err := c.swapAlong(from, route, needed); err != nil {
		return nil, err
	}
	return needed, nil
}

// GetRate simulates a swap along the lowest-impact route without mutating
// state.
func (c *Contract) GetRate(fromSymbol, toSymbol string, amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	route, err := c.BestRoute(fromSymbol, toSymbol)
	if err != nil {
		return nil, err
	}
	current := amount
	for _, leg := range route {
		pool, err := c.GetPool(leg.In, leg.Out)
		if err != nil {
			return nil, err
		}
		hop, err := quoteHop(pool, leg.In, current)
		if err != nil {
			return nil, err
		}
		current = hop.amountOut
	}
	return current, nil
}

// GetTradingVolume returns one pool's recorded volume for a day, zero if
// none was recorded.
func (c *Contract) GetTradingVolume(symbolA, symbolB string, day uint32) (*DayVolume, error) {
	pool, err := c.GetPool(symbolA, symbolB)
	if err != nil {
		return nil, err
	}
	pair := pairKey(pool.Symbol0, pool.Symbol1)
	raw, err := state.NewMap(c.rt.State(), "swap/volume/"+pair).Get(state.Uint64Key(uint64(day)))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return &DayVolume{Day: day, Volume0: new(big.Int), Volume1: new(big.Int)}, nil
	}
	return deserializeVolume(raw)
}

// GetTradingVolumes returns every recorded day for a pool, ascending.
func (c *Contract) GetTradingVolumes(symbolA, symbolB string) ([]*DayVolume, error) {
	pool, err := c.GetPool(symbolA, symbolB)
	if err != nil {
		return nil, err
	}
	pair := pairKey(pool.Symbol0, pool.Symbol1)
	volumes := state.NewMap(c.rt.State(), "swap/volume/"+pair)
	keys, err := volumes.Keys()
	if err != nil {
		return nil, err
	}
	out := make([]*DayVolume, 0, len(keys))
	for _, k := range keys {
		raw, err := volumes.Get(k)
		if err != nil {
			return nil, err
		}
		v, err := deserializeVolume(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func serializeSwapEvent(in, out string, amountIn, amountOut *big.Int) []byte {
	w := types.NewWriter()
	w.WriteString(in)
	w.WriteString(out)
	w.WriteBigInt(amountIn)
	w.WriteBigInt(amountOut)
	return w.Bytes()
}
