// Package swap implements the AMM side of the DEX: constant-product
// liquidity pools keyed by unordered symbol pairs, NFT-encoded liquidity
// positions with pro-rata fee accrual, multi-hop routing across the pool
// graph, and the fee-to-fuel conversion used by transaction fee payment.
package swap

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/phantasma-io/go-phantasma/internal/core/number"
	"github.com/phantasma-io/go-phantasma/internal/core/runtime"
	"github.com/phantasma-io/go-phantasma/internal/core/state"
	"github.com/phantasma-io/go-phantasma/internal/core/token"
	"github.com/phantasma-io/go-phantasma/internal/core/types"
)

// Name is the registered native-contract name.
const Name = "swap"

// Address holds all pool reserves and accrued fees.
var Address = types.ContractAddress(Name)

// LPSeries is the NFT series encoding liquidity positions.
const LPSeries = "LP"

// defaultFeeRatio is the per-mille swap fee of newly created pools.
const defaultFeeRatio = 3

// Contract is the swap native contract bound to one transaction.
type Contract struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Contract {
	return &Contract{rt: rt}
}

func (c *Contract) pools() state.Map {
	return state.NewMap(c.rt.State(), "swap/pools")
}

func (c *Contract) holders(pair string) state.Map {
	return state.NewMap(c.rt.State(), "swap/holders/"+pair)
}

func (c *Contract) maxDecimals() int {
	return int(c.rt.GetGovernanceValue(runtime.GovMaxTokenDecimals))
}

// GetPool returns the pool for an unordered pair.
func (c *Contract) GetPool(symbolA, symbolB string) (*Pool, error) {
	raw, err := c.pools().Get([]byte(pairKey(symbolA, symbolB)))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, pairKey(symbolA, symbolB))
	}
	return deserializePool(raw)
}

// PoolExists reports whether a pool exists for the pair.
func (c *Contract) PoolExists(symbolA, symbolB string) bool {
	ok, err := c.pools().Has([]byte(pairKey(symbolA, symbolB)))
	return err == nil && ok
}

// GetPools returns every pool, ordered by pair key.
func (c *Contract) GetPools() ([]*Pool, error) {
	keys, err := c.pools().Keys()
	if err != nil {
		return nil, err
	}
	out := make([]*Pool, 0, len(keys))
	for _, k := range keys {
		raw, err := c.pools().Get(k)
		if err != nil {
			return nil, err
		}
		p, err := deserializePool(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *Contract) putPool(p *Pool) {
	c.pools().Put([]byte(pairKey(p.Symbol0, p.Symbol1)), serializePool(p))
}

func (c *Contract) deletePool(p *Pool) {
	c.pools().Delete([]byte(pairKey(p.Symbol0, p.Symbol1)))
	c.rt.Notify(runtime.EventPoolDeleted, p.Owner, Name, serializePool(p))
}

// CreatePool opens a pool for the pair, funded by the creator. When both
// amounts are given and both tokens have oracle quotes, the implied trade
// ratio must match the oracle ratio. A single zero amount is derived from
// the quotes.
func (c *Contract) CreatePool(creator types.Address, symbolA string, amountA *big.Int, symbolB string, amountB *big.Int) error {
	if err := c.rt.ExpectWitness(creator); err != nil {
		return err
	}
	if symbolA == symbolB {
		return ErrSameSymbol
	}
	ledger := c.rt.Ledger()
	tokenA, err := poolableToken(ledger, symbolA)
	if err != nil {
		return err
	}
	tokenB, err := poolableToken(ledger, symbolB)
	if err != nil {
		return err
	}
	if c.PoolExists(symbolA, symbolB) {
		return fmt.Errorf("%w: %s", ErrPoolExists, pairKey(symbolA, symbolB))
	}

	// Canonical ordering from here on.
	symbol0, symbol1 := sortPair(symbolA, symbolB)
	amount0, amount1 := amountA, amountB
	token0, token1 := tokenA, tokenB
	if symbol0 != symbolA {
		amount0, amount1 = amountB, amountA
		token0, token1 = tokenB, tokenA
	}
	if amount0 == nil {
		amount0 = new(big.Int)
	}
	if amount1 == nil {
		amount1 = new(big.Int)
	}
	if amount0.Sign() < 0 || amount1.Sign() < 0 || (amount0.Sign() == 0 && amount1.Sign() == 0) {
		return ErrInvalidAmount
	}

	price0, ok0 := c.rt.Oracle().Price(symbol0)
	price1, ok1 := c.rt.Oracle().Price(symbol1)

	switch {
	case amount0.Sign() > 0 && amount1.Sign() > 0:
		if ok0 && ok1 {
			if err := c.checkOracleRatio(amount0, token0.Decimals, price0, amount1, token1.Decimals, price1); err != nil {
				return err
			}
		}
	case amount0.Sign() == 0:
		if !ok0 || !ok1 {
			return fmt.Errorf("%w: cannot derive %s amount", ErrNoQuote, symbol0)
		}
		amount0 = deriveAmount(amount1, token1.Decimals, price1, token0.Decimals, price0)
	default:
		if !ok0 || !ok1 {
			return fmt.Errorf("%w: cannot derive %s amount", ErrNoQuote, symbol1)
		}
		amount1 = deriveAmount(amount0, token0.Decimals, price0, token1.Decimals, price1)
	}
	if amount0.Sign() <= 0 || amount1.Sign() <= 0 {
		return ErrInvalidAmount
	}

	// Liquidity units live at the chain's maximum precision.
	maxDec := c.maxDecimals()
	s0 := number.ConvertDecimals(amount0, token0.Decimals, maxDec)
	s1 := number.ConvertDecimals(amount1, token1.Decimals, maxDec)
	liquidity := number.Sqrt(new(big.Int).Mul(s0, s1))
	if liquidity.Sign() <= 0 {
		return ErrInvalidAmount
	}

	if err := ledger.Transfer(symbol0, creator, Address, amount0); err != nil {
		return err
	}
	if err := ledger.Transfer(symbol1, creator, Address, amount1); err != nil {
		return err
	}

	pool := &Pool{
		Symbol0:        symbol0,
		Symbol1:        symbol1,
		Address0:       types.TokenContractAddress(symbol0),
		Address1:       types.TokenContractAddress(symbol1),
		Amount0:        amount0,
		Amount1:        amount1,
		FeeRatio:       defaultFeeRatio,
		FeesForUsers0:  new(big.Int),
		FeesForUsers1:  new(big.Int),
		FeesForOwner0:  new(big.Int),
		FeesForOwner1:  new(big.Int),
		TotalLiquidity: liquidity,
		Owner:          creator,
	}
	c.putPool(pool)

	if err := c.mintPosition(creator, pool, amount0, amount1, liquidity); err != nil {
		return err
	}
	c.rt.Notify(runtime.EventPoolCreated, creator, Name, serializePool(pool))
	return nil
}

// checkOracleRatio validates the supplied trade ratio against the
// oracle-implied one. Both sides are rounded to half the maximum decimal
// precision, ties away from zero; the rounding sequence is deliberate and
// must not be consolidated with the reserve-ratio check below.
func (c *Contract) checkOracleRatio(amount0 *big.Int, dec0 int, price0 decimal.Decimal, amount1 *big.Int, dec1 int, price1 decimal.Decimal) error {
	if price0.IsZero() || price1.IsZero() {
		return nil
	}
	halfPrec := int32(c.maxDecimals() / 2)
	whole0 := decimal.NewFromBigInt(amount0, -int32(dec0))
	whole1 := decimal.NewFromBigInt(amount1, -int32(dec1))
	tradeRatio := whole0.Div(whole1).Round(halfPrec)
	oracleRatio := price1.Div(price0).Round(halfPrec)
	if !tradeRatio.Equal(oracleRatio) {
		return fmt.Errorf("%w: supplied %s vs oracle %s", ErrRatioMismatch, tradeRatio, oracleRatio)
	}
	return nil
}

// deriveAmount computes the missing pool side so both deposits carry equal
// oracle value.
func deriveAmount(amount *big.Int, dec int, price decimal.Decimal, otherDec int, otherPrice decimal.Decimal) *big.Int {
	whole := decimal.NewFromBigInt(amount, -int32(dec))
	otherWhole := whole.Mul(price).Div(otherPrice)
	return otherWhole.Shift(int32(otherDec)).Truncate(0).BigInt()
}

// AddLiquidity deposits into an existing pool at its current reserve ratio.
// A single zero amount is derived from the ratio; a supplied pair that does
// not match the ratio aborts.
func (c *Contract) AddLiquidity(from types.Address, symbolA string, amountA *big.Int, symbolB string, amountB *big.Int) error {
	if err := c.rt.ExpectWitness(from); err != nil {
		return err
	}
	pool, err := c.GetPool(symbolA, symbolB)
	if err != nil {
		return err
	}
	ledger := c.rt.Ledger()
	token0, err := ledger.Get(pool.Symbol0)
	if err != nil {
		return err
	}
	token1, err := ledger.Get(pool.Symbol1)
	if err != nil {
		return err
	}

	amount0, amount1, err := c.normalizeRatio(pool, token0, token1, symbolA, amountA, symbolB, amountB)
	if err != nil {
		return err
	}

	maxDec := c.maxDecimals()
	s0 := number.ConvertDecimals(amount0, token0.Decimals, maxDec)
	sp0 := number.ConvertDecimals(pool.Amount0, token0.Decimals, maxDec)
	liquidity := new(big.Int).Mul(s0, pool.TotalLiquidity)
	liquidity.Quo(liquidity, sp0)
	if liquidity.Sign() <= 0 {
		return ErrInvalidAmount
	}

	if err := ledger.Transfer(pool.Symbol0, from, Address, amount0); err != nil {
		return err
	}
	if err := ledger.Transfer(pool.Symbol1, from, Address, amount1); err != nil {
		return err
	}

	pool.Amount0 = new(big.Int).Add(pool.Amount0, amount0)
	pool.Amount1 = new(big.Int).Add(pool.Amount1, amount1)
	pool.TotalLiquidity = new(big.Int).Add(pool.TotalLiquidity, liquidity)
	c.putPool(pool)

	nftID, ram, err := c.findPosition(from, pool.Symbol0, pool.Symbol1)
	if err != nil {
		return err
	}
	if ram == nil {
		if err := c.mintPosition(from, pool, amount0, amount1, liquidity); err != nil {
			return err
		}
	} else {
		ram.Amount0.Add(ram.Amount0, amount0)
		ram.Amount1.Add(ram.Amount1, amount1)
		ram.Liquidity.Add(ram.Liquidity, liquidity)
		if err := ledger.WriteNFTRAM(LPSeries, nftID, serializeLPRAM(ram)); err != nil {
			return err
		}
	}
	c.rt.Notify(runtime.EventLiquidityAdded, from, Name, serializePool(pool))
	return nil
}

// RemoveLiquidity withdraws from a pool at its current reserve ratio. A full
// withdrawal claims outstanding fees, burns the position NFT and removes the
// holder record; a drained pool is deleted.
func (c *Contract) RemoveLiquidity(from types.Address, symbolA string, amountA *big.Int, symbolB string, amountB *big.Int) error {
	if err := c.rt.ExpectWitness(from); err != nil {
		return err
	}
	pool, err := c.GetPool(symbolA, symbolB)
	if err != nil {
		return err
	}
	ledger := c.rt.Ledger()
	token0, err := ledger.Get(pool.Symbol0)
	if err != nil {
		return err
	}
	token1, err := ledger.Get(pool.Symbol1)
	if err != nil {
		return err
	}

	nftID, ram, err := c.findPosition(from, pool.Symbol0, pool.Symbol1)
	if err != nil {
		return err
	}
	if ram == nil {
		return fmt.Errorf("%w: %s in %s", ErrPositionNotFound, from, pairKey(symbolA, symbolB))
	}

	amount0, amount1, err := c.normalizeRatio(pool, token0, token1, symbolA, amountA, symbolB, amountB)
	if err != nil {
		return err
	}
	if pool.Amount0.Cmp(amount0) < 0 || pool.Amount1.Cmp(amount1) < 0 {
		return fmt.Errorf("%w: withdrawal exceeds reserves", ErrReserveDrained)
	}

	maxDec := c.maxDecimals()
	s0 := number.ConvertDecimals(amount0, token0.Decimals, maxDec)
	sp0 := number.ConvertDecimals(pool.Amount0, token0.Decimals, maxDec)
	liquidity := new(big.Int).Mul(s0, pool.TotalLiquidity)
	liquidity.Quo(liquidity, sp0)
	if liquidity.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if ram.Liquidity.Cmp(liquidity) < 0 {
		return fmt.Errorf("%w: has %v units, removing %v", ErrInsufficientStake, ram.Liquidity, liquidity)
	}

	if err := ledger.Transfer(pool.Symbol0, Address, from, amount0); err != nil {
		return err
	}
	if err := ledger.Transfer(pool.Symbol1, Address, from, amount1); err != nil {
		return err
	}

	pool.Amount0 = new(big.Int).Sub(pool.Amount0, amount0)
	pool.Amount1 = new(big.Int).Sub(pool.Amount1, amount1)
	pool.TotalLiquidity = new(big.Int).Sub(pool.TotalLiquidity, liquidity)

	ram.Liquidity = new(big.Int).Sub(ram.Liquidity, liquidity)
	ram.Amount0 = subFloor(ram.Amount0, amount0)
	ram.Amount1 = subFloor(ram.Amount1, amount1)

	if ram.Liquidity.Sign() == 0 {
		if err := c.settlePosition(from, pool, nftID, ram); err != nil {
			return err
		}
	} else {
		if err := ledger.WriteNFTRAM(LPSeries, nftID, serializeLPRAM(ram)); err != nil {
			return err
		}
	}

	if pool.Amount0.Sign() == 0 || pool.Amount1.Sign() == 0 {
		c.deletePool(pool)
	} else {
		c.putPool(pool)
	}
	c.rt.Notify(runtime.EventLiquidityRemoved, from, Name, serializePool(pool))
	return nil
}

// normalizeRatio maps the caller's (symbol, amount) pairs onto the pool's
// canonical order, derives a missing side from the reserve ratio, and
// validates fully supplied pairs against the reserves. Rescaling here
// truncates; the rounding sequence differs from the oracle check on purpose.
func (c *Contract) normalizeRatio(pool *Pool, token0, token1 *token.Token, symbolA string, amountA *big.Int, symbolB string, amountB *big.Int) (*big.Int, *big.Int, error) {
	amount0, amount1 := amountA, amountB
	if symbolA != pool.Symbol0 {
		amount0, amount1 = amountB, amountA
	}
	if amount0 == nil {
		amount0 = new(big.Int)
	}
	if amount1 == nil {
		amount1 = new(big.Int)
	}
	if amount0.Sign() < 0 || amount1.Sign() < 0 || (amount0.Sign() == 0 && amount1.Sign() == 0) {
		return nil, nil, ErrInvalidAmount
	}

	maxDec := c.maxDecimals()
	sp0 := number.ConvertDecimals(pool.Amount0, token0.Decimals, maxDec)
	sp1 := number.ConvertDecimals(pool.Amount1, token1.Decimals, maxDec)

	derived := false
	if amount0.Sign() == 0 {
		s1 := number.ConvertDecimals(amount1, token1.Decimals, maxDec)
		s0 := new(big.Int).Mul(s1, sp0)
		s0.Quo(s0, sp1)
		amount0 = number.ConvertDecimals(s0, maxDec, token0.Decimals)
		derived = true
	} else if amount1.Sign() == 0 {
		s0 := number.ConvertDecimals(amount0, token0.Decimals, maxDec)
		s1 := new(big.Int).Mul(s0, sp1)
		s1.Quo(s1, sp0)
		amount1 = number.ConvertDecimals(s1, maxDec, token1.Decimals)
		derived = true
	}
	if amount0.Sign() <= 0 || amount1.Sign() <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	// A derived side already sits on the reserve ratio up to decimal
	// truncation, which the equality below cannot absorb. Only
	// caller-supplied pairs are checked against the reserves.
	if derived {
		return amount0, amount1, nil
	}

	s0 := number.ConvertDecimals(amount0, token0.Decimals, maxDec)
	s1 := number.ConvertDecimals(amount1, token1.Decimals, maxDec)
	scale := number.Pow10(maxDec)
	userRatio := new(big.Int).Mul(s0, scale)
	userRatio.Quo(userRatio, s1)
	poolRatio := new(big.Int).Mul(sp0, scale)
	poolRatio.Quo(poolRatio, sp1)
	if userRatio.Cmp(poolRatio) != 0 {
		return nil, nil, fmt.Errorf("%w: supplied %v vs pool %v", ErrRatioMismatch, userRatio, poolRatio)
	}
	return amount0, amount1, nil
}

// mintPosition creates the liquidity NFT and holder record for a provider's
// first deposit into a pool.
func (c *Contract) mintPosition(holder types.Address, pool *Pool, amount0, amount1, liquidity *big.Int) error {
	id, err := c.rt.GenerateUID()
	if err != nil {
		return err
	}
	rom := &LPContentROM{Symbol0: pool.Symbol0, Symbol1: pool.Symbol1, ID: id}
	ram := &LPContentRAM{
		Amount0:      new(big.Int).Set(amount0),
		Amount1:      new(big.Int).Set(amount1),
		Liquidity:    new(big.Int).Set(liquidity),
		ClaimedFees0: new(big.Int),
		ClaimedFees1: new(big.Int),
	}
	if err := c.rt.Ledger().MintNFT(LPSeries, id, holder, serializeLPROM(rom), serializeLPRAM(ram)); err != nil {
		return err
	}
	rec := &HolderRecord{
		NFTID:      id,
		Unclaimed0: new(big.Int),
		Unclaimed1: new(big.Int),
		Claimed0:   new(big.Int),
		Claimed1:   new(big.Int),
	}
	c.holders(pairKey(pool.Symbol0, pool.Symbol1)).Put(state.Uint64Key(id), serializeHolder(rec))
	return nil
}

// findPosition locates the holder's liquidity NFT for a pair, if any.
// One visible position per holder per pool is enforced by this lookup.
func (c *Contract) findPosition(holder types.Address, symbol0, symbol1 string) (uint64, *LPContentRAM, error) {
	ids, err := c.rt.Ledger().NFTsOf(LPSeries, holder)
	if err != nil {
		return 0, nil, err
	}
	for _, id := range ids {
		nft, err := c.rt.Ledger().ReadNFT(LPSeries, id)
		if err != nil {
			return 0, nil, err
		}
		rom, err := deserializeLPROM(nft.ROM)
		if err != nil {
			return 0, nil, err
		}
		if rom.Symbol0 == symbol0 && rom.Symbol1 == symbol1 {
			ram, err := deserializeLPRAM(nft.RAM)
			if err != nil {
				return 0, nil, err
			}
			return id, ram, nil
		}
	}
	return 0, nil, nil
}

// settlePosition pays outstanding fees, burns the NFT and drops the holder
// record. Used on full withdrawal and explicit burn.
func (c *Contract) settlePosition(holder types.Address, pool *Pool, nftID uint64, ram *LPContentRAM) error {
	pair := pairKey(pool.Symbol0, pool.Symbol1)
	if err := c.payoutFees(holder, pool, nftID, ram); err != nil {
		return err
	}
	if err := c.rt.Ledger().BurnNFT(LPSeries, nftID); err != nil {
		return err
	}
	c.holders(pair).Delete(state.Uint64Key(nftID))
	return nil
}

// ClaimFees pays the caller's accrued pool fees out.
func (c *Contract) ClaimFees(from types.Address, symbolA, symbolB string) error {
	if err := c.rt.ExpectWitness(from); err != nil {
		return err
	}
	pool, err := c.GetPool(symbolA, symbolB)
	if err != nil {
		return err
	}
	nftID, ram, err := c.findPosition(from, pool.Symbol0, pool.Symbol1)
	if err != nil {
		return err
	}
	if ram == nil {
		return fmt.Errorf("%w: %s in %s", ErrPositionNotFound, from, pairKey(symbolA, symbolB))
	}
	if err := c.payoutFees(from, pool, nftID, ram); err != nil {
		return err
	}
	return c.rt.Ledger().WriteNFTRAM(LPSeries, nftID, serializeLPRAM(ram))
}

// payoutFees moves a holder's unclaimed fees to their address and records
// them as claimed on both the holder record and the NFT RAM.
func (c *Contract) payoutFees(holder types.Address, pool *Pool, nftID uint64, ram *LPContentRAM) error {
	pair := pairKey(pool.Symbol0, pool.Symbol1)
	raw, err := c.holders(pair).Get(state.Uint64Key(nftID))
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	rec, err := deserializeHolder(raw)
	if err != nil {
		return err
	}
	ledger := c.rt.Ledger()
	if rec.Unclaimed0.Sign() > 0 {
		if err := ledger.Transfer(pool.Symbol0, Address, holder, rec.Unclaimed0); err != nil {
			return err
		}
	}
	if rec.Unclaimed1.Sign() > 0 {
		if err := ledger.Transfer(pool.Symbol1, Address, holder, rec.Unclaimed1); err != nil {
			return err
		}
	}
	if rec.Unclaimed0.Sign() > 0 || rec.Unclaimed1.Sign() > 0 {
		c.rt.Notify(runtime.EventFeesClaimed, holder, Name, serializeHolder(rec))
	}
	rec.Claimed0.Add(rec.Claimed0, rec.Unclaimed0)
	rec.Claimed1.Add(rec.Claimed1, rec.Unclaimed1)
	ram.ClaimedFees0.Add(ram.ClaimedFees0, rec.Unclaimed0)
	ram.ClaimedFees1.Add(ram.ClaimedFees1, rec.Unclaimed1)
	rec.Unclaimed0 = new(big.Int)
	rec.Unclaimed1 = new(big.Int)
	c.holders(pair).Put(state.Uint64Key(nftID), serializeHolder(rec))
	return nil
}

// GetUnclaimedFees returns the caller's pending fees per side.
func (c *Contract) GetUnclaimedFees(holder types.Address, symbolA, symbolB string) (*big.Int, *big.Int, error) {
	pool, err := c.GetPool(symbolA, symbolB)
	if err != nil {
		return nil, nil, err
	}
	nftID, ram, err := c.findPosition(holder, pool.Symbol0, pool.Symbol1)
	if err != nil {
		return nil, nil, err
	}
	if ram == nil {
		return nil, nil, fmt.Errorf("%w: %s in %s", ErrPositionNotFound, holder, pairKey(symbolA, symbolB))
	}
	raw, err := c.holders(pairKey(pool.Symbol0, pool.Symbol1)).Get(state.Uint64Key(nftID))
	if err != nil {
		return nil, nil, err
	}
	if raw == nil {
		return new(big.Int), new(big.Int), nil
	}
	rec, err := deserializeHolder(raw)
	if err != nil {
		return nil, nil, err
	}
	return rec.Unclaimed0, rec.Unclaimed1, nil
}

// GetPosition returns a holder's deposits and liquidity units in a pool.
func (c *Contract) GetPosition(holder types.Address, symbolA, symbolB string) (*LPContentRAM, error) {
	pool, err := c.GetPool(symbolA, symbolB)
	if err != nil {
		return nil, err
	}
	_, ram, err := c.findPosition(holder, pool.Symbol0, pool.Symbol1)
	if err != nil {
		return nil, err
	}
	if ram == nil {
		return nil, fmt.Errorf("%w: %s in %s", ErrPositionNotFound, holder, pairKey(symbolA, symbolB))
	}
	return ram, nil
}

// BurnNFT destroys an emptied liquidity position NFT, claiming any fees
// still pending on it.
func (c *Contract) BurnNFT(from types.Address, nftID uint64) error {
	if err := c.rt.ExpectWitness(from); err != nil {
		return err
	}
	nft, err := c.rt.Ledger().ReadNFT(LPSeries, nftID)
	if err != nil {
		return err
	}
	if nft.Owner != from {
		return fmt.Errorf("%w: %s does not own nft %d", ErrPositionNotFound, from, nftID)
	}
	rom, err := deserializeLPROM(nft.ROM)
	if err != nil {
		return err
	}
	ram, err := deserializeLPRAM(nft.RAM)
	if err != nil {
		return err
	}
	if ram.Liquidity.Sign() != 0 {
		return fmt.Errorf("%w: nft %d", ErrPositionNotEmpty, nftID)
	}
	pool, err := c.GetPool(rom.Symbol0, rom.Symbol1)
	if err != nil {
		// Pool already drained and deleted; just burn the empty position.
		if err := c.rt.Ledger().BurnNFT(LPSeries, nftID); err != nil {
			return err
		}
		return nil
	}
	return c.settlePosition(from, pool, nftID, ram)
}

func subFloor(a, b *big.Int) *big.Int {
	r := new(big.Int).Sub(a, b)
	if r.Sign() < 0 {
		return new(big.Int)
	}
	return r
}

func poolableToken(ledger *token.Ledger, symbol string) (*token.Token, error) {
	t, err := ledger.Get(symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedToken, symbol)
	}
	if !t.Flags.Has(token.FlagFungible) || !t.Flags.Has(token.FlagTransferable) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedToken, symbol)
	}
	return t, nil
}
