// Package exchange implements the order-book side of the DEX native
// contract: market, limit and immediate-or-cancel orders matched with
// price/time priority, per-order escrow, the OTC sub-ledger and the
// registered exchange providers.
package exchange

import (
	"fmt"
	"math/big"

	"github.com/phantasma-io/go-phantasma/internal/core/number"
	"github.com/phantasma-io/go-phantasma/internal/core/runtime"
	"github.com/phantasma-io/go-phantasma/internal/core/state"
	"github.com/phantasma-io/go-phantasma/internal/core/token"
	"github.com/phantasma-io/go-phantasma/internal/core/types"
)

// Name is the registered native-contract name.
const Name = "exchange"

// Address holds every escrowed token of the order and OTC books.
var Address = types.ContractAddress(Name)

// Contract is the exchange native contract bound to one transaction.
type Contract struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Contract {
	return &Contract{rt: rt}
}

func (c *Contract) book(quoteSymbol, baseSymbol string, side Side) state.Map {
	return state.NewMap(c.rt.State(), bookKey(quoteSymbol, baseSymbol, side))
}

func (c *Contract) orderIndex() state.Map {
	return state.NewMap(c.rt.State(), "exchange/orderindex")
}

func (c *Contract) escrows() state.Map {
	return state.NewMap(c.rt.State(), "exchange/escrow")
}

type bookRef struct {
	quoteSymbol string
	baseSymbol  string
	side        Side
}

func serializeBookRef(ref bookRef) []byte {
	w := types.NewWriter()
	w.WriteString(ref.quoteSymbol)
	w.WriteString(ref.baseSymbol)
	w.WriteUint8(uint8(ref.side))
	return w.Bytes()
}

func deserializeBookRef(raw []byte) (bookRef, error) {
	r := types.NewReader(raw)
	var ref bookRef
	var err error
	if ref.quoteSymbol, err = r.ReadString(); err != nil {
		return ref, err
	}
	if ref.baseSymbol, err = r.ReadString(); err != nil {
		return ref, err
	}
	side, err := r.ReadUint8()
	if err != nil {
		return ref, err
	}
	ref.side = Side(side)
	return ref, r.Done()
}

// baseToQuote converts a base amount to quote units at the given price
// (quote smallest units per whole base token), truncating.
func baseToQuote(amount, price *big.Int, baseDecimals int) *big.Int {
	v := new(big.Int).Mul(amount, price)
	return v.Quo(v, number.Pow10(baseDecimals))
}

// quoteToBase converts a quote amount back to base units at price,
// truncating.
func quoteToBase(amount, price *big.Int, baseDecimals int) *big.Int {
	v := new(big.Int).Mul(amount, number.Pow10(baseDecimals))
	return v.Quo(v, price)
}

// OpenMarketOrder submits an order matched at any available price. For buy
// orders the locked quote escrow is size*price, so price acts as the
// spending cap.
func (c *Contract) OpenMarketOrder(creator types.Address, provider uint64, baseSymbol, quoteSymbol string, size, price *big.Int, side Side) (uint64, error) {
	return c.OpenOrder(creator, provider, baseSymbol, quoteSymbol, side, Market, size, price)
}

// OpenLimitOrder submits a limit order; with ioc set, any residual after one
// matching pass is cancelled instead of resting.
func (c *Contract) OpenLimitOrder(creator types.Address, provider uint64, baseSymbol, quoteSymbol string, size, price *big.Int, side Side, ioc bool) (uint64, error) {
	typ := Limit
	if ioc {
		typ = ImmediateOrCancel
	}
	return c.OpenOrder(creator, provider, baseSymbol, quoteSymbol, side, typ, size, price)
}

// OpenOTCOrder submits a fixed-price over-the-counter sell offer.
func (c *Contract) OpenOTCOrder(creator types.Address, baseSymbol, quoteSymbol string, size, price *big.Int) (uint64, error) {
	return c.OpenOrder(creator, 0, baseSymbol, quoteSymbol, Sell, OTC, size, price)
}

// OpenOrder is the single entry point all order types funnel into.
func (c *Contract) OpenOrder(creator types.Address, provider uint64, baseSymbol, quoteSymbol string, side Side, typ Type, size, price *big.Int) (uint64, error) {
	if err := c.rt.ExpectWitness(creator); err != nil {
		return 0, err
	}
	if baseSymbol == quoteSymbol {
		return 0, ErrSameSymbol
	}

	ledger := c.rt.Ledger()
	baseToken, err := tradableToken(ledger, baseSymbol)
	if err != nil {
		return 0, err
	}
	quoteToken, err := tradableToken(ledger, quoteSymbol)
	if err != nil {
		return 0, err
	}

	if size == nil || size.Sign() <= 0 {
		return 0, ErrInvalidSize
	}
	if price == nil || price.Sign() < 0 {
		return 0, ErrInvalidPrice
	}
	// Only a market sell can omit the price; everywhere else the price sets
	// either the limit or the buy-side escrow.
	if price.Sign() == 0 && !(typ == Market && side == Sell) {
		return 0, ErrInvalidPrice
	}

	if typ != Market {
		if size.Cmp(number.MinimumQuantity(baseToken.Decimals)) < 0 {
			return 0, fmt.Errorf("%w: size %v %s", ErrBelowMinimum, size, baseSymbol)
		}
		if price.Cmp(number.MinimumQuantity(quoteToken.Decimals)) < 0 {
			return 0, fmt.Errorf("%w: price %v %s", ErrBelowMinimum, price, quoteSymbol)
		}
	}

	if provider != 0 {
		if _, err := c.GetExchangeProvider(provider); err != nil {
			return 0, err
		}
	}

	if typ == OTC {
		if side != Sell {
			return 0, ErrOTCSellOnly
		}
		return c.createOTC(creator, baseSymbol, quoteSymbol, size, price)
	}

	uid, err := c.rt.GenerateUID()
	if err != nil {
		return 0, err
	}
	order := &Order{
		UID:         uid,
		Timestamp:   c.rt.Time(),
		Creator:     creator,
		Provider:    provider,
		Amount:      size,
		BaseSymbol:  baseSymbol,
		Price:       price,
		QuoteSymbol: quoteSymbol,
		Side:        side,
		Type:        typ,
	}

	// Lock the full escrow before any matching happens.
	var escrowSymbol string
	var escrowAmount *big.Int
	if side == Sell {
		escrowSymbol = baseSymbol
		escrowAmount = new(big.Int).Set(size)
	} else {
		escrowSymbol = quoteSymbol
		escrowAmount = baseToQuote(size, price, baseToken.Decimals)
	}
	if escrowAmount.Sign() <= 0 {
		return 0, fmt.Errorf("%w: computed escrow is zero", ErrInvalidSize)
	}
	if err := ledger.Transfer(escrowSymbol, creator, Address, escrowAmount); err != nil {
		return 0, err
	}
	c.rt.Notify(runtime.EventOrderCreated, creator, Name, serializeOrder(order))

	leftover, remaining, err := c.match(order, escrowAmount, baseToken, quoteToken)
	if err != nil {
		return 0, err
	}

	switch {
	case remaining.Sign() == 0 || leftover.Sign() == 0:
		// Filled for the full size. A buy taker that crossed cheaper
		// makers still holds unspent quote escrow; hand it back.
		if leftover.Sign() > 0 {
			if err := ledger.Transfer(escrowSymbol, Address, creator, leftover); err != nil {
				return 0, err
			}
		}
		c.rt.Notify(runtime.EventOrderClosed, creator, Name, serializeOrder(order))
	case typ == Limit:
		// Rest in the book with escrow for the residual size only.
		if side == Buy {
			rest := number.Min(leftover, baseToQuote(remaining, price, baseToken.Decimals))
			if refund := new(big.Int).Sub(leftover, rest); refund.Sign() > 0 {
				if err := ledger.Transfer(escrowSymbol, Address, creator, refund); err != nil {
					return 0, err
				}
			}
			leftover = rest
		}
		c.book(quoteSymbol, baseSymbol, side).Put(state.Uint64Key(uid), serializeOrder(order))
		c.orderIndex().Put(state.Uint64Key(uid), serializeBookRef(bookRef{quoteSymbol, baseSymbol, side}))
		c.putEscrow(uid, leftover)
	default:
		// Market/IoC residuals refund immediately.
		if err := ledger.Transfer(escrowSymbol, Address, creator, leftover); err != nil {
			return 0, err
		}
		c.rt.Notify(runtime.EventOrderCancelled, creator, Name, serializeOrder(order))
	}
	return uid, nil
}

// match runs the taker against resting makers until its size is filled, its
// escrow is spent, no eligible maker remains, or the next fill would be
// dust. Returns the taker's leftover escrow and unfilled base size.
func (c *Contract) match(taker *Order, takerEscrow *big.Int, baseToken, quoteToken *token.Token) (*big.Int, *big.Int, error) {
	ledger := c.rt.Ledger()
	minBase := number.MinimumQuantity(baseToken.Decimals)
	minQuote := number.MinimumQuantity(quoteToken.Decimals)
	makerBook := c.book(taker.QuoteSymbol, taker.BaseSymbol, taker.Side.Opposite())

	escrow := new(big.Int).Set(takerEscrow)
	remaining := new(big.Int).Set(taker.Amount)
	for escrow.Sign() > 0 && remaining.Sign() > 0 {
		maker, err := c.bestMaker(makerBook, taker)
		if err != nil {
			return nil, nil, err
		}
		if maker == nil {
			break
		}
		makerEscrow, err := c.getEscrow(maker.UID)
		if err != nil {
			return nil, nil, err
		}

		// The maker's price converts between the two currencies.
		var fillBase, fillQuote *big.Int
		if taker.Side == Buy {
			// Taker escrow is quote; maker escrow is base.
			capBase := quoteToBase(escrow, maker.Price, baseToken.Decimals)
			fillBase = number.Min(number.Min(capBase, makerEscrow), remaining)
			fillQuote = baseToQuote(fillBase, maker.Price, baseToken.Decimals)
		} else {
			// Taker escrow is base; maker escrow is quote.
			capBase := quoteToBase(makerEscrow, maker.Price, baseToken.Decimals)
			fillBase = number.Min(escrow, capBase)
			fillQuote = baseToQuote(fillBase, maker.Price, baseToken.Decimals)
		}

		// Dust guard: a fill below either token's minimum stops matching.
		if fillBase.Cmp(minBase) < 0 || fillQuote.Cmp(minQuote) < 0 {
			break
		}

		// Settle both legs out of the contract's escrow holdings.
		if taker.Side == Buy {
			if err := ledger.Transfer(taker.BaseSymbol, Address, taker.Creator, fillBase); err != nil {
				return nil, nil, err
			}
			if err := ledger.Transfer(taker.QuoteSymbol, Address, maker.Creator, fillQuote); err != nil {
				return nil, nil, err
			}
			escrow.Sub(escrow, fillQuote)
			makerEscrow.Sub(makerEscrow, fillBase)
		} else {
			if err := ledger.Transfer(taker.QuoteSymbol, Address, taker.Creator, fillQuote); err != nil {
				return nil, nil, err
			}
			if err := ledger.Transfer(taker.BaseSymbol, Address, maker.Creator, fillBase); err != nil {
				return nil, nil, err
			}
			escrow.Sub(escrow, fillBase)
			makerEscrow.Sub(makerEscrow, fillQuote)
		}
		remaining.Sub(remaining, fillBase)

		c.rt.Notify(runtime.EventOrderFilled, taker.Creator, Name, serializeOrder(taker))
		c.rt.Notify(runtime.EventOrderFilled, maker.Creator, Name, serializeOrder(maker))

		if makerEscrow.Sign() == 0 {
			makerBook.Delete(state.Uint64Key(maker.UID))
			c.orderIndex().Delete(state.Uint64Key(maker.UID))
			c.escrows().Delete(state.Uint64Key(maker.UID))
			c.rt.Notify(runtime.EventOrderClosed, maker.Creator, Name, serializeOrder(maker))
		} else {
			c.putEscrow(maker.UID, makerEscrow)
		}
	}
	return escrow, remaining, nil
}

// bestMaker returns the eligible resting order with the best price for the
// taker, breaking ties by earliest timestamp and then lowest uid.
func (c *Contract) bestMaker(book state.Map, taker *Order) (*Order, error) {
	keys, err := book.Keys()
	if err != nil {
		return nil, err
	}
	var best *Order
	for _, k := range keys {
		raw, err := book.Get(k)
		if err != nil {
			return nil, err
		}
		if raw == nil {
			continue
		}
		maker, err := deserializeOrder(raw)
		if err != nil {
			return nil, err
		}

		if taker.Type != Market {
			// A buyer only accepts makers at or below the limit, a seller at
			// or above it.
			if taker.Side == Buy && maker.Price.Cmp(taker.Price) > 0 {
				continue
			}
			if taker.Side == Sell && maker.Price.Cmp(taker.Price) < 0 {
				continue
			}
		}

		if best == nil || betterMaker(maker, best, taker.Side) {
			best = maker
		}
	}
	return best, nil
}

func betterMaker(a, b *Order, takerSide Side) bool {
	cmp := a.Price.Cmp(b.Price)
	if cmp != 0 {
		if takerSide == Buy {
			return cmp < 0 // buyer wants the lowest ask
		}
		return cmp > 0 // seller wants the highest bid
	}
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.UID < b.UID
}

// CancelOrder withdraws a resting book order or an OTC offer, refunding the
// remaining escrow to its creator.
func (c *Contract) CancelOrder(uid uint64) error {
	raw, err := c.orderIndex().Get(state.Uint64Key(uid))
	if err != nil {
		return err
	}
	if raw == nil {
		// Not in the book; try the OTC list.
		return c.cancelOTC(uid)
	}
	ref, err := deserializeBookRef(raw)
	if err != nil {
		return err
	}
	book := c.book(ref.quoteSymbol, ref.baseSymbol, ref.side)
	rawOrder, err := book.Get(state.Uint64Key(uid))
	if err != nil {
		return err
	}
	if rawOrder == nil {
		return fmt.Errorf("%w: %d", ErrUnknownOrder, uid)
	}
	order, err := deserializeOrder(rawOrder)
	if err != nil {
		return err
	}
	if err := c.rt.ExpectWitness(order.Creator); err != nil {
		return fmt.Errorf("%w: %d", ErrNotOrderCreator, uid)
	}

	escrow, err := c.getEscrow(uid)
	if err != nil {
		return err
	}
	escrowSymbol := order.BaseSymbol
	if order.Side == Buy {
		escrowSymbol = order.QuoteSymbol
	}
	if escrow.Sign() > 0 {
		if err := c.rt.Ledger().Transfer(escrowSymbol, Address, order.Creator, escrow); err != nil {
			return err
		}
	}

	book.Delete(state.Uint64Key(uid))
	c.orderIndex().Delete(state.Uint64Key(uid))
	c.escrows().Delete(state.Uint64Key(uid))
	c.rt.Notify(runtime.EventOrderCancelled, order.Creator, Name, serializeOrder(order))
	return nil
}

// GetExchangeOrder returns a resting order by id.
func (c *Contract) GetExchangeOrder(uid uint64) (*Order, error) {
	raw, err := c.orderIndex().Get(state.Uint64Key(uid))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOrder, uid)
	}
	ref, err := deserializeBookRef(raw)
	if err != nil {
		return nil, err
	}
	rawOrder, err := c.book(ref.quoteSymbol, ref.baseSymbol, ref.side).Get(state.Uint64Key(uid))
	if err != nil {
		return nil, err
	}
	if rawOrder == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOrder, uid)
	}
	return deserializeOrder(rawOrder)
}

// GetOrderLeftoverEscrow returns the unspent escrow of a resting order.
func (c *Contract) GetOrderLeftoverEscrow(uid uint64) (*big.Int, error) {
	if _, err := c.GetExchangeOrder(uid); err != nil {
		return nil, err
	}
	return c.getEscrow(uid)
}

// GetOrderBook returns the resting orders of a pair. With sides empty, both
// sides are returned, buys first.
func (c *Contract) GetOrderBook(baseSymbol, quoteSymbol string, sides ...Side) ([]*Order, error) {
	if len(sides) == 0 {
		sides = []Side{Buy, Sell}
	}
	var out []*Order
	for _, side := range sides {
		book := c.book(quoteSymbol, baseSymbol, side)
		keys, err := book.Keys()
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			raw, err := book.Get(k)
			if err != nil {
				return nil, err
			}
			order, err := deserializeOrder(raw)
			if err != nil {
				return nil, err
			}
			out = append(out, order)
		}
	}
	return out, nil
}

func (c *Contract) getEscrow(uid uint64) (*big.Int, error) {
	raw, err := c.escrows().Get(state.Uint64Key(uid))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return new(big.Int), nil
	}
	r := types.NewReader(raw)
	v, err := r.ReadBigInt()
	if err != nil {
		return nil, err
	}
	return v, r.Done()
}

func (c *Contract) putEscrow(uid uint64, v *big.Int) {
	w := types.NewWriter()
	w.WriteBigInt(v)
	c.escrows().Put(state.Uint64Key(uid), w.Bytes())
}

func tradableToken(ledger *token.Ledger, symbol string) (*token.Token, error) {
	t, err := ledger.Get(symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedToken, symbol)
	}
	if !t.Flags.Has(token.FlagFungible) || !t.Flags.Has(token.FlagTransferable) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedToken, symbol)
	}
	return t, nil
}
