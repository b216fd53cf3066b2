package exchange

import (
	"fmt"
	"math/big"

	"github.com/phantasma-io/go-phantasma/internal/core/runtime"
	"github.com/phantasma-io/go-phantasma/internal/core/state"
	"github.com/phantasma-io/go-phantasma/internal/core/types"
)

// The OTC book is a flat list of fixed-price sell offers, independent of the
// matching engine. Field reuse on Order follows the book's convention:
// Amount is the quote payment the seller demands, Price is the base amount
// escrowed as collateral.

func (c *Contract) otcBook() state.List {
	return state.NewList(c.rt.State(), "exchange/otc")
}

func (c *Contract) createOTC(creator types.Address, baseSymbol, quoteSymbol string, amount, price *big.Int) (uint64, error) {
	maxOrders := c.rt.GetGovernanceValue(runtime.GovExchangeMaxOTCOrders)

	offers, err := c.otcBook().All()
	if err != nil {
		return 0, err
	}
	var owned int64
	for _, raw := range offers {
		offer, err := deserializeOrder(raw)
		if err != nil {
			return 0, err
		}
		if offer.Creator == creator {
			owned++
		}
	}
	if owned >= maxOrders {
		return 0, fmt.Errorf("%w: %d offers", ErrOTCLimitReached, owned)
	}

	uid, err := c.rt.GenerateUID()
	if err != nil {
		return 0, err
	}
	order := &Order{
		UID:         uid,
		Timestamp:   c.rt.Time(),
		Creator:     creator,
		Amount:      amount,
		BaseSymbol:  baseSymbol,
		Price:       price,
		QuoteSymbol: quoteSymbol,
		Side:        Sell,
		Type:        OTC,
	}

	// Collateral: the full base amount on offer.
	if err := c.rt.Ledger().Transfer(baseSymbol, creator, Address, price); err != nil {
		return 0, err
	}
	if _, err := c.otcBook().Append(serializeOrder(order)); err != nil {
		return 0, err
	}
	c.rt.Notify(runtime.EventOTCCreated, creator, Name, serializeOrder(order))
	return uid, nil
}

// TakeOrder fills an OTC offer in full: the buyer pays the quote amount to
// the seller and receives the escrowed base collateral. No partial fills.
func (c *Contract) TakeOrder(buyer types.Address, uid uint64) error {
	if err := c.rt.ExpectWitness(buyer); err != nil {
		return err
	}
	idx, order, err := c.findOTC(uid)
	if err != nil {
		return err
	}

	ledger := c.rt.Ledger()
	if err := ledger.Transfer(order.QuoteSymbol, buyer, order.Creator, order.Amount); err != nil {
		return err
	}
	if err := ledger.Transfer(order.BaseSymbol, Address, buyer, order.Price); err != nil {
		return err
	}

	if err := c.otcBook().RemoveAt(idx); err != nil {
		return err
	}
	c.rt.Notify(runtime.EventOTCFilled, buyer, Name, serializeOrder(order))
	return nil
}

func (c *Contract) cancelOTC(uid uint64) error {
	idx, order, err := c.findOTC(uid)
	if err != nil {
		return err
	}
	if err := c.rt.ExpectWitness(order.Creator); err != nil {
		return fmt.Errorf("%w: %d", ErrNotOrderCreator, uid)
	}
	if err := c.rt.Ledger().Transfer(order.BaseSymbol, Address, order.Creator, order.Price); err != nil {
		return err
	}
	if err := c.otcBook().RemoveAt(idx); err != nil {
		return err
	}
	c.rt.Notify(runtime.EventOTCCancelled, order.Creator, Name, serializeOrder(order))
	return nil
}

// GetOTC returns every open OTC offer.
func (c *Contract) GetOTC() ([]*Order, error) {
	raws, err := c.otcBook().All()
	if err != nil {
		return nil, err
	}
	out := make([]*Order, 0, len(raws))
	for _, raw := range raws {
		order, err := deserializeOrder(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	return out, nil
}

func (c *Contract) findOTC(uid uint64) (uint64, *Order, error) {
	raws, err := c.otcBook().All()
	if err != nil {
		return 0, nil, err
	}
	for i, raw := range raws {
		order, err := deserializeOrder(raw)
		if err != nil {
			return 0, nil, err
		}
		if order.UID == uid {
			return uint64(i), order, nil
		}
	}
	return 0, nil, fmt.Errorf("%w: %d", ErrUnknownOrder, uid)
}
