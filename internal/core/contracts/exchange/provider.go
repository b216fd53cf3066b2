package exchange

import (
	"fmt"

	"github.com/phantasma-io/go-phantasma/internal/core/runtime"
	"github.com/phantasma-io/go-phantasma/internal/core/state"
	"github.com/phantasma-io/go-phantasma/internal/core/types"
)

func (c *Contract) providers() state.Map {
	return state.NewMap(c.rt.State(), "exchange/providers")
}

func validateProviderFees(totalFee, exchangeFee, poolFee int) error {
	for _, f := range []int{totalFee, exchangeFee, poolFee} {
		if f < 1 || f > 99 {
			return fmt.Errorf("%w: fee %d out of [1,99]", ErrProviderFees, f)
		}
	}
	if exchangeFee+poolFee != 100 {
		return fmt.Errorf("%w: exchange %d + pool %d must sum to 100", ErrProviderFees, exchangeFee, poolFee)
	}
	return nil
}

// CreateExchangeProvider registers a fee-taking venue.
func (c *Contract) CreateExchangeProvider(owner types.Address, name string, totalFee, exchangeFee, poolFee int) (uint64, error) {
	if err := c.rt.ExpectWitness(owner); err != nil {
		return 0, err
	}
	if name == "" {
		return 0, fmt.Errorf("%w: empty name", ErrProviderFees)
	}
	if err := validateProviderFees(totalFee, exchangeFee, poolFee); err != nil {
		return 0, err
	}
	id, err := c.rt.GenerateUID()
	if err != nil {
		return 0, err
	}
	p := &Provider{
		ID:          id,
		Name:        name,
		Owner:       owner,
		TotalFee:    totalFee,
		ExchangeFee: exchangeFee,
		PoolFee:     poolFee,
	}
	c.providers().Put(state.Uint64Key(id), serializeProvider(p))
	c.rt.Notify(runtime.EventProviderCreated, owner, Name, serializeProvider(p))
	return id, nil
}

// EditExchangeProvider updates a venue's name or fee split; owner only.
func (c *Contract) EditExchangeProvider(owner types.Address, id uint64, name string, totalFee, exchangeFee, poolFee int) error {
	p, err := c.GetExchangeProvider(id)
	if err != nil {
		return err
	}
	if p.Owner != owner {
		return fmt.Errorf("%w: %d", ErrNotProviderOwner, id)
	}
	if err := c.rt.ExpectWitness(owner); err != nil {
		return err
	}
	if err := validateProviderFees(totalFee, exchangeFee, poolFee); err != nil {
		return err
	}
	if name != "" {
		p.Name = name
	}
	p.TotalFee, p.ExchangeFee, p.PoolFee = totalFee, exchangeFee, poolFee
	c.providers().Put(state.Uint64Key(id), serializeProvider(p))
	c.rt.Notify(runtime.EventProviderEdited, owner, Name, serializeProvider(p))
	return nil
}

// GetExchangeProvider returns one registered provider.
func (c *Contract) GetExchangeProvider(id uint64) (*Provider, error) {
	raw, err := c.providers().Get(state.Uint64Key(id))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownProvider, id)
	}
	return deserializeProvider(raw)
}

// GetExchangeProviders lists every registered provider in id order.
func (c *Contract) GetExchangeProviders() ([]*Provider, error) {
	keys, err := c.providers().Keys()
	if err != nil {
		return nil, err
	}
	out := make([]*Provider, 0, len(keys))
	for _, k := range keys {
		raw, err := c.providers().Get(k)
		if err != nil {
			return nil, err
		}
		p, err := deserializeProvider(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
