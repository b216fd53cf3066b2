package exchange_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phantasma-io/go-phantasma/internal/core/contracts"
	"github.com/phantasma-io/go-phantasma/internal/core/contracts/exchange"
	env "github.com/phantasma-io/go-phantasma/internal/testing"
)

func TestProviderLifecycle(t *testing.T) {
	e := env.NewEnv(t)
	owner := e.Account("owner")
	other := e.Account("other")

	var id uint64
	e.MustTx(func(s *contracts.Services) error {
		pid, err := s.Exchange.CreateExchangeProvider(owner.Address, "main", 2, 40, 60)
		id = pid
		return err
	}, owner)

	require.NoError(t, e.View(func(s *contracts.Services) error {
		p, err := s.Exchange.GetExchangeProvider(id)
		require.NoError(t, err)
		assert.Equal(t, "main", p.Name)
		assert.Equal(t, owner.Address, p.Owner)
		assert.Equal(t, 40, p.ExchangeFee)
		return nil
	}))

	// Only the owner can edit.
	_, err := e.Tx(func(s *contracts.Services) error {
		return s.Exchange.EditExchangeProvider(other.Address, id, "hijack", 2, 50, 50)
	}, other)
	assert.ErrorIs(t, err, exchange.ErrNotProviderOwner)

	e.MustTx(func(s *contracts.Services) error {
		return s.Exchange.EditExchangeProvider(owner.Address, id, "renamed", 3, 30, 70)
	}, owner)
	require.NoError(t, e.View(func(s *contracts.Services) error {
		p, err := s.Exchange.GetExchangeProvider(id)
		require.NoError(t, err)
		assert.Equal(t, "renamed", p.Name)
		assert.Equal(t, 70, p.PoolFee)
		return nil
	}))
}

func TestProviderFeeValidation(t *testing.T) {
	e := env.NewEnv(t)
	owner := e.Account("owner")

	cases := []struct {
		name                           string
		totalFee, exchangeFee, poolFee int
	}{
		{"split does not sum to 100", 2, 40, 50},
		{"zero exchange share", 2, 0, 100},
		{"share above 99", 2, 100, 0},
		{"zero total", 0, 50, 50},
		{"total above 99", 100, 50, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Tx(func(s *contracts.Services) error {
				_, err := s.Exchange.CreateExchangeProvider(owner.Address, "bad",
					tc.totalFee, tc.exchangeFee, tc.poolFee)
				return err
			}, owner)
			assert.ErrorIs(t, err, exchange.ErrProviderFees)
		})
	}
}

func TestGetExchangeProviders(t *testing.T) {
	e := env.NewEnv(t)
	owner := e.Account("owner")

	for _, name := range []string{"alpha", "beta"} {
		e.MustTx(func(s *contracts.Services) error {
			_, err := s.Exchange.CreateExchangeProvider(owner.Address, name, 1, 50, 50)
			return err
		}, owner)
	}
	require.NoError(t, e.View(func(s *contracts.Services) error {
		ps, err := s.Exchange.GetExchangeProviders()
		require.NoError(t, err)
		assert.Len(t, ps, 2)
		return nil
	}))
}
