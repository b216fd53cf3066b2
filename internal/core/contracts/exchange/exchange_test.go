package exchange_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phantasma-io/go-phantasma/internal/core/contracts"
	"github.com/phantasma-io/go-phantasma/internal/core/contracts/exchange"
	"github.com/phantasma-io/go-phantasma/internal/core/token"
	env "github.com/phantasma-io/go-phantasma/internal/testing"
)

// soul and kcal build smallest-unit amounts from whole tokens.
func soul(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(100_000_000))
}

func kcal(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(10_000_000_000))
}

// price of one whole SOUL expressed in KCAL smallest units.
func kcalPrice(n int64) *big.Int { return kcal(n) }

func TestLimitOrderFullMatch(t *testing.T) {
	e := env.NewEnv(t)
	seller := e.Account("seller")
	buyer := e.Account("buyer")
	e.Fund(seller, token.StakingSymbol, soul(100))
	e.Fund(buyer, token.FuelSymbol, kcal(100))

	var sellUID uint64
	e.MustTx(func(s *contracts.Services) error {
		uid, err := s.Exchange.OpenLimitOrder(seller.Address, 0,
			token.StakingSymbol, token.FuelSymbol, soul(10), kcalPrice(2), exchange.Sell, false)
		sellUID = uid
		return err
	}, seller)

	// Escrow locked: 10 SOUL left the seller.
	require.Equal(t, soul(90), e.Balance(seller, token.StakingSymbol))

	e.MustTx(func(s *contracts.Services) error {
		_, err := s.Exchange.OpenLimitOrder(buyer.Address, 0,
			token.StakingSymbol, token.FuelSymbol, soul(10), kcalPrice(2), exchange.Buy, false)
		return err
	}, buyer)

	assert.Equal(t, soul(10), e.Balance(buyer, token.StakingSymbol))
	assert.Equal(t, kcal(80), e.Balance(buyer, token.FuelSymbol))
	assert.Equal(t, kcal(20), e.Balance(seller, token.FuelSymbol))
	assert.Equal(t, soul(90), e.Balance(seller, token.StakingSymbol))

	// Nothing left on the contract and both books are empty.
	assert.Zero(t, e.BalanceOf(exchange.Address, token.StakingSymbol).Sign())
	assert.Zero(t, e.BalanceOf(exchange.Address, token.FuelSymbol).Sign())
	require.NoError(t, e.View(func(s *contracts.Services) error {
		orders, err := s.Exchange.GetOrderBook(token.StakingSymbol, token.FuelSymbol,
			exchange.Buy, exchange.Sell)
		require.NoError(t, err)
		assert.Empty(t, orders)
		_, err = s.Exchange.GetExchangeOrder(sellUID)
		assert.ErrorIs(t, err, exchange.ErrUnknownOrder)
		return nil
	}))
}

func TestLimitOrderPartialFillRests(t *testing.T) {
	e := env.NewEnv(t)
	seller := e.Account("seller")
	buyer := e.Account("buyer")
	e.Fund(seller, token.StakingSymbol, soul(100))
	e.Fund(buyer, token.FuelSymbol, kcal(100))

	var sellUID uint64
	e.MustTx(func(s *contracts.Services) error {
		uid, err := s.Exchange.OpenLimitOrder(seller.Address, 0,
			token.StakingSymbol, token.FuelSymbol, soul(10), kcalPrice(2), exchange.Sell, false)
		sellUID = uid
		return err
	}, seller)

	e.MustTx(func(s *contracts.Services) error {
		_, err := s.Exchange.OpenLimitOrder(buyer.Address, 0,
			token.StakingSymbol, token.FuelSymbol, soul(4), kcalPrice(2), exchange.Buy, false)
		return err
	}, buyer)

	assert.Equal(t, soul(4), e.Balance(buyer, token.StakingSymbol))
	assert.Equal(t, kcal(8), e.Balance(seller, token.FuelSymbol))

	require.NoError(t, e.View(func(s *contracts.Services) error {
		leftover, err := s.Exchange.GetOrderLeftoverEscrow(sellUID)
		require.NoError(t, err)
		assert.Equal(t, soul(6), leftover)

		book, err := s.Exchange.GetOrderBook(token.StakingSymbol, token.FuelSymbol, exchange.Sell)
		require.NoError(t, err)
		require.Len(t, book, 1)
		assert.Equal(t, sellUID, book[0].UID)
		return nil
	}))
	// Residual escrow stays on the contract.
	assert.Equal(t, soul(6), e.BalanceOf(exchange.Address, token.StakingSymbol))
}

func TestLimitOrdersDoNotCrossOutsideLimit(t *testing.T) {
	e := env.NewEnv(t)
	seller := e.Account("seller")
	buyer := e.Account("buyer")
	e.Fund(seller, token.StakingSymbol, soul(100))
	e.Fund(buyer, token.FuelSymbol, kcal(100))

	e.MustTx(func(s *contracts.Services) error {
		_, err := s.Exchange.OpenLimitOrder(seller.Address, 0,
			token.StakingSymbol, token.FuelSymbol, soul(10), kcalPrice(3), exchange.Sell, false)
		return err
	}, seller)
	e.MustTx(func(s *contracts.Services) error {
		_, err := s.Exchange.OpenLimitOrder(buyer.Address, 0,
			token.StakingSymbol, token.FuelSymbol, soul(10), kcalPrice(2), exchange.Buy, false)
		return err
	}, buyer)

	// Ask 3, bid 2: both rest untouched.
	require.NoError(t, e.View(func(s *contracts.Services) error {
		book, err := s.Exchange.GetOrderBook(token.StakingSymbol, token.FuelSymbol,
			exchange.Buy, exchange.Sell)
		require.NoError(t, err)
		assert.Len(t, book, 2)
		return nil
	}))
	assert.Equal(t, soul(0), e.Balance(buyer, token.StakingSymbol))
	assert.Equal(t, kcal(0), e.Balance(seller, token.FuelSymbol))
}

func TestPriceTimePriority(t *testing.T) {
	e := env.NewEnv(t)
	cheap := e.Account("cheap")
	dear := e.Account("dear")
	buyer := e.Account("buyer")
	e.Fund(cheap, token.StakingSymbol, soul(100))
	e.Fund(dear, token.StakingSymbol, soul(100))
	e.Fund(buyer, token.FuelSymbol, kcal(100))

	e.MustTx(func(s *contracts.Services) error {
		_, err := s.Exchange.OpenLimitOrder(dear.Address, 0,
			token.StakingSymbol, token.FuelSymbol, soul(5), kcalPrice(3), exchange.Sell, false)
		return err
	}, dear)
	e.MustTx(func(s *contracts.Services) error {
		_, err := s.Exchange.OpenLimitOrder(cheap.Address, 0,
			token.StakingSymbol, token.FuelSymbol, soul(5), kcalPrice(2), exchange.Sell, false)
		return err
	}, cheap)

	// Buy 5 with a limit of 3: the cheaper ask fills first and fully covers.
	e.MustTx(func(s *contracts.Services) error {
		_, err := s.Exchange.OpenLimitOrder(buyer.Address, 0,
			token.StakingSymbol, token.FuelSymbol, soul(5), kcalPrice(3), exchange.Buy, false)
		return err
	}, buyer)

	assert.Equal(t, kcal(10), e.Balance(cheap, token.FuelSymbol))
	assert.Equal(t, kcal(0), e.Balance(dear, token.FuelSymbol))
	assert.Equal(t, soul(5), e.Balance(buyer, token.StakingSymbol))
}

func TestBuyFillStopsAtOrderSize(t *testing.T) {
	e := env.NewEnv(t)
	maker := e.Account("maker")
	buyer := e.Account("buyer")
	e.Fund(maker, token.StakingSymbol, soul(100))
	e.Fund(buyer, token.FuelSymbol, kcal(100))

	// Plenty of depth below the buyer's limit.
	e.MustTx(func(s *contracts.Services) error {
		_, err := s.Exchange.OpenLimitOrder(maker.Address, 0,
			token.StakingSymbol, token.FuelSymbol, soul(50), kcalPrice(2), exchange.Sell, false)
		return err
	}, maker)

	// Buy 10 with a limit of 3: escrow 30, spend only 20, refund 10.
	e.MustTx(func(s *contracts.Services) error {
		_, err := s.Exchange.OpenLimitOrder(buyer.Address, 0,
			token.StakingSymbol, token.FuelSymbol, soul(10), kcalPrice(3), exchange.Buy, false)
		return err
	}, buyer)

	assert.Equal(t, soul(10), e.Balance(buyer, token.StakingSymbol))
	assert.Equal(t, kcal(80), e.Balance(buyer, token.FuelSymbol))
	assert.Equal(t, kcal(20), e.Balance(maker, token.FuelSymbol))

	// The maker's residual 40 SOUL is still escrowed, nothing else.
	require.NoError(t, e.View(func(s *contracts.Services) error {
		book, err := s.Exchange.GetOrderBook(token.StakingSymbol, token.FuelSymbol, exchange.Sell)
		require.NoError(t, err)
		require.Len(t, book, 1)
		left, err := s.Exchange.GetOrderLeftoverEscrow(book[0].UID)
		require.NoError(t, err)
		assert.Equal(t, soul(40), left)
		return nil
	}))
	assert.Equal(t, soul(40), e.BalanceOf(exchange.Address, token.StakingSymbol))
	assert.Zero(t, e.BalanceOf(exchange.Address, token.FuelSymbol).Sign())
}

func TestPartialBuyRestsResidualEscrowOnly(t *testing.T) {
	e := env.NewEnv(t)
	maker := e.Account("maker")
	buyer := e.Account("buyer")
	e.Fund(maker, token.StakingSymbol, soul(100))
	e.Fund(buyer, token.FuelSymbol, kcal(100))

	// Only 4 of the requested 10 are on offer, below the buyer's limit.
	e.MustTx(func(s *contracts.Services) error {
		_, err := s.Exchange.OpenLimitOrder(maker.Address, 0,
			token.StakingSymbol, token.FuelSymbol, soul(4), kcalPrice(2), exchange.Sell, false)
		return err
	}, maker)

	var buyUID uint64
	e.MustTx(func(s *contracts.Services) error {
		uid, err := s.Exchange.OpenLimitOrder(buyer.Address, 0,
			token.StakingSymbol, token.FuelSymbol, soul(10), kcalPrice(3), exchange.Buy, false)
		buyUID = uid
		return err
	}, buyer)

	// Escrowed 30, spent 8 on the fill, rested 6x3=18 for the residual,
	// refunded the 4 saved by the price improvement.
	assert.Equal(t, soul(4), e.Balance(buyer, token.StakingSymbol))
	assert.Equal(t, kcal(100-30+4), e.Balance(buyer, token.FuelSymbol))
	require.NoError(t, e.View(func(s *contracts.Services) error {
		left, err := s.Exchange.GetOrderLeftoverEscrow(buyUID)
		require.NoError(t, err)
		assert.Equal(t, kcal(18), left)
		return nil
	}))
	assert.Equal(t, kcal(18), e.BalanceOf(exchange.Address, token.FuelSymbol))
}

func TestMarketSellWithoutPrice(t *testing.T) {
	e := env.NewEnv(t)
	seller := e.Account("seller")
	buyer := e.Account("buyer")
	e.Fund(seller, token.StakingSymbol, soul(100))
	e.Fund(buyer, token.FuelSymbol, kcal(100))

	e.MustTx(func(s *contracts.Services) error {
		_, err := s.Exchange.OpenLimitOrder(buyer.Address, 0,
			token.StakingSymbol, token.FuelSymbol, soul(10), kcalPrice(2), exchange.Buy, false)
		return err
	}, buyer)

	e.MustTx(func(s *contracts.Services) error {
		_, err := s.Exchange.OpenMarketOrder(seller.Address, 0,
			token.StakingSymbol, token.FuelSymbol, soul(10), big.NewInt(0), exchange.Sell)
		return err
	}, seller)

	assert.Equal(t, kcal(20), e.Balance(seller, token.FuelSymbol))
	assert.Equal(t, soul(10), e.Balance(buyer, token.StakingSymbol))
}

func TestMarketBuyRequiresPrice(t *testing.T) {
	e := env.NewEnv(t)
	buyer := e.Account("buyer")
	e.Fund(buyer, token.FuelSymbol, kcal(100))

	_, err := e.Tx(func(s *contracts.Services) error {
		_, err := s.Exchange.OpenMarketOrder(buyer.Address, 0,
			token.StakingSymbol, token.FuelSymbol, soul(10), big.NewInt(0), exchange.Buy)
		return err
	}, buyer)
	assert.ErrorIs(t, err, exchange.ErrInvalidPrice)
}

func TestImmediateOrCancelRefundsResidual(t *testing.T) {
	e := env.NewEnv(t)
	seller := e.Account("seller")
	buyer := e.Account("buyer")
	e.Fund(seller, token.StakingSymbol, soul(100))
	e.Fund(buyer, token.FuelSymbol, kcal(100))

	e.MustTx(func(s *contracts.Services) error {
		_, err := s.Exchange.OpenLimitOrder(seller.Address, 0,
			token.StakingSymbol, token.FuelSymbol, soul(4), kcalPrice(2), exchange.Sell, false)
		return err
	}, seller)

	// IoC buy of 10 fills 4 and refunds the rest instead of resting.
	e.MustTx(func(s *contracts.Services) error {
		_, err := s.Exchange.OpenLimitOrder(buyer.Address, 0,
			token.StakingSymbol, token.FuelSymbol, soul(10), kcalPrice(2), exchange.Buy, true)
		return err
	}, buyer)

	assert.Equal(t, soul(4), e.Balance(buyer, token.StakingSymbol))
	assert.Equal(t, kcal(92), e.Balance(buyer, token.FuelSymbol))
	require.NoError(t, e.View(func(s *contracts.Services) error {
		book, err := s.Exchange.GetOrderBook(token.StakingSymbol, token.FuelSymbol, exchange.Buy)
		require.NoError(t, err)
		assert.Empty(t, book)
		return nil
	}))
}

func TestCancelOrderRefundsEscrow(t *testing.T) {
	e := env.NewEnv(t)
	seller := e.Account("seller")
	other := e.Account("other")
	e.Fund(seller, token.StakingSymbol, soul(100))

	var uid uint64
	e.MustTx(func(s *contracts.Services) error {
		id, err := s.Exchange.OpenLimitOrder(seller.Address, 0,
			token.StakingSymbol, token.FuelSymbol, soul(10), kcalPrice(2), exchange.Sell, false)
		uid = id
		return err
	}, seller)
	require.Equal(t, soul(90), e.Balance(seller, token.StakingSymbol))

	// Someone else cannot cancel it.
	_, err := e.Tx(func(s *contracts.Services) error {
		return s.Exchange.CancelOrder(uid)
	}, other)
	assert.Error(t, err)
	require.Equal(t, soul(90), e.Balance(seller, token.StakingSymbol))

	e.MustTx(func(s *contracts.Services) error {
		return s.Exchange.CancelOrder(uid)
	}, seller)
	assert.Equal(t, soul(100), e.Balance(seller, token.StakingSymbol))
	assert.Zero(t, e.BalanceOf(exchange.Address, token.StakingSymbol).Sign())
}

func TestOrderValidation(t *testing.T) {
	e := env.NewEnv(t)
	acc := e.Account("acc")
	e.Fund(acc, token.StakingSymbol, soul(100))

	cases := []struct {
		name  string
		fn    func(s *contracts.Services) error
		match error
	}{
		{"same symbol", func(s *contracts.Services) error {
			_, err := s.Exchange.OpenLimitOrder(acc.Address, 0,
				token.StakingSymbol, token.StakingSymbol, soul(1), kcalPrice(1), exchange.Sell, false)
			return err
		}, exchange.ErrSameSymbol},
		{"unknown token", func(s *contracts.Services) error {
			_, err := s.Exchange.OpenLimitOrder(acc.Address, 0,
				"GHOST", token.FuelSymbol, soul(1), kcalPrice(1), exchange.Sell, false)
			return err
		}, exchange.ErrUnsupportedToken},
		{"zero size", func(s *contracts.Services) error {
			_, err := s.Exchange.OpenLimitOrder(acc.Address, 0,
				token.StakingSymbol, token.FuelSymbol, big.NewInt(0), kcalPrice(1), exchange.Sell, false)
			return err
		}, exchange.ErrInvalidSize},
		{"dust size", func(s *contracts.Services) error {
			_, err := s.Exchange.OpenLimitOrder(acc.Address, 0,
				token.StakingSymbol, token.FuelSymbol, big.NewInt(1), kcalPrice(1), exchange.Sell, false)
			return err
		}, exchange.ErrBelowMinimum},
		{"dust price", func(s *contracts.Services) error {
			_, err := s.Exchange.OpenLimitOrder(acc.Address, 0,
				token.StakingSymbol, token.FuelSymbol, soul(1), big.NewInt(1), exchange.Sell, false)
			return err
		}, exchange.ErrBelowMinimum},
		{"unknown provider", func(s *contracts.Services) error {
			_, err := s.Exchange.OpenLimitOrder(acc.Address, 77,
				token.StakingSymbol, token.FuelSymbol, soul(1), kcalPrice(1), exchange.Sell, false)
			return err
		}, exchange.ErrUnknownProvider},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Tx(tc.fn, acc)
			assert.ErrorIs(t, err, tc.match)
		})
	}
}

func TestMissingWitnessRejected(t *testing.T) {
	e := env.NewEnv(t)
	acc := e.Account("acc")
	e.Fund(acc, token.StakingSymbol, soul(100))

	// No witnesses on the transaction at all.
	_, err := e.Tx(func(s *contracts.Services) error {
		_, err := s.Exchange.OpenLimitOrder(acc.Address, 0,
			token.StakingSymbol, token.FuelSymbol, soul(1), kcalPrice(1), exchange.Sell, false)
		return err
	})
	assert.Error(t, err)
	assert.Equal(t, soul(100), e.Balance(acc, token.StakingSymbol))
}

func TestFailedTransactionLeavesNoTrace(t *testing.T) {
	e := env.NewEnv(t)
	acc := e.Account("acc")
	e.Fund(acc, token.StakingSymbol, soul(5))

	// First order succeeds inside the tx, then an overdraft aborts the whole
	// transaction; neither order may survive.
	_, err := e.Tx(func(s *contracts.Services) error {
		if _, err := s.Exchange.OpenLimitOrder(acc.Address, 0,
			token.StakingSymbol, token.FuelSymbol, soul(3), kcalPrice(1), exchange.Sell, false); err != nil {
			return err
		}
		_, err := s.Exchange.OpenLimitOrder(acc.Address, 0,
			token.StakingSymbol, token.FuelSymbol, soul(10), kcalPrice(1), exchange.Sell, false)
		return err
	}, acc)
	require.ErrorIs(t, err, token.ErrInsufficientBalance)

	assert.Equal(t, soul(5), e.Balance(acc, token.StakingSymbol))
	require.NoError(t, e.View(func(s *contracts.Services) error {
		book, err := s.Exchange.GetOrderBook(token.StakingSymbol, token.FuelSymbol, exchange.Sell)
		require.NoError(t, err)
		assert.Empty(t, book)
		return nil
	}))
}
