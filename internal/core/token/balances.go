package token

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/phantasma-io/go-phantasma/internal/core/state"
	"github.com/phantasma-io/go-phantasma/internal/core/types"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("invalid amount")
)

func (l *Ledger) balances(symbol string) state.Map {
	return state.NewMap(l.cs, "balances/"+symbol)
}

// BalanceOf returns the fungible balance of addr, zero when no entry exists.
func (l *Ledger) BalanceOf(symbol string, addr types.Address) (*big.Int, error) {
	raw, err := l.balances(symbol).Get(addr[:])
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

func (l *Ledger) setBalance(symbol string, addr types.Address, v *big.Int) {
	m := l.balances(symbol)
	if v.Sign() == 0 {
		m.Delete(addr[:])
		return
	}
	w := types.NewWriter()
	w.WriteBigInt(v)
	m.Put(addr[:], w.Bytes())
}

// Mint credits amount of symbol to addr. Only used by genesis and the test
// harness; supply caps are enforced here.
func (l *Ledger) Mint(symbol string, addr types.Address, amount *big.Int) error {
	t, err := l.Get(symbol)
	if err != nil {
		return err
	}
	if !t.Flags.Has(FlagFungible) {
		return fmt.Errorf("%w: %s", ErrTokenNotFungible, symbol)
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	bal, err := l.BalanceOf(symbol, addr)
	if err != nil {
		return err
	}
	l.setBalance(symbol, addr, new(big.Int).Add(bal, amount))
	return nil
}

// Transfer moves amount of symbol from one address to another. Zero and
// negative amounts are rejected; an underfunded source aborts the transfer.
func (l *Ledger) Transfer(symbol string, from, to types.Address, amount *big.Int) error {
	t, err := l.Get(symbol)
	if err != nil {
		return err
	}
	if !t.Flags.Has(FlagFungible) {
		return fmt.Errorf("%w: %s", ErrTokenNotFungible, symbol)
	}
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("%w: transfer of %v %s", ErrInvalidAmount, amount, symbol)
	}
	if from == to {
		return nil
	}

	fromBal, err := l.BalanceOf(symbol, from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %v %s, needs %v",
			ErrInsufficientBalance, from, fromBal, symbol, amount)
	}
	toBal, err := l.BalanceOf(symbol, to)
	if err != nil {
		return err
	}

	l.setBalance(symbol, from, new(big.Int).Sub(fromBal, amount))
	l.setBalance(symbol, to, new(big.Int).Add(toBal, amount))
	return nil
}
