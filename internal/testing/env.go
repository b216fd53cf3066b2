// Package testing provides a test ledger environment for contract testing.
// It wires an in-memory store, a block clock, token registration and
// funding helpers, and per-transaction runtime construction so tests read
// like short scenarios.
package testing

import (
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phantasma-io/go-phantasma/internal/core/contracts"
	"github.com/phantasma-io/go-phantasma/internal/core/oracle"
	"github.com/phantasma-io/go-phantasma/internal/core/runtime"
	"github.com/phantasma-io/go-phantasma/internal/core/state"
	"github.com/phantasma-io/go-phantasma/internal/core/token"
	"github.com/phantasma-io/go-phantasma/internal/core/types"
	"github.com/phantasma-io/go-phantasma/internal/storage/keyvalue"
)

// BlockClock assigns a timestamp to each simulated block. Every committed
// transaction seals one block and moves time forward by the block interval;
// tests jump further ahead when they need to cross a volume-bucket day
// boundary.
type BlockClock struct {
	mu       sync.Mutex
	current  time.Time
	interval time.Duration
}

func newBlockClock() *BlockClock {
	return &BlockClock{
		current:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		interval: time.Second,
	}
}

// Now returns the pending block's timestamp.
func (c *BlockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the pending block's timestamp forward by d.
func (c *BlockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

func (c *BlockClock) sealBlock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(c.interval)
}

// Env manages a test chain environment. Each transaction runs in its own
// change set against the shared store; successful transactions commit,
// failed ones are discarded wholesale.
type Env struct {
	t        *testing.T
	store    keyvalue.Store
	clock    *BlockClock
	oracle   *oracle.Table
	accounts map[string]*Account
	height   uint64
}

// NewEnv creates an environment with the staking and fuel tokens already
// registered.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	env := &Env{
		t:        t,
		store:    keyvalue.NewMemoryStore(),
		clock:    newBlockClock(),
		oracle:   oracle.NewTable(),
		accounts: make(map[string]*Account),
		height:   1,
	}
	env.RegisterToken(token.StakingSymbol, "Phantasma Stake", token.StakingDecimals,
		token.FlagFungible|token.FlagTransferable|token.FlagStakable)
	env.RegisterToken(token.FuelSymbol, "Phantasma Energy", token.FuelDecimals,
		token.FlagFungible|token.FlagTransferable|token.FlagFuel)
	return env
}

// Account returns the named test account, creating it on first use.
func (e *Env) Account(name string) *Account {
	if a, ok := e.accounts[name]; ok {
		return a
	}
	a := NewAccount(e.t, name)
	e.accounts[name] = a
	return a
}

// Clock returns the environment's block clock.
func (e *Env) Clock() *BlockClock { return e.clock }

// Oracle returns the environment's price table.
func (e *Env) Oracle() *oracle.Table { return e.oracle }

// SetPrice records a fiat quote for a symbol.
func (e *Env) SetPrice(symbol string, price string) {
	e.t.Helper()
	d, err := decimal.NewFromString(price)
	if err != nil {
		e.t.Fatalf("bad price %q: %v", price, err)
	}
	e.oracle.Set(symbol, d)
}

// RegisterToken adds a token to the chain outside any transaction.
func (e *Env) RegisterToken(symbol, name string, decimals int, flags token.Flags) {
	e.t.Helper()
	cs := state.NewChangeSet(e.store)
	err := token.NewLedger(cs).Register(token.Token{
		Symbol:   symbol,
		Name:     name,
		Decimals: decimals,
		Flags:    flags,
	})
	if err != nil {
		e.t.Fatalf("register %s: %v", symbol, err)
	}
	if err := cs.Commit(); err != nil {
		e.t.Fatalf("commit: %v", err)
	}
}

// Fund mints tokens to an account outside any transaction.
func (e *Env) Fund(acc *Account, symbol string, amount *big.Int) {
	e.t.Helper()
	cs := state.NewChangeSet(e.store)
	if err := token.NewLedger(cs).Mint(symbol, acc.Address, amount); err != nil {
		e.t.Fatalf("fund %s with %s: %v", acc.Name, symbol, err)
	}
	if err := cs.Commit(); err != nil {
		e.t.Fatalf("commit: %v", err)
	}
}

// Balance reads an account's balance outside any transaction.
func (e *Env) Balance(acc *Account, symbol string) *big.Int {
	e.t.Helper()
	return e.BalanceOf(acc.Address, symbol)
}

// BalanceOf reads any address's balance outside any transaction.
func (e *Env) BalanceOf(addr types.Address, symbol string) *big.Int {
	e.t.Helper()
	cs := state.NewChangeSet(e.store)
	b, err := token.NewLedger(cs).BalanceOf(symbol, addr)
	if err != nil {
		e.t.Fatalf("balance of %s: %v", symbol, err)
	}
	return b
}

// Tx runs fn inside a fresh transaction runtime witnessed by the given
// accounts. On success the change set commits and the height advances; on
// error everything is discarded. Returns the error and the emitted events.
func (e *Env) Tx(fn func(s *contracts.Services) error, witnesses ...*Account) ([]runtime.Event, error) {
	e.t.Helper()
	cs := state.NewChangeSet(e.store)
	addrs := make([]types.Address, len(witnesses))
	for i, w := range witnesses {
		addrs[i] = w.Address
	}
	rt := runtime.New(runtime.Config{
		ChangeSet: cs,
		Oracle:    e.oracle,
		BlockTime: e.clock.Now(),
		Height:    e.height,
		Witnesses: addrs,
	})
	err := fn(contracts.NewServices(rt))
	if err != nil {
		cs.Discard()
		return rt.Events(), err
	}
	if cerr := cs.Commit(); cerr != nil {
		e.t.Fatalf("commit: %v", cerr)
	}
	e.height++
	e.clock.sealBlock()
	return rt.Events(), nil
}

// MustTx runs fn like Tx but fails the test on error.
func (e *Env) MustTx(fn func(s *contracts.Services) error, witnesses ...*Account) []runtime.Event {
	e.t.Helper()
	events, err := e.Tx(fn, witnesses...)
	if err != nil {
		e.t.Fatalf("transaction failed: %v", err)
	}
	return events
}

// View runs fn against a read-only change set that is always discarded.
func (e *Env) View(fn func(s *contracts.Services) error) error {
	e.t.Helper()
	cs := state.NewChangeSet(e.store)
	rt := runtime.New(runtime.Config{
		ChangeSet: cs,
		Oracle:    e.oracle,
		BlockTime: e.clock.Now(),
		Height:    e.height,
	})
	defer cs.Discard()
	return fn(contracts.NewServices(rt))
}
