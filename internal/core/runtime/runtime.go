// Package runtime carries the per-invocation context native contracts run
// under: the buffered state view, the ledger services, the block's agreed
// timestamp, and the witnesses that authorized the transaction. Contracts
// never read the wall clock or any other ambient source; everything observable
// flows through the Runtime so execution is deterministic across replicas.
package runtime

import (
	"errors"
	"fmt"
	"time"

	"github.com/phantasma-io/go-phantasma/internal/core/oracle"
	"github.com/phantasma-io/go-phantasma/internal/core/state"
	"github.com/phantasma-io/go-phantasma/internal/core/token"
	"github.com/phantasma-io/go-phantasma/internal/core/types"
)

var ErrNotWitness = errors.New("address is not a witness of this transaction")

// Runtime is the execution context of one transaction. Nested native-contract
// calls share the same Runtime and therefore the same ChangeSet, so a failure
// anywhere unwinds everything.
type Runtime struct {
	cs     *state.ChangeSet
	ledger *token.Ledger
	oracle oracle.PriceOracle

	blockTime   time.Time
	blockHeight uint64

	witnesses map[types.Address]bool
	events    []Event
}

// Config assembles a Runtime for one transaction.
type Config struct {
	ChangeSet *state.ChangeSet
	Oracle    oracle.PriceOracle
	BlockTime time.Time
	Height    uint64
	Witnesses []types.Address
}

func New(cfg Config) *Runtime {
	w := make(map[types.Address]bool, len(cfg.Witnesses))
	for _, a := range cfg.Witnesses {
		w[a] = true
	}
	var orc oracle.PriceOracle = cfg.Oracle
	if orc == nil {
		orc = oracle.Empty{}
	}
	return &Runtime{
		cs:          cfg.ChangeSet,
		ledger:      token.NewLedger(cfg.ChangeSet),
		oracle:      orc,
		blockTime:   cfg.BlockTime.UTC(),
		blockHeight: cfg.Height,
		witnesses:   w,
	}
}

// State returns the transaction's buffered state view.
func (r *Runtime) State() *state.ChangeSet {
	return r.cs
}

// Ledger returns the token/balance/NFT services bound to this transaction.
func (r *Runtime) Ledger() *token.Ledger {
	return r.ledger
}

// Oracle returns the price feed.
func (r *Runtime) Oracle() oracle.PriceOracle {
	return r.oracle
}

// Time is the block's agreed timestamp, in UTC.
func (r *Runtime) Time() time.Time {
	return r.blockTime
}

// Height is the block height the transaction executes in.
func (r *Runtime) Height() uint64 {
	return r.blockHeight
}

// IsWitness reports whether addr signed the transaction.
func (r *Runtime) IsWitness(addr types.Address) bool {
	return r.witnesses[addr]
}

// ExpectWitness fails the invocation when addr did not sign the transaction.
func (r *Runtime) ExpectWitness(addr types.Address) error {
	if !r.IsWitness(addr) {
		return fmt.Errorf("%w: %s", ErrNotWitness, addr)
	}
	return nil
}

// Notify records an event for indexers.
func (r *Runtime) Notify(kind EventKind, addr types.Address, contract string, data []byte) {
	r.events = append(r.events, Event{Kind: kind, Address: addr, Contract: contract, Data: data})
}

// Events returns the notifications emitted so far.
func (r *Runtime) Events() []Event {
	return r.events
}

// GenerateUID returns the next chain-unique id. The counter is part of
// ledger state, so ids are identical on every replica.
func (r *Runtime) GenerateUID() (uint64, error) {
	m := state.NewMap(r.cs, "chain")
	raw, err := m.Get([]byte("uid"))
	if err != nil {
		return 0, err
	}
	var next uint64 = 1
	if raw != nil {
		rd := types.NewReader(raw)
		last, err := rd.ReadUint64()
		if err != nil {
			return 0, err
		}
		next = last + 1
	}
	w := types.NewWriter()
	w.WriteUint64(next)
	m.Put([]byte("uid"), w.Bytes())
	return next, nil
}
