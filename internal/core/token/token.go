// Package token implements the ledger access layer the native contracts run
// against: the token registry, the fungible balance sheet, and the NFT store.
package token

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/phantasma-io/go-phantasma/internal/core/state"
	"github.com/phantasma-io/go-phantasma/internal/core/types"
)

// Flags describe token capabilities.
type Flags uint32

const (
	FlagFungible Flags = 1 << iota
	FlagTransferable
	FlagFuel
	FlagStakable
	FlagFiat
)

func (f Flags) Has(flag Flags) bool {
	return f&flag != 0
}

// Token is the registered metadata of a token symbol.
type Token struct {
	Symbol    string
	Name      string
	Decimals  int
	MaxSupply *big.Int // nil means uncapped
	Flags     Flags
	Owner     types.Address
}

var (
	ErrTokenExists      = errors.New("token already exists")
	ErrTokenNotFound    = errors.New("token does not exist")
	ErrTokenNotFungible = errors.New("token is not fungible")
	ErrInvalidSymbol    = errors.New("invalid token symbol")
)

// Ledger gives state-bound access to tokens, balances and NFTs.
type Ledger struct {
	cs *state.ChangeSet
}

func NewLedger(cs *state.ChangeSet) *Ledger {
	return &Ledger{cs: cs}
}

func (l *Ledger) tokens() state.Map {
	return state.NewMap(l.cs, "tokens")
}

func validSymbol(symbol string) bool {
	if len(symbol) < 2 || len(symbol) > 10 {
		return false
	}
	for _, c := range symbol {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// Register adds a token to the registry.
func (l *Ledger) Register(t Token) error {
	if !validSymbol(t.Symbol) {
		return fmt.Errorf("%w: %q", ErrInvalidSymbol, t.Symbol)
	}
	exists, err := l.tokens().Has([]byte(t.Symbol))
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrTokenExists, t.Symbol)
	}
	l.tokens().Put([]byte(t.Symbol), serializeToken(&t))
	return nil
}

// Exists reports whether symbol is registered.
func (l *Ledger) Exists(symbol string) bool {
	ok, err := l.tokens().Has([]byte(symbol))
	return err == nil && ok
}

// Get returns the registered token for symbol.
func (l *Ledger) Get(symbol string) (*Token, error) {
	raw, err := l.tokens().Get([]byte(symbol))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s", ErrTokenNotFound, symbol)
	}
	return deserializeToken(raw)
}

func serializeToken(t *Token) []byte {
	w := types.NewWriter()
	w.WriteString(t.Symbol)
	w.WriteString(t.Name)
	w.WriteUint8(uint8(t.Decimals))
	w.WriteBigInt(t.MaxSupply)
	w.WriteUint32(uint32(t.Flags))
	w.WriteAddress(t.Owner)
	return w.Bytes()
}

func deserializeToken(raw []byte) (*Token, error) {
	r := types.NewReader(raw)
	var t Token
	var err error
	if t.Symbol, err = r.ReadString(); err != nil {
		return nil, err
	}
	if t.Name, err = r.ReadString(); err != nil {
		return nil, err
	}
	dec, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	t.Decimals = int(dec)
	if t.MaxSupply, err = r.ReadBigInt(); err != nil {
		return nil, err
	}
	if t.MaxSupply.Sign() == 0 {
		t.MaxSupply = nil
	}
	flags, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	t.Flags = Flags(flags)
	if t.Owner, err = r.ReadAddress(); err != nil {
		return nil, err
	}
	return &t, r.Done()
}
