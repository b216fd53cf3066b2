package token

import (
	"errors"
	"fmt"

	"github.com/phantasma-io/go-phantasma/internal/core/state"
	"github.com/phantasma-io/go-phantasma/internal/core/types"
)

// NFT is a non-fungible item: immutable ROM written at mint, mutable RAM the
// owning contract may rewrite, and a current owner.
type NFT struct {
	ID    uint64
	Owner types.Address
	ROM   []byte
	RAM   []byte
}

var ErrNFTNotFound = errors.New("nft does not exist")

func (l *Ledger) nfts(series string) state.Map {
	return state.NewMap(l.cs, "nfts/"+series)
}

func (l *Ledger) nftOwnership(series string, owner types.Address) state.Map {
	return state.NewMap(l.cs, "nftown/"+series+"/"+owner.String())
}

// MintNFT creates an item in the series with the given id. IDs come from the
// runtime's UID counter so they are unique per chain.
func (l *Ledger) MintNFT(series string, id uint64, owner types.Address, rom, ram []byte) error {
	m := l.nfts(series)
	key := state.Uint64Key(id)
	exists, err := m.Has(key)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("nft %s/%d already exists", series, id)
	}
	nft := &NFT{ID: id, Owner: owner, ROM: rom, RAM: ram}
	m.Put(key, serializeNFT(nft))
	l.nftOwnership(series, owner).Put(key, []byte{1})
	return nil
}

// ReadNFT returns the item, or ErrNFTNotFound.
func (l *Ledger) ReadNFT(series string, id uint64) (*NFT, error) {
	raw, err := l.nfts(series).Get(state.Uint64Key(id))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s/%d", ErrNFTNotFound, series, id)
	}
	return deserializeNFT(raw)
}

// NFTExists reports whether the item is present without decoding it.
func (l *Ledger) NFTExists(series string, id uint64) bool {
	ok, err := l.nfts(series).Has(state.Uint64Key(id))
	return err == nil && ok
}

// WriteNFTRAM replaces the mutable content of an item.
func (l *Ledger) WriteNFTRAM(series string, id uint64, ram []byte) error {
	nft, err := l.ReadNFT(series, id)
	if err != nil {
		return err
	}
	nft.RAM = ram
	l.nfts(series).Put(state.Uint64Key(id), serializeNFT(nft))
	return nil
}

// BurnNFT destroys the item.
func (l *Ledger) BurnNFT(series string, id uint64) error {
	nft, err := l.ReadNFT(series, id)
	if err != nil {
		return err
	}
	l.nfts(series).Delete(state.Uint64Key(id))
	l.nftOwnership(series, nft.Owner).Delete(state.Uint64Key(id))
	return nil
}

// NFTsOf returns the ids owned by addr in the series, ascending.
func (l *Ledger) NFTsOf(series string, addr types.Address) ([]uint64, error) {
	keys, err := l.nftOwnership(series, addr).Keys()
	if err != nil {
		return nil, err
	}
	out := make([]uint64, 0, len(keys))
	for _, k := range keys {
		if len(k) != 8 {
			return nil, fmt.Errorf("corrupt nft ownership key (%d bytes)", len(k))
		}
		r := types.NewReader(k)
		id, err := r.ReadUint64()
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func serializeNFT(n *NFT) []byte {
	w := types.NewWriter()
	w.WriteUint64(n.ID)
	w.WriteAddress(n.Owner)
	w.WriteBytes(n.ROM)
	w.WriteBytes(n.RAM)
	return w.Bytes()
}

func deserializeNFT(raw []byte) (*NFT, error) {
	r := types.NewReader(raw)
	var n NFT
	var err error
	if n.ID, err = r.ReadUint64(); err != nil {
		return nil, err
	}
	if n.Owner, err = r.ReadAddress(); err != nil {
		return nil, err
	}
	if n.ROM, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if n.RAM, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	return &n, r.Done()
}
