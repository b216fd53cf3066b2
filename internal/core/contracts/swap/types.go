package swap

import (
	"errors"
	"math/big"
	"strings"

	"github.com/phantasma-io/go-phantasma/internal/core/types"
)

// Pool is one constant-product liquidity pool for an unordered symbol pair.
// Symbols are stored in canonical (lexicographic) order. Reserves are in each
// token's smallest unit. FeeRatio is per mille (3 = 0.3%).
type Pool struct {
	Symbol0  string
	Symbol1  string
	Address0 types.Address
	Address1 types.Address
	Amount0  *big.Int
	Amount1  *big.Int
	FeeRatio int64

	// Cumulative fee totals per side, split between liquidity providers and
	// the pool owner. Counters, not balances.
	FeesForUsers0 *big.Int
	FeesForUsers1 *big.Int
	FeesForOwner0 *big.Int
	FeesForOwner1 *big.Int

	TotalLiquidity *big.Int
	Owner          types.Address
}

// LPContentROM is the immutable part of a liquidity position NFT.
type LPContentROM struct {
	Symbol0 string
	Symbol1 string
	ID      uint64
}

// LPContentRAM is the mutable part: the holder's deposits and liquidity
// share, plus lifetime claimed fees.
type LPContentRAM struct {
	Amount0      *big.Int
	Amount1      *big.Int
	Liquidity    *big.Int
	ClaimedFees0 *big.Int
	ClaimedFees1 *big.Int
}

// HolderRecord tracks one provider's pending and lifetime fees in a pool,
// keyed by their position NFT id.
type HolderRecord struct {
	NFTID      uint64
	Unclaimed0 *big.Int
	Unclaimed1 *big.Int
	Claimed0   *big.Int
	Claimed1   *big.Int
}

// DayVolume is one pool's swapped volume for a calendar day, per side.
type DayVolume struct {
	Day     uint32 // YYYYMMDD, UTC
	Volume0 *big.Int
	Volume1 *big.Int
}

// RouteItem is one hop of a computed route: swap In for Out through their
// direct pool.
type RouteItem struct {
	In  string
	Out string
}

// Route is the ordered hop sequence connecting an entry and exit symbol.
type Route []RouteItem

var (
	ErrSameSymbol        = errors.New("pool symbols must differ")
	ErrUnsupportedToken  = errors.New("token is not supported for pooling")
	ErrPoolExists        = errors.New("pool already exists for pair")
	ErrPoolNotFound      = errors.New("pool not found")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrRatioMismatch     = errors.New("trade ratio does not match pool ratio")
	ErrNoQuote           = errors.New("no oracle quote for token")
	ErrReserveDrained    = errors.New("trade would drain a pool reserve")
	ErrNoRoute           = errors.New("no route between tokens")
	ErrPositionNotFound  = errors.New("no liquidity position for holder")
	ErrInsufficientStake = errors.New("liquidity position too small")
	ErrPositionNotEmpty  = errors.New("liquidity position is not empty")
	ErrDustSwap          = errors.New("swap output rounds to nothing")
)

// pairKey returns the canonical bucket key for an unordered symbol pair.
func pairKey(a, b string) string {
	s0, s1 := sortPair(a, b)
	return s0 + "/" + s1
}

func sortPair(a, b string) (string, string) {
	if strings.Compare(a, b) <= 0 {
		return a, b
	}
	return b, a
}

func serializePool(p *Pool) []byte {
	w := types.NewWriter()
	w.WriteString(p.Symbol0)
	w.WriteString(p.Symbol1)
	w.WriteAddress(p.Address0)
	w.WriteAddress(p.Address1)
	w.WriteBigInt(p.Amount0)
	w.WriteBigInt(p.Amount1)
	w.WriteInt64(p.FeeRatio)
	w.WriteBigInt(p.FeesForUsers0)
	w.WriteBigInt(p.FeesForUsers1)
	w.WriteBigInt(p.FeesForOwner0)
	w.WriteBigInt(p.FeesForOwner1)
	w.WriteBigInt(p.TotalLiquidity)
	w.WriteAddress(p.Owner)
	return w.Bytes()
}

func deserializePool(raw []byte) (*Pool, error) {
	r := types.NewReader(raw)
	var p Pool
	var err error
	if p.Symbol0, err = r.ReadString(); err != nil {
		return nil, err
	}
	if p.Symbol1, err = r.ReadString(); err != nil {
		return nil, err
	}
	if p.Address0, err = r.ReadAddress(); err != nil {
		return nil, err
	}
	if p.Address1, err = r.ReadAddress(); err != nil {
		return nil, err
	}
	if p.Amount0, err = r.ReadBigInt(); err != nil {
		return nil, err
	}
	if p.Amount1, err = r.ReadBigInt(); err != nil {
		return nil, err
	}
	if p.FeeRatio, err = r.ReadInt64(); err != nil {
		return nil, err
	}
	if p.FeesForUsers0, err = r.ReadBigInt(); err != nil {
		return nil, err
	}
	if p.FeesForUsers1, err = r.ReadBigInt(); err != nil {
		return nil, err
	}
	if p.FeesForOwner0, err = r.ReadBigInt(); err != nil {
		return nil, err
	}
	if p.FeesForOwner1, err = r.ReadBigInt(); err != nil {
		return nil, err
	}
	if p.TotalLiquidity, err = r.ReadBigInt(); err != nil {
		return nil, err
	}
	if p.Owner, err = r.ReadAddress(); err != nil {
		return nil, err
	}
	return &p, r.Done()
}

func serializeLPROM(rom *LPContentROM) []byte {
	w := types.NewWriter()
	w.WriteString(rom.Symbol0)
	w.WriteString(rom.Symbol1)
	w.WriteUint64(rom.ID)
	return w.Bytes()
}

func deserializeLPROM(raw []byte) (*LPContentROM, error) {
	r := types.NewReader(raw)
	var rom LPContentROM
	var err error
	if rom.Symbol0, err = r.ReadString(); err != nil {
		return nil, err
	}
	if rom.Symbol1, err = r.ReadString(); err != nil {
		return nil, err
	}
	if rom.ID, err = r.ReadUint64(); err != nil {
		return nil, err
	}
	return &rom, r.Done()
}

func serializeLPRAM(ram *LPContentRAM) []byte {
	w := types.NewWriter()
	w.WriteBigInt(ram.Amount0)
	w.WriteBigInt(ram.Amount1)
	w.WriteBigInt(ram.Liquidity)
	w.WriteBigInt(ram.ClaimedFees0)
	w.WriteBigInt(ram.ClaimedFees1)
	return w.Bytes()
}

func deserializeLPRAM(raw []byte) (*LPContentRAM, error) {
	r := types.NewReader(raw)
	var ram LPContentRAM
	var err error
	if ram.Amount0, err = r.ReadBigInt(); err != nil {
		return nil, err
	}
	if ram.Amount1, err = r.ReadBigInt(); err != nil {
		return nil, err
	}
	if ram.Liquidity, err = r.ReadBigInt(); err != nil {
		return nil, err
	}
	if ram.ClaimedFees0, err = r.ReadBigInt(); err != nil {
		return nil, err
	}
	if ram.ClaimedFees1, err = r.ReadBigInt(); err != nil {
		return nil, err
	}
	return &ram, r.Done()
}

func serializeHolder(h *HolderRecord) []byte {
	w := types.NewWriter()
	w.WriteUint64(h.NFTID)
	w.WriteBigInt(h.Unclaimed0)
	w.WriteBigInt(h.Unclaimed1)
	w.WriteBigInt(h.Claimed0)
	w.WriteBigInt(h.Claimed1)
	return w.Bytes()
}

func deserializeHolder(raw []byte) (*HolderRecord, error) {
	r := types.NewReader(raw)
	var h HolderRecord
	var err error
	if h.NFTID, err = r.ReadUint64(); err != nil {
		return nil, err
	}
	if h.Unclaimed0, err = r.ReadBigInt(); err != nil {
		return nil, err
	}
	if h.Unclaimed1, err = r.ReadBigInt(); err != nil {
		return nil, err
	}
	if h.Claimed0, err = r.ReadBigInt(); err != nil {
		return nil, err
	}
	if h.Claimed1, err = r.ReadBigInt(); err != nil {
		return nil, err
	}
	return &h, r.Done()
}

func serializeVolume(v *DayVolume) []byte {
	w := types.NewWriter()
	w.WriteUint32(v.Day)
	w.WriteBigInt(v.Volume0)
	w.WriteBigInt(v.Volume1)
	return w.Bytes()
}

func deserializeVolume(raw []byte) (*DayVolume, error) {
	r := types.NewReader(raw)
	var v DayVolume
	var err error
	if v.Day, err = r.ReadUint32(); err != nil {
		return nil, err
	}
	if v.Volume0, err = r.ReadBigInt(); err != nil {
		return nil, err
	}
	if v.Volume1, err = r.ReadBigInt(); err != nil {
		return nil, err
	}
	return &v, r.Done()
}
