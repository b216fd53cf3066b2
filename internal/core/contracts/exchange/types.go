package exchange

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/phantasma-io/go-phantasma/internal/core/types"
)

// Side is the direction of an order relative to the base token.
type Side uint8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "Buy"
	}
	return "Sell"
}

// Opposite returns the side a matching maker rests on.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Type distinguishes how an order interacts with the book.
type Type uint8

const (
	Market Type = iota
	Limit
	ImmediateOrCancel
	OTC
)

func (t Type) String() string {
	switch t {
	case Market:
		return "Market"
	case Limit:
		return "Limit"
	case ImmediateOrCancel:
		return "ImmediateOrCancel"
	case OTC:
		return "OTC"
	default:
		return "Unknown"
	}
}

// Order is one exchange order, resting in or passing through the book.
// Amount is denominated in base-token smallest units; Price is the amount of
// quote smallest units paid per whole base token.
type Order struct {
	UID         uint64
	Timestamp   time.Time
	Creator     types.Address
	Provider    uint64 // registered provider id, zero when none
	Amount      *big.Int
	BaseSymbol  string
	Price       *big.Int
	QuoteSymbol string
	Side        Side
	Type        Type
}

// Provider is a registered fee-taking venue. ExchangeFee and PoolFee split
// the venue's take and must sum to 100.
type Provider struct {
	ID          uint64
	Name        string
	Owner       types.Address
	TotalFee    int
	ExchangeFee int
	PoolFee     int
}

// Named precondition failures; each aborts the transaction wholesale.
var (
	ErrSameSymbol       = errors.New("base and quote symbols must differ")
	ErrUnsupportedToken = errors.New("token is not supported for trading")
	ErrInvalidSize      = errors.New("order size must be positive")
	ErrInvalidPrice     = errors.New("order price is invalid")
	ErrBelowMinimum     = errors.New("order below minimum quantity")
	ErrUnknownOrder     = errors.New("order not found")
	ErrUnknownProvider  = errors.New("exchange provider not found")
	ErrNotOrderCreator  = errors.New("only the order creator may cancel it")
	ErrOTCSellOnly      = errors.New("otc orders must be sell side")
	ErrOTCLimitReached  = errors.New("otc offer limit reached for creator")
	ErrProviderFees     = errors.New("provider fee percentages are invalid")
	ErrNotProviderOwner = errors.New("only the provider owner may edit it")
)

func serializeOrder(o *Order) []byte {
	w := types.NewWriter()
	w.WriteUint64(o.UID)
	w.WriteInt64(o.Timestamp.Unix())
	w.WriteAddress(o.Creator)
	w.WriteUint64(o.Provider)
	w.WriteBigInt(o.Amount)
	w.WriteString(o.BaseSymbol)
	w.WriteBigInt(o.Price)
	w.WriteString(o.QuoteSymbol)
	w.WriteUint8(uint8(o.Side))
	w.WriteUint8(uint8(o.Type))
	return w.Bytes()
}

func deserializeOrder(raw []byte) (*Order, error) {
	r := types.NewReader(raw)
	var o Order
	var err error
	if o.UID, err = r.ReadUint64(); err != nil {
		return nil, err
	}
	ts, err := r.ReadInt64()
	if err != nil {
		return nil, err
	}
	o.Timestamp = time.Unix(ts, 0).UTC()
	if o.Creator, err = r.ReadAddress(); err != nil {
		return nil, err
	}
	if o.Provider, err = r.ReadUint64(); err != nil {
		return nil, err
	}
	if o.Amount, err = r.ReadBigInt(); err != nil {
		return nil, err
	}
	if o.BaseSymbol, err = r.ReadString(); err != nil {
		return nil, err
	}
	if o.Price, err = r.ReadBigInt(); err != nil {
		return nil, err
	}
	if o.QuoteSymbol, err = r.ReadString(); err != nil {
		return nil, err
	}
	side, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	o.Side = Side(side)
	typ, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	o.Type = Type(typ)
	return &o, r.Done()
}

func serializeProvider(p *Provider) []byte {
	w := types.NewWriter()
	w.WriteUint64(p.ID)
	w.WriteString(p.Name)
	w.WriteAddress(p.Owner)
	w.WriteUint8(uint8(p.TotalFee))
	w.WriteUint8(uint8(p.ExchangeFee))
	w.WriteUint8(uint8(p.PoolFee))
	return w.Bytes()
}

func deserializeProvider(raw []byte) (*Provider, error) {
	r := types.NewReader(raw)
	var p Provider
	var err error
	if p.ID, err = r.ReadUint64(); err != nil {
		return nil, err
	}
	if p.Name, err = r.ReadString(); err != nil {
		return nil, err
	}
	if p.Owner, err = r.ReadAddress(); err != nil {
		return nil, err
	}
	total, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	exch, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	pool, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	p.TotalFee, p.ExchangeFee, p.PoolFee = int(total), int(exch), int(pool)
	return &p, r.Done()
}

// bookKey is the map name of one side of one pair's book.
func bookKey(quoteSymbol, baseSymbol string, side Side) string {
	return fmt.Sprintf("exchange/book/%s/%s/%d", quoteSymbol, baseSymbol, side)
}
