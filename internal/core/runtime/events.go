package runtime

import "github.com/phantasma-io/go-phantasma/internal/core/types"

// EventKind tags a notification emitted during transaction execution.
type EventKind int

const (
	EventOrderCreated EventKind = iota + 1
	EventOrderFilled
	EventOrderClosed
	EventOrderCancelled
	EventOTCCreated
	EventOTCFilled
	EventOTCCancelled
	EventPoolCreated
	EventPoolDeleted
	EventLiquidityAdded
	EventLiquidityRemoved
	EventTokenSwap
	EventFeesClaimed
	EventProviderCreated
	EventProviderEdited
)

func (k EventKind) String() string {
	switch k {
	case EventOrderCreated:
		return "OrderCreated"
	case EventOrderFilled:
		return "OrderFilled"
	case EventOrderClosed:
		return "OrderClosed"
	case EventOrderCancelled:
		return "OrderCancelled"
	case EventOTCCreated:
		return "OTCCreated"
	case EventOTCFilled:
		return "OTCFilled"
	case EventOTCCancelled:
		return "OTCCancelled"
	case EventPoolCreated:
		return "PoolCreated"
	case EventPoolDeleted:
		return "PoolDeleted"
	case EventLiquidityAdded:
		return "LiquidityAdded"
	case EventLiquidityRemoved:
		return "LiquidityRemoved"
	case EventTokenSwap:
		return "TokenSwap"
	case EventFeesClaimed:
		return "FeesClaimed"
	case EventProviderCreated:
		return "ProviderCreated"
	case EventProviderEdited:
		return "ProviderEdited"
	default:
		return "Unknown"
	}
}

// Event is one notification; indexers and wallets consume these.
type Event struct {
	Kind     EventKind
	Address  types.Address
	Contract string
	Data     []byte
}
