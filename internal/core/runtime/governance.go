package runtime

import (
	"github.com/phantasma-io/go-phantasma/internal/core/state"
	"github.com/phantasma-io/go-phantasma/internal/core/types"
)

// Governance parameter names consumed by the exchange engine.
const (
	GovExchangeDexDefaultFee  = "exchange.dex.fee.default"  // percent of swap fees retained by the pool
	GovExchangeDexPoolPercent = "exchange.dex.fee.pool"     // percent of the retained share paid to LPs
	GovExchangeMaxOTCOrders   = "exchange.otc.max.orders"   // per-creator OTC offer cap
	GovMaxTokenDecimals       = "token.decimals.max"        // chain-wide maximum decimal precision
)

var governanceDefaults = map[string]int64{
	GovExchangeDexDefaultFee:  3,
	GovExchangeDexPoolPercent: 75,
	GovExchangeMaxOTCOrders:   3,
	GovMaxTokenDecimals:       18,
}

func (r *Runtime) governance() state.Map {
	return state.NewMap(r.cs, "governance")
}

// GetGovernanceValue returns the chain value for name, falling back to the
// built-in default when governance never voted on it.
func (r *Runtime) GetGovernanceValue(name string) int64 {
	raw, err := r.governance().Get([]byte(name))
	if err == nil && raw != nil {
		rd := types.NewReader(raw)
		if v, err := rd.ReadInt64(); err == nil {
			return v
		}
	}
	return governanceDefaults[name]
}

// SetGovernanceValue overrides a parameter. Reachable only from the
// governance contract and the test harness.
func (r *Runtime) SetGovernanceValue(name string, value int64) {
	w := types.NewWriter()
	w.WriteInt64(value)
	r.governance().Put([]byte(name), w.Bytes())
}
