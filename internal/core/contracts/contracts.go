// Package contracts exposes the native services available to transaction
// execution. Each service is constructed fresh against the transaction's
// runtime so its writes share the same change set.
package contracts

import (
	"fmt"

	"github.com/phantasma-io/go-phantasma/internal/core/contracts/exchange"
	"github.com/phantasma-io/go-phantasma/internal/core/contracts/swap"
	"github.com/phantasma-io/go-phantasma/internal/core/runtime"
)

// Services bundles the native contracts bound to one runtime.
type Services struct {
	Exchange *exchange.Contract
	Swap     *swap.Contract
}

func NewServices(rt *runtime.Runtime) *Services {
	return &Services{
		Exchange: exchange.New(rt),
		Swap:     swap.New(rt),
	}
}

// Names lists the registered native contracts in dispatch order.
func Names() []string {
	return []string{exchange.Name, swap.Name}
}

// Exists reports whether a native contract with the name is registered.
func Exists(name string) bool {
	for _, n := range Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Resolve returns the named service from the bundle.
func (s *Services) Resolve(name string) (any, error) {
	switch name {
	case exchange.Name:
		return s.Exchange, nil
	case swap.Name:
		return s.Swap, nil
	}
	return nil, fmt.Errorf("unknown native contract %q", name)
}
