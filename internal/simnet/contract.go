package simnet

import (
	"fmt"
	"sort"
	"sync"

	"github.com/roach88/clartest/internal/clarity"
)

// CallContext is what a contract function sees of the chain.
type CallContext struct {
	// Sender is tx-sender.
	Sender string
	// Deployer is the address that deployed the contract.
	Deployer string
	// Height is the height of the block being mined, or the current tip
	// for read-only calls.
	Height int64
	// State is the contract's own storage.
	State *ContractState
}

// PublicFunc is a state-changing contract function. Returning (err ...)
// rolls back its writes. A Go error aborts the whole block.
type PublicFunc func(cc *CallContext, args []clarity.Value) (clarity.ResponseValue, error)

// ReadOnlyFunc is a read-only contract function.
type ReadOnlyFunc func(cc *CallContext, args []clarity.Value) (clarity.Value, error)

// Contract resolves function names to implementations.
type Contract interface {
	Public(name string) (PublicFunc, bool)
	ReadOnly(name string) (ReadOnlyFunc, bool)
}

// Factory creates a fresh contract instance for one chain.
type Factory func() Contract

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterContract makes a contract implementation available for
// deployment under name. It panics if factory is nil or name is taken.
func RegisterContract(name string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if factory == nil {
		panic("simnet: RegisterContract factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("simnet: RegisterContract called twice for contract " + name)
	}
	factories[name] = factory
}

// Contracts returns the registered contract names in sorted order.
func Contracts() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupFactory(name string) (Factory, error) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not registered", ErrUnknownContract, name)
	}
	return f, nil
}
