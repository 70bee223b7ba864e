package clarinet

import (
	"context"
	"fmt"
	"sync"
)

// TestFunc is a test body. It runs to completion and returns nil on
// success or the first failure.
type TestFunc func(ctx context.Context, chain Chain, accounts AccountMap) error

// Options describes a registered test.
type Options struct {
	Name string
	Fn   TestFunc
}

// Registry holds registered tests in registration order.
type Registry struct {
	mu    sync.Mutex
	tests []Options
	names map[string]bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]bool)}
}

// DefaultRegistry is the registry used by Test.
var DefaultRegistry = NewRegistry()

// Test records a test. Nothing runs until a Runner executes the registry.
// It panics on an empty name, a nil body or a duplicate name, since these
// are programming errors in init code.
func (r *Registry) Test(opts Options) {
	if opts.Name == "" {
		panic("clarinet: test registered with empty name")
	}
	if opts.Fn == nil {
		panic(fmt.Sprintf("clarinet: test %q registered with nil body", opts.Name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.names[opts.Name] {
		panic(fmt.Sprintf("clarinet: test %q registered twice", opts.Name))
	}
	r.names[opts.Name] = true
	r.tests = append(r.tests, opts)
}

// Tests returns a copy of the registered tests.
func (r *Registry) Tests() []Options {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Options, len(r.tests))
	copy(out, r.tests)
	return out
}

// Test registers a test in DefaultRegistry.
func Test(opts Options) {
	DefaultRegistry.Test(opts)
}
