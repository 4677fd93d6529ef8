package providers

import (
	"fmt"
	"sort"
	"sync"

	"github.com/fable-labs/fable/core"
	"github.com/fable-labs/fable/keypool"
)

// ProviderFactory creates a provider instance drawing credentials from the
// given pool.
type ProviderFactory func(pool *keypool.Pool) core.Provider

// registry holds registered provider factories.
var (
	registryMu sync.RWMutex
	registry   = make(map[string]ProviderFactory)
)

// Register adds a provider factory to the registry.
// It is typically called from a provider's init() function.
// If a provider with the same name is already registered, it will be
// overwritten.
//
// Example usage in a provider package:
//
//	func init() {
//	    providers.Register("openai", func(pool *keypool.Pool) core.Provider {
//	        return New(pool)
//	    })
//	}
func Register(name string, factory ProviderFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves a provider factory by name.
// Returns nil if the provider is not registered.
func Get(name string) ProviderFactory {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[name]
}

// Create creates a new provider instance by name backed by the given pool.
// Returns an error if the provider is not registered.
func Create(name string, pool *keypool.Pool) (core.Provider, error) {
	factory := Get(name)
	if factory == nil {
		return nil, fmt.Errorf("unknown provider: %s (available: %v)", name, List())
	}
	return factory(pool), nil
}

// List returns the names of all registered providers in sorted order.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered returns true if a provider with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}
