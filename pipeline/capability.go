package pipeline

import (
	"context"
	"sync"
)

// Capability is a unit of executable work a step can invoke. Execute
// receives the resolved input fields and the step's literal params, and
// returns named outputs for the engine to route back into the data bag.
// Capabilities must tolerate missing optional input fields.
type Capability interface {
	ID() string
	Execute(ctx context.Context, input, params map[string]any) (map[string]any, error)
}

// CapabilityFunc adapts a function to the Capability interface.
type CapabilityFunc struct {
	Name string
	Fn   func(ctx context.Context, input, params map[string]any) (map[string]any, error)
}

func (c CapabilityFunc) ID() string {
	return c.Name
}

func (c CapabilityFunc) Execute(ctx context.Context, input, params map[string]any) (map[string]any, error) {
	return c.Fn(ctx, input, params)
}

// Registry maps capability IDs to implementations. The zero value is
// not usable; call NewRegistry. Registry is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	caps map[string]Capability
}

// NewRegistry creates an empty capability registry.
func NewRegistry() *Registry {
	return &Registry{caps: make(map[string]Capability)}
}

// Register adds a capability. Registering the same ID twice replaces
// the earlier entry.
func (r *Registry) Register(c Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caps[c.ID()] = c
}

// Get returns the capability registered under id.
func (r *Registry) Get(id string) (Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caps[id]
	return c, ok
}

// List returns the registered capability IDs in no particular order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.caps))
	for id := range r.caps {
		ids = append(ids, id)
	}
	return ids
}
