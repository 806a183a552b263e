package pstorage

import (
	"fmt"
	"sync"
)

// Registry resolves a StorageClientKey to its live Client instance. The
// source keeps this as a module-level singleton; here it is an explicit service owned by whoever assembles the
// process (an Adapter, a test harness, ...), passed to constructors instead
// of reached for as a global.
type Registry struct {
	mu      sync.RWMutex
	clients map[StorageClientKey]Client
}

// NewRegistry creates an empty client registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[StorageClientKey]Client)}
}

// Register adds a client to the registry, keyed by its own Key().
func (r *Registry) Register(c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.Key()] = c
}

// Unregister removes a client, e.g. on Close/lease release.
func (r *Registry) Unregister(key StorageClientKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, key)
}

// Resolve looks up the live Client for a StorageClientKey, the step every
// StorageKey-addressed operation needs before it can dispatch.
func (r *Registry) Resolve(key StorageClientKey) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[key]
	if !ok {
		return nil, fmt.Errorf("pstorage: no initialized client for %s", key)
	}
	return c, nil
}

// List returns all currently-registered client keys.
func (r *Registry) List() []StorageClientKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]StorageClientKey, 0, len(r.clients))
	for k := range r.clients {
		keys = append(keys, k)
	}
	return keys
}
