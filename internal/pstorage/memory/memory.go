// Package memory implements an in-process pstorage.Driver backed by a
// plain map, grounded on the Client/Driver split in internal/pstorage and
// objectfs's pkg/types.Backend contract (the same backend shape, minus any
// network boundary).
package memory

import (
	"context"
	"sync"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
)

// Driver is an in-memory pstorage.Driver keyed by StoragePath.
type Driver struct {
	mu   sync.RWMutex
	data map[pstorage.StoragePath][]byte
}

// New creates an empty in-memory driver.
func New() *Driver {
	return &Driver{data: make(map[pstorage.StoragePath][]byte)}
}

func (d *Driver) Medium() pstorage.Medium { return pstorage.MediumLocal }

func (d *Driver) ReadRaw(_ context.Context, path pstorage.StoragePath) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.data[path]
	if !ok {
		return nil, errNotFound(path)
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (d *Driver) WriteRaw(_ context.Context, path pstorage.StoragePath, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	d.data[path] = cp
	return nil
}

func (d *Driver) DeleteRaw(_ context.Context, path pstorage.StoragePath) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.data[path]; !ok {
		return errNotFound(path)
	}
	delete(d.data, path)
	return nil
}

func (d *Driver) ExistsRaw(_ context.Context, path pstorage.StoragePath) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.data[path]
	return ok, nil
}

func (d *Driver) ListRaw(_ context.Context, prefix pstorage.StoragePath) ([]pstorage.StoragePath, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []pstorage.StoragePath
	for p := range d.data {
		if p.Prefix(prefix) {
			out = append(out, p)
		}
	}
	return out, nil
}

type notFoundError struct{ path pstorage.StoragePath }

func (e *notFoundError) Error() string { return "memory: no object at " + e.path.String() }

func errNotFound(path pstorage.StoragePath) error { return &notFoundError{path: path} }

var _ pstorage.Driver = (*Driver)(nil)
