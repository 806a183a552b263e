package pwrapper

import (
	"context"
	"sync"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
)

// Event names the kind of change a Watching callback observes.
type Event int

const (
	EventPut Event = iota
	EventRemove
)

// Callback is invoked synchronously, on the caller's goroutine, after a
// put/remove succeeds.
type Callback func(event Event, key pstorage.StorageKey)

// Watching holds a registry of per-key callbacks fired after put/remove
// succeed. Cancellation is by de-registration only.
type Watching struct {
	*Wrapper

	mu        sync.RWMutex
	callbacks map[pstorage.StorageKey][]Callback
}

// NewWatching wraps inner with a callback registry.
func NewWatching(inner pstorage.Client) *Watching {
	return &Watching{
		Wrapper:   &Wrapper{Inner: inner},
		callbacks: make(map[pstorage.StorageKey][]Callback),
	}
}

// Watch registers cb to fire on changes to key. Returns a de-registration
// function.
func (w *Watching) Watch(key pstorage.StorageKey, cb Callback) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks[key] = append(w.callbacks[key], cb)
	idx := len(w.callbacks[key]) - 1
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		cbs := w.callbacks[key]
		if idx < len(cbs) {
			cbs[idx] = nil
		}
	}
}

func (w *Watching) fire(event Event, key pstorage.StorageKey) {
	w.mu.RLock()
	cbs := append([]Callback(nil), w.callbacks[key]...)
	w.mu.RUnlock()
	for _, cb := range cbs {
		if cb != nil {
			cb(event, key)
		}
	}
}

func (w *Watching) Put(ctx context.Context, obj pstorage.Object, data pstorage.FileData) error {
	if err := w.Wrapper.Put(ctx, obj, data); err != nil {
		return err
	}
	w.fire(EventPut, obj.Key)
	return nil
}

func (w *Watching) Remove(ctx context.Context, key pstorage.StorageKey) error {
	if err := w.Wrapper.Remove(ctx, key); err != nil {
		return err
	}
	w.fire(EventRemove, key)
	return nil
}

var _ pstorage.Client = (*Watching)(nil)
