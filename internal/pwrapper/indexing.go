package pwrapper

import (
	"context"
	"strings"
	"sync"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
)

// Indexing maintains an in-memory cache of str(key.path) -> Object,
// consulted first on Stat/List/Contains and kept in sync by Put/Remove. On
// wrap, the cache is built by a recursive list+stat over the wrapped client.
// The index client given to NewIndexing is kept but never read or written,
// so the cache does not outlive the process.
type Indexing struct {
	*Wrapper

	index pstorage.Client // kept from NewIndexing; not read or written

	mu      sync.RWMutex
	entries map[pstorage.StoragePath]pstorage.Object
}

// NewIndexing wraps inner and builds its cache from inner; index is stored
// on the wrapper and not otherwise used.
func NewIndexing(ctx context.Context, inner, index pstorage.Client) (*Indexing, error) {
	idx := &Indexing{
		Wrapper: &Wrapper{Inner: inner},
		index:   index,
		entries: make(map[pstorage.StoragePath]pstorage.Object),
	}
	if err := idx.rebuild(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *Indexing) rebuild(ctx context.Context) error {
	root := pstorage.NewStorageKey(idx.Inner.Key(), pstorage.StoragePath(""))
	keys, err := idx.Inner.List(ctx, root, true)
	if err != nil {
		return nil
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, k := range keys {
		obj, err := idx.Inner.Stat(ctx, k)
		if err != nil {
			continue
		}
		idx.entries[k.Path] = obj
	}
	return nil
}

func (idx *Indexing) Put(ctx context.Context, obj pstorage.Object, data pstorage.FileData) error {
	if err := idx.Wrapper.Put(ctx, obj, data); err != nil {
		return err
	}
	idx.mu.Lock()
	idx.entries[obj.Key.Path] = obj
	idx.mu.Unlock()
	return nil
}

func (idx *Indexing) Remove(ctx context.Context, key pstorage.StorageKey) error {
	if err := idx.Wrapper.Remove(ctx, key); err != nil {
		return err
	}
	idx.mu.Lock()
	delete(idx.entries, key.Path)
	idx.mu.Unlock()
	return nil
}

// Stat consults the index first, falling back to the wrapped client.
func (idx *Indexing) Stat(ctx context.Context, key pstorage.StorageKey) (pstorage.Object, error) {
	idx.mu.RLock()
	obj, ok := idx.entries[key.Path]
	idx.mu.RUnlock()
	if ok {
		return obj, nil
	}
	obj, err := idx.Wrapper.Stat(ctx, key)
	if err != nil {
		return pstorage.Object{}, err
	}
	idx.mu.Lock()
	idx.entries[key.Path] = obj
	idx.mu.Unlock()
	return obj, nil
}

// List answers from index keys by prefix match and depth filter rather than
// reading headers.
func (idx *Indexing) List(ctx context.Context, prefix pstorage.StorageKey, recursive bool) ([]pstorage.StorageKey, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	prefixStr := string(prefix.Path)
	depth := strings.Count(prefixStr, "/")
	if prefixStr != "" {
		depth++
	}

	var out []pstorage.StorageKey
	for p := range idx.entries {
		s := string(p)
		if prefixStr != "" && !(s == prefixStr || strings.HasPrefix(s, prefixStr+"/")) {
			continue
		}
		if s == prefixStr {
			continue
		}
		if !recursive {
			rel := strings.TrimPrefix(strings.TrimPrefix(s, prefixStr), "/")
			if strings.Contains(rel, "/") {
				continue
			}
		}
		out = append(out, pstorage.NewStorageKey(idx.Inner.Key(), p))
	}
	return out, nil
}

// Contains checks the index and lazily back-fills on miss.
func (idx *Indexing) Contains(ctx context.Context, key pstorage.StorageKey) (bool, error) {
	idx.mu.RLock()
	_, ok := idx.entries[key.Path]
	idx.mu.RUnlock()
	if ok {
		return true, nil
	}
	exists, err := idx.Wrapper.Exists(ctx, key)
	if err != nil {
		return false, err
	}
	if exists {
		if obj, statErr := idx.Wrapper.Stat(ctx, key); statErr == nil {
			idx.mu.Lock()
			idx.entries[key.Path] = obj
			idx.mu.Unlock()
		}
	}
	return exists, nil
}

func (idx *Indexing) Exists(ctx context.Context, key pstorage.StorageKey) (bool, error) {
	return idx.Contains(ctx, key)
}

var _ pstorage.Client = (*Indexing)(nil)
