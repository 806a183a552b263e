package prepository

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
	"github.com/pioneer-storage/pioneer/internal/pwrapper"
	pioneererrors "github.com/pioneer-storage/pioneer/pkg/errors"
)

// Repository is a typed mapping surface over a storage root: get/pop/
// popitem/update/setdefault/keys/values/items/len/contains/equal, parameterized over the decoded value type V.
type Repository[V any] struct {
	client pstorage.Client
	root   pstorage.StoragePath

	encode func(V) ([]byte, error)
	decode func([]byte) (V, error)
}

// New builds a Repository rooted at root under backend, always wrapping
// backend in Safety first — the one wrapper the repository layer applies
// unconditionally.
func New[V any](backend pstorage.Client, root pstorage.StoragePath, encode func(V) ([]byte, error), decode func([]byte) (V, error)) *Repository[V] {
	return &Repository[V]{
		client: pwrapper.NewSafety(backend),
		root:   root,
		encode: encode,
		decode: decode,
	}
}

func (r *Repository[V]) key(name string) pstorage.StorageKey {
	return pstorage.NewStorageKey(r.client.Key(), r.root.Join(name))
}

// Get returns the decoded value at name, or ErrCodeObjectNotFound if absent.
func (r *Repository[V]) Get(ctx context.Context, name string) (V, error) {
	var zero V
	raw, err := r.client.Get(ctx, r.key(name))
	if err != nil {
		return zero, err
	}
	return r.decode(raw)
}

// Update writes value at name, creating or overwriting it.
func (r *Repository[V]) Update(ctx context.Context, name string, value V) error {
	data, err := r.encode(value)
	if err != nil {
		return fmt.Errorf("prepository: encode %q: %w", name, err)
	}
	obj := pstorage.NewFileObject(r.key(name), pstorage.ContentInfo{Size: int64(len(data))})
	return r.client.Put(ctx, obj, pstorage.FileData(data))
}

// SetDefault returns the existing value at name if present, else writes and
// returns def.
func (r *Repository[V]) SetDefault(ctx context.Context, name string, def V) (V, error) {
	existing, err := r.Get(ctx, name)
	if err == nil {
		return existing, nil
	}
	if err := r.Update(ctx, name, def); err != nil {
		var zero V
		return zero, err
	}
	return def, nil
}

// Pop removes and returns the value at name.
func (r *Repository[V]) Pop(ctx context.Context, name string) (V, error) {
	value, err := r.Get(ctx, name)
	if err != nil {
		return value, err
	}
	if err := r.client.Remove(ctx, r.key(name)); err != nil {
		var zero V
		return zero, err
	}
	return value, nil
}

// PopItem removes and returns an arbitrary (name, value) pair, or
// ErrCodeObjectNotFound if the repository is empty.
func (r *Repository[V]) PopItem(ctx context.Context) (string, V, error) {
	var zero V
	names, err := r.Keys(ctx)
	if err != nil {
		return "", zero, err
	}
	if len(names) == 0 {
		return "", zero, pioneererrors.NewError(pioneererrors.ErrCodeObjectNotFound, "prepository: popitem on empty repository")
	}
	name := names[0]
	value, err := r.Pop(ctx, name)
	return name, value, err
}

// Keys lists every record name currently stored.
func (r *Repository[V]) Keys(ctx context.Context) ([]string, error) {
	root := pstorage.NewStorageKey(r.client.Key(), r.root)
	keys, err := r.client.List(ctx, root, false)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.Path.Name())
	}
	return out, nil
}

// Values returns the decoded value of every record.
func (r *Repository[V]) Values(ctx context.Context) ([]V, error) {
	names, err := r.Keys(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]V, 0, len(names))
	for _, name := range names {
		v, err := r.Get(ctx, name)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// Items returns every (name, value) pair.
func (r *Repository[V]) Items(ctx context.Context) (map[string]V, error) {
	names, err := r.Keys(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]V, len(names))
	for _, name := range names {
		v, err := r.Get(ctx, name)
		if err != nil {
			continue
		}
		out[name] = v
	}
	return out, nil
}

// Len returns the number of records.
func (r *Repository[V]) Len(ctx context.Context) (int, error) {
	names, err := r.Keys(ctx)
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// Contains reports whether name is present.
func (r *Repository[V]) Contains(ctx context.Context, name string) (bool, error) {
	return r.client.Contains(ctx, r.key(name))
}

// Equal compares r and other by their encoded byte representation,
// an "__eq__" without requiring V to be comparable.
func (r *Repository[V]) Equal(ctx context.Context, other *Repository[V]) (bool, error) {
	left, err := r.Keys(ctx)
	if err != nil {
		return false, err
	}
	right, err := other.Keys(ctx)
	if err != nil {
		return false, err
	}
	if len(left) != len(right) {
		return false, nil
	}

	for _, name := range left {
		a, err := r.client.Get(ctx, r.key(name))
		if err != nil {
			return false, err
		}
		b, err := other.client.Get(ctx, other.key(name))
		if err != nil {
			return false, nil
		}
		if !bytes.Equal(a, b) {
			return false, nil
		}
	}
	return true, nil
}
