package pwrapper

import (
	"context"
	"io"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
)

// Wrapper forwards the full pstorage.Client contract to Inner. Concrete
// wrappers embed Wrapper and shadow whichever methods their concern
// overrides.
type Wrapper struct {
	Inner pstorage.Client
}

var _ pstorage.Client = (*Wrapper)(nil)

func (w *Wrapper) Key() pstorage.StorageClientKey { return w.Inner.Key() }
func (w *Wrapper) Medium() pstorage.Medium        { return w.Inner.Medium() }

// Close forwards to Inner if it has something to release, so any wrapper in
// the C5 stack can be closed without knowing what's underneath it.
func (w *Wrapper) Close() error {
	if closer, ok := w.Inner.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (w *Wrapper) Get(ctx context.Context, key pstorage.StorageKey) (pstorage.FileData, error) {
	return w.Inner.Get(ctx, key)
}

func (w *Wrapper) Put(ctx context.Context, obj pstorage.Object, data pstorage.FileData) error {
	return w.Inner.Put(ctx, obj, data)
}

func (w *Wrapper) Remove(ctx context.Context, key pstorage.StorageKey) error {
	return w.Inner.Remove(ctx, key)
}

func (w *Wrapper) Stat(ctx context.Context, key pstorage.StorageKey) (pstorage.Object, error) {
	return w.Inner.Stat(ctx, key)
}

func (w *Wrapper) List(ctx context.Context, prefix pstorage.StorageKey, recursive bool) ([]pstorage.StorageKey, error) {
	return w.Inner.List(ctx, prefix, recursive)
}

func (w *Wrapper) Exists(ctx context.Context, key pstorage.StorageKey) (bool, error) {
	return w.Inner.Exists(ctx, key)
}

func (w *Wrapper) Contains(ctx context.Context, key pstorage.StorageKey) (bool, error) {
	return w.Inner.Contains(ctx, key)
}

func (w *Wrapper) Header(ctx context.Context, dir pstorage.StorageKey) (*pstorage.Header, error) {
	return w.Inner.Header(ctx, dir)
}

func (w *Wrapper) Update(ctx context.Context, obj pstorage.Object) error {
	return w.Inner.Update(ctx, obj)
}

func (w *Wrapper) Change(ctx context.Context, key pstorage.StorageKey, md pstorage.Metadata) error {
	return w.Inner.Change(ctx, key, md)
}

func (w *Wrapper) GetMultiple(ctx context.Context, keys []pstorage.StorageKey) (map[pstorage.StorageKey]pstorage.FileData, error) {
	return w.Inner.GetMultiple(ctx, keys)
}

func (w *Wrapper) PutMultiple(ctx context.Context, objs []pstorage.Object, datas []pstorage.FileData) error {
	return w.Inner.PutMultiple(ctx, objs, datas)
}

func (w *Wrapper) StatMultiple(ctx context.Context, keys []pstorage.StorageKey) (map[pstorage.StorageKey]pstorage.Object, error) {
	return w.Inner.StatMultiple(ctx, keys)
}

func (w *Wrapper) RemoveMultiple(ctx context.Context, keys []pstorage.StorageKey) error {
	return w.Inner.RemoveMultiple(ctx, keys)
}

func (w *Wrapper) ExistsMultiple(ctx context.Context, keys []pstorage.StorageKey) (map[pstorage.StorageKey]bool, error) {
	return w.Inner.ExistsMultiple(ctx, keys)
}

func (w *Wrapper) Info(ctx context.Context) (pstorage.ClientInfo, error) {
	return w.Inner.Info(ctx)
}
