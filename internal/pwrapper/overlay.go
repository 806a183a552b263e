package pwrapper

import (
	"context"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
)

// Overlay reads preferring the overlay client, falling back to the base;
// writes go to the overlay, and to the base as well when Symmetric is set
//. Use: read-through cache of a remote with a local tier.
type Overlay struct {
	Base      pstorage.Client
	Top       pstorage.Client
	Symmetric bool
}

// NewOverlay builds an Overlay over base with top preferred for reads.
func NewOverlay(base, top pstorage.Client, symmetric bool) *Overlay {
	return &Overlay{Base: base, Top: top, Symmetric: symmetric}
}

func (o *Overlay) Key() pstorage.StorageClientKey { return o.Top.Key() }
func (o *Overlay) Medium() pstorage.Medium        { return o.Top.Medium() }

func (o *Overlay) Get(ctx context.Context, key pstorage.StorageKey) (pstorage.FileData, error) {
	data, err := o.Top.Get(ctx, key)
	if err == nil {
		return data, nil
	}
	return o.Base.Get(ctx, key)
}

func (o *Overlay) Put(ctx context.Context, obj pstorage.Object, data pstorage.FileData) error {
	if err := o.Top.Put(ctx, obj, data); err != nil {
		return err
	}
	if o.Symmetric {
		return o.Base.Put(ctx, obj, data)
	}
	return nil
}

func (o *Overlay) Remove(ctx context.Context, key pstorage.StorageKey) error {
	err := o.Top.Remove(ctx, key)
	if o.Symmetric {
		if baseErr := o.Base.Remove(ctx, key); baseErr != nil && err == nil {
			err = baseErr
		}
	}
	return err
}

func (o *Overlay) Stat(ctx context.Context, key pstorage.StorageKey) (pstorage.Object, error) {
	obj, err := o.Top.Stat(ctx, key)
	if err == nil {
		return obj, nil
	}
	return o.Base.Stat(ctx, key)
}

// List returns the set union of base and top listings.
func (o *Overlay) List(ctx context.Context, prefix pstorage.StorageKey, recursive bool) ([]pstorage.StorageKey, error) {
	topKeys, err := o.Top.List(ctx, prefix, recursive)
	if err != nil {
		topKeys = nil
	}
	baseKeys, err := o.Base.List(ctx, prefix, recursive)
	if err != nil {
		baseKeys = nil
	}
	seen := make(map[pstorage.StorageKey]struct{}, len(topKeys)+len(baseKeys))
	out := make([]pstorage.StorageKey, 0, len(topKeys)+len(baseKeys))
	for _, k := range append(topKeys, baseKeys...) {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out, nil
}

func (o *Overlay) Exists(ctx context.Context, key pstorage.StorageKey) (bool, error) {
	ok, err := o.Top.Exists(ctx, key)
	if err == nil && ok {
		return true, nil
	}
	return o.Base.Exists(ctx, key)
}

func (o *Overlay) Contains(ctx context.Context, key pstorage.StorageKey) (bool, error) {
	return o.Exists(ctx, key)
}

func (o *Overlay) Header(ctx context.Context, dir pstorage.StorageKey) (*pstorage.Header, error) {
	top, topErr := o.Top.Header(ctx, dir)
	base, baseErr := o.Base.Header(ctx, dir)
	switch {
	case topErr != nil && baseErr != nil:
		return nil, topErr
	case topErr != nil:
		return base, nil
	case baseErr != nil:
		return top, nil
	}
	merged := pstorage.NewHeader(dir)
	for _, k := range base.List() {
		obj, _ := base.Get(k)
		merged.Put(obj)
	}
	for _, k := range top.List() {
		obj, _ := top.Get(k)
		merged.Put(obj)
	}
	return merged, nil
}

func (o *Overlay) Update(ctx context.Context, obj pstorage.Object) error {
	if err := o.Top.Update(ctx, obj); err != nil {
		return err
	}
	if o.Symmetric {
		return o.Base.Update(ctx, obj)
	}
	return nil
}

func (o *Overlay) Change(ctx context.Context, key pstorage.StorageKey, md pstorage.Metadata) error {
	obj, err := o.Stat(ctx, key)
	if err != nil {
		return err
	}
	obj.Metadata = md.Touch()
	return o.Update(ctx, obj)
}

func (o *Overlay) GetMultiple(ctx context.Context, keys []pstorage.StorageKey) (map[pstorage.StorageKey]pstorage.FileData, error) {
	out := make(map[pstorage.StorageKey]pstorage.FileData, len(keys))
	for _, k := range keys {
		if data, err := o.Get(ctx, k); err == nil {
			out[k] = data
		}
	}
	return out, nil
}

func (o *Overlay) PutMultiple(ctx context.Context, objs []pstorage.Object, datas []pstorage.FileData) error {
	for i := range objs {
		if err := o.Put(ctx, objs[i], datas[i]); err != nil {
			return err
		}
	}
	return nil
}

func (o *Overlay) StatMultiple(ctx context.Context, keys []pstorage.StorageKey) (map[pstorage.StorageKey]pstorage.Object, error) {
	out := make(map[pstorage.StorageKey]pstorage.Object, len(keys))
	for _, k := range keys {
		if obj, err := o.Stat(ctx, k); err == nil {
			out[k] = obj
		}
	}
	return out, nil
}

func (o *Overlay) RemoveMultiple(ctx context.Context, keys []pstorage.StorageKey) error {
	for _, k := range keys {
		if err := o.Remove(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (o *Overlay) ExistsMultiple(ctx context.Context, keys []pstorage.StorageKey) (map[pstorage.StorageKey]bool, error) {
	out := make(map[pstorage.StorageKey]bool, len(keys))
	for _, k := range keys {
		ok, _ := o.Exists(ctx, k)
		out[k] = ok
	}
	return out, nil
}

func (o *Overlay) Info(ctx context.Context) (pstorage.ClientInfo, error) {
	return o.Top.Info(ctx)
}

var _ pstorage.Client = (*Overlay)(nil)
