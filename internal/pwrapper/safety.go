package pwrapper

import (
	"context"
	"fmt"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
	pioneererrors "github.com/pioneer-storage/pioneer/pkg/errors"
)

// Safety rejects every public call on a reserved path and filters reserved
// paths out of List results. It is the only wrapper the
// repository layer always applies.
type Safety struct {
	*Wrapper
}

// NewSafety wraps inner with reserved-key rejection.
func NewSafety(inner pstorage.Client) *Safety {
	return &Safety{Wrapper: &Wrapper{Inner: inner}}
}

func reservedBlock(op string, key pstorage.StorageKey) error {
	return pioneererrors.NewError(pioneererrors.ErrCodeReserved,
		fmt.Sprintf("%s: %s is a reserved path", op, key)).WithOperation(op)
}

func (s *Safety) Get(ctx context.Context, key pstorage.StorageKey) (pstorage.FileData, error) {
	if pstorage.IsReserved(key.Path) {
		return nil, reservedBlock("get", key)
	}
	return s.Wrapper.Get(ctx, key)
}

func (s *Safety) Put(ctx context.Context, obj pstorage.Object, data pstorage.FileData) error {
	if pstorage.IsReserved(obj.Key.Path) {
		return reservedBlock("put", obj.Key)
	}
	return s.Wrapper.Put(ctx, obj, data)
}

func (s *Safety) Remove(ctx context.Context, key pstorage.StorageKey) error {
	if pstorage.IsReserved(key.Path) {
		return reservedBlock("remove", key)
	}
	return s.Wrapper.Remove(ctx, key)
}

func (s *Safety) Stat(ctx context.Context, key pstorage.StorageKey) (pstorage.Object, error) {
	if pstorage.IsReserved(key.Path) {
		return pstorage.Object{}, reservedBlock("stat", key)
	}
	return s.Wrapper.Stat(ctx, key)
}

func (s *Safety) List(ctx context.Context, prefix pstorage.StorageKey, recursive bool) ([]pstorage.StorageKey, error) {
	keys, err := s.Wrapper.List(ctx, prefix, recursive)
	if err != nil {
		return nil, err
	}
	out := make([]pstorage.StorageKey, 0, len(keys))
	for _, k := range keys {
		if !pstorage.IsReserved(k.Path) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *Safety) Exists(ctx context.Context, key pstorage.StorageKey) (bool, error) {
	if pstorage.IsReserved(key.Path) {
		return false, reservedBlock("exists", key)
	}
	return s.Wrapper.Exists(ctx, key)
}

func (s *Safety) Contains(ctx context.Context, key pstorage.StorageKey) (bool, error) {
	return s.Exists(ctx, key)
}

func (s *Safety) Update(ctx context.Context, obj pstorage.Object) error {
	if pstorage.IsReserved(obj.Key.Path) {
		return reservedBlock("update", obj.Key)
	}
	return s.Wrapper.Update(ctx, obj)
}

func (s *Safety) Change(ctx context.Context, key pstorage.StorageKey, md pstorage.Metadata) error {
	if pstorage.IsReserved(key.Path) {
		return reservedBlock("change", key)
	}
	return s.Wrapper.Change(ctx, key, md)
}

func (s *Safety) GetMultiple(ctx context.Context, keys []pstorage.StorageKey) (map[pstorage.StorageKey]pstorage.FileData, error) {
	for _, k := range keys {
		if pstorage.IsReserved(k.Path) {
			return nil, reservedBlock("get_multiple", k)
		}
	}
	return s.Wrapper.GetMultiple(ctx, keys)
}

func (s *Safety) PutMultiple(ctx context.Context, objs []pstorage.Object, datas []pstorage.FileData) error {
	for _, o := range objs {
		if pstorage.IsReserved(o.Key.Path) {
			return reservedBlock("put_multiple", o.Key)
		}
	}
	return s.Wrapper.PutMultiple(ctx, objs, datas)
}

func (s *Safety) StatMultiple(ctx context.Context, keys []pstorage.StorageKey) (map[pstorage.StorageKey]pstorage.Object, error) {
	for _, k := range keys {
		if pstorage.IsReserved(k.Path) {
			return nil, reservedBlock("stat_multiple", k)
		}
	}
	return s.Wrapper.StatMultiple(ctx, keys)
}

func (s *Safety) RemoveMultiple(ctx context.Context, keys []pstorage.StorageKey) error {
	for _, k := range keys {
		if pstorage.IsReserved(k.Path) {
			return reservedBlock("remove_multiple", k)
		}
	}
	return s.Wrapper.RemoveMultiple(ctx, keys)
}

func (s *Safety) ExistsMultiple(ctx context.Context, keys []pstorage.StorageKey) (map[pstorage.StorageKey]bool, error) {
	for _, k := range keys {
		if pstorage.IsReserved(k.Path) {
			return nil, reservedBlock("exists_multiple", k)
		}
	}
	return s.Wrapper.ExistsMultiple(ctx, keys)
}

var _ pstorage.Client = (*Safety)(nil)
