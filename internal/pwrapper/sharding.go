package pwrapper

import (
	"context"
	"sync/atomic"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
)

// PlacementStrategy picks which of two shards a new key should land on.
type PlacementStrategy int

const (
	// RoundRobin alternates placement between the two shards.
	RoundRobin PlacementStrategy = iota
	// MostFree places on whichever shard reports more free capacity.
	MostFree
	// LeastFree places on whichever shard reports less free capacity, to
	// drain it before it's retired.
	LeastFree
)

// FreeSpaceReporter is implemented by shards that can report remaining
// capacity, consulted by the MostFree/LeastFree strategies.
type FreeSpaceReporter interface {
	FreeBytes(ctx context.Context) (int64, error)
}

// Sharding dispatches operations by matching key.storage to one of two
// backends. Key() reports A's key, so a key addressed to the wrapper is
// served by A. A Put of a key whose storage client matches neither backend
// is placed by Strategy (round-robin/most-free/least-free) and readdressed
// to the chosen shard; Get, Remove, Stat, Header, Update and Change of such
// a key fail with WrongShard, Exists reports false for it, and List returns
// the keys of both shards.
type Sharding struct {
	A, B     pstorage.Client
	Strategy PlacementStrategy

	counter uint64
}

// NewSharding builds a two-backend Sharding wrapper over a and b.
func NewSharding(a, b pstorage.Client, strategy PlacementStrategy) *Sharding {
	return &Sharding{A: a, B: b, Strategy: strategy}
}

func (s *Sharding) Key() pstorage.StorageClientKey { return s.A.Key() }
func (s *Sharding) Medium() pstorage.Medium        { return s.A.Medium() }

// resolve returns the shard matching client, or nil if neither matches.
func (s *Sharding) resolve(client pstorage.StorageClientKey) pstorage.Client {
	switch client {
	case s.A.Key():
		return s.A
	case s.B.Key():
		return s.B
	default:
		return nil
	}
}

// place chooses a shard for a key not already addressed to one of the two
// backends, per Strategy.
func (s *Sharding) place(ctx context.Context) pstorage.Client {
	switch s.Strategy {
	case MostFree:
		if a, aok := s.A.(FreeSpaceReporter); aok {
			if b, bok := s.B.(FreeSpaceReporter); bok {
				af, _ := a.FreeBytes(ctx)
				bf, _ := b.FreeBytes(ctx)
				if af >= bf {
					return s.A
				}
				return s.B
			}
		}
	case LeastFree:
		if a, aok := s.A.(FreeSpaceReporter); aok {
			if b, bok := s.B.(FreeSpaceReporter); bok {
				af, _ := a.FreeBytes(ctx)
				bf, _ := b.FreeBytes(ctx)
				if af <= bf {
					return s.A
				}
				return s.B
			}
		}
	}
	if atomic.AddUint64(&s.counter, 1)%2 == 1 {
		return s.A
	}
	return s.B
}

func (s *Sharding) Put(ctx context.Context, obj pstorage.Object, data pstorage.FileData) error {
	target := s.resolve(obj.Key.Client)
	if target == nil {
		chosen := s.place(ctx)
		obj.Key = pstorage.NewStorageKey(chosen.Key(), obj.Key.Path)
		target = chosen
	}
	return target.Put(ctx, obj, data)
}

func (s *Sharding) Get(ctx context.Context, key pstorage.StorageKey) (pstorage.FileData, error) {
	target := s.resolve(key.Client)
	if target == nil {
		return nil, wrongShardError("get", key)
	}
	return target.Get(ctx, key)
}

func (s *Sharding) Remove(ctx context.Context, key pstorage.StorageKey) error {
	target := s.resolve(key.Client)
	if target == nil {
		return wrongShardError("remove", key)
	}
	return target.Remove(ctx, key)
}

func (s *Sharding) Stat(ctx context.Context, key pstorage.StorageKey) (pstorage.Object, error) {
	target := s.resolve(key.Client)
	if target == nil {
		return pstorage.Object{}, wrongShardError("stat", key)
	}
	return target.Stat(ctx, key)
}

func (s *Sharding) List(ctx context.Context, prefix pstorage.StorageKey, recursive bool) ([]pstorage.StorageKey, error) {
	target := s.resolve(prefix.Client)
	if target == nil {
		aKeys, _ := s.A.List(ctx, pstorage.NewStorageKey(s.A.Key(), prefix.Path), recursive)
		bKeys, _ := s.B.List(ctx, pstorage.NewStorageKey(s.B.Key(), prefix.Path), recursive)
		return append(aKeys, bKeys...), nil
	}
	return target.List(ctx, prefix, recursive)
}

func (s *Sharding) Exists(ctx context.Context, key pstorage.StorageKey) (bool, error) {
	target := s.resolve(key.Client)
	if target == nil {
		return false, nil
	}
	return target.Exists(ctx, key)
}

func (s *Sharding) Contains(ctx context.Context, key pstorage.StorageKey) (bool, error) {
	return s.Exists(ctx, key)
}

func (s *Sharding) Header(ctx context.Context, dir pstorage.StorageKey) (*pstorage.Header, error) {
	target := s.resolve(dir.Client)
	if target == nil {
		return nil, wrongShardError("header", dir)
	}
	return target.Header(ctx, dir)
}

func (s *Sharding) Update(ctx context.Context, obj pstorage.Object) error {
	target := s.resolve(obj.Key.Client)
	if target == nil {
		return wrongShardError("update", obj.Key)
	}
	return target.Update(ctx, obj)
}

func (s *Sharding) Change(ctx context.Context, key pstorage.StorageKey, md pstorage.Metadata) error {
	target := s.resolve(key.Client)
	if target == nil {
		return wrongShardError("change", key)
	}
	return target.Change(ctx, key, md)
}

func (s *Sharding) GetMultiple(ctx context.Context, keys []pstorage.StorageKey) (map[pstorage.StorageKey]pstorage.FileData, error) {
	out := make(map[pstorage.StorageKey]pstorage.FileData, len(keys))
	for _, k := range keys {
		if data, err := s.Get(ctx, k); err == nil {
			out[k] = data
		}
	}
	return out, nil
}

func (s *Sharding) PutMultiple(ctx context.Context, objs []pstorage.Object, datas []pstorage.FileData) error {
	for i := range objs {
		if err := s.Put(ctx, objs[i], datas[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sharding) StatMultiple(ctx context.Context, keys []pstorage.StorageKey) (map[pstorage.StorageKey]pstorage.Object, error) {
	out := make(map[pstorage.StorageKey]pstorage.Object, len(keys))
	for _, k := range keys {
		if obj, err := s.Stat(ctx, k); err == nil {
			out[k] = obj
		}
	}
	return out, nil
}

func (s *Sharding) RemoveMultiple(ctx context.Context, keys []pstorage.StorageKey) error {
	for _, k := range keys {
		if err := s.Remove(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sharding) ExistsMultiple(ctx context.Context, keys []pstorage.StorageKey) (map[pstorage.StorageKey]bool, error) {
	out := make(map[pstorage.StorageKey]bool, len(keys))
	for _, k := range keys {
		ok, _ := s.Exists(ctx, k)
		out[k] = ok
	}
	return out, nil
}

func (s *Sharding) Info(ctx context.Context) (pstorage.ClientInfo, error) {
	return s.A.Info(ctx)
}

var _ pstorage.Client = (*Sharding)(nil)
