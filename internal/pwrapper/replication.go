package pwrapper

import (
	"context"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
)

// Replication wraps a primary client with a replica. Put writes the primary
// then the replica (under a copy of Object retargeted to the replica's
// StorageClientKey); remove deletes from both; get/stat/list consult only
// the primary.
//
// LeaderGate, when set, is consulted before a Put whose primary medium is
// REMOTE: a non-nil, false-returning gate means this node is not the Raft
// leader for the replicated group and the write is refused with a
// LeaseInvalid error, which is not marked retryable, rather than bypassing
// consensus.
type Replication struct {
	Primary pstorage.Client
	Replica pstorage.Client

	LeaderGate func() bool
}

// NewReplication builds a Replication wrapper over primary with writes
// mirrored to replica.
func NewReplication(primary, replica pstorage.Client) *Replication {
	return &Replication{Primary: primary, Replica: replica}
}

func (r *Replication) Key() pstorage.StorageClientKey { return r.Primary.Key() }
func (r *Replication) Medium() pstorage.Medium        { return r.Primary.Medium() }

func (r *Replication) requiresLeader() bool {
	return r.Primary.Medium() == pstorage.MediumRemote && r.LeaderGate != nil
}

func (r *Replication) Put(ctx context.Context, obj pstorage.Object, data pstorage.FileData) error {
	if r.requiresLeader() && !r.LeaderGate() {
		return notLeaderError("put")
	}
	if err := r.Primary.Put(ctx, obj, data); err != nil {
		return err
	}
	replicaObj := obj
	replicaObj.Key = pstorage.NewStorageKey(r.Replica.Key(), obj.Key.Path)
	return r.Replica.Put(ctx, replicaObj, data)
}

func (r *Replication) Remove(ctx context.Context, key pstorage.StorageKey) error {
	if err := r.Primary.Remove(ctx, key); err != nil {
		return err
	}
	replicaKey := pstorage.NewStorageKey(r.Replica.Key(), key.Path)
	return r.Replica.Remove(ctx, replicaKey)
}

func (r *Replication) Get(ctx context.Context, key pstorage.StorageKey) (pstorage.FileData, error) {
	return r.Primary.Get(ctx, key)
}

func (r *Replication) Stat(ctx context.Context, key pstorage.StorageKey) (pstorage.Object, error) {
	return r.Primary.Stat(ctx, key)
}

func (r *Replication) List(ctx context.Context, prefix pstorage.StorageKey, recursive bool) ([]pstorage.StorageKey, error) {
	return r.Primary.List(ctx, prefix, recursive)
}

func (r *Replication) Exists(ctx context.Context, key pstorage.StorageKey) (bool, error) {
	return r.Primary.Exists(ctx, key)
}

func (r *Replication) Contains(ctx context.Context, key pstorage.StorageKey) (bool, error) {
	return r.Primary.Contains(ctx, key)
}

func (r *Replication) Header(ctx context.Context, dir pstorage.StorageKey) (*pstorage.Header, error) {
	return r.Primary.Header(ctx, dir)
}

func (r *Replication) Update(ctx context.Context, obj pstorage.Object) error {
	if err := r.Primary.Update(ctx, obj); err != nil {
		return err
	}
	replicaObj := obj
	replicaObj.Key = pstorage.NewStorageKey(r.Replica.Key(), obj.Key.Path)
	return r.Replica.Update(ctx, replicaObj)
}

func (r *Replication) Change(ctx context.Context, key pstorage.StorageKey, md pstorage.Metadata) error {
	if err := r.Primary.Change(ctx, key, md); err != nil {
		return err
	}
	replicaKey := pstorage.NewStorageKey(r.Replica.Key(), key.Path)
	return r.Replica.Change(ctx, replicaKey, md)
}

func (r *Replication) GetMultiple(ctx context.Context, keys []pstorage.StorageKey) (map[pstorage.StorageKey]pstorage.FileData, error) {
	return r.Primary.GetMultiple(ctx, keys)
}

func (r *Replication) PutMultiple(ctx context.Context, objs []pstorage.Object, datas []pstorage.FileData) error {
	for i := range objs {
		if err := r.Put(ctx, objs[i], datas[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Replication) StatMultiple(ctx context.Context, keys []pstorage.StorageKey) (map[pstorage.StorageKey]pstorage.Object, error) {
	return r.Primary.StatMultiple(ctx, keys)
}

func (r *Replication) RemoveMultiple(ctx context.Context, keys []pstorage.StorageKey) error {
	for _, k := range keys {
		if err := r.Remove(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (r *Replication) ExistsMultiple(ctx context.Context, keys []pstorage.StorageKey) (map[pstorage.StorageKey]bool, error) {
	return r.Primary.ExistsMultiple(ctx, keys)
}

func (r *Replication) Info(ctx context.Context) (pstorage.ClientInfo, error) {
	return r.Primary.Info(ctx)
}

var _ pstorage.Client = (*Replication)(nil)
