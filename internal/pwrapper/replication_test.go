package pwrapper_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
	"github.com/pioneer-storage/pioneer/internal/pwrapper"
)

func TestReplicationWritesBothAndReadsPrimary(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	primary := newMemClient(t, "memory", "repl-primary")
	replica := newMemClient(t, "memory", "repl-replica")
	repl := pwrapper.NewReplication(primary, replica)

	p, _ := pstorage.NewStoragePath("f.txt")
	key := pstorage.NewStorageKey(primary.Key(), p)
	obj := pstorage.NewFileObject(key, pstorage.ContentInfo{Size: 1})
	require.NoError(t, repl.Put(ctx, obj, []byte("data")))

	got, err := repl.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, []byte("data"), []byte(got))

	replicaKey := pstorage.NewStorageKey(replica.Key(), p)
	_, err = replica.Get(ctx, replicaKey)
	require.NoError(t, err)
}

func TestReplicationRemoveDeletesBoth(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	primary := newMemClient(t, "memory", "repl-primary2")
	replica := newMemClient(t, "memory", "repl-replica2")
	repl := pwrapper.NewReplication(primary, replica)

	p, _ := pstorage.NewStoragePath("f.txt")
	key := pstorage.NewStorageKey(primary.Key(), p)
	obj := pstorage.NewFileObject(key, pstorage.ContentInfo{Size: 1})
	require.NoError(t, repl.Put(ctx, obj, []byte("x")))
	require.NoError(t, repl.Remove(ctx, key))

	replicaKey := pstorage.NewStorageKey(replica.Key(), p)
	exists, _ := replica.Exists(ctx, replicaKey)
	require.False(t, exists)
}
