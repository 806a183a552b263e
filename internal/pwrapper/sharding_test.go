package pwrapper_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
	"github.com/pioneer-storage/pioneer/internal/pwrapper"
)

func TestShardingRoutesToMatchingShard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a := newMemClient(t, "memory", "shard-a")
	b := newMemClient(t, "memory", "shard-b")
	sh := pwrapper.NewSharding(a, b, pwrapper.RoundRobin)

	p, _ := pstorage.NewStoragePath("f.txt")
	keyA := pstorage.NewStorageKey(a.Key(), p)
	obj := pstorage.NewFileObject(keyA, pstorage.ContentInfo{Size: 1})
	require.NoError(t, sh.Put(ctx, obj, []byte("x")))

	got, err := sh.Get(ctx, keyA)
	require.NoError(t, err)
	require.Equal(t, []byte("x"), []byte(got))
}

func TestShardingRejectsForeignKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a := newMemClient(t, "memory", "shard-a2")
	b := newMemClient(t, "memory", "shard-b2")
	sh := pwrapper.NewSharding(a, b, pwrapper.RoundRobin)

	other := pstorage.NewStorageClientKey("memory", "elsewhere")
	p, _ := pstorage.NewStoragePath("f.txt")
	key := pstorage.NewStorageKey(other, p)

	_, err := sh.Get(ctx, key)
	require.Error(t, err)
}

func TestShardingPlacesNewKeyByRoundRobin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a := newMemClient(t, "memory", "shard-a3")
	b := newMemClient(t, "memory", "shard-b3")
	sh := pwrapper.NewSharding(a, b, pwrapper.RoundRobin)

	unassigned := pstorage.NewStorageClientKey("memory", "unassigned")
	p, _ := pstorage.NewStoragePath("new.txt")
	key := pstorage.NewStorageKey(unassigned, p)
	obj := pstorage.NewFileObject(key, pstorage.ContentInfo{Size: 1})

	require.NoError(t, sh.Put(ctx, obj, []byte("new")))

	aKey := pstorage.NewStorageKey(a.Key(), p)
	bKey := pstorage.NewStorageKey(b.Key(), p)
	aExists, _ := a.Exists(ctx, aKey)
	bExists, _ := b.Exists(ctx, bKey)
	require.True(t, aExists || bExists)
}
