package pwrapper_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
	"github.com/pioneer-storage/pioneer/internal/pstorage/memory"
	"github.com/pioneer-storage/pioneer/internal/pwrapper"
)

func newMemClient(t *testing.T, kind, id string) pstorage.Client {
	t.Helper()
	return pstorage.NewBaseClient(pstorage.NewStorageClientKey(kind, id), memory.New())
}

func TestSafetyRejectsReservedPath(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner := newMemClient(t, "memory", "safety")
	safe := pwrapper.NewSafety(inner)

	p, err := pstorage.NewStoragePath("dir/._head.json")
	require.NoError(t, err)
	key := pstorage.NewStorageKey(inner.Key(), p)
	obj := pstorage.NewFileObject(key, pstorage.ContentInfo{Size: 1})

	err = safe.Put(ctx, obj, []byte("x"))
	require.Error(t, err)
}

func TestSafetyFiltersReservedFromList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner := newMemClient(t, "memory", "safety-list")
	safe := pwrapper.NewSafety(inner)

	p, _ := pstorage.NewStoragePath("dir/file.txt")
	key := pstorage.NewStorageKey(inner.Key(), p)
	obj := pstorage.NewFileObject(key, pstorage.ContentInfo{Size: 1})
	require.NoError(t, safe.Put(ctx, obj, []byte("x")))

	root := pstorage.NewStorageKey(inner.Key(), pstorage.StoragePath("dir"))
	keys, err := safe.List(ctx, root, false)
	require.NoError(t, err)
	for _, k := range keys {
		require.False(t, pstorage.IsReserved(k.Path))
	}
}
