package pwrapper_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
	"github.com/pioneer-storage/pioneer/internal/pwrapper"
)

func TestIndexingBuildsFromExistingContent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner := newMemClient(t, "memory", "idx-inner")
	indexStore := newMemClient(t, "memory", "idx-store")

	p, _ := pstorage.NewStoragePath("a/b.txt")
	key := pstorage.NewStorageKey(inner.Key(), p)
	obj := pstorage.NewFileObject(key, pstorage.ContentInfo{Size: 1})
	require.NoError(t, inner.Put(ctx, obj, []byte("x")))

	idx, err := pwrapper.NewIndexing(ctx, inner, indexStore)
	require.NoError(t, err)

	stat, err := idx.Stat(ctx, key)
	require.NoError(t, err)
	require.True(t, stat.Key.Equal(key))
}

func TestIndexingStaysInSyncOnPutRemove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner := newMemClient(t, "memory", "idx-inner2")
	indexStore := newMemClient(t, "memory", "idx-store2")

	idx, err := pwrapper.NewIndexing(ctx, inner, indexStore)
	require.NoError(t, err)

	p, _ := pstorage.NewStoragePath("c/d.txt")
	key := pstorage.NewStorageKey(inner.Key(), p)
	obj := pstorage.NewFileObject(key, pstorage.ContentInfo{Size: 1})

	require.NoError(t, idx.Put(ctx, obj, []byte("x")))
	contains, err := idx.Contains(ctx, key)
	require.NoError(t, err)
	require.True(t, contains)

	require.NoError(t, idx.Remove(ctx, key))
	contains, err = idx.Contains(ctx, key)
	require.NoError(t, err)
	require.False(t, contains)
}

func TestIndexingListByPrefixAndDepth(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner := newMemClient(t, "memory", "idx-inner3")
	indexStore := newMemClient(t, "memory", "idx-store3")

	idx, err := pwrapper.NewIndexing(ctx, inner, indexStore)
	require.NoError(t, err)

	for _, rel := range []string{"dir/one.txt", "dir/two.txt", "dir/sub/three.txt"} {
		p, _ := pstorage.NewStoragePath(rel)
		key := pstorage.NewStorageKey(inner.Key(), p)
		obj := pstorage.NewFileObject(key, pstorage.ContentInfo{Size: 1})
		require.NoError(t, idx.Put(ctx, obj, []byte("x")))
	}

	root := pstorage.NewStorageKey(inner.Key(), pstorage.StoragePath("dir"))
	shallow, err := idx.List(ctx, root, false)
	require.NoError(t, err)
	require.Len(t, shallow, 2)

	deep, err := idx.List(ctx, root, true)
	require.NoError(t, err)
	require.Len(t, deep, 3)
}
