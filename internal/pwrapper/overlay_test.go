package pwrapper_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
	"github.com/pioneer-storage/pioneer/internal/pwrapper"
)

func TestOverlayReadsPreferTop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	base := newMemClient(t, "memory", "overlay-base")
	top := newMemClient(t, "memory", "overlay-top")
	ov := pwrapper.NewOverlay(base, top, false)

	p, _ := pstorage.NewStoragePath("f.txt")
	baseKey := pstorage.NewStorageKey(base.Key(), p)
	require.NoError(t, base.Put(ctx, pstorage.NewFileObject(baseKey, pstorage.ContentInfo{Size: 1}), []byte("base")))

	// Top does not hold the path yet, so the read falls back to base.
	topKey := pstorage.NewStorageKey(top.Key(), p)
	got, err := ov.Get(ctx, topKey)
	require.NoError(t, err)
	require.Equal(t, []byte("base"), []byte(got))

	// Once top holds the path, its copy wins.
	require.NoError(t, top.Put(ctx, pstorage.NewFileObject(topKey, pstorage.ContentInfo{Size: 1}), []byte("top")))
	got, err = ov.Get(ctx, topKey)
	require.NoError(t, err)
	require.Equal(t, []byte("top"), []byte(got))
}

func TestOverlaySymmetricWriteHitsBoth(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	base := newMemClient(t, "memory", "overlay-base2")
	top := newMemClient(t, "memory", "overlay-top2")
	ov := pwrapper.NewOverlay(base, top, true)

	p, _ := pstorage.NewStoragePath("f.txt")
	key := pstorage.NewStorageKey(top.Key(), p)
	obj := pstorage.NewFileObject(key, pstorage.ContentInfo{Size: 1})
	require.NoError(t, ov.Put(ctx, obj, []byte("x")))

	baseKey := pstorage.NewStorageKey(base.Key(), p)
	_, err := base.Get(ctx, baseKey)
	require.NoError(t, err)
}
