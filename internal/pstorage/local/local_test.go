package local_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
	"github.com/pioneer-storage/pioneer/internal/pstorage/local"
)

func newTestDriver(t *testing.T) *local.Driver {
	t.Helper()
	driver, err := local.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close() })
	return driver
}

func TestReadWriteDeleteRaw(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	driver := newTestDriver(t)

	p, err := pstorage.NewStoragePath("a/b/file.txt")
	require.NoError(t, err)

	require.NoError(t, driver.WriteRaw(ctx, p, []byte("hello")))

	got, err := driver.ReadRaw(ctx, p)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)

	exists, err := driver.ExistsRaw(ctx, p)
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, driver.DeleteRaw(ctx, p))

	exists, err = driver.ExistsRaw(ctx, p)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestHeaderCacheReadBackAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	driver := newTestDriver(t)

	headerPath, err := pstorage.NewStoragePath("dir/" + pstorage.HeaderFile)
	require.NoError(t, err)

	require.NoError(t, driver.WriteRaw(ctx, headerPath, []byte(`{"k":"v"}`)))

	got, err := driver.ReadRaw(ctx, headerPath)
	require.NoError(t, err)
	require.JSONEq(t, `{"k":"v"}`, string(got))

	require.NoError(t, driver.DeleteRaw(ctx, headerPath))
	_, err = driver.ReadRaw(ctx, headerPath)
	require.Error(t, err)
}

func TestListRawMissingDirReturnsEmpty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	driver := newTestDriver(t)

	p, err := pstorage.NewStoragePath("does/not/exist")
	require.NoError(t, err)

	entries, err := driver.ListRaw(ctx, p)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestMediumIsLocal(t *testing.T) {
	t.Parallel()
	driver := newTestDriver(t)
	require.Equal(t, pstorage.MediumLocal, driver.Medium())
}
