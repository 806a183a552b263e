package pwrapper_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
	"github.com/pioneer-storage/pioneer/internal/pwrapper"
)

type recordedCall struct {
	operation string
	size      int64
	success   bool
}

type fakeRecorder struct {
	calls []recordedCall
}

func (f *fakeRecorder) RecordOperation(operation string, duration time.Duration, size int64, success bool) {
	f.calls = append(f.calls, recordedCall{operation: operation, size: size, success: success})
}

func TestMetricsRecordsPutGetRemove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner := newMemClient(t, "memory", "metrics")
	rec := &fakeRecorder{}
	m := pwrapper.NewMetrics(inner, rec)

	p, _ := pstorage.NewStoragePath("f.txt")
	key := pstorage.NewStorageKey(inner.Key(), p)
	obj := pstorage.NewFileObject(key, pstorage.ContentInfo{Size: 5})

	require.NoError(t, m.Put(ctx, obj, []byte("hello")))
	_, err := m.Get(ctx, key)
	require.NoError(t, err)
	require.NoError(t, m.Remove(ctx, key))

	require.Len(t, rec.calls, 3)
	require.Equal(t, "put", rec.calls[0].operation)
	require.True(t, rec.calls[0].success)
	require.Equal(t, "get", rec.calls[1].operation)
	require.Equal(t, "remove", rec.calls[2].operation)
}

func TestMetricsRecordsFailureOnMissingKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner := newMemClient(t, "memory", "metrics-fail")
	rec := &fakeRecorder{}
	m := pwrapper.NewMetrics(inner, rec)

	p, _ := pstorage.NewStoragePath("missing.txt")
	key := pstorage.NewStorageKey(inner.Key(), p)

	_, err := m.Get(ctx, key)
	require.Error(t, err)
	require.Len(t, rec.calls, 1)
	require.False(t, rec.calls[0].success)
}
