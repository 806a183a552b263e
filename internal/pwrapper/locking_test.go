package pwrapper_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
	"github.com/pioneer-storage/pioneer/internal/pwrapper"
)

func TestLeaseAcquireAndRelease(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	raw := newMemClient(t, "memory", "lease")

	lease, err := pwrapper.AcquireLease(ctx, raw, "cluster-a", 50*time.Millisecond, 10*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, pwrapper.LeaseHeld, lease.State())
	require.True(t, lease.Valid(ctx))

	require.NoError(t, lease.Release(ctx))
	require.Equal(t, pwrapper.LeaseUnlocked, lease.State())
}

func TestLeaseRejectsConflictingCluster(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	raw := newMemClient(t, "memory", "lease-conflict")

	_, err := pwrapper.AcquireLease(ctx, raw, "cluster-a", time.Minute, 10*time.Second)
	require.NoError(t, err)

	_, err = pwrapper.AcquireLease(ctx, raw, "cluster-b", time.Minute, 10*time.Second)
	require.Error(t, err)
}

type fakeLockManager struct {
	mu      sync.Mutex
	held    map[string]bool
	failFor string
}

func (f *fakeLockManager) TryAcquire(ctx context.Context, name string, timeout time.Duration) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held == nil {
		f.held = make(map[string]bool)
	}
	if name == f.failFor || f.held[name] {
		return nil, errLockBusy
	}
	f.held[name] = true
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.held, name)
	}, nil
}

var errLockBusy = fakeLockError("lock held")

type fakeLockError string

func (e fakeLockError) Error() string { return string(e) }

func TestLockingGatesRecordOperations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner := newMemClient(t, "memory", "locking")
	manager := &fakeLockManager{}
	locking := pwrapper.NewLocking(inner, nil, manager, time.Second)

	p, _ := pstorage.NewStoragePath("f.txt")
	key := pstorage.NewStorageKey(inner.Key(), p)
	obj := pstorage.NewFileObject(key, pstorage.ContentInfo{Size: 1})

	require.NoError(t, locking.Put(ctx, obj, []byte("x")))

	got, err := locking.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, []byte("x"), []byte(got))
}

func TestLockingGetFailsWhenLockUnavailable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner := newMemClient(t, "memory", "locking2")
	manager := &fakeLockManager{}

	p, _ := pstorage.NewStoragePath("f.txt")
	key := pstorage.NewStorageKey(inner.Key(), p)
	manager.failFor = key.String()

	locking := pwrapper.NewLocking(inner, nil, manager, time.Second)
	_, err := locking.Get(ctx, key)
	require.Error(t, err)
}
