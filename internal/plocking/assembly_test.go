package plocking_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pioneer-storage/pioneer/internal/plocking"
	"github.com/pioneer-storage/pioneer/internal/pstorage"
	"github.com/pioneer-storage/pioneer/internal/pstorage/memory"
)

func TestNewStorageLeaseRejectsConflict(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	raw := pstorage.NewBaseClient(pstorage.NewStorageClientKey("memory", "lease-test"), memory.New())

	lease, err := plocking.NewStorageLease(ctx, raw, "cluster-a", plocking.Timings{Duration: time.Second, Grace: 100 * time.Millisecond})
	require.NoError(t, err)
	defer lease.Release(ctx)

	_, err = plocking.NewStorageLease(ctx, raw, "cluster-b", plocking.Timings{Duration: time.Second, Grace: 100 * time.Millisecond})
	require.Error(t, err)
}
