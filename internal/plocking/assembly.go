package plocking

import (
	"context"
	"time"

	"github.com/pioneer-storage/pioneer/internal/pdistributed"
	"github.com/pioneer-storage/pioneer/internal/pstorage"
	"github.com/pioneer-storage/pioneer/internal/pwrapper"
)

// Timings carries a locking.objects or locking.storage {duration, grace}
// pair as time.Duration values rather than a raw config struct, so this
// package has no dependency on internal/config's decoding concerns.
type Timings struct {
	Duration time.Duration
	Grace    time.Duration
}

// NewStorageLease acquires the storage-wide lease on raw, the client beneath
// the Safety boundary, using locking.storage's configured duration/grace.
func NewStorageLease(ctx context.Context, raw pstorage.Client, cluster string, t Timings) (*pwrapper.Lease, error) {
	return pwrapper.AcquireLease(ctx, raw, cluster, t.Duration, t.Grace)
}

// NewRecordLocking wraps inner with per-record locking backed by a
// cluster-wide pdistributed.LockManager, using locking.objects' configured
// acquisition timeout as the per-call TryAcquire timeout.
func NewRecordLocking(inner pstorage.Client, lease *pwrapper.Lease, lockManager *pdistributed.LockManager, objectTimeout time.Duration) *pwrapper.Locking {
	return pwrapper.NewLocking(inner, lease, lockManager, objectTimeout)
}
