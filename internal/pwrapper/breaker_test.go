package pwrapper_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pioneer-storage/pioneer/internal/circuit"
	"github.com/pioneer-storage/pioneer/internal/pstorage"
	"github.com/pioneer-storage/pioneer/internal/pwrapper"
)

func tripAfterTwoFailures(counts circuit.Counts) bool {
	return counts.ConsecutiveFailures >= 2
}

func TestCircuitBreakingPassesThroughOnSuccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner := newMemClient(t, "memory", "breaker-ok")
	cb := pwrapper.NewCircuitBreaking(inner, "breaker-ok", circuit.Config{ReadyToTrip: tripAfterTwoFailures})

	p, _ := pstorage.NewStoragePath("f.txt")
	key := pstorage.NewStorageKey(inner.Key(), p)
	obj := pstorage.NewFileObject(key, pstorage.ContentInfo{Size: 1})

	require.NoError(t, cb.Put(ctx, obj, []byte("x")))
	_, err := cb.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, circuit.StateClosed, cb.State())
}

func TestCircuitBreakingTripsOpenAfterRepeatedFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner := newMemClient(t, "memory", "breaker-trip")
	cb := pwrapper.NewCircuitBreaking(inner, "breaker-trip", circuit.Config{ReadyToTrip: tripAfterTwoFailures})

	missing, _ := pstorage.NewStoragePath("missing.txt")
	key := pstorage.NewStorageKey(inner.Key(), missing)

	_, err := cb.Get(ctx, key)
	require.Error(t, err)
	_, err = cb.Get(ctx, key)
	require.Error(t, err)

	require.Equal(t, circuit.StateOpen, cb.State())

	_, err = cb.Get(ctx, key)
	require.Error(t, err, "an open breaker must reject without calling inner")
}
