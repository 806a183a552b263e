package pdistributed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func bootstrapSingleNode(t *testing.T, nodeID, addr string) *Distributed {
	t.Helper()
	d, err := New(Config{
		NodeID:    nodeID,
		BindAddr:  addr,
		DataDir:   t.TempDir(),
		Bootstrap: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Shutdown() })

	require.Eventually(t, d.IsMaster, 5*time.Second, 20*time.Millisecond, "single node must self-elect leader")
	return d
}

func TestSingleNodeBootstrapsAsLeader(t *testing.T) {
	d := bootstrapSingleNode(t, "node-a", "127.0.0.1:18301")
	require.True(t, d.IsMaster())
	require.True(t, d.IsSynced())
}

func TestOnMasterRunsOnlyWhenLeader(t *testing.T) {
	d := bootstrapSingleNode(t, "node-b", "127.0.0.1:18302")

	ran := false
	err := d.OnMaster(func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	require.True(t, ran)
}

func TestSetGetDeleteReplicatesThroughRaft(t *testing.T) {
	d := bootstrapSingleNode(t, "node-c", "127.0.0.1:18303")

	require.NoError(t, d.Set("answer", []byte("42"), 2*time.Second))
	v, ok := d.Get("answer")
	require.True(t, ok)
	require.Equal(t, []byte("42"), v)

	require.NoError(t, d.Delete("answer", 2*time.Second))
	_, ok = d.Get("answer")
	require.False(t, ok)
}

func TestGlobalSyncAfterWrite(t *testing.T) {
	d := bootstrapSingleNode(t, "node-d", "127.0.0.1:18304")
	require.NoError(t, d.Set("k", []byte("v"), 2*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.GlobalSync(ctx))
}
