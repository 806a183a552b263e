package pdistributed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClusterManagerTracksSelf(t *testing.T) {
	t.Parallel()
	cm := NewClusterManager(NodeInfo{ID: "self", Addr: "127.0.0.1:1"}, time.Second, 2*time.Second)
	members := cm.Members()
	require.Len(t, members, 1)
	require.Equal(t, "self", members[0].ID)
	require.Equal(t, NodeHealthy, members[0].Status)
}

func TestClusterManagerUpsertAndHealthy(t *testing.T) {
	t.Parallel()
	cm := NewClusterManager(NodeInfo{ID: "self"}, time.Second, 2*time.Second)
	cm.Upsert(NodeInfo{ID: "peer-1", Addr: "127.0.0.1:2"})

	healthy := cm.Healthy()
	require.Len(t, healthy, 1)
	require.Equal(t, "peer-1", healthy[0].ID)
}

func TestClusterManagerSweepAgesStalePeers(t *testing.T) {
	t.Parallel()
	cm := NewClusterManager(NodeInfo{ID: "self"}, 10*time.Millisecond, 30*time.Millisecond)
	cm.Upsert(NodeInfo{ID: "peer-1"})

	time.Sleep(20 * time.Millisecond)
	cm.Sweep()
	require.Empty(t, cm.Healthy())

	time.Sleep(20 * time.Millisecond)
	cm.Sweep()

	var got NodeStatus
	for _, n := range cm.Members() {
		if n.ID == "peer-1" {
			got = n.Status
		}
	}
	require.Equal(t, NodeDead, got)
}

func TestClusterManagerRemove(t *testing.T) {
	t.Parallel()
	cm := NewClusterManager(NodeInfo{ID: "self"}, time.Second, 2*time.Second)
	cm.Upsert(NodeInfo{ID: "peer-1"})
	require.Len(t, cm.Members(), 2)

	cm.Remove("peer-1")
	require.Len(t, cm.Members(), 1)
}
