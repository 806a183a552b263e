package passembly_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pioneer-storage/pioneer/internal/config"
	"github.com/pioneer-storage/pioneer/internal/passembly"
	"github.com/pioneer-storage/pioneer/internal/pdata"
	"github.com/pioneer-storage/pioneer/internal/pstorage"
)

func mustPath(t *testing.T, raw string) pstorage.StoragePath {
	t.Helper()
	return pstorage.MustStoragePath(raw)
}

func testConfig(name string, port int) *config.Configuration {
	cfg := config.NewDefaultPioneerSections()
	cfg.Cluster.Name = name
	cfg.Cluster.Port = port
	cfg.Cluster.FQDNService = ""
	return &cfg
}

func TestNewNodeAssemblesStackAndElectsLeader(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	node, err := passembly.NewNode(ctx, testConfig("node-assembly-a", 18701), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = node.Shutdown(ctx) })

	require.NoError(t, node.Start(ctx))
	require.Eventually(t, node.Distributed.IsMaster, 5*time.Second, 20*time.Millisecond, "single node must self-elect leader")
}

func TestNodeDatabaseRoundTripsThroughFullStack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	node, err := passembly.NewNode(ctx, testConfig("node-assembly-b", 18702), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = node.Shutdown(ctx) })
	require.NoError(t, node.Start(ctx))

	db, err := node.Database(ctx, "catalog")
	require.NoError(t, err)

	value := pdata.New(map[string]interface{}{"title": "Pioneer Node Assembly"})
	require.NoError(t, db.Insert(ctx, "doc-1", value))

	got, err := db.Get(ctx, "doc-1")
	require.NoError(t, err)
	require.True(t, got.Equal(value))
}

func TestNodeRepositoryRoundTrips(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	node, err := passembly.NewNode(ctx, testConfig("node-assembly-c", 18703), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = node.Shutdown(ctx) })
	require.NoError(t, node.Start(ctx))

	repo := node.Repository(mustPath(t, "records"))
	value := pdata.New(map[string]interface{}{"n": 1})
	require.NoError(t, repo.Update(ctx, "k", value))

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, got.Equal(value))
}
