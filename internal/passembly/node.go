package passembly

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/pioneer-storage/pioneer/internal/circuit"
	"github.com/pioneer-storage/pioneer/internal/config"
	"github.com/pioneer-storage/pioneer/internal/health"
	"github.com/pioneer-storage/pioneer/internal/metrics"
	"github.com/pioneer-storage/pioneer/internal/pdatabase"
	"github.com/pioneer-storage/pioneer/internal/pdistributed"
	"github.com/pioneer-storage/pioneer/internal/pfuse"
	"github.com/pioneer-storage/pioneer/internal/plocking"
	"github.com/pioneer-storage/pioneer/internal/pstorage"
	"github.com/pioneer-storage/pioneer/internal/prepository"
	"github.com/pioneer-storage/pioneer/internal/pwrapper"
)

// Node is one running Pioneer process: a storage client wrapped in the full
// C5 stack, a C6 cluster membership, and the C8/C9 surfaces built over the
// wrapped client. It plays the role internal/adapter.Adapter plays in
// objectfs (the thing main() constructs and calls Start/Shutdown on), sized
// up from "one S3 backend behind a FUSE mount" to "one storage stack behind
// a cluster member".
type Node struct {
	cfg *config.Configuration

	Storage     pstorage.Client
	Distributed *pdistributed.Distributed
	Cluster     *pdistributed.ClusterManager
	Discovery   *pdistributed.Discovery
	Messaging   *pdistributed.Messaging
	Lease       *pwrapper.Lease
	Metrics     *metrics.Collector
	Health      *health.Checker

	started bool
}

// NewNode builds every C1-C9 collaborator from cfg, starts the Raft member
// and acquires the storage-wide lease; Start then begins discovery and
// health checking.
func NewNode(ctx context.Context, cfg *config.Configuration, dataDir string) (*Node, error) {
	primaryName, primaryTarget := pickPrimary(cfg.Storage)

	rawBackend, err := buildBackend(ctx, primaryName, primaryTarget)
	if err != nil {
		return nil, err
	}
	raw := pwrapper.NewCircuitBreaking(rawBackend, primaryName, circuit.Config{})

	distCfg := pdistributed.Config{
		NodeID:    cfg.Cluster.Name,
		BindAddr:  fmt.Sprintf("127.0.0.1:%d", cfg.Cluster.Port),
		DataDir:   dataDir,
		Bootstrap: len(cfg.Cluster.InitialPeers) == 0,
	}
	dist, err := pdistributed.New(distCfg)
	if err != nil {
		return nil, fmt.Errorf("passembly: start distributed member: %w", err)
	}

	// AcquireLease touches the raw client's reserved "._lock.json" key, so it
	// runs beneath Safety before the rest of the stack
	// is built on top of it.
	lease, err := plocking.NewStorageLease(ctx, raw, cfg.Cluster.Name, plocking.Timings{
		Duration: time.Duration(cfg.Locking.Storage.Duration * float64(time.Second)),
		Grace:    time.Duration(cfg.Locking.Storage.Grace * float64(time.Second)),
	})
	if err != nil {
		return nil, fmt.Errorf("passembly: acquire storage lease: %w", err)
	}

	safe := pwrapper.NewSafety(raw)
	var stack pstorage.Client = safe

	if replicaName, replicaTarget, ok := pickReplica(cfg.Storage, primaryName); ok {
		replica, err := buildBackend(ctx, replicaName, replicaTarget)
		if err != nil {
			return nil, err
		}
		repl := pwrapper.NewReplication(stack, pwrapper.NewSafety(replica))
		repl.LeaderGate = dist.IsMaster
		stack = repl
	}

	watched := pwrapper.NewWatching(stack)

	indexBackend, err := buildBackend(ctx, primaryName+"-index", config.StorageTargetConfig{})
	if err != nil {
		return nil, err
	}
	indexed, err := pwrapper.NewIndexing(ctx, watched, pwrapper.NewSafety(indexBackend))
	if err != nil {
		return nil, fmt.Errorf("passembly: build indexing wrapper: %w", err)
	}

	lockManager := pdistributed.NewLockManager(dist, cfg.Cluster.Name)
	locking := plocking.NewRecordLocking(indexed, lease, lockManager,
		time.Duration(cfg.Locking.Objects.Duration*float64(time.Second)))

	collector, err := metrics.NewCollector(&metrics.Config{
		Enabled:   true,
		Namespace: "pioneer",
		Subsystem: prometheusSafe(cfg.Cluster.Name),
		Labels:    map[string]string{},
	})
	if err != nil {
		return nil, fmt.Errorf("passembly: build metrics collector: %w", err)
	}
	instrumented := pwrapper.NewMetrics(locking, collector)

	self := pdistributed.NodeInfo{
		ID:       cfg.Cluster.Name,
		Addr:     distCfg.BindAddr,
		RaftPort: cfg.Cluster.Port,
		Status:   pdistributed.NodeHealthy,
	}
	cluster := pdistributed.NewClusterManager(self, 10*time.Second, 30*time.Second)

	var discovery *pdistributed.Discovery
	if cfg.Cluster.FQDNService != "" {
		discovery, err = pdistributed.NewDiscovery(cluster, cfg.Cluster.FQDNService, cfg.Cluster.Port)
		if err != nil {
			return nil, fmt.Errorf("passembly: start discovery: %w", err)
		}
	}

	checker, err := buildHealthChecker(instrumented, dist)
	if err != nil {
		return nil, fmt.Errorf("passembly: build health checker: %w", err)
	}

	return &Node{
		cfg:         cfg,
		Storage:     instrumented,
		Distributed: dist,
		Cluster:     cluster,
		Discovery:   discovery,
		Messaging:   pdistributed.NewMessaging(dist),
		Lease:       lease,
		Metrics:     collector,
		Health:      checker,
	}, nil
}

// buildHealthChecker registers the checks every node runs: whether its
// storage stack answers reads, and whether its Raft member has applied every
// entry of its log (the check fails while it has not).
func buildHealthChecker(storage pstorage.Client, dist *pdistributed.Distributed) (*health.Checker, error) {
	checker, err := health.NewChecker(&health.Config{
		Enabled:       true,
		CheckInterval: 10 * time.Second,
		Timeout:       5 * time.Second,
	})
	if err != nil {
		return nil, err
	}

	probe := pstorage.NewStorageKey(storage.Key(), pstorage.MustStoragePath("__health_check__"))
	if err := checker.RegisterCheck("storage", "primary storage stack reachability",
		health.CategoryStorage, health.PriorityCritical,
		health.StorageCheck(func(ctx context.Context) error {
			_, err := storage.Exists(ctx, probe)
			return err
		})); err != nil {
		return nil, err
	}

	if err := checker.RegisterCheck("raft", "Raft membership is caught up with the cluster's applied log",
		health.CategoryCluster, health.PriorityHigh,
		func(ctx context.Context) error {
			if !dist.IsSynced() {
				return fmt.Errorf("raft member is not synced")
			}
			return nil
		}); err != nil {
		return nil, err
	}

	return checker, nil
}

// Start begins browsing for peers in the background, if discovery is
// configured, and starts the health checker. The storage-wide lease is
// already held by the time NewNode returns.
func (n *Node) Start(ctx context.Context) error {
	if n.started {
		return fmt.Errorf("passembly: node already started")
	}

	if n.Discovery != nil {
		go n.Discovery.Start(5 * time.Second)
	}
	if err := n.Health.Start(ctx); err != nil {
		return fmt.Errorf("passembly: start health checker: %w", err)
	}

	n.started = true
	return nil
}

// Shutdown stops discovery, releases the storage lease, and shuts the Raft
// member down, continuing past errors rather than stopping at the first so
// every collaborator gets a chance to release its resources; it returns the
// last error seen.
func (n *Node) Shutdown(ctx context.Context) error {
	var lastErr error

	if n.Health != nil && n.started {
		if err := n.Health.Stop(); err != nil {
			lastErr = fmt.Errorf("passembly: stop health checker: %w", err)
		}
	}
	if n.Discovery != nil {
		if err := n.Discovery.Stop(); err != nil {
			lastErr = fmt.Errorf("passembly: stop discovery: %w", err)
		}
	}
	if n.Lease != nil {
		if err := n.Lease.Release(ctx); err != nil {
			lastErr = fmt.Errorf("passembly: release storage lease: %w", err)
		}
	}
	if err := n.Distributed.Shutdown(); err != nil {
		lastErr = fmt.Errorf("passembly: shut down distributed member: %w", err)
	}
	if closer, ok := n.Storage.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			lastErr = fmt.Errorf("passembly: close storage backend: %w", err)
		}
	}
	return lastErr
}

// Database opens a document database namespaced under name on this node's
// wrapped storage stack.
func (n *Node) Database(ctx context.Context, name string) (*pdatabase.Client, error) {
	return pdatabase.New(ctx, n.Storage, name)
}

// Repository opens a typed key/value surface (C9) rooted at root on this
// node's wrapped storage stack.
func (n *Node) Repository(root pstorage.StoragePath) *prepository.DataRepository {
	return prepository.NewDataRepository(n.Storage, root)
}

// Mount exposes root through the kernel FUSE driver at mountPoint, for a
// caller that wants a mounted filesystem view of this node's storage stack.
func (n *Node) Mount(mountPoint string, root pstorage.StoragePath, opts *fs.Options) (*fuse.Server, error) {
	return pfuse.Mount(mountPoint, n.Storage, root, opts)
}

// prometheusSafe rewrites a cluster name into a valid Prometheus subsystem
// token ([a-zA-Z_:][a-zA-Z0-9_:]*); cluster names freely contain
// hyphens/dots that metric names cannot.
func prometheusSafe(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

func pickPrimary(targets map[string]config.StorageTargetConfig) (string, config.StorageTargetConfig) {
	if primary, ok := targets["primary"]; ok {
		return "primary", primary
	}
	for name, target := range targets {
		return name, target
	}
	return "primary", config.StorageTargetConfig{}
}

func pickReplica(targets map[string]config.StorageTargetConfig, primaryName string) (string, config.StorageTargetConfig, bool) {
	if replica, ok := targets["replica"]; ok {
		return "replica", replica, true
	}
	for name, target := range targets {
		if name != primaryName {
			return name, target, true
		}
	}
	return "", config.StorageTargetConfig{}, false
}
