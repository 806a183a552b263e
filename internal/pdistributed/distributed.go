package pdistributed

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"

	"github.com/pioneer-storage/pioneer/internal/pioneerlog"
	pioneererrors "github.com/pioneer-storage/pioneer/pkg/errors"
)

// Config bootstraps a Distributed object's per-object Raft group. Grounded on cuemby-warren pkg/manager.Config/Bootstrap.
type Config struct {
	NodeID   string
	BindAddr string
	DataDir  string

	// Bootstrap, when true, forms a brand-new single-node cluster at this
	// address. Joining nodes instead call Distributed.Join after
	// construction.
	Bootstrap bool
}

// Distributed is a per-object Raft cluster: replicated state (here, a
// simple key/value map) shared across the peer set, with leader-gated
// execution.
type Distributed struct {
	nodeID string
	raft   *raft.Raft
	fsm    *stateFSM
}

// New bootstraps (or prepares to join) a Raft group backing a single
// Distributed instance. One Distributed exists per cluster-consistent
// wrapper concern (lock table, messaging handlers, index metadata).
func New(cfg Config) (*Distributed, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("pdistributed: create data dir: %w", err)
	}

	raftConfig := raft.DefaultConfig()
	raftConfig.LocalID = raft.ServerID(cfg.NodeID)
	raftConfig.Logger = nil

	addr, err := net.ResolveTCPAddr("tcp", cfg.BindAddr)
	if err != nil {
		return nil, fmt.Errorf("pdistributed: resolve bind addr: %w", err)
	}
	transport, err := raft.NewTCPTransport(cfg.BindAddr, addr, 3, 10*time.Second, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("pdistributed: create transport: %w", err)
	}

	snapshotStore, err := raft.NewFileSnapshotStore(cfg.DataDir, 2, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("pdistributed: create snapshot store: %w", err)
	}

	logStore, err := raftboltdb.NewBoltStore(filepath.Join(cfg.DataDir, "raft-log.db"))
	if err != nil {
		return nil, fmt.Errorf("pdistributed: create log store: %w", err)
	}
	stableStore, err := raftboltdb.NewBoltStore(filepath.Join(cfg.DataDir, "raft-stable.db"))
	if err != nil {
		return nil, fmt.Errorf("pdistributed: create stable store: %w", err)
	}

	fsm := newStateFSM()
	r, err := raft.NewRaft(raftConfig, fsm, logStore, stableStore, snapshotStore, transport)
	if err != nil {
		return nil, fmt.Errorf("pdistributed: create raft: %w", err)
	}

	d := &Distributed{nodeID: cfg.NodeID, raft: r, fsm: fsm}

	if cfg.Bootstrap {
		configuration := raft.Configuration{
			Servers: []raft.Server{{ID: raftConfig.LocalID, Address: transport.LocalAddr()}},
		}
		if err := r.BootstrapCluster(configuration).Error(); err != nil {
			return nil, fmt.Errorf("pdistributed: bootstrap cluster: %w", err)
		}
	}

	return d, nil
}

// Join adds a voter to this Raft group from the leader. Must be called on
// the current leader; non-leaders return an error.
func (d *Distributed) Join(nodeID, addr string) error {
	if !d.IsMaster() {
		return pioneererrors.NewError(pioneererrors.ErrCodeLeaseInvalid, "join: not leader")
	}
	return d.raft.AddVoter(raft.ServerID(nodeID), raft.ServerAddress(addr), 0, 10*time.Second).Error()
}

// IsMaster reports whether this node is the Raft leader for this group.
func (d *Distributed) IsMaster() bool {
	return d.raft.State() == raft.Leader
}

// OnMaster executes fn only when this node is leader; non-leaders are a
// no-op returning nil.
func (d *Distributed) OnMaster(fn func() error) error {
	if !d.IsMaster() {
		return nil
	}
	return fn()
}

// IsSynced reports whether this node has applied every entry of its local
// log (applied index equals last log index).
func (d *Distributed) IsSynced() bool {
	return d.raft.AppliedIndex() == d.raft.LastIndex()
}

// LocalSync blocks until IsSynced or ctx is done.
func (d *Distributed) LocalSync(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if d.IsSynced() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// GlobalSync blocks until the leader's commit index is reached locally, via
// a Raft barrier entry.
func (d *Distributed) GlobalSync(ctx context.Context) error {
	deadline, ok := ctx.Deadline()
	timeout := 10 * time.Second
	if ok {
		timeout = time.Until(deadline)
	}
	return d.raft.Barrier(timeout).Error()
}

// apply submits a command to the replicated log and blocks for its commit.
func (d *Distributed) apply(cmd command, timeout time.Duration) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	future := d.raft.Apply(data, timeout)
	if err := future.Error(); err != nil {
		return err
	}
	if resp := future.Response(); resp != nil {
		if respErr, ok := resp.(error); ok && respErr != nil {
			return respErr
		}
	}
	return nil
}

// Set replicates key -> value through Raft.
func (d *Distributed) Set(key string, value []byte, timeout time.Duration) error {
	return d.apply(command{Op: opSet, Key: key, Value: value}, timeout)
}

// Delete replicates removal of key through Raft.
func (d *Distributed) Delete(key string, timeout time.Duration) error {
	return d.apply(command{Op: opDelete, Key: key}, timeout)
}

// Get reads key from the local (possibly stale) committed state.
func (d *Distributed) Get(key string) ([]byte, bool) {
	return d.fsm.get(key)
}

// Shutdown stops the Raft group.
func (d *Distributed) Shutdown() error {
	return d.raft.Shutdown().Error()
}

var logger = pioneerlog.Component("pdistributed")
