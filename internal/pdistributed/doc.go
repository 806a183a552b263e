// Package pdistributed implements Pioneer's distribution layer: mDNS-style peer discovery, a Raft-replicated object base
// exposing is_master/on_master/sync semantics, a cluster-coordinated
// distributed lock manager, and a replicated messaging handler table.
//
// The Raft wiring is grounded on cuemby-warren's pkg/manager (fsm.go +
// manager.go): a raft.FSM applying JSON-encoded commands to an in-memory
// state map, bootstrapped with raft-boltdb log/stable stores and a TCP
// transport, rather than objectfs's own internal/distributed.ConsensusEngine
// (whose doc.go flags known race conditions and marks it unsuitable for
// production — see DESIGN.md). The cluster membership/node-status shapes
// (NodeInfo, NodeStatus, ClusterManager) are adapted from objectfs's
// internal/distributed/cluster.go and gossip.go, re-grounded on
// github.com/hashicorp/mdns for the liveness transport instead of the
// source's hand-rolled UDP gossip wire format.
package pdistributed
