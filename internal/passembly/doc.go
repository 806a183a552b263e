// Package passembly is Pioneer's composition root: it owns the same
// responsibility objectfs's internal/adapter.Adapter does (parse config,
// build the backend, wire cache/buffer/metrics, expose Start/Shutdown), but
// assembles the full C1-C9 stack instead of a single S3 backend plus FUSE
// mount. A Node is what a process boots: one storage backend behind a
// circuit breaker, wrapped in the C5 wrapper stack in a fixed order (Safety,
// then Replication when a second target is configured, Watching, Indexing,
// record Locking, Metrics; the Overlay and Sharding wrappers are not used),
// a C6 Distributed cluster member, and the C8/C9 surfaces built on top of
// the wrapped client.
package passembly
