// Package pwrapper implements Pioneer's storage wrapper stack: Safety, Overlay, Replication, Sharding, Watching, Locking, and
// Indexing, each forwarding the full pstorage.Client contract to an inner
// client and overriding the operations its concern cares about.
//
// The source expresses this as a decorator chain built by attribute
// forwarding (an unset method falls through to the wrapped instance). Go has
// no such fallback, so every wrapper here embeds *Wrapper, which implements
// the complete pstorage.Client interface by pure delegation; a concrete
// wrapper then shadows only the methods its concern needs to change. This
// gives the same left-to-right, outermost-first composition as attribute
// forwarding, expressed through Go's embedding and method shadowing instead
// of Python-style `__getattr__`.
package pwrapper
