/*
Package pstorage implements the storage abstraction at the heart of Pioneer:
a uniform object interface addressed by StorageKey, with per-directory
headers and a reserved-key safety boundary, over pluggable backend Drivers
(local disk, in-memory, S3-compatible).

# Architecture Role

	┌─────────────────────────────────────────────┐
	│                  Client                      │  StorageKey-addressed
	│   get/put/remove/stat/list + header model    │  contract (C4)
	└───────────────────┬───────────────────────────┘
	                     │
	┌───────────────────▼───────────────────────────┐
	│                  Driver                      │  raw byte storage
	│   ReadRaw/WriteRaw/DeleteRaw/ListRaw           │
	└─────┬───────────────┬──────────────┬──────────┘
	      │               │              │
	   local           memory            s3adapter

BaseClient implements the full Client contract once, in terms of a Driver;
backends only need to implement the much smaller Driver interface. This is
the Go re-expression of the source's subclass registry: instead
of backends self-registering into a class-level map, a process-owned
Registry is populated explicitly by whoever constructs a Client.
*/
package pstorage
