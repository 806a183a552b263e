/*
Package s3 provides an AWS S3 storage backend with CargoShip-optimized transport.

The backend pairs a pooled *s3.Client with CargoShip's optimized transporter,
giving callers a single Backend type that behaves like a plain object store.
Uploads through PutObject get CargoShip's chunking and retry behavior;
GetObject and the other calls use the pooled client directly.

# Architecture

	┌────────────────────────────────────────┐
	│                Backend                  │
	│   GetObject / PutObject / HeadObject /  │
	│   DeleteObject / ListObjects            │
	└────────────────────────────────────────┘
	          │                    │
	┌──────────────────┐  ┌──────────────────────┐
	│  ConnectionPool   │  │  CargoShip Transporter │
	│  (pool.go)        │  │  (put path)            │
	└──────────────────┘  └──────────────────────┘
	          │
	┌────────────────────────────────────────┐
	│              AWS S3 Service              │
	└────────────────────────────────────────┘

# Usage

	cfg := s3.NewDefaultConfig()
	cfg.Region = "us-west-2"

	backend, err := s3.NewBackend(ctx, "my-bucket", cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer backend.Close()

	err = backend.PutObject(ctx, "data/file.txt", data)
	data, err := backend.GetObject(ctx, "data/file.txt", 0, -1)
	info, err := backend.HeadObject(ctx, "data/file.txt")

Batch operations fan out across the connection pool rather than issuing one
request per key serially:

	keys := []string{"file1.txt", "file2.txt", "file3.txt"}
	results, err := backend.GetObjects(ctx, keys)

	err = backend.PutObjects(ctx, map[string][]byte{
		"file1.txt": data1,
		"file2.txt": data2,
	})

# Connection Pool

The pool (pool.go) hands out *s3.Client instances up to Config.PoolSize,
creating new ones lazily and running a background HealthChecker that
periodically samples idle connections with a ListBuckets call.

# Metrics

Backend.GetMetrics returns a BackendMetrics snapshot: request/error counts,
bytes transferred, and a rolling average latency, recorded on every
operation via recordMetrics/recordError.
*/
package s3
