package passembly

import (
	"context"
	"fmt"

	"github.com/pioneer-storage/pioneer/internal/config"
	"github.com/pioneer-storage/pioneer/internal/pstorage"
	"github.com/pioneer-storage/pioneer/internal/pstorage/local"
	"github.com/pioneer-storage/pioneer/internal/pstorage/memory"
	"github.com/pioneer-storage/pioneer/internal/pstorage/s3adapter"
	"github.com/pioneer-storage/pioneer/internal/storage/s3"
)

// buildBackend turns one of the configured storage targets into a live
// pstorage.Client, dispatching on the target's shape rather than a single
// URI: a target with an Endpoint is S3-backed, a target with a Repository
// path is local-disk, and anything else is the in-memory backend (used for
// tests and for targets with no persistence requirement).
func buildBackend(ctx context.Context, name string, target config.StorageTargetConfig) (pstorage.Client, error) {
	key := pstorage.NewStorageClientKey(kindOf(target), name)

	switch {
	case target.Endpoint != "":
		cfg := s3.NewDefaultConfig()
		cfg.Region = target.Region
		cfg.Endpoint = target.Endpoint
		cfg.AccessKeyID = target.AccessKey
		cfg.SecretAccessKey = target.SecretKey
		cfg.ForcePathStyle = !target.Secure

		bucket := target.Repository
		if bucket == "" {
			bucket = name
		}
		backend, err := s3.NewBackend(ctx, bucket, cfg)
		if err != nil {
			return nil, fmt.Errorf("passembly: build s3 backend %q: %w", name, err)
		}
		return pstorage.NewBaseClient(key, s3adapter.New(backend)), nil

	case target.Repository != "":
		driver, err := local.New(target.Repository)
		if err != nil {
			return nil, fmt.Errorf("passembly: build local backend %q: %w", name, err)
		}
		return pstorage.NewBaseClient(key, driver), nil

	default:
		return pstorage.NewBaseClient(key, memory.New()), nil
	}
}

func kindOf(target config.StorageTargetConfig) string {
	switch {
	case target.Endpoint != "":
		return "s3"
	case target.Repository != "":
		return "local"
	default:
		return "memory"
	}
}
