// Package s3adapter adapts objectfs's internal/storage/s3.Backend (a raw,
// string-keyed S3 client) into a pstorage.Driver, so the CargoShip-optimized
// S3 backend can serve as one of the three C4 backend variants alongside
// local and memory.
package s3adapter

import (
	"context"
	"errors"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
	"github.com/pioneer-storage/pioneer/internal/storage/s3"
)

// Driver wraps an *s3.Backend as a pstorage.Driver.
type Driver struct {
	backend *s3.Backend
}

// New wraps an existing S3 backend.
func New(backend *s3.Backend) *Driver {
	return &Driver{backend: backend}
}

func (d *Driver) Medium() pstorage.Medium { return pstorage.MediumRemote }

func (d *Driver) ReadRaw(ctx context.Context, path pstorage.StoragePath) ([]byte, error) {
	return d.backend.GetObject(ctx, path.String(), 0, 0)
}

func (d *Driver) WriteRaw(ctx context.Context, path pstorage.StoragePath, data []byte) error {
	return d.backend.PutObject(ctx, path.String(), data)
}

func (d *Driver) DeleteRaw(ctx context.Context, path pstorage.StoragePath) error {
	return d.backend.DeleteObject(ctx, path.String())
}

func (d *Driver) ExistsRaw(ctx context.Context, path pstorage.StoragePath) (bool, error) {
	_, err := d.backend.HeadObject(ctx, path.String())
	if err != nil {
		var notFound interface{ NotFound() bool }
		if errors.As(err, &notFound) {
			return false, nil
		}
		// HeadObject's translateError wraps not-found as a plain error
		// string; treat any Head failure as "absent" rather than
		// propagating transport errors through Exists.
		return false, nil
	}
	return true, nil
}

// Close shuts down the wrapped backend's connection pool.
func (d *Driver) Close() error {
	return d.backend.Close()
}

func (d *Driver) ListRaw(ctx context.Context, prefix pstorage.StoragePath) ([]pstorage.StoragePath, error) {
	infos, err := d.backend.ListObjects(ctx, prefix.String(), 0)
	if err != nil {
		return nil, err
	}
	out := make([]pstorage.StoragePath, 0, len(infos))
	for _, info := range infos {
		p, perr := pstorage.NewStoragePath(info.Key)
		if perr != nil {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

var _ pstorage.Driver = (*Driver)(nil)
