// Package local implements a pstorage.Driver backed by the real filesystem,
// grounded on objectfs's pkg/utils/path.go path-validation helpers
// (ValidatePath/ValidatePathWithinBase) and internal/filesystem's
// path-translation pattern for mapping a logical key space onto disk.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
	"github.com/pioneer-storage/pioneer/pkg/utils"
)

var headerCacheBucket = []byte("headers")

// Driver stores objects as files under Root, one file per StoragePath.
// Header files (pstorage.HeaderFile) are the hottest read path — every Stat
// and List re-parses one — so the driver keeps a bbolt-backed cache of their
// raw bytes alongside the real filesystem copy, grounded on warren's use of
// bbolt as raft-boltdb's backing store for the same append/read-back shape.
type Driver struct {
	Root string

	cache *bolt.DB
}

// New creates a local driver rooted at root, creating the directory if
// necessary, and opens its header cache at {root}/._header_cache.bolt.
func New(root string) (*Driver, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("local: create root %s: %w", root, err)
	}
	db, err := bolt.Open(filepath.Join(root, "._header_cache.bolt"), 0o644, nil)
	if err != nil {
		return nil, fmt.Errorf("local: open header cache: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(headerCacheBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("local: init header cache bucket: %w", err)
	}
	return &Driver{Root: root, cache: db}, nil
}

// Close releases the header cache's file handle. The real files under Root
// are left in place.
func (d *Driver) Close() error {
	if d.cache == nil {
		return nil
	}
	return d.cache.Close()
}

func (d *Driver) cacheGet(path pstorage.StoragePath) ([]byte, bool) {
	var data []byte
	_ = d.cache.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(headerCacheBucket).Get([]byte(path)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	return data, data != nil
}

func (d *Driver) cachePut(path pstorage.StoragePath, data []byte) {
	_ = d.cache.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(headerCacheBucket).Put([]byte(path), data)
	})
}

func (d *Driver) cacheDelete(path pstorage.StoragePath) {
	_ = d.cache.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(headerCacheBucket).Delete([]byte(path))
	})
}

func isHeaderPath(path pstorage.StoragePath) bool {
	return path.Name() == pstorage.HeaderFile
}

func (d *Driver) Medium() pstorage.Medium { return pstorage.MediumLocal }

func (d *Driver) resolve(path pstorage.StoragePath) (string, error) {
	rel := path.String()
	if err := utils.ValidatePath(rel, false); err != nil {
		return "", err
	}
	full := filepath.Join(d.Root, filepath.FromSlash(rel))
	if err := utils.ValidatePathWithinBase(d.Root, full); err != nil {
		return "", err
	}
	return full, nil
}

func (d *Driver) ReadRaw(_ context.Context, path pstorage.StoragePath) ([]byte, error) {
	if isHeaderPath(path) {
		if data, ok := d.cacheGet(path); ok {
			return data, nil
		}
	}
	full, err := d.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, err
	}
	if isHeaderPath(path) {
		d.cachePut(path, data)
	}
	return data, nil
}

func (d *Driver) WriteRaw(_ context.Context, path pstorage.StoragePath, data []byte) error {
	full, err := d.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return err
	}
	if isHeaderPath(path) {
		d.cachePut(path, data)
	}
	return nil
}

func (d *Driver) DeleteRaw(_ context.Context, path pstorage.StoragePath) error {
	full, err := d.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		return err
	}
	if isHeaderPath(path) {
		d.cacheDelete(path)
	}
	return nil
}

func (d *Driver) ExistsRaw(_ context.Context, path pstorage.StoragePath) (bool, error) {
	full, err := d.resolve(path)
	if err != nil {
		return false, err
	}
	_, statErr := os.Stat(full)
	if statErr == nil {
		return true, nil
	}
	if os.IsNotExist(statErr) {
		return false, nil
	}
	return false, statErr
}

func (d *Driver) ListRaw(_ context.Context, prefix pstorage.StoragePath) ([]pstorage.StoragePath, error) {
	full, err := d.resolve(prefix)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]pstorage.StoragePath, 0, len(entries))
	for _, e := range entries {
		out = append(out, prefix.Join(e.Name()))
	}
	return out, nil
}

var _ pstorage.Driver = (*Driver)(nil)
