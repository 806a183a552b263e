package pstorage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"

	pioneererrors "github.com/pioneer-storage/pioneer/pkg/errors"
)

// ClientInfo is the lazily-created, persisted identity of a storage client
// instance (the "._info.json" reserved file).
type ClientInfo struct {
	UUID string `json:"uuid"`
}

// Client is the full storage contract: required operations
// (Get/Put/Remove/Stat/List) plus the derived operations every backend gets
// for free by embedding BaseClient.
type Client interface {
	Key() StorageClientKey
	Medium() Medium

	Get(ctx context.Context, key StorageKey) (FileData, error)
	Put(ctx context.Context, obj Object, data FileData) error
	Remove(ctx context.Context, key StorageKey) error
	Stat(ctx context.Context, key StorageKey) (Object, error)
	List(ctx context.Context, prefix StorageKey, recursive bool) ([]StorageKey, error)

	Exists(ctx context.Context, key StorageKey) (bool, error)
	Contains(ctx context.Context, key StorageKey) (bool, error)
	Header(ctx context.Context, dir StorageKey) (*Header, error)
	Update(ctx context.Context, obj Object) error
	Change(ctx context.Context, key StorageKey, md Metadata) error

	GetMultiple(ctx context.Context, keys []StorageKey) (map[StorageKey]FileData, error)
	PutMultiple(ctx context.Context, objs []Object, datas []FileData) error
	StatMultiple(ctx context.Context, keys []StorageKey) (map[StorageKey]Object, error)
	RemoveMultiple(ctx context.Context, keys []StorageKey) error
	ExistsMultiple(ctx context.Context, keys []StorageKey) (map[StorageKey]bool, error)

	Info(ctx context.Context) (ClientInfo, error)
}

// BaseClient implements the full Client contract in terms of a Driver,
// matching objectfs's pattern of required primitives plus base-class
// derived operations.
type BaseClient struct {
	key    StorageClientKey
	driver Driver

	mu      sync.Mutex
	dirLock sync.Map // StoragePath -> *sync.Mutex, serializes header+data writes per directory

	infoMu sync.Mutex
	info   *ClientInfo
}

// NewBaseClient builds a BaseClient addressed by key, backed by driver.
func NewBaseClient(key StorageClientKey, driver Driver) *BaseClient {
	return &BaseClient{key: key, driver: driver}
}

func (c *BaseClient) Key() StorageClientKey { return c.key }
func (c *BaseClient) Medium() Medium        { return c.driver.Medium() }

func (c *BaseClient) lockDir(dir StoragePath) func() {
	v, _ := c.dirLock.LoadOrStore(dir, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

func notFound(op string, key StorageKey) error {
	return pioneererrors.NewError(pioneererrors.ErrCodeObjectNotFound,
		fmt.Sprintf("%s: no object at %s", op, key)).WithOperation(op)
}

func reservedErr(op string, key StorageKey) error {
	return pioneererrors.NewError(pioneererrors.ErrCodeReserved,
		fmt.Sprintf("%s: %s is a reserved key", op, key)).WithOperation(op)
}

// Get returns the bytes for key.
func (c *BaseClient) Get(ctx context.Context, key StorageKey) (FileData, error) {
	data, err := c.driver.ReadRaw(ctx, key.Path)
	if err != nil {
		return nil, notFound("get", key)
	}
	return FileData(data), nil
}

// Put writes data then updates the containing directory's header so that
// obj.Key -> obj. The two writes are serialized by a
// per-directory in-process lock; cross-process atomicity is the job of the
// Locking wrapper (C5) layered on top.
func (c *BaseClient) Put(ctx context.Context, obj Object, data FileData) error {
	unlock := c.lockDir(obj.Key.Path.Parent())
	defer unlock()

	if err := c.driver.WriteRaw(ctx, obj.Key.Path, []byte(data)); err != nil {
		return pioneererrors.NewError(pioneererrors.ErrCodeStorageWrite, err.Error()).WithOperation("put").WithCause(err)
	}

	dir := NewStorageKey(c.key, obj.Key.Path.Parent())
	header, err := c.readHeader(ctx, dir)
	if err != nil {
		header = NewHeader(dir)
	}
	header.Put(obj)
	return c.writeHeader(ctx, header)
}

// Remove deletes key and its header entry.
func (c *BaseClient) Remove(ctx context.Context, key StorageKey) error {
	unlock := c.lockDir(key.Path.Parent())
	defer unlock()

	if err := c.driver.DeleteRaw(ctx, key.Path); err != nil {
		return notFound("remove", key)
	}

	dir := NewStorageKey(c.key, key.Path.Parent())
	header, err := c.readHeader(ctx, dir)
	if err != nil {
		return nil
	}
	header.Remove(key)
	return c.writeHeader(ctx, header)
}

// Stat returns the header entry for key.
func (c *BaseClient) Stat(ctx context.Context, key StorageKey) (Object, error) {
	dir := NewStorageKey(c.key, key.Path.Parent())
	header, err := c.readHeader(ctx, dir)
	if err != nil {
		return Object{}, notFound("stat", key)
	}
	obj, ok := header.Get(key)
	if !ok {
		return Object{}, notFound("stat", key)
	}
	return obj, nil
}

// List reads the header at prefix; if recursive, descends into subheaders
// in pre-order.
func (c *BaseClient) List(ctx context.Context, prefix StorageKey, recursive bool) ([]StorageKey, error) {
	header, err := c.readHeader(ctx, prefix)
	if err != nil {
		return nil, nil
	}
	keys := header.List()
	sort.Slice(keys, func(i, j int) bool { return keys[i].Path < keys[j].Path })

	if !recursive {
		return keys, nil
	}

	result := make([]StorageKey, 0, len(keys))
	for _, k := range keys {
		result = append(result, k)
		obj, ok := header.Get(k)
		if ok && obj.Item.IsFolder() {
			sub, err := c.List(ctx, k, true)
			if err == nil {
				result = append(result, sub...)
			}
		}
	}
	return result, nil
}

func (c *BaseClient) Exists(ctx context.Context, key StorageKey) (bool, error) {
	_, err := c.Stat(ctx, key)
	return err == nil, nil
}

func (c *BaseClient) Contains(ctx context.Context, key StorageKey) (bool, error) {
	return c.Exists(ctx, key)
}

// Header resolves to the directory's header file and parses it.
func (c *BaseClient) Header(ctx context.Context, dir StorageKey) (*Header, error) {
	return c.readHeader(ctx, dir)
}

// Update appends-or-replaces obj in its directory header.
func (c *BaseClient) Update(ctx context.Context, obj Object) error {
	unlock := c.lockDir(obj.Key.Path.Parent())
	defer unlock()

	dir := NewStorageKey(c.key, obj.Key.Path.Parent())
	header, err := c.readHeader(ctx, dir)
	if err != nil {
		header = NewHeader(dir)
	}
	header.Put(obj)
	return c.writeHeader(ctx, header)
}

// Change mutates an object's Metadata, rewriting the containing header.
func (c *BaseClient) Change(ctx context.Context, key StorageKey, md Metadata) error {
	obj, err := c.Stat(ctx, key)
	if err != nil {
		return err
	}
	obj.Metadata = md.Touch()
	return c.Update(ctx, obj)
}

func (c *BaseClient) GetMultiple(ctx context.Context, keys []StorageKey) (map[StorageKey]FileData, error) {
	out := make(map[StorageKey]FileData, len(keys))
	for _, k := range keys {
		data, err := c.Get(ctx, k)
		if err != nil {
			continue
		}
		out[k] = data
	}
	return out, nil
}

func (c *BaseClient) PutMultiple(ctx context.Context, objs []Object, datas []FileData) error {
	if len(objs) != len(datas) {
		return fmt.Errorf("pstorage: PutMultiple: %d objects but %d payloads", len(objs), len(datas))
	}
	for i := range objs {
		if err := c.Put(ctx, objs[i], datas[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *BaseClient) StatMultiple(ctx context.Context, keys []StorageKey) (map[StorageKey]Object, error) {
	out := make(map[StorageKey]Object, len(keys))
	for _, k := range keys {
		obj, err := c.Stat(ctx, k)
		if err != nil {
			continue
		}
		out[k] = obj
	}
	return out, nil
}

func (c *BaseClient) RemoveMultiple(ctx context.Context, keys []StorageKey) error {
	for _, k := range keys {
		if err := c.Remove(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (c *BaseClient) ExistsMultiple(ctx context.Context, keys []StorageKey) (map[StorageKey]bool, error) {
	out := make(map[StorageKey]bool, len(keys))
	for _, k := range keys {
		ok, _ := c.Exists(ctx, k)
		out[k] = ok
	}
	return out, nil
}

// Info lazily creates and persists this client's "._info.json" identity.
func (c *BaseClient) Info(ctx context.Context) (ClientInfo, error) {
	c.infoMu.Lock()
	defer c.infoMu.Unlock()

	if c.info != nil {
		return *c.info, nil
	}

	infoKey := InfoKeyFor(c.key)
	if data, err := c.driver.ReadRaw(ctx, infoKey.Path); err == nil {
		var info ClientInfo
		if json.Unmarshal(data, &info) == nil {
			c.info = &info
			return info, nil
		}
	}

	info := ClientInfo{UUID: uuid.NewString()}
	data, _ := json.Marshal(info)
	if err := c.driver.WriteRaw(ctx, infoKey.Path, data); err != nil {
		return ClientInfo{}, err
	}
	c.info = &info
	return info, nil
}

func (c *BaseClient) readHeader(ctx context.Context, dir StorageKey) (*Header, error) {
	headerKey := HeaderKeyFor(c.key, dir.Path)
	data, err := c.driver.ReadRaw(ctx, headerKey.Path)
	if err != nil {
		return nil, notFound("header", headerKey)
	}
	header := NewHeader(dir)
	if err := json.Unmarshal(data, header); err != nil {
		return nil, err
	}
	return header, nil
}

// Close releases the underlying driver's resources if it has any to
// release. A driver with nothing to close (the in-memory backend) is a no-op.
func (c *BaseClient) Close() error {
	if closer, ok := c.driver.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *BaseClient) writeHeader(ctx context.Context, header *Header) error {
	data, err := json.Marshal(header)
	if err != nil {
		return err
	}
	headerKey := HeaderKeyFor(c.key, header.Dir.Path)
	return c.driver.WriteRaw(ctx, headerKey.Path, data)
}

// Sha256Signature computes the SHA-256 signature of data.
func Sha256Signature(data []byte) HashSignature {
	sum := sha256.Sum256(data)
	return HashSignature{Algorithm: "sha256", Digest: hex.EncodeToString(sum[:])}
}

var _ Client = (*BaseClient)(nil)
