package pdatabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pioneer-storage/pioneer/internal/pdata"
	"github.com/pioneer-storage/pioneer/internal/pioneerlog"
	"github.com/pioneer-storage/pioneer/internal/pstorage"
	pioneererrors "github.com/pioneer-storage/pioneer/pkg/errors"
)

var logger = pioneerlog.Component("pdatabase")

const configFileName = "._database.json"

// Config is the persisted "._database.json" body: presently just a
// per-field operations map.
type Config struct {
	Operations map[string]FunctionConfig `json:"operations,omitempty"`
}

// FunctionConfig describes a server-side function bound to a field path.
// Not yet invoked by any operation; reserved for triggers as future work.
type FunctionConfig struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args,omitempty"`
}

// Client is a document store rooted at a storage prefix
// ("{storage}/database/{name}"), offering insert/update/remove/get/merge/
// items/query/namespace over pstorage.
type Client struct {
	storage pstorage.Client
	root    pstorage.StoragePath
	schema  *pdata.Schema
}

// New opens (or initializes) a database named name rooted under storage's
// "database/" prefix.
func New(ctx context.Context, storage pstorage.Client, name string) (*Client, error) {
	root := pstorage.StoragePath("database").Join(name)
	c := &Client{storage: storage, root: root, schema: pdata.NewSchema()}

	cfgKey := pstorage.NewStorageKey(storage.Key(), root.Join(configFileName))
	if data, err := storage.Get(ctx, cfgKey); err == nil {
		var cfg Config
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("pdatabase: decode %s: %w", configFileName, err)
		}
	} else {
		cfg := Config{}
		data, _ := json.Marshal(cfg)
		obj := pstorage.NewFileObject(cfgKey, pstorage.ContentInfo{Size: int64(len(data))})
		if err := storage.Put(ctx, obj, pstorage.FileData(data)); err != nil {
			return nil, fmt.Errorf("pdatabase: write %s: %w", configFileName, err)
		}
	}

	return c, nil
}

// WithSchema returns a copy of c that merges using schema instead of the
// all-overwrite default.
func (c *Client) WithSchema(schema *pdata.Schema) *Client {
	return &Client{storage: c.storage, root: c.root, schema: schema}
}

func (c *Client) dataKey(key string) pstorage.StorageKey {
	return pstorage.NewStorageKey(c.storage.Key(), c.root.Join("data", key))
}

// Insert writes value at key, failing with ErrCodeExists if key is already
// present.
func (c *Client) Insert(ctx context.Context, key string, value *pdata.Data) error {
	storageKey := c.dataKey(key)
	if exists, _ := c.storage.Exists(ctx, storageKey); exists {
		return pioneererrors.NewError(pioneererrors.ErrCodeExists,
			fmt.Sprintf("pdatabase: key %q already exists", key)).WithOperation("insert")
	}
	return c.writeRecord(ctx, storageKey, value)
}

// Update overwrites the value at key, failing with ErrCodeObjectNotFound if
// key is not already present.
func (c *Client) Update(ctx context.Context, key string, value *pdata.Data) error {
	storageKey := c.dataKey(key)
	if exists, _ := c.storage.Exists(ctx, storageKey); !exists {
		return pioneererrors.NewError(pioneererrors.ErrCodeObjectNotFound,
			fmt.Sprintf("pdatabase: key %q not found", key)).WithOperation("update")
	}
	if err := c.storage.Remove(ctx, storageKey); err != nil {
		return err
	}
	return c.writeRecord(ctx, storageKey, value)
}

// Remove deletes the record at key.
func (c *Client) Remove(ctx context.Context, key string) error {
	return c.storage.Remove(ctx, c.dataKey(key))
}

// Get reads and decodes the record at key.
func (c *Client) Get(ctx context.Context, key string) (*pdata.Data, error) {
	data, err := c.storage.Get(ctx, c.dataKey(key))
	if err != nil {
		return nil, err
	}
	return decodeData(data)
}

// Merge reads the record at key, structurally merges head on top of it via
// pdata.Merge, writes the merged value back, and returns it.
func (c *Client) Merge(ctx context.Context, key string, head *pdata.Data) (*pdata.Data, error) {
	old, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	merged, err := pdata.Merge(old, head, c.schema)
	if err != nil {
		return nil, err
	}
	storageKey := c.dataKey(key)
	if err := c.storage.Remove(ctx, storageKey); err != nil {
		return nil, err
	}
	if err := c.writeRecord(ctx, storageKey, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

func (c *Client) writeRecord(ctx context.Context, storageKey pstorage.StorageKey, value *pdata.Data) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("pdatabase: encode record: %w", err)
	}
	obj := pstorage.NewFileObject(storageKey, pstorage.ContentInfo{Size: int64(len(data))})
	return c.storage.Put(ctx, obj, pstorage.FileData(data))
}

func decodeData(raw pstorage.FileData) (*pdata.Data, error) {
	d := pdata.New(nil)
	if err := json.Unmarshal(raw, d); err != nil {
		return nil, fmt.Errorf("pdatabase: decode record: %w", err)
	}
	return d, nil
}

// Keys lists every record key currently stored.
func (c *Client) Keys(ctx context.Context) ([]string, error) {
	dataRoot := pstorage.NewStorageKey(c.storage.Key(), c.root.Join("data"))
	keys, err := c.storage.List(ctx, dataRoot, false)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.Path.Name())
	}
	return out, nil
}

// Items returns every (key, record) pair in the database.
func (c *Client) Items(ctx context.Context) (map[string]*pdata.Data, error) {
	keys, err := c.Keys(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*pdata.Data, len(keys))
	for _, key := range keys {
		rec, err := c.Get(ctx, key)
		if err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("pdatabase: skipping unreadable record during items scan")
			continue
		}
		out[key] = rec
	}
	return out, nil
}

// Namespace returns a sub-client rooted at "{root}/{name}", sharing the
// same underlying storage client and merge schema.
func (c *Client) Namespace(name string) *Client {
	return &Client{storage: c.storage, root: c.root.Join(name), schema: c.schema}
}

// Query evaluates q against every record in the database and returns the
// matches, in key order. The default (unindexed) path; IndexWrapper.Query
// narrows the candidate set through its index and evaluates q on those
// records itself, calling this only when the index has no entry to use.
func (c *Client) Query(ctx context.Context, q Query) ([]*pdata.Data, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return nil, err
	}
	keys, err := c.Keys(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*pdata.Data, 0)
	for _, key := range keys {
		rec, ok := items[key]
		if !ok {
			continue
		}
		matched, err := q.Evaluate(ctx, rec)
		if err != nil {
			return nil, err
		}
		if matched != nil {
			results = append(results, matched)
		}
	}
	return results, nil
}
