package pdatabase

import (
	"context"
	"fmt"

	"github.com/pioneer-storage/pioneer/internal/pdata"
)

// IndexEntry is the per-field-path record stored in the index database:
// the set of record keys that have a value at that path.
type IndexEntry struct {
	References []string `json:"references"`
}

func (e *IndexEntry) toData() *pdata.Data {
	refs := make([]interface{}, len(e.References))
	for i, r := range e.References {
		refs[i] = r
	}
	d := pdata.New(nil)
	d.Set("references", pdata.NewSet(refs...))
	return d
}

func entryFromData(d *pdata.Data) IndexEntry {
	v, ok := d.Get("references")
	if !ok {
		return IndexEntry{}
	}
	elems, ok := toElems(v)
	if !ok {
		return IndexEntry{}
	}
	out := IndexEntry{References: make([]string, 0, len(elems))}
	for _, e := range elems {
		if s, ok := e.(string); ok {
			out.References = append(out.References, s)
		}
	}
	return out
}

// IndexWrapper wraps a Client, maintaining a separate index database that
// maps each flattened field path to the set of record keys carrying a
// value at that path. Query narrows its candidate set via the index before
// falling back to a full predicate evaluation. Grounded on
// objectfs internal/cache.MultiLevelCache's L1-wraps-L2 shape: here the
// "L1" is the primary database and the "L2" is the index database.
type IndexWrapper struct {
	inner *Client
	index *Client
}

// NewIndexWrapper builds an index over inner, backed by a separate index
// database.
func NewIndexWrapper(inner *Client, index *Client) *IndexWrapper {
	return &IndexWrapper{inner: inner, index: index}
}

// Insert delegates to inner then indexes value's flattened field paths.
func (w *IndexWrapper) Insert(ctx context.Context, key string, value *pdata.Data) error {
	if err := w.inner.Insert(ctx, key, value); err != nil {
		return err
	}
	return w.indexRecord(ctx, key, value)
}

// Update delegates to inner, re-indexing value.
func (w *IndexWrapper) Update(ctx context.Context, key string, value *pdata.Data) error {
	if err := w.inner.Update(ctx, key, value); err != nil {
		return err
	}
	return w.indexRecord(ctx, key, value)
}

// Merge delegates to inner, re-indexing the merged result.
func (w *IndexWrapper) Merge(ctx context.Context, key string, head *pdata.Data) (*pdata.Data, error) {
	merged, err := w.inner.Merge(ctx, key, head)
	if err != nil {
		return nil, err
	}
	if err := w.indexRecord(ctx, key, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Remove delegates to inner; index entries referencing key are left stale
// until the next query's lazy-filter pass picks them up as misses.
func (w *IndexWrapper) Remove(ctx context.Context, key string) error {
	return w.inner.Remove(ctx, key)
}

// Get delegates to inner.
func (w *IndexWrapper) Get(ctx context.Context, key string) (*pdata.Data, error) {
	return w.inner.Get(ctx, key)
}

func (w *IndexWrapper) indexRecord(ctx context.Context, key string, value *pdata.Data) error {
	for _, fv := range value.Flatten() {
		path := fv.Path.String()
		entry, err := w.index.Get(ctx, path)
		if err != nil {
			entry = pdata.New(nil)
			entry.Set("references", pdata.NewSet())
		}
		ie := entryFromData(entry)
		ie.References = appendUnique(ie.References, key)
		data := ie.toData()

		if exists, _ := w.index.storage.Exists(ctx, w.index.dataKey(path)); exists {
			if _, err := w.index.Merge(ctx, path, data); err != nil {
				return err
			}
			continue
		}
		if err := w.index.Insert(ctx, path, data); err != nil {
			return err
		}
	}
	return nil
}

func appendUnique(refs []string, key string) []string {
	for _, r := range refs {
		if r == key {
			return refs
		}
	}
	return append(refs, key)
}

// Query narrows the candidate set to the union of references for each
// output field path (skipping paths with no index entry), then evaluates
// the full query predicate over just those candidates — the same matches
// as Client.Query for records carrying an output field, touching far fewer
// records, but returned in no defined order rather than key order.
func (w *IndexWrapper) Query(ctx context.Context, q Query) ([]*pdata.Data, error) {
	if len(q.Outputs) == 0 {
		return w.inner.Query(ctx, q)
	}

	candidateKeys := make(map[string]bool)
	anyFound := false
	for _, path := range q.Outputs {
		entryData, err := w.index.Get(ctx, path.String())
		if err != nil {
			continue
		}
		anyFound = true
		entry := entryFromData(entryData)
		for _, ref := range entry.References {
			candidateKeys[ref] = true
		}
	}
	if !anyFound {
		return w.inner.Query(ctx, q)
	}

	results := make([]*pdata.Data, 0, len(candidateKeys))
	for key := range candidateKeys {
		record, err := w.inner.Get(ctx, key)
		if err != nil {
			continue
		}
		matched, err := q.Evaluate(ctx, record)
		if err != nil {
			return nil, fmt.Errorf("pdatabase: index query: %w", err)
		}
		if matched != nil {
			results = append(results, matched)
		}
	}
	return results, nil
}
