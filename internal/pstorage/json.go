package pstorage

import (
	"encoding/json"
	"fmt"
	"strings"
)

// storageKeyJSON is the wire shape:
// { "storage": "<client>", "path": "<path>" }.
type storageKeyJSON struct {
	Storage StorageClientKey `json:"storage"`
	Path    StoragePath      `json:"path"`
}

// MarshalJSON implements the {"storage","path"} object shape.
func (k StorageKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(storageKeyJSON{Storage: k.Client, Path: k.Path})
}

// UnmarshalJSON parses the {"storage","path"} object shape.
func (k *StorageKey) UnmarshalJSON(data []byte) error {
	var raw storageKeyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	k.Client = raw.Storage
	k.Path = raw.Path
	return nil
}

// ParseStorageKey parses the "{path}@{client}" hash form back into a key,
// used when a StorageKey is serialized as a map key (header JSON).
func ParseStorageKey(s string) (StorageKey, error) {
	at := strings.LastIndexByte(s, '@')
	if at < 0 {
		return StorageKey{}, fmt.Errorf("pstorage: %q is not a valid storage key", s)
	}
	// A client key is "{kind}@{id}", so the path ends at the '@' before it.
	if i := strings.LastIndexByte(s[:at], '@'); i >= 0 {
		at = i
	}
	return StorageKey{Client: StorageClientKey(s[at+1:]), Path: StoragePath(s[:at])}, nil
}

type itemJSON struct {
	Content  *ContentInfo `json:"content,omitempty"`
	NumItems *int         `json:"num_items,omitempty"`
}

// MarshalJSON renders File items with a "content" field and Folder items
// with a "num_items" field.
func (i Item) MarshalJSON() ([]byte, error) {
	if i.IsFolder() {
		n := i.NumItems
		return json.Marshal(itemJSON{NumItems: &n})
	}
	return json.Marshal(itemJSON{Content: i.Content})
}

// UnmarshalJSON restores the File/Folder variant from which field is present.
func (i *Item) UnmarshalJSON(data []byte) error {
	var raw itemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.NumItems != nil {
		*i = NewFolderItem(*raw.NumItems)
		return nil
	}
	i.Kind = ItemFile
	i.Content = raw.Content
	return nil
}

// headerDoc is the on-disk shape of a whole header: one Object per entry,
// keyed by the entry StorageKey's "{path}@{client}" string form.
type headerDoc map[string]Object

// MarshalJSON serializes the header as a flat { "<key>": <Object>, ... }
// mapping — the reserved "._head.json" file format.
func (h *Header) MarshalJSON() ([]byte, error) {
	doc := make(headerDoc, len(h.Entries))
	for k, v := range h.Entries {
		doc[k.String()] = v
	}
	return json.Marshal(doc)
}

// UnmarshalJSON parses a "._head.json" document. The directory key (h.Dir)
// must already be set by the caller; it is never present in the document
// itself.
func (h *Header) UnmarshalJSON(data []byte) error {
	var doc headerDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if h.Entries == nil {
		h.Entries = make(map[StorageKey]Object, len(doc))
	}
	for ks, obj := range doc {
		key, err := ParseStorageKey(ks)
		if err != nil {
			return err
		}
		h.Entries[key] = obj
	}
	return nil
}
