package pstorage

import (
	"time"

	"github.com/google/uuid"
)

// HashSignature identifies the algorithm and hex digest of a file's content
// hash, grounded on objectfs pkg/types.ObjectInfo's Checksum field,
// generalized to carry the algorithm alongside the digest.
type HashSignature struct {
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest"`
}

// CompressionInfo describes an optional compression applied to file content.
type CompressionInfo struct {
	Algorithm string `json:"algorithm"`
	Level     int    `json:"level"`
}

// EncryptionInfo describes an optional encryption applied to file content.
type EncryptionInfo struct {
	Algorithm string `json:"algorithm"`
	KeyID     string `json:"key_id"`
}

// ContentInfo is the File variant's payload description.
type ContentInfo struct {
	Size        int64             `json:"size"`
	MimeType    string            `json:"mime_type"`
	Signature   HashSignature     `json:"signature"`
	Compression *CompressionInfo  `json:"compression,omitempty"`
	Encryption  *EncryptionInfo   `json:"encryption,omitempty"`
}

// ItemKind distinguishes the File/Folder variant of an Object's item.
type ItemKind int

const (
	ItemFile ItemKind = iota
	ItemFolder
)

// Item is the File | Folder variant. A Folder carries no content fields and
// tracks only how many entries its header describes.
type Item struct {
	Kind     ItemKind     `json:"-"`
	Content  *ContentInfo `json:"content,omitempty"`
	NumItems int          `json:"num_items,omitempty"`
}

// NewFileItem builds a File item.
func NewFileItem(content ContentInfo) Item {
	return Item{Kind: ItemFile, Content: &content}
}

// NewFolderItem builds a Folder item.
func NewFolderItem(numItems int) Item {
	return Item{Kind: ItemFolder, NumItems: numItems}
}

func (i Item) IsFile() bool   { return i.Kind == ItemFile }
func (i Item) IsFolder() bool { return i.Kind == ItemFolder }

// Permissions is the permission set {owner,group,others,ACL}.
type Permissions struct {
	Owner  string   `json:"owner"`
	Group  string   `json:"group"`
	Others string   `json:"others"`
	ACL    []string `json:"acl,omitempty"`
}

// AccessTimes tracks the lifecycle timestamps an Object's Metadata carries.
type AccessTimes struct {
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
	AccessedAt time.Time `json:"accessed_at"`
}

// RetentionClass is a coarse retention/storage tier hint, grounded on
// objectfs's S3 storage-class/tiering vocabulary (internal/storage/s3).
type RetentionClass string

const (
	RetentionStandard RetentionClass = "standard"
	RetentionInfrequent RetentionClass = "infrequent_access"
	RetentionArchive   RetentionClass = "archive"
)

// Metadata is versioned by modification timestamp and mutable only through
// Client.Change, which rewrites the containing header.
type Metadata struct {
	UUID        string         `json:"uuid"`
	Retention   RetentionClass `json:"storage"`
	Permissions Permissions    `json:"permissions"`
	Access      AccessTimes    `json:"access"`
	Tags        []string       `json:"tags,omitempty"`
}

// NewMetadata creates metadata for a freshly-created object.
func NewMetadata() Metadata {
	now := time.Now().UTC()
	return Metadata{
		UUID:      uuid.NewString(),
		Retention: RetentionStandard,
		Access:    AccessTimes{CreatedAt: now, ModifiedAt: now, AccessedAt: now},
	}
}

// Touch bumps ModifiedAt/AccessedAt, the only mutation Metadata gets outside
// of an explicit Change call.
func (m Metadata) Touch() Metadata {
	m.Access.ModifiedAt = time.Now().UTC()
	m.Access.AccessedAt = m.Access.ModifiedAt
	return m
}

// Object is the immutable record addressed by a StorageKey: a Key, Metadata,
// and a File | Folder Item.
type Object struct {
	Key      StorageKey `json:"key"`
	Metadata Metadata   `json:"metadata"`
	Item     Item       `json:"item"`
}

// NewFileObject builds a File Object ready to be written with Client.Put.
func NewFileObject(key StorageKey, content ContentInfo) Object {
	return Object{Key: key, Metadata: NewMetadata(), Item: NewFileItem(content)}
}

// NewFolderObject builds a Folder Object.
func NewFolderObject(key StorageKey, numItems int) Object {
	return Object{Key: key, Metadata: NewMetadata(), Item: NewFolderItem(numItems)}
}

// FileData is the opaque byte payload shipped alongside an Object for
// writes, and returned alone for reads.
type FileData []byte

// Header is the authoritative per-directory listing: the parsed form of the
// reserved "._head.json" file living at a directory's StoragePath. list and
// stat consult the Header rather than a backend's native listing.
type Header struct {
	Dir     StorageKey            `json:"-"`
	Entries map[StorageKey]Object `json:"-"`
}

// NewHeader creates an empty header for the given directory key.
func NewHeader(dir StorageKey) *Header {
	return &Header{Dir: dir, Entries: make(map[StorageKey]Object)}
}

// Put upserts obj into the header, keyed by obj.Key. The header's own key is
// never stored in itself.
func (h *Header) Put(obj Object) {
	if obj.Key.Equal(h.Dir) {
		return
	}
	h.Entries[obj.Key] = obj
}

// Remove deletes key's entry from the header.
func (h *Header) Remove(key StorageKey) {
	delete(h.Entries, key)
}

// Get returns the header's entry for key, if any.
func (h *Header) Get(key StorageKey) (Object, bool) {
	obj, ok := h.Entries[key]
	return obj, ok
}

// List returns all keys described by this header.
func (h *Header) List() []StorageKey {
	keys := make([]StorageKey, 0, len(h.Entries))
	for k := range h.Entries {
		keys = append(keys, k)
	}
	return keys
}
