package pstorage

import (
	"fmt"
	"hash/fnv"
	"path"
	"strings"
)

// StorageClientKey is the opaque token identifying a live storage client
// instance: "{ClassName}@{uuid}" in objectfs's repr() style
// (pkg/utils identity patterns), resolved through a process-wide Registry.
type StorageClientKey string

// NewStorageClientKey builds the canonical "{kind}@{uuid}" token.
func NewStorageClientKey(kind, uuid string) StorageClientKey {
	return StorageClientKey(fmt.Sprintf("%s@%s", kind, uuid))
}

func (k StorageClientKey) String() string { return string(k) }

// Kind returns the part of the key before "@", e.g. "local", "memory", "s3".
func (k StorageClientKey) Kind() string {
	if idx := strings.IndexByte(string(k), '@'); idx >= 0 {
		return string(k)[:idx]
	}
	return string(k)
}

// StoragePath is a POSIX-like, forward-slash separated path. It is a pure
// value: it never calls back into a client to classify itself, breaking the
// cyclic ownership the source has between storage and paths.
type StoragePath string

var forbiddenPathChars = []string{"\x00", "\\"}

// NewStoragePath validates and normalizes a raw path string.
func NewStoragePath(raw string) (StoragePath, error) {
	for _, c := range forbiddenPathChars {
		if strings.Contains(raw, c) {
			return "", fmt.Errorf("pstorage: path %q contains forbidden character %q", raw, c)
		}
	}
	if strings.Contains(raw, "..") {
		return "", fmt.Errorf("pstorage: path %q contains directory traversal", raw)
	}
	cleaned := path.Clean("/" + raw)
	cleaned = strings.TrimPrefix(cleaned, "/")
	return StoragePath(cleaned), nil
}

// MustStoragePath panics on an invalid path; for use with compile-time
// constant paths (e.g. reserved keys).
func MustStoragePath(raw string) StoragePath {
	p, err := NewStoragePath(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func (p StoragePath) String() string { return string(p) }

// Join appends parts to p.
func (p StoragePath) Join(parts ...string) StoragePath {
	all := append([]string{string(p)}, parts...)
	joined, err := NewStoragePath(path.Join(all...))
	if err != nil {
		// parts are expected to already be sanitized; fall back to a clean join
		return StoragePath(path.Join(all...))
	}
	return joined
}

// Parent returns the directory containing p ("" for a top-level path).
func (p StoragePath) Parent() StoragePath {
	dir := path.Dir(string(p))
	if dir == "." || dir == "/" {
		return ""
	}
	return StoragePath(dir)
}

// Name returns the final path component.
func (p StoragePath) Name() string {
	return path.Base(string(p))
}

// Suffix returns the file extension of the final component, including the
// leading dot, or "" if there is none.
func (p StoragePath) Suffix() string {
	name := p.Name()
	if idx := strings.LastIndexByte(name, '.'); idx > 0 {
		return name[idx:]
	}
	return ""
}

// Parts splits p into its path components.
func (p StoragePath) Parts() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), "/")
}

// Prefix reports whether p has the given prefix at a path-component
// boundary (not just a string prefix).
func (p StoragePath) Prefix(prefix StoragePath) bool {
	if prefix == "" {
		return true
	}
	ps, pp := string(p), string(prefix)
	return ps == pp || strings.HasPrefix(ps, pp+"/")
}

// Postfix reports whether p's string form ends with suffix; the match is a
// plain string suffix and is not checked against a component boundary.
func (p StoragePath) Postfix(suffix string) bool {
	return strings.HasSuffix(string(p), suffix)
}

// StorageKey is the sole addressing unit of the storage layer:
// (StorageClientKey, StoragePath). Equality is structural; Hash is the
// hash of "{path}@{client}".
type StorageKey struct {
	Client StorageClientKey
	Path   StoragePath
}

// NewStorageKey builds a StorageKey for a client/path pair.
func NewStorageKey(client StorageClientKey, p StoragePath) StorageKey {
	return StorageKey{Client: client, Path: p}
}

func (k StorageKey) String() string {
	return fmt.Sprintf("%s@%s", k.Path, k.Client)
}

// Hash returns the hash of "{path}@{client}".
func (k StorageKey) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(k.String()))
	return h.Sum64()
}

// Equal reports structural equality.
func (k StorageKey) Equal(other StorageKey) bool {
	return k.Client == other.Client && k.Path == other.Path
}

// Parent returns the StorageKey for the directory containing k.
func (k StorageKey) Parent() StorageKey {
	return StorageKey{Client: k.Client, Path: k.Path.Parent()}
}

// WithClient returns a copy of k retargeted to a different client, used by
// the Replication wrapper when it copies an Object to the replica's key
// space.
func (k StorageKey) WithClient(client StorageClientKey) StorageKey {
	return StorageKey{Client: client, Path: k.Path}
}
