package pfuse

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
)

// Node is one StoragePath projected into the FUSE inode tree, backed
// directly by a pstorage.Client rather than objectfs's cache/write-buffer
// pair: every read and write round-trips through the full C5 wrapper stack
// the client was built with, so there is no separate cache-coherency story
// to get right here.
type Node struct {
	fs.Inode

	client pstorage.Client
	path   pstorage.StoragePath
}

var (
	_ fs.NodeLookuper  = (*Node)(nil)
	_ fs.NodeReaddirer = (*Node)(nil)
	_ fs.NodeGetattrer = (*Node)(nil)
	_ fs.NodeOpener    = (*Node)(nil)
	_ fs.NodeReader    = (*Node)(nil)
	_ fs.NodeWriter    = (*Node)(nil)
)

func (n *Node) key() pstorage.StorageKey {
	return pstorage.NewStorageKey(n.client.Key(), n.path)
}

// fileMode maps an Object's Folder/File kind to a syscall file-type bit,
// owner read/write/execute for folders and read/write for files; the
// wrapped pstorage.Client, not this layer, owns fine-grained permissions.
func fileMode(obj pstorage.Object) uint32 {
	if obj.Item.IsFolder() {
		return fuse.S_IFDIR | 0o755
	}
	return fuse.S_IFREG | 0o644
}

func fillAttr(attr *fuse.Attr, obj pstorage.Object) {
	attr.Mode = fileMode(obj)
	if obj.Item.IsFile() && obj.Item.Content != nil {
		attr.Size = uint64(obj.Item.Content.Size)
	}
	attr.Mtime = uint64(obj.Metadata.Access.ModifiedAt.Unix())
	attr.Atime = uint64(obj.Metadata.Access.AccessedAt.Unix())
	attr.Ctime = uint64(obj.Metadata.Access.CreatedAt.Unix())
}

// Lookup resolves name within this directory to the Object the wrapped
// client's header has for it: the header is authoritative over any raw
// listing of the underlying backend.
func (n *Node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	childPath := n.path.Join(name)
	obj, err := n.client.Stat(ctx, pstorage.NewStorageKey(n.client.Key(), childPath))
	if err != nil {
		return nil, syscall.ENOENT
	}

	fillAttr(&out.Attr, obj)
	child := &Node{client: n.client, path: childPath}
	stable := fs.StableAttr{Mode: fileMode(obj), Ino: pstorage.NewStorageKey(n.client.Key(), childPath).Hash()}
	return n.NewInode(ctx, child, stable), 0
}

// Readdir lists this directory's header entries.
func (n *Node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	keys, err := n.client.List(ctx, n.key(), false)
	if err != nil {
		return nil, syscall.EIO
	}

	entries := make([]fuse.DirEntry, 0, len(keys))
	for _, key := range keys {
		obj, err := n.client.Stat(ctx, key)
		if err != nil {
			continue
		}
		entries = append(entries, fuse.DirEntry{
			Name: key.Path.Name(),
			Ino:  key.Hash(),
			Mode: fileMode(obj),
		})
	}
	return fs.NewListDirStream(entries), 0
}

func (n *Node) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	obj, err := n.client.Stat(ctx, n.key())
	if err != nil {
		return syscall.ENOENT
	}
	fillAttr(&out.Attr, obj)
	return 0
}

// Open declines to hand back a cache, asking the kernel to route every read
// straight to Read: the wrapper stack beneath this node already has its own
// caching story (Overlay, Indexing) and duplicating it page-cache-side would
// just be a second coherency problem.
func (n *Node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	return nil, fuse.FOPEN_DIRECT_IO, 0
}

func (n *Node) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data, err := n.client.Get(ctx, n.key())
	if err != nil {
		return nil, syscall.EIO
	}
	if off >= int64(len(data)) {
		return fuse.ReadResultData(nil), 0
	}
	end := off + int64(len(dest))
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return fuse.ReadResultData(data[off:end]), 0
}

// Write reads the current object whole, splices data in at off, and writes
// it back whole: pstorage.Client has no partial-write primitive, so there is no shortcut here
// for large files.
func (n *Node) Write(ctx context.Context, f fs.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	key := n.key()
	existing, _ := n.client.Get(ctx, key)

	need := off + int64(len(data))
	if int64(len(existing)) < need {
		grown := make([]byte, need)
		copy(grown, existing)
		existing = grown
	}
	copy(existing[off:], data)

	obj, err := n.client.Stat(ctx, key)
	if err != nil {
		obj = pstorage.NewFileObject(key, pstorage.ContentInfo{Size: int64(len(existing))})
	} else if obj.Item.Content != nil {
		obj.Item.Content.Size = int64(len(existing))
		obj.Metadata = obj.Metadata.Touch()
	}

	if err := n.client.Put(ctx, obj, pstorage.FileData(existing)); err != nil {
		return 0, syscall.EIO
	}
	return uint32(len(data)), 0
}
