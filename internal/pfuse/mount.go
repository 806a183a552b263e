package pfuse

import (
	"fmt"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
)

// Mount exposes root through the kernel FUSE driver at mountPoint. It is the
// external-collaborator boundary named as out of scope for a concrete mount,
// reachable through passembly.Node.Mount for a caller that wants a mounted
// filesystem, but not covered by this package's tests (doing so needs a real
// /dev/fuse). The caller owns the lifecycle of the returned server.
func Mount(mountPoint string, client pstorage.Client, root pstorage.StoragePath, opts *fs.Options) (*fuse.Server, error) {
	rootNode := &Node{client: client, path: root}
	if opts == nil {
		opts = &fs.Options{}
	}

	server, err := fs.Mount(mountPoint, rootNode, opts)
	if err != nil {
		return nil, fmt.Errorf("pfuse: mount %s: %w", mountPoint, err)
	}
	return server, nil
}
