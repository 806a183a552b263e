// Package pfuse is the file-surface boundary kept out of scope as a full
// CLI binary: it implements hanwen/go-fuse/v2's fs.InodeEmbedder
// interfaces over a pstorage.Client, the way objectfs's internal/fuse
// implements them over its own Backend/Cache/WriteBuffer trio. Mount is a
// thin call-through to fs.Mount, reachable via passembly.Node.Mount for a
// caller that wants an actual mountpoint; this repository ships no CLI that
// calls it on its own.
package pfuse
