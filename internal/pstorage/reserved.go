package pstorage

// Reserved file names, addressed relative to the directory they describe.
const (
	MountFile  = "._mount.json"
	RootFile   = "._root.json"
	HeaderFile = "._head.json"
	LockFile   = "._lock.json"
	InfoFile   = "._info.json"
)

var reservedNames = map[string]struct{}{
	MountFile:  {},
	RootFile:   {},
	HeaderFile: {},
	LockFile:   {},
	InfoFile:   {},
}

// IsReserved reports whether p names a reserved key. Any caller operation
// naming a reserved key through the public surface fails; only internal
// machinery (the Safety wrapper's inner client) may touch these paths.
func IsReserved(p StoragePath) bool {
	_, ok := reservedNames[p.Name()]
	return ok
}

// HeaderKeyFor returns the StorageKey of the "._head.json" file describing
// the directory dir on client.
func HeaderKeyFor(client StorageClientKey, dir StoragePath) StorageKey {
	return NewStorageKey(client, dir.Join(HeaderFile))
}

// LockKeyFor returns the StorageKey of the storage-wide lease file.
func LockKeyFor(client StorageClientKey) StorageKey {
	return NewStorageKey(client, MustStoragePath(LockFile))
}

// InfoKeyFor returns the StorageKey of a client's "._info.json" identity file.
func InfoKeyFor(client StorageClientKey) StorageKey {
	return NewStorageKey(client, MustStoragePath(InfoFile))
}
