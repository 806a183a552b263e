package pstorage

import "context"

// Medium tags a backend's locality so wrappers can specialize behavior —
// e.g. Replication only defers to the Raft leader when the primary's medium
// is Remote.
type Medium int

const (
	MediumLocal Medium = iota
	MediumRemote
	MediumDistributed
)

func (m Medium) String() string {
	switch m {
	case MediumLocal:
		return "local"
	case MediumRemote:
		return "remote"
	case MediumDistributed:
		return "distributed"
	default:
		return "unknown"
	}
}

// Driver is the minimal raw byte-storage contract a backend must implement.
// BaseClient builds the full StorageKey-addressed Client contract (headers,
// reserved keys, derived operations) on top of a Driver, the same way
// objectfs's Backend interface (pkg/types.Backend) is the narrow contract
// concrete drivers implement while higher layers add policy.
type Driver interface {
	// Medium reports this driver's locality class.
	Medium() Medium

	// ReadRaw returns the bytes stored at path, or a NotFound-flavored error
	// if nothing is stored there.
	ReadRaw(ctx context.Context, path StoragePath) ([]byte, error)

	// WriteRaw stores data at path, creating or overwriting it.
	WriteRaw(ctx context.Context, path StoragePath, data []byte) error

	// DeleteRaw removes whatever is stored at path. Deleting an absent path
	// is a NotFound-flavored error.
	DeleteRaw(ctx context.Context, path StoragePath) error

	// ExistsRaw reports whether path has stored content.
	ExistsRaw(ctx context.Context, path StoragePath) (bool, error)

	// ListRaw lists raw paths under prefix: the local driver returns direct
	// children, the memory and S3 drivers every stored path beneath prefix.
	// No client operation calls it; list operations go through headers,
	// which are authoritative.
	ListRaw(ctx context.Context, prefix StoragePath) ([]StoragePath, error)
}
