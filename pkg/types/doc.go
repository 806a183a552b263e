// Package types holds the handful of data shapes shared across package
// boundaries that would otherwise create an import cycle: today that is
// ObjectInfo, the metadata shape internal/storage/s3 reports back from
// HeadObject/ListObjects, kept separate from pstorage.Object because it
// describes a backend's native representation rather than the C1-C9 stack's
// storage model.
package types
