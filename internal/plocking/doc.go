// Package plocking assembles Pioneer's two-tier locking model from pieces
// built elsewhere: the storage-wide lease machinery lives in internal/pwrapper
// (Lease, Locking), and the cluster-wide named lock table lives in
// internal/pdistributed (LockManager). Nothing here duplicates that logic —
// plocking offers two thin constructors: NewStorageLease takes the
// storage-wide lease with the locking.storage timings, and NewRecordLocking
// wraps a client in pwrapper.Locking over a caller-supplied
// *pdistributed.LockManager.
package plocking
