package pwrapper

import (
	"context"
	"time"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
)

// OperationRecorder is the subset of objectfs's internal/metrics.Collector
// this wrapper needs, referenced by interface so pwrapper does not depend
// on the metrics package directly.
type OperationRecorder interface {
	RecordOperation(operation string, duration time.Duration, size int64, success bool)
}

// Metrics times Get/Put/Remove and reports them to an OperationRecorder,
// re-pointing objectfs's internal/metrics.Collector (built for FUSE
// read/write path operations) at storage and database operations instead.
type Metrics struct {
	*Wrapper

	recorder OperationRecorder
}

// NewMetrics wraps inner with operation instrumentation reported to recorder.
func NewMetrics(inner pstorage.Client, recorder OperationRecorder) *Metrics {
	return &Metrics{Wrapper: &Wrapper{Inner: inner}, recorder: recorder}
}

func (m *Metrics) record(operation string, start time.Time, size int64, err error) {
	if m.recorder == nil {
		return
	}
	m.recorder.RecordOperation(operation, time.Since(start), size, err == nil)
}

func (m *Metrics) Get(ctx context.Context, key pstorage.StorageKey) (pstorage.FileData, error) {
	start := time.Now()
	data, err := m.Wrapper.Get(ctx, key)
	m.record("get", start, int64(len(data)), err)
	return data, err
}

func (m *Metrics) Put(ctx context.Context, obj pstorage.Object, data pstorage.FileData) error {
	start := time.Now()
	err := m.Wrapper.Put(ctx, obj, data)
	m.record("put", start, int64(len(data)), err)
	return err
}

func (m *Metrics) Remove(ctx context.Context, key pstorage.StorageKey) error {
	start := time.Now()
	err := m.Wrapper.Remove(ctx, key)
	m.record("remove", start, 0, err)
	return err
}
