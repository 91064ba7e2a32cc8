package adago

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordCentroidPass is called after each epoch-begin centroid and
	// clustering pass. k is the cluster count used that epoch, duration is
	// the total time taken, err is nil if successful.
	RecordCentroidPass(k int, duration time.Duration, err error)

	// RecordBankUpdate is called after each batch-end memory-bank update.
	// rows is the number of target rows touched (0 for a no-op batch).
	RecordBankUpdate(rows int, duration time.Duration, err error)

	// RecordCheckpoint is called after each memory-bank checkpoint save.
	// bytes is the encoded snapshot size.
	RecordCheckpoint(bytes int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCentroidPass(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordBankUpdate(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordCheckpoint(int, time.Duration, error)   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	CentroidPassCount      atomic.Int64
	CentroidPassErrors     atomic.Int64
	CentroidPassTotalNanos atomic.Int64
	BankUpdateCount        atomic.Int64
	BankUpdateErrors       atomic.Int64
	BankUpdateRows         atomic.Int64
	CheckpointCount        atomic.Int64
	CheckpointErrors       atomic.Int64
	CheckpointBytes        atomic.Int64
}

// RecordCentroidPass implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCentroidPass(k int, duration time.Duration, err error) {
	b.CentroidPassCount.Add(1)
	b.CentroidPassTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CentroidPassErrors.Add(1)
	}
}

// RecordBankUpdate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBankUpdate(rows int, duration time.Duration, err error) {
	b.BankUpdateCount.Add(1)
	b.BankUpdateRows.Add(int64(rows))
	if err != nil {
		b.BankUpdateErrors.Add(1)
	}
}

// RecordCheckpoint implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCheckpoint(bytes int, duration time.Duration, err error) {
	b.CheckpointCount.Add(1)
	b.CheckpointBytes.Add(int64(bytes))
	if err != nil {
		b.CheckpointErrors.Add(1)
	}
}
