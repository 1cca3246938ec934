package selfcell

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting cell lifecycle metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordConstruct is called after each construction attempt.
	// err is nil if the cell was built.
	RecordConstruct(duration time.Duration, err error)

	// RecordDestroy is called after each Destroy or IntoOwner.
	// err carries destructor errors, or a teardown-panic marker when a
	// destructor hook panicked.
	RecordDestroy(duration time.Duration, err error)

	// RecordLazyInit is called when a lazily built dependent is published.
	RecordLazyInit(duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordConstruct(time.Duration, error) {}
func (NoopMetricsCollector) RecordDestroy(time.Duration, error)   {}
func (NoopMetricsCollector) RecordLazyInit(time.Duration)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and leak checks without external dependencies.
type BasicMetricsCollector struct {
	ConstructCount      atomic.Int64
	ConstructErrors     atomic.Int64
	ConstructTotalNanos atomic.Int64
	DestroyCount        atomic.Int64
	DestroyErrors       atomic.Int64
	LazyInitCount       atomic.Int64
	LazyInitTotalNanos  atomic.Int64
}

// RecordConstruct implements MetricsCollector.
func (b *BasicMetricsCollector) RecordConstruct(duration time.Duration, err error) {
	b.ConstructCount.Add(1)
	b.ConstructTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ConstructErrors.Add(1)
	}
}

// RecordDestroy implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDestroy(duration time.Duration, err error) {
	b.DestroyCount.Add(1)
	if err != nil {
		b.DestroyErrors.Add(1)
	}
}

// RecordLazyInit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLazyInit(duration time.Duration) {
	b.LazyInitCount.Add(1)
	b.LazyInitTotalNanos.Add(duration.Nanoseconds())
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	constructs := b.ConstructCount.Load()
	constructErrors := b.ConstructErrors.Load()
	destroys := b.DestroyCount.Load()
	return BasicMetricsStats{
		ConstructCount:    constructs,
		ConstructErrors:   constructErrors,
		ConstructAvgNanos: avg(b.ConstructTotalNanos.Load(), constructs),
		DestroyCount:      destroys,
		DestroyErrors:     b.DestroyErrors.Load(),
		LazyInitCount:     b.LazyInitCount.Load(),
		LazyInitAvgNanos:  avg(b.LazyInitTotalNanos.Load(), b.LazyInitCount.Load()),
		Live:              constructs - constructErrors - destroys,
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ConstructCount    int64
	ConstructErrors   int64
	ConstructAvgNanos int64
	DestroyCount      int64
	DestroyErrors     int64
	LazyInitCount     int64
	LazyInitAvgNanos  int64
	// Live is the number of cells built and not yet torn down.
	Live int64
}
