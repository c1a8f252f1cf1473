package mfvec

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    writeCounter *prometheus.CounterVec
//	    readLatency  prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordWrite(op string, tuples int, d time.Duration, err error) {
//	    p.writeCounter.WithLabelValues(op).Inc()
//	}
type MetricsCollector interface {
	// RecordBind is called after each field construction.
	RecordBind(duration time.Duration, err error)

	// RecordRelease is called when a field releases its handle.
	RecordRelease(err error)

	// RecordRead is called after each read. tuples is the number of tuples copied.
	RecordRead(tuples int, duration time.Duration, err error)

	// RecordWrite is called after each mutation. op names the operation
	// ("set", "insert", "delete", ...), tuples is the number of tuples written.
	RecordWrite(op string, tuples int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBind(time.Duration, error)                {}
func (NoopMetricsCollector) RecordRelease(error)                            {}
func (NoopMetricsCollector) RecordRead(int, time.Duration, error)           {}
func (NoopMetricsCollector) RecordWrite(string, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BindCount       atomic.Int64
	BindErrors      atomic.Int64
	ReleaseCount    atomic.Int64
	ReleaseErrors   atomic.Int64
	ReadCount       atomic.Int64
	ReadErrors      atomic.Int64
	ReadTuples      atomic.Int64
	ReadTotalNanos  atomic.Int64
	WriteCount      atomic.Int64
	WriteErrors     atomic.Int64
	WriteTuples     atomic.Int64
	WriteTotalNanos atomic.Int64
}

// RecordBind implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBind(_ time.Duration, err error) {
	b.BindCount.Add(1)
	if err != nil {
		b.BindErrors.Add(1)
	}
}

// RecordRelease implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRelease(err error) {
	b.ReleaseCount.Add(1)
	if err != nil {
		b.ReleaseErrors.Add(1)
	}
}

// RecordRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRead(tuples int, duration time.Duration, err error) {
	b.ReadCount.Add(1)
	b.ReadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReadErrors.Add(1)
		return
	}
	b.ReadTuples.Add(int64(tuples))
}

// RecordWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWrite(_ string, tuples int, duration time.Duration, err error) {
	b.WriteCount.Add(1)
	b.WriteTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.WriteErrors.Add(1)
		return
	}
	b.WriteTuples.Add(int64(tuples))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BindCount:     b.BindCount.Load(),
		BindErrors:    b.BindErrors.Load(),
		ReleaseCount:  b.ReleaseCount.Load(),
		ReleaseErrors: b.ReleaseErrors.Load(),
		ReadCount:     b.ReadCount.Load(),
		ReadErrors:    b.ReadErrors.Load(),
		ReadTuples:    b.ReadTuples.Load(),
		ReadAvgNanos:  avg(b.ReadTotalNanos.Load(), b.ReadCount.Load()),
		WriteCount:    b.WriteCount.Load(),
		WriteErrors:   b.WriteErrors.Load(),
		WriteTuples:   b.WriteTuples.Load(),
		WriteAvgNanos: avg(b.WriteTotalNanos.Load(), b.WriteCount.Load()),
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
	BindCount     int64
	BindErrors    int64
	ReleaseCount  int64
	ReleaseErrors int64
	ReadCount     int64
	ReadErrors    int64
	ReadTuples    int64
	ReadAvgNanos  int64
	WriteCount    int64
	WriteErrors   int64
	WriteTuples   int64
	WriteAvgNanos int64
}
