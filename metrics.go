package subdb

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/subdb/projector"
)

// MetricsCollector receives operational metrics of a run.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordRow is called after each projected row with the strategy that handled it,
	// the number of data bytes written and the time taken.
	RecordRow(strategy projector.Strategy, written uint64, duration time.Duration)

	// RecordSkip is called for each row that was not projected.
	RecordSkip(reason SkipReason)

	// RecordRun is called once per run. err is nil if the run succeeded.
	RecordRun(rows int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRow(projector.Strategy, uint64, time.Duration) {}
func (NoopMetricsCollector) RecordSkip(SkipReason)                               {}
func (NoopMetricsCollector) RecordRun(int, time.Duration, error)                 {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	LinkOnlyCount    atomic.Int64
	WholeEntryCount  atomic.Int64
	RangeSpliceCount atomic.Int64
	BytesWritten     atomic.Int64
	RowTotalNanos    atomic.Int64
	UnresolvedCount  atomic.Int64
	MissingCount     atomic.Int64
	MalformedCount   atomic.Int64
	OverlongCount    atomic.Int64
	RunCount         atomic.Int64
	RunErrors        atomic.Int64
	RunRows          atomic.Int64
}

// RecordRow implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRow(strategy projector.Strategy, written uint64, duration time.Duration) {
	switch strategy {
	case projector.LinkOnly:
		b.LinkOnlyCount.Add(1)
	case projector.WholeEntry:
		b.WholeEntryCount.Add(1)
	case projector.RangeSplice:
		b.RangeSpliceCount.Add(1)
	}
	b.BytesWritten.Add(int64(written))
	b.RowTotalNanos.Add(duration.Nanoseconds())
}

// RecordSkip implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSkip(reason SkipReason) {
	switch reason {
	case SkipUnresolved:
		b.UnresolvedCount.Add(1)
	case SkipMissing:
		b.MissingCount.Add(1)
	case SkipMalformed:
		b.MalformedCount.Add(1)
	case SkipOverlong:
		b.OverlongCount.Add(1)
	}
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(rows int, _ time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunRows.Add(int64(rows))
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	projected := b.LinkOnlyCount.Load() + b.WholeEntryCount.Load() + b.RangeSpliceCount.Load()
	var avg int64
	if projected > 0 {
		avg = b.RowTotalNanos.Load() / projected
	}
	return BasicMetricsStats{
		LinkOnlyCount:    b.LinkOnlyCount.Load(),
		WholeEntryCount:  b.WholeEntryCount.Load(),
		RangeSpliceCount: b.RangeSpliceCount.Load(),
		BytesWritten:     b.BytesWritten.Load(),
		RowAvgNanos:      avg,
		UnresolvedCount:  b.UnresolvedCount.Load(),
		MissingCount:     b.MissingCount.Load(),
		MalformedCount:   b.MalformedCount.Load(),
		OverlongCount:    b.OverlongCount.Load(),
		RunCount:         b.RunCount.Load(),
		RunErrors:        b.RunErrors.Load(),
		RunRows:          b.RunRows.Load(),
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LinkOnlyCount    int64
	WholeEntryCount  int64
	RangeSpliceCount int64
	BytesWritten     int64
	RowAvgNanos      int64
	UnresolvedCount  int64
	MissingCount     int64
	MalformedCount   int64
	OverlongCount    int64
	RunCount         int64
	RunErrors        int64
	RunRows          int64
}
