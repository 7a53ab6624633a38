package tabgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordStructure is called after rows or columns were added, deleted
	// or moved. op is "add", "delete" or "move".
	RecordStructure(op string, count int, err error)

	// RecordWrite is called after each cell write or unset.
	RecordWrite(duration time.Duration, err error)

	// RecordLookup is called after each primary-key lookup.
	RecordLookup(duration time.Duration, err error)

	// RecordKeyRebuild is called after each primary-key index rebuild.
	RecordKeyRebuild(rows int, duration time.Duration, err error)

	// RecordSort is called after each sort.
	RecordSort(rows int, duration time.Duration, err error)

	// RecordRestore is called after each restore.
	RecordRestore(records int, duration time.Duration, err error)

	// RecordCallbackError is called for every failing callback.
	RecordCallbackError(err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordStructure(string, int, error)         {}
func (NoopMetricsCollector) RecordWrite(time.Duration, error)           {}
func (NoopMetricsCollector) RecordLookup(time.Duration, error)          {}
func (NoopMetricsCollector) RecordKeyRebuild(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordSort(int, time.Duration, error)       {}
func (NoopMetricsCollector) RecordRestore(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordCallbackError(error)                  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	StructureOps     atomic.Int64
	StructureErrors  atomic.Int64
	WriteCount       atomic.Int64
	WriteErrors      atomic.Int64
	WriteTotalNanos  atomic.Int64
	LookupCount      atomic.Int64
	LookupErrors     atomic.Int64
	LookupTotalNanos atomic.Int64
	RebuildCount     atomic.Int64
	RebuildErrors    atomic.Int64
	RebuildRows      atomic.Int64
	SortCount        atomic.Int64
	SortRows         atomic.Int64
	SortTotalNanos   atomic.Int64
	RestoreCount     atomic.Int64
	RestoreErrors    atomic.Int64
	RestoreRecords   atomic.Int64
	CallbackErrors   atomic.Int64
}

// RecordStructure implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStructure(_ string, count int, err error) {
	b.StructureOps.Add(int64(count))
	if err != nil {
		b.StructureErrors.Add(1)
	}
}

// RecordWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWrite(duration time.Duration, err error) {
	b.WriteCount.Add(1)
	b.WriteTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.WriteErrors.Add(1)
	}
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(duration time.Duration, err error) {
	b.LookupCount.Add(1)
	b.LookupTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LookupErrors.Add(1)
	}
}

// RecordKeyRebuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordKeyRebuild(rows int, _ time.Duration, err error) {
	b.RebuildCount.Add(1)
	b.RebuildRows.Add(int64(rows))
	if err != nil {
		b.RebuildErrors.Add(1)
	}
}

// RecordSort implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSort(rows int, duration time.Duration, _ error) {
	b.SortCount.Add(1)
	b.SortRows.Add(int64(rows))
	b.SortTotalNanos.Add(duration.Nanoseconds())
}

// RecordRestore implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRestore(records int, _ time.Duration, err error) {
	b.RestoreCount.Add(1)
	b.RestoreRecords.Add(int64(records))
	if err != nil {
		b.RestoreErrors.Add(1)
	}
}

// RecordCallbackError implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCallbackError(error) {
	b.CallbackErrors.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		StructureOps:    b.StructureOps.Load(),
		StructureErrors: b.StructureErrors.Load(),
		WriteCount:      b.WriteCount.Load(),
		WriteErrors:     b.WriteErrors.Load(),
		WriteAvgNanos:   avg(b.WriteTotalNanos.Load(), b.WriteCount.Load()),
		LookupCount:     b.LookupCount.Load(),
		LookupErrors:    b.LookupErrors.Load(),
		LookupAvgNanos:  avg(b.LookupTotalNanos.Load(), b.LookupCount.Load()),
		RebuildCount:    b.RebuildCount.Load(),
		RebuildErrors:   b.RebuildErrors.Load(),
		SortCount:       b.SortCount.Load(),
		SortAvgNanos:    avg(b.SortTotalNanos.Load(), b.SortCount.Load()),
		RestoreCount:    b.RestoreCount.Load(),
		RestoreErrors:   b.RestoreErrors.Load(),
		CallbackErrors:  b.CallbackErrors.Load(),
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
	StructureOps    int64
	StructureErrors int64
	WriteCount      int64
	WriteErrors     int64
	WriteAvgNanos   int64
	LookupCount     int64
	LookupErrors    int64
	LookupAvgNanos  int64
	RebuildCount    int64
	RebuildErrors   int64
	SortCount       int64
	SortAvgNanos    int64
	RestoreCount    int64
	RestoreErrors   int64
	CallbackErrors  int64
}
