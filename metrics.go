package searchtree

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting parse metrics.
// Implement this interface to integrate with monitoring systems.
// prommetrics.Collector is a Prometheus implementation.
type MetricsCollector interface {
	// RecordParse is called after each parse.
	// results is the number of results attached, err is nil if successful.
	RecordParse(duration time.Duration, results int, err error)

	// RecordSkippedResult is called for every element dropped without
	// failing the parse. reason is a parser.SkipReason string.
	RecordSkippedResult(reason string)

	// RecordDiscardedResult is called when a common result is declined by
	// its target.
	RecordDiscardedResult()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordParse(time.Duration, int, error) {}
func (NoopMetricsCollector) RecordSkippedResult(string)             {}
func (NoopMetricsCollector) RecordDiscardedResult()                 {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ParseCount      atomic.Int64
	ParseErrors     atomic.Int64
	ParseTotalNanos atomic.Int64
	ResultsParsed   atomic.Int64
	SkippedResults  atomic.Int64
	DiscardedResult atomic.Int64
}

// RecordParse implements MetricsCollector.
func (b *BasicMetricsCollector) RecordParse(duration time.Duration, results int, err error) {
	b.ParseCount.Add(1)
	b.ParseTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ParseErrors.Add(1)
		return
	}
	b.ResultsParsed.Add(int64(results))
}

// RecordSkippedResult implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSkippedResult(string) {
	b.SkippedResults.Add(1)
}

// RecordDiscardedResult implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDiscardedResult() {
	b.DiscardedResult.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ParseCount:       b.ParseCount.Load(),
		ParseErrors:      b.ParseErrors.Load(),
		ParseAvgNanos:    b.getAvgParseNanos(),
		ResultsParsed:    b.ResultsParsed.Load(),
		SkippedResults:   b.SkippedResults.Load(),
		DiscardedResults: b.DiscardedResult.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgParseNanos() int64 {
	count := b.ParseCount.Load()
	if count == 0 {
		return 0
	}
	return b.ParseTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ParseCount       int64
	ParseErrors      int64
	ParseAvgNanos    int64
	ResultsParsed    int64
	SkippedResults   int64
	DiscardedResults int64
}
