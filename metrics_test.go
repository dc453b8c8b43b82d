package searchtree

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasicMetricsCollector(t *testing.T) {
	var m BasicMetricsCollector
	assert.Zero(t, m.GetStats().ParseAvgNanos)

	m.RecordParse(10*time.Millisecond, 4, nil)
	m.RecordParse(30*time.Millisecond, 9, errors.New("boom"))
	m.RecordSkippedResult("unknown_result")
	m.RecordDiscardedResult()

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats.ParseCount)
	assert.Equal(t, int64(1), stats.ParseErrors)
	assert.Equal(t, int64(4), stats.ResultsParsed)
	assert.Equal(t, (20 * time.Millisecond).Nanoseconds(), stats.ParseAvgNanos)
	assert.Equal(t, int64(1), stats.SkippedResults)
	assert.Equal(t, int64(1), stats.DiscardedResults)
}

func TestNoopMetricsCollector(t *testing.T) {
	var m MetricsCollector = NoopMetricsCollector{}
	m.RecordParse(time.Second, 1, nil)
	m.RecordSkippedResult("x")
	m.RecordDiscardedResult()
}
