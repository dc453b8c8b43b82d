package prommetrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/searchtree"
)

var _ searchtree.MetricsCollector = (*Collector)(nil)

func TestCollector_RecordParse(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg, "test")

	c.RecordParse(5*time.Millisecond, 3, nil)
	c.RecordParse(time.Millisecond, 7, errors.New("boom"))

	assert.InDelta(t, 1, testutil.ToFloat64(c.parses.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.parses.WithLabelValues("error")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(c.results), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(c.latency))
}

func TestCollector_Skipped(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg, "test")

	c.RecordSkippedResult("unknown_result")
	c.RecordSkippedResult("unknown_result")
	c.RecordSkippedResult("create_failed")
	c.RecordDiscardedResult()

	assert.InDelta(t, 2, testutil.ToFloat64(c.skipped.WithLabelValues("unknown_result")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.skipped.WithLabelValues("create_failed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.discarded), 0)
}

func TestCollector_Registration(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg, "test")
	c.RecordParse(time.Millisecond, 1, nil)
	c.RecordSkippedResult("allocation")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "test_parses_total")
	assert.Contains(t, names, "test_parse_duration_seconds")
	assert.Contains(t, names, "test_results_skipped_total")

	assert.Panics(t, func() { NewCollector(reg, "test") })
}
