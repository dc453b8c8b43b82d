package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector records parse metrics as Prometheus series.
type Collector struct {
	parses    *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	results   prometheus.Counter
	skipped   *prometheus.CounterVec
	discarded prometheus.Counter
}

// NewCollector creates a Collector and registers its series with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer, namespace string) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parses_total",
			Help:      "Total parses by status.",
		}, []string{"status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Latency of parses.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		results: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_parsed_total",
			Help:      "Total results attached to parsed responses.",
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_skipped_total",
			Help:      "Total result elements dropped without failing the parse.",
		}, []string{"reason"}),
		discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_discarded_total",
			Help:      "Total common results declined by their target.",
		}),
	}

	reg.MustRegister(c.parses, c.latency, c.results, c.skipped, c.discarded)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordParse implements searchtree.MetricsCollector.
func (c *Collector) RecordParse(duration time.Duration, results int, err error) {
	s := status(err)
	c.parses.WithLabelValues(s).Inc()
	c.latency.WithLabelValues(s).Observe(duration.Seconds())
	if err == nil {
		c.results.Add(float64(results))
	}
}

// RecordSkippedResult implements searchtree.MetricsCollector.
func (c *Collector) RecordSkippedResult(reason string) {
	c.skipped.WithLabelValues(reason).Inc()
}

// RecordDiscardedResult implements searchtree.MetricsCollector.
func (c *Collector) RecordDiscardedResult() {
	c.discarded.Inc()
}
