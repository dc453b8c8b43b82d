// Package prommetrics exports parse metrics to Prometheus.
//
// Collector implements searchtree.MetricsCollector:
//
//	reg := prometheus.NewRegistry()
//	p, _ := searchtree.New(searchtree.WithMetricsCollector(prommetrics.NewCollector(reg, "searchtree")))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prommetrics
