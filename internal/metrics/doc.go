// Package metrics provides observability hooks for draft mutations and
// document dispatch.
//
// Components depend on the Recorder interface. NoopRecorder is the default
// when metrics are not configured; PrometheusRecorder registers counters and
// histograms on a caller-supplied registry, which the CLI can dump to a
// node-exporter style textfile on exit.
package metrics
