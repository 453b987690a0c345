// Package metrics exposes wave progress as Prometheus metrics.
//
// Collector implements driver.Observer. It counts waves and dispatched
// requests and records wave durations; it has no view of responses.
package metrics
