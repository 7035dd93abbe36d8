// Package metrics defines the sinks that observe prediction runs. A sink
// receives one RunEvent per run and, when it implements PredictionRecorder,
// the per-sample results. Sinks are created by name through the factory
// registry; configuring several yields a MultiSink.
package metrics
