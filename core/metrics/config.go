package metrics

import "github.com/kilianp07/leafn/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// Textfile, when set, receives the Prometheus registry in text format at
	// the end of a run, for node_exporter's textfile collector.
	Textfile string `json:"textfile"`
}
