package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// OutputConfig selects where per-sample records and the run summary go.
// An empty Path or "-" writes records to stdout.
type OutputConfig struct {
	Path        string `json:"path"`
	Format      string `json:"format"`
	SummaryPath string `json:"summary_path"`
}

// SetDefaults infers the format from the path extension, falling back to CSV.
func (c *OutputConfig) SetDefaults() {
	if c.Format != "" {
		c.Format = strings.ToLower(c.Format)
		return
	}
	if strings.EqualFold(filepath.Ext(c.Path), ".json") {
		c.Format = FormatJSON
	} else {
		c.Format = FormatCSV
	}
}

// Validate checks the format.
func (c OutputConfig) Validate() error {
	if c.Format != FormatCSV && c.Format != FormatJSON {
		return fmt.Errorf("unknown format %s", c.Format)
	}
	return nil
}

// Stdout reports whether records go to standard output.
func (c OutputConfig) Stdout() bool { return c.Path == "" || c.Path == "-" }

// EngineConfig tunes the prediction engine.
type EngineConfig struct {
	// Workers bounds the number of folds predicted concurrently. Zero uses
	// GOMAXPROCS.
	Workers int `json:"workers"`
}

// Validate checks the worker count.
func (c EngineConfig) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	return nil
}
