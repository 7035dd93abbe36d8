package config

import (
	"fmt"

	"github.com/kilianp07/leafn/infra/tabular"
)

// InputConfig locates the spectra table and names its metadata columns.
type InputConfig struct {
	Spectra          string   `json:"spectra"`
	IDColumn         string   `json:"id_column"`
	DateColumn       string   `json:"date_column"`
	SpeciesColumn    string   `json:"species_column"`
	ObservedColumn   string   `json:"observed_column"`
	DateLayout       string   `json:"date_layout"`
	ReflectanceScale float64  `json:"reflectance_scale"`
	Missing          []string `json:"missing"`
	WavePrefixes     []string `json:"wave_prefixes"`
}

// SetDefaults applies the tabular reader defaults.
func (c *InputConfig) SetDefaults() {
	opts := c.Options()
	opts.SetDefaults()
	c.IDColumn = opts.IDColumn
	c.DateColumn = opts.DateColumn
	c.SpeciesColumn = opts.SpeciesColumn
	c.ObservedColumn = opts.ObservedColumn
	c.DateLayout = opts.DateLayout
	if c.ReflectanceScale == 0 {
		c.ReflectanceScale = 1
	}
}

// Validate checks mandatory fields.
func (c InputConfig) Validate() error {
	if c.Spectra == "" {
		return fmt.Errorf("spectra path is required")
	}
	if c.ReflectanceScale < 0 {
		return fmt.Errorf("reflectance_scale must be positive, got %v", c.ReflectanceScale)
	}
	return nil
}

// Options converts the section to spectra reader options.
func (c InputConfig) Options() tabular.SpectraOptions {
	return tabular.SpectraOptions{
		IDColumn:       c.IDColumn,
		DateColumn:     c.DateColumn,
		SpeciesColumn:  c.SpeciesColumn,
		ObservedColumn: c.ObservedColumn,
		DateLayout:     c.DateLayout,
		Missing:        c.Missing,
		WavePrefixes:   c.WavePrefixes,
		Scale:          c.ReflectanceScale,
	}
}
