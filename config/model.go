package config

import (
	"fmt"

	"github.com/kilianp07/leafn/core/jackknife"
	"github.com/kilianp07/leafn/core/model"
	"github.com/kilianp07/leafn/core/prediction"
)

// WindowConfig restricts spectra to the wavelength window the model was
// trained on. Zero bounds disable the restriction.
type WindowConfig struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ModelConfig locates the coefficient tables and tunes the estimator.
type ModelConfig struct {
	Coefficients  string       `json:"coefficients"`
	Jackknife     string       `json:"jackknife"`
	Window        WindowConfig `json:"window"`
	BackTransform string       `json:"back_transform"`
	IntervalLevel float64      `json:"interval_level"`
}

// SetDefaults applies the default transform and interval level.
func (c *ModelConfig) SetDefaults() {
	if c.BackTransform == "" {
		c.BackTransform = string(prediction.TransformNone)
	}
	if c.IntervalLevel == 0 {
		c.IntervalLevel = jackknife.DefaultLevel
	}
}

// Validate checks mandatory fields.
func (c ModelConfig) Validate() error {
	if c.Coefficients == "" {
		return fmt.Errorf("coefficients path is required")
	}
	if c.Jackknife == "" {
		return fmt.Errorf("jackknife path is required")
	}
	if _, err := prediction.ParseBackTransform(c.BackTransform); err != nil {
		return err
	}
	if c.IntervalLevel <= 0 || c.IntervalLevel >= 1 {
		return fmt.Errorf("interval_level must be in (0,1), got %v", c.IntervalLevel)
	}
	if w := c.WaveRange(); w != nil {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("window: %w", err)
		}
	}
	return nil
}

// WaveRange returns the configured window, or nil when none is set.
func (c ModelConfig) WaveRange() *model.WaveRange {
	if c.Window.Start == 0 && c.Window.End == 0 {
		return nil
	}
	return &model.WaveRange{Start: c.Window.Start, End: c.Window.End}
}

// Transform returns the parsed back-transform. Call after Validate.
func (c ModelConfig) Transform() prediction.BackTransform {
	t, _ := prediction.ParseBackTransform(c.BackTransform)
	return t
}
