package model

import (
	"fmt"
	"math"
	"time"
)

// SampleRecord carries per-sample metadata aligned by row with a
// SpectralMatrix. Observed is NaN when no reference value was measured.
type SampleRecord struct {
	ID       string
	Date     time.Time
	Species  string
	Observed float64
}

// HasObserved reports whether a reference trait value is present.
func (r SampleRecord) HasObserved() bool { return !math.IsNaN(r.Observed) }

// Dataset keeps spectra and metadata aligned by row index. Any row selection
// is applied identically to both halves.
type Dataset struct {
	spectra SpectralMatrix
	samples []SampleRecord
}

// NewDataset pairs spectra with metadata. Both must have the same row count.
func NewDataset(spectra SpectralMatrix, samples []SampleRecord) (Dataset, error) {
	if spectra.Rows() != len(samples) {
		return Dataset{}, &FormatError{
			Source: "dataset",
			Msg:    fmt.Sprintf("%d spectra rows but %d sample records", spectra.Rows(), len(samples)),
		}
	}
	return Dataset{spectra: spectra, samples: append([]SampleRecord(nil), samples...)}, nil
}

// Spectra returns the spectral matrix.
func (d Dataset) Spectra() SpectralMatrix { return d.spectra }

// Samples returns a copy of the metadata rows.
func (d Dataset) Samples() []SampleRecord { return append([]SampleRecord(nil), d.samples...) }

// Len returns the number of samples.
func (d Dataset) Len() int { return len(d.samples) }

// Observed returns the observed values in row order, NaN where missing.
func (d Dataset) Observed() []float64 {
	out := make([]float64, len(d.samples))
	for i, s := range d.samples {
		out[i] = s.Observed
	}
	return out
}

// Filter keeps the rows for which keep returns true, preserving order.
func (d Dataset) Filter(keep func(SampleRecord) bool) Dataset {
	var idx []int
	var samples []SampleRecord
	for i, s := range d.samples {
		if keep(s) {
			idx = append(idx, i)
			samples = append(samples, s)
		}
	}
	return Dataset{spectra: d.spectra.rowsMatching(idx), samples: samples}
}

// WithSpectra replaces the spectra, for example after a window selection or
// unit scaling. The row count must not change.
func (d Dataset) WithSpectra(s SpectralMatrix) (Dataset, error) {
	return NewDataset(s, d.samples)
}
