package tabular

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/leafn/core/model"
)

// DefaultDateLayout is the layout of the sample date column.
const DefaultDateLayout = "2006-01-02"

// SpectraOptions names the metadata columns of a spectra table. Every other
// column whose header parses as a wavelength is read as reflectance.
type SpectraOptions struct {
	Source         string
	IDColumn       string
	DateColumn     string
	SpeciesColumn  string
	ObservedColumn string
	DateLayout     string
	// Missing lists the tokens read as missing values. Nil means DefaultMissing.
	Missing []string
	// WavePrefixes lists the label prefixes of wavelength columns. Nil
	// means DefaultWavePrefixes.
	WavePrefixes []string
	// Scale divides every reflectance cell, e.g. 100 for percent input.
	// Zero or one leaves values untouched.
	Scale float64
}

// SetDefaults fills empty column names and the date layout.
func (o *SpectraOptions) SetDefaults() {
	if o.WavePrefixes == nil {
		o.WavePrefixes = DefaultWavePrefixes
	}
	if o.IDColumn == "" {
		o.IDColumn = "sample_id"
	}
	if o.DateColumn == "" {
		o.DateColumn = "date"
	}
	if o.SpeciesColumn == "" {
		o.SpeciesColumn = "species"
	}
	if o.ObservedColumn == "" {
		o.ObservedColumn = "observed"
	}
	if o.DateLayout == "" {
		o.DateLayout = DefaultDateLayout
	}
}

type spectraLayout struct {
	id, date, species, observed int
	waveCols                    []int
	waves                       []int
}

func findColumns(header []string, opts SpectraOptions) spectraLayout {
	l := spectraLayout{id: -1, date: -1, species: -1, observed: -1}
	for j, h := range header {
		name := strings.TrimSpace(h)
		switch {
		case strings.EqualFold(name, opts.IDColumn):
			l.id = j
		case strings.EqualFold(name, opts.DateColumn):
			l.date = j
		case strings.EqualFold(name, opts.SpeciesColumn):
			l.species = j
		case strings.EqualFold(name, opts.ObservedColumn):
			l.observed = j
		default:
			if w, ok := ParseWaveWith(name, opts.WavePrefixes); ok {
				l.waveCols = append(l.waveCols, j)
				l.waves = append(l.waves, w)
			}
		}
	}
	return l
}

// ParseSpectra converts a header row plus one row per sample into a Dataset.
// The ID column falls back to the 1-based row number, the date and species
// columns are optional and a missing observed column leaves every
// observation missing.
func ParseSpectra(records [][]string, opts SpectraOptions) (model.Dataset, error) {
	opts.SetDefaults()
	src := sourceName(opts.Source, "spectra")
	if len(records) < 2 {
		return model.Dataset{}, model.Formatf(src, "need a header row and at least one sample, got %d rows", len(records))
	}
	l := findColumns(records[0], opts)
	if len(l.waves) == 0 {
		return model.Dataset{}, model.Formatf(src, "no wavelength columns in header")
	}
	missing := newMissingSet(opts.Missing)

	data := records[1:]
	rows := make([][]float64, len(data))
	samples := make([]model.SampleRecord, len(data))
	for i, rec := range data {
		row := i + 2
		if len(rec) != len(records[0]) {
			return model.Dataset{}, &model.FormatError{Source: src, Row: row,
				Msg: fmt.Sprintf("expected %d columns, got %d", len(records[0]), len(rec))}
		}
		refl := make([]float64, len(l.waveCols))
		for k, j := range l.waveCols {
			v, ok := missing.parseOptional(rec[j])
			if !ok {
				return model.Dataset{}, &model.FormatError{Source: src, Row: row, Column: j + 1,
					Msg: fmt.Sprintf("non-numeric reflectance %q at %d nm", rec[j], l.waves[k])}
			}
			refl[k] = v
		}
		rows[i] = refl

		s, err := parseSample(rec, l, missing, opts.DateLayout)
		if err != nil {
			err.Source, err.Row = src, row
			return model.Dataset{}, err
		}
		if s.ID == "" {
			s.ID = strconv.Itoa(i + 1)
		}
		samples[i] = s
	}

	spectra, err := model.NewSpectralMatrix(l.waves, rows)
	if err != nil {
		return model.Dataset{}, relabel(err, src)
	}
	if opts.Scale != 0 && opts.Scale != 1 {
		spectra = spectra.Scale(opts.Scale)
	}
	return model.NewDataset(spectra, samples)
}

func parseSample(rec []string, l spectraLayout, missing missingSet, layout string) (model.SampleRecord, *model.FormatError) {
	s := model.SampleRecord{Observed: math.NaN()}
	if l.id >= 0 {
		s.ID = strings.TrimSpace(rec[l.id])
	}
	if l.species >= 0 {
		s.Species = strings.TrimSpace(rec[l.species])
	}
	if l.date >= 0 && !missing.has(rec[l.date]) {
		d, err := time.Parse(layout, strings.TrimSpace(rec[l.date]))
		if err != nil {
			return s, &model.FormatError{Column: l.date + 1, Msg: fmt.Sprintf("invalid date %q (layout %s)", rec[l.date], layout)}
		}
		s.Date = d
	}
	if l.observed >= 0 {
		v, ok := missing.parseOptional(rec[l.observed])
		if !ok {
			return s, &model.FormatError{Column: l.observed + 1, Msg: fmt.Sprintf("non-numeric observed value %q", rec[l.observed])}
		}
		s.Observed = v
	}
	return s, nil
}
