package tabular

import (
	"fmt"

	"github.com/kilianp07/leafn/core/model"
)

// CoefficientOptions controls coefficient table parsing.
type CoefficientOptions struct {
	// Source names the input in error messages.
	Source string
	// Expected, when set, is the wavelength window the model was trained on.
	// The table must then hold exactly Expected.Len() coefficients plus the
	// intercept row, one per wavelength of the window.
	Expected *model.WaveRange
}

// ParseCoefficients converts [wavelength, coefficient] records into a
// CoefficientTable. An optional header row is skipped when its second cell is
// not numeric. The first data row holds the intercept; its label is ignored.
func ParseCoefficients(records [][]string, opts CoefficientOptions) (model.CoefficientTable, error) {
	src := sourceName(opts.Source, "coefficients")
	start := 0
	if len(records) > 0 && len(records[0]) >= 2 {
		if _, ok := parseNumber(records[0][1]); !ok {
			start = 1
		}
	}
	data := records[start:]
	if len(data) < 2 {
		return model.CoefficientTable{}, model.Formatf(src, "need an intercept row and at least one coefficient, got %d rows", len(data))
	}
	if opts.Expected != nil && len(data) != opts.Expected.Len()+1 {
		return model.CoefficientTable{}, model.Formatf(src, "expected %d rows (%d wavelengths + intercept) for %s, got %d",
			opts.Expected.Len()+1, opts.Expected.Len(), *opts.Expected, len(data))
	}

	var intercept float64
	waves := make([]int, 0, len(data)-1)
	coefs := make([]float64, 0, len(data)-1)
	for i, rec := range data {
		row := start + i + 1
		if len(rec) < 2 {
			return model.CoefficientTable{}, &model.FormatError{Source: src, Row: row, Msg: fmt.Sprintf("expected 2 columns, got %d", len(rec))}
		}
		v, ok := parseNumber(rec[1])
		if !ok {
			return model.CoefficientTable{}, &model.FormatError{Source: src, Row: row, Column: 2, Msg: fmt.Sprintf("non-numeric coefficient %q", rec[1])}
		}
		if i == 0 {
			intercept = v
			continue
		}
		w, ok := ParseWave(rec[0])
		if !ok {
			return model.CoefficientTable{}, &model.FormatError{Source: src, Row: row, Column: 1, Msg: fmt.Sprintf("invalid wavelength %q", rec[0])}
		}
		waves = append(waves, w)
		coefs = append(coefs, v)
	}

	tbl, err := model.NewCoefficientTable(waves, coefs, intercept)
	if err != nil {
		return model.CoefficientTable{}, relabel(err, src)
	}
	if opts.Expected != nil && tbl.Domain() != *opts.Expected {
		return model.CoefficientTable{}, model.Formatf(src, "coefficients cover %s, expected %s", tbl.Domain(), *opts.Expected)
	}
	return tbl, nil
}

// EnsembleOptions controls jackknife ensemble parsing.
type EnsembleOptions struct {
	Source string
	// Waves supplies the wavelength domain when the table has no header.
	Waves []int
	// Expected, when set, must equal the ensemble domain.
	Expected *model.WaveRange
}

// ParseEnsemble converts [fold_id, intercept, coef_1..coef_C] records into a
// CoefficientEnsemble. A header row naming the wavelength columns is detected
// when its intercept cell is not numeric; otherwise opts.Waves gives the domain.
func ParseEnsemble(records [][]string, opts EnsembleOptions) (model.CoefficientEnsemble, error) {
	src := sourceName(opts.Source, "ensemble")
	if len(records) == 0 {
		return model.CoefficientEnsemble{}, model.Formatf(src, "empty table")
	}
	waves := opts.Waves
	start := 0
	if len(records[0]) >= 2 {
		if _, ok := parseNumber(records[0][1]); !ok {
			start = 1
			hdr := records[0][2:]
			waves = make([]int, len(hdr))
			for j, label := range hdr {
				w, ok := ParseWave(label)
				if !ok {
					return model.CoefficientEnsemble{}, &model.FormatError{Source: src, Row: 1, Column: j + 3, Msg: fmt.Sprintf("invalid wavelength label %q", label)}
				}
				waves[j] = w
			}
		}
	}
	if len(waves) == 0 {
		return model.CoefficientEnsemble{}, model.Formatf(src, "no header and no wavelength domain supplied")
	}

	data := records[start:]
	ids := make([]string, len(data))
	intercepts := make([]float64, len(data))
	coefs := make([][]float64, len(data))
	for i, rec := range data {
		row := start + i + 1
		if len(rec) != len(waves)+2 {
			return model.CoefficientEnsemble{}, &model.FormatError{Source: src, Row: row,
				Msg: fmt.Sprintf("fold has %d coefficients, expected %d", len(rec)-2, len(waves))}
		}
		ids[i] = rec[0]
		v, ok := parseNumber(rec[1])
		if !ok {
			return model.CoefficientEnsemble{}, &model.FormatError{Source: src, Row: row, Column: 2, Msg: fmt.Sprintf("non-numeric intercept %q", rec[1])}
		}
		intercepts[i] = v
		coefs[i] = make([]float64, len(waves))
		for j, cell := range rec[2:] {
			c, ok := parseNumber(cell)
			if !ok {
				return model.CoefficientEnsemble{}, &model.FormatError{Source: src, Row: row, Column: j + 3, Msg: fmt.Sprintf("non-numeric coefficient %q", cell)}
			}
			coefs[i][j] = c
		}
	}

	ens, err := model.NewCoefficientEnsemble(ids, waves, intercepts, coefs)
	if err != nil {
		return model.CoefficientEnsemble{}, relabel(err, src)
	}
	if opts.Expected != nil && ens.Domain() != *opts.Expected {
		return model.CoefficientEnsemble{}, model.Formatf(src, "ensemble covers %s, expected %s", ens.Domain(), *opts.Expected)
	}
	return ens, nil
}

func sourceName(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// relabel points a model.FormatError at the file it came from.
func relabel(err error, src string) error {
	if fe, ok := err.(*model.FormatError); ok {
		cp := *fe
		cp.Source = src
		return &cp
	}
	return err
}
