package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// CoefficientTable is a linear model over a wavelength domain: an intercept
// plus one coefficient per wavelength. It is immutable once built.
type CoefficientTable struct {
	waves     []int
	coefs     []float64
	intercept float64
}

// NewCoefficientTable validates and copies the provided model terms.
// Wavelengths must be unique and strictly increasing and every value finite.
func NewCoefficientTable(waves []int, coefs []float64, intercept float64) (CoefficientTable, error) {
	const source = "coefficient table"
	if len(waves) == 0 {
		return CoefficientTable{}, Formatf(source, "no coefficients")
	}
	if len(waves) != len(coefs) {
		return CoefficientTable{}, Formatf(source, "%d wavelengths but %d coefficients", len(waves), len(coefs))
	}
	if err := checkIncreasing(source, waves); err != nil {
		return CoefficientTable{}, err
	}
	if !finite(intercept) {
		return CoefficientTable{}, Formatf(source, "intercept is not finite")
	}
	for i, c := range coefs {
		if !finite(c) {
			return CoefficientTable{}, Formatf(source, "coefficient for %d nm is not finite", waves[i])
		}
	}
	return CoefficientTable{
		waves:     append([]int(nil), waves...),
		coefs:     append([]float64(nil), coefs...),
		intercept: intercept,
	}, nil
}

// Waves returns a copy of the model wavelengths.
func (t CoefficientTable) Waves() []int { return append([]int(nil), t.waves...) }

// Coefs returns a copy of the coefficient vector ordered like Waves.
func (t CoefficientTable) Coefs() []float64 { return append([]float64(nil), t.coefs...) }

// Intercept returns the model intercept.
func (t CoefficientTable) Intercept() float64 { return t.intercept }

// Len returns the number of wavelength coefficients.
func (t CoefficientTable) Len() int { return len(t.waves) }

// Domain returns the span of wavelengths covered by the model.
func (t CoefficientTable) Domain() WaveRange { return rangeOf(t.waves) }

// Contiguous reports whether the model domain has no gaps.
func (t CoefficientTable) Contiguous() bool { return contiguous(t.waves) }

// Vector returns the coefficients as a gonum vector.
func (t CoefficientTable) Vector() *mat.VecDense {
	return mat.NewVecDense(len(t.coefs), t.Coefs())
}

// CoefficientEnsemble holds K jackknife folds sharing one wavelength domain.
type CoefficientEnsemble struct {
	ids        []string
	waves      []int
	intercepts []float64
	coefs      *mat.Dense
}

// NewCoefficientEnsemble builds an ensemble from per-fold rows. Every row of
// coefs must have exactly len(waves) values.
func NewCoefficientEnsemble(ids []string, waves []int, intercepts []float64, coefs [][]float64) (CoefficientEnsemble, error) {
	const source = "coefficient ensemble"
	k := len(coefs)
	if k == 0 {
		return CoefficientEnsemble{}, Formatf(source, "no folds")
	}
	if len(intercepts) != k {
		return CoefficientEnsemble{}, Formatf(source, "%d folds but %d intercepts", k, len(intercepts))
	}
	if ids != nil && len(ids) != k {
		return CoefficientEnsemble{}, Formatf(source, "%d folds but %d fold ids", k, len(ids))
	}
	if len(waves) == 0 {
		return CoefficientEnsemble{}, Formatf(source, "empty wavelength domain")
	}
	if err := checkIncreasing(source, waves); err != nil {
		return CoefficientEnsemble{}, err
	}
	c := len(waves)
	data := make([]float64, 0, k*c)
	for i, row := range coefs {
		if len(row) != c {
			return CoefficientEnsemble{}, &FormatError{
				Source: source,
				Row:    i + 1,
				Msg:    fmt.Sprintf("fold has %d coefficients, expected %d", len(row), c),
			}
		}
		if !finite(intercepts[i]) {
			return CoefficientEnsemble{}, &FormatError{Source: source, Row: i + 1, Msg: "intercept is not finite"}
		}
		for j, v := range row {
			if !finite(v) {
				return CoefficientEnsemble{}, &FormatError{Source: source, Row: i + 1, Column: j + 1, Msg: "coefficient is not finite"}
			}
		}
		data = append(data, row...)
	}
	if ids == nil {
		ids = make([]string, k)
		for i := range ids {
			ids[i] = fmt.Sprintf("%d", i+1)
		}
	}
	return CoefficientEnsemble{
		ids:        append([]string(nil), ids...),
		waves:      append([]int(nil), waves...),
		intercepts: append([]float64(nil), intercepts...),
		coefs:      mat.NewDense(k, c, data),
	}, nil
}

// Folds returns the number of folds K.
func (e CoefficientEnsemble) Folds() int { return len(e.intercepts) }

// FoldIDs returns the fold identifiers in ensemble order.
func (e CoefficientEnsemble) FoldIDs() []string { return append([]string(nil), e.ids...) }

// Waves returns a copy of the shared wavelength domain.
func (e CoefficientEnsemble) Waves() []int { return append([]int(nil), e.waves...) }

// Domain returns the span of the shared wavelength domain.
func (e CoefficientEnsemble) Domain() WaveRange { return rangeOf(e.waves) }

// Fold returns fold k as a standalone coefficient table.
func (e CoefficientEnsemble) Fold(k int) CoefficientTable {
	return CoefficientTable{
		waves:     e.Waves(),
		coefs:     mat.Row(nil, k, e.coefs),
		intercept: e.intercepts[k],
	}
}

// SameDomain reports whether the ensemble shares the wavelength domain of t.
func (e CoefficientEnsemble) SameDomain(t CoefficientTable) bool {
	return equalWaves(e.waves, t.waves)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
