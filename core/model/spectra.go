package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SpectralMatrix holds one reflectance observation per row and one wavelength
// per column. Missing cells are NaN. A SpectralMatrix is never mutated; every
// selection returns a new matrix with the same rows in the same order.
type SpectralMatrix struct {
	waves []int
	data  *mat.Dense
}

// NewSpectralMatrix builds a matrix from row-major reflectance values. The
// column set must be the contiguous integer range covered by waves.
func NewSpectralMatrix(waves []int, rows [][]float64) (SpectralMatrix, error) {
	const source = "spectral matrix"
	if len(waves) == 0 {
		return SpectralMatrix{}, Formatf(source, "no wavelength columns")
	}
	if len(rows) == 0 {
		return SpectralMatrix{}, Formatf(source, "no samples")
	}
	if err := checkIncreasing(source, waves); err != nil {
		return SpectralMatrix{}, err
	}
	if !contiguous(waves) {
		return SpectralMatrix{}, Formatf(source, "wavelength columns %s are not contiguous", rangeOf(waves))
	}
	c := len(waves)
	data := make([]float64, 0, len(rows)*c)
	for i, row := range rows {
		if len(row) != c {
			return SpectralMatrix{}, &FormatError{
				Source: source,
				Row:    i + 1,
				Msg:    fmt.Sprintf("row has %d values, expected %d", len(row), c),
			}
		}
		data = append(data, row...)
	}
	return SpectralMatrix{
		waves: append([]int(nil), waves...),
		data:  mat.NewDense(len(rows), c, data),
	}, nil
}

// Rows returns the number of samples.
func (s SpectralMatrix) Rows() int {
	if s.data == nil {
		return 0
	}
	r, _ := s.data.Dims()
	return r
}

// Cols returns the number of wavelength columns.
func (s SpectralMatrix) Cols() int { return len(s.waves) }

// Waves returns a copy of the column wavelengths.
func (s SpectralMatrix) Waves() []int { return append([]int(nil), s.waves...) }

// Domain returns the span of the column wavelengths.
func (s SpectralMatrix) Domain() WaveRange { return rangeOf(s.waves) }

// Row returns a copy of row i.
func (s SpectralMatrix) Row(i int) []float64 { return mat.Row(nil, i, s.data) }

// At returns the reflectance of row i at column j.
func (s SpectralMatrix) At(i, j int) float64 { return s.data.At(i, j) }

// Matrix exposes the values as a read-only gonum matrix.
func (s SpectralMatrix) Matrix() mat.Matrix { return s.data }

// Select returns a matrix restricted to exactly the given wavelengths, in the
// given order. Any wavelength absent from s yields a DomainMismatchError.
func (s SpectralMatrix) Select(waves []int) (SpectralMatrix, error) {
	if equalWaves(s.waves, waves) {
		return s, nil
	}
	index := make(map[int]int, len(s.waves))
	for j, w := range s.waves {
		index[w] = j
	}
	cols := make([]int, len(waves))
	var missing []int
	for i, w := range waves {
		j, ok := index[w]
		if !ok {
			missing = append(missing, w)
			continue
		}
		cols[i] = j
	}
	if len(missing) > 0 {
		return SpectralMatrix{}, &DomainMismatchError{
			Required: rangeOf(waves),
			Actual:   s.Domain(),
			Missing:  missing,
		}
	}
	r := s.Rows()
	if r == 0 {
		return SpectralMatrix{waves: append([]int(nil), waves...)}, nil
	}
	out := mat.NewDense(r, len(cols), nil)
	for i := 0; i < r; i++ {
		for k, j := range cols {
			out.Set(i, k, s.data.At(i, j))
		}
	}
	return SpectralMatrix{waves: append([]int(nil), waves...), data: out}, nil
}

// Window restricts the matrix to a contiguous wavelength window.
func (s SpectralMatrix) Window(r WaveRange) (SpectralMatrix, error) {
	if err := r.Validate(); err != nil {
		return SpectralMatrix{}, err
	}
	return s.Select(r.Waves())
}

// Scale returns a copy with every cell divided by factor. A factor of 1 or 0
// returns s unchanged.
func (s SpectralMatrix) Scale(factor float64) SpectralMatrix {
	if factor == 1 || factor == 0 || s.data == nil {
		return s
	}
	var out mat.Dense
	out.Scale(1/factor, s.data)
	return SpectralMatrix{waves: s.Waves(), data: &out}
}

// rowsMatching returns the rows at the given indices, in order.
func (s SpectralMatrix) rowsMatching(keep []int) SpectralMatrix {
	if len(keep) == 0 {
		return SpectralMatrix{waves: s.Waves()}
	}
	out := mat.NewDense(len(keep), len(s.waves), nil)
	for i, src := range keep {
		out.SetRow(i, mat.Row(nil, src, s.data))
	}
	return SpectralMatrix{waves: s.Waves(), data: out}
}

// MissingRows reports, per row, whether any cell is NaN.
func (s SpectralMatrix) MissingRows() []bool {
	r := s.Rows()
	out := make([]bool, r)
	for i := 0; i < r; i++ {
		for j := range s.waves {
			if math.IsNaN(s.data.At(i, j)) {
				out[i] = true
				break
			}
		}
	}
	return out
}

// OutOfRange counts non-missing cells outside the reflectance interval [0,1].
func (s SpectralMatrix) OutOfRange() int {
	n := 0
	r := s.Rows()
	for i := 0; i < r; i++ {
		for j := range s.waves {
			v := s.data.At(i, j)
			if !math.IsNaN(v) && (v < 0 || v > 1) {
				n++
			}
		}
	}
	return n
}
