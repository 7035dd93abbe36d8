package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoefficientTable_Validation(t *testing.T) {
	cases := []struct {
		name  string
		waves []int
		coefs []float64
	}{
		{"empty", nil, nil},
		{"length mismatch", []int{500, 501}, []float64{1}},
		{"not increasing", []int{501, 500}, []float64{1, 2}},
		{"duplicate", []int{500, 500}, []float64{1, 2}},
		{"negative wave", []int{-1, 500}, []float64{1, 2}},
		{"nan coef", []int{500, 501}, []float64{1, math.NaN()}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewCoefficientTable(c.waves, c.coefs, 0)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFormat), "expected format error, got %v", err)
		})
	}
}

func TestCoefficientTable_Accessors(t *testing.T) {
	waves := []int{500, 501, 503}
	tbl, err := NewCoefficientTable(waves, []float64{1, 2, 3}, 0.5)
	require.NoError(t, err)
	waves[0] = 1
	assert.Equal(t, []int{500, 501, 503}, tbl.Waves())
	assert.Equal(t, WaveRange{Start: 500, End: 503}, tbl.Domain())
	assert.False(t, tbl.Contiguous())
	assert.Equal(t, 0.5, tbl.Intercept())
	assert.Equal(t, 3, tbl.Vector().Len())
}

func TestNewCoefficientEnsemble_RowLengthMismatch(t *testing.T) {
	_, err := NewCoefficientEnsemble(nil, []int{500, 501}, []float64{0, 0}, [][]float64{{1, 2}, {1}})
	require.Error(t, err)
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 2, fe.Row)
}

func TestCoefficientEnsemble_Fold(t *testing.T) {
	ens, err := NewCoefficientEnsemble([]string{"a", "b"}, []int{500, 501}, []float64{0.1, 0.2}, [][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, 2, ens.Folds())
	f := ens.Fold(1)
	assert.Equal(t, []float64{3, 4}, f.Coefs())
	assert.Equal(t, 0.2, f.Intercept())
	assert.True(t, ens.SameDomain(f))
	assert.Equal(t, []string{"a", "b"}, ens.FoldIDs())
}

func TestNewSpectralMatrix_RejectsGaps(t *testing.T) {
	_, err := NewSpectralMatrix([]int{500, 502}, [][]float64{{0.1, 0.2}})
	assert.ErrorIs(t, err, ErrFormat)

	_, err = NewSpectralMatrix([]int{500, 501}, [][]float64{{0.1}})
	assert.ErrorIs(t, err, ErrFormat)
}

func TestSpectralMatrix_SelectAndWindow(t *testing.T) {
	s, err := NewSpectralMatrix([]int{500, 501, 502}, [][]float64{
		{0.1, 0.2, 0.3},
		{0.4, 0.5, 0.6},
	})
	require.NoError(t, err)

	w, err := s.Window(WaveRange{Start: 501, End: 502})
	require.NoError(t, err)
	assert.Equal(t, 2, w.Rows())
	assert.Equal(t, []float64{0.5, 0.6}, w.Row(1))

	sel, err := s.Select([]int{502, 500})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.3, 0.1}, sel.Row(0))

	_, err = s.Select([]int{499, 500})
	var dm *DomainMismatchError
	require.True(t, errors.As(err, &dm))
	assert.Equal(t, []int{499}, dm.Missing)
	assert.ErrorIs(t, err, ErrDomainMismatch)
}

func TestSpectralMatrix_ScaleAndChecks(t *testing.T) {
	s, err := NewSpectralMatrix([]int{500, 501}, [][]float64{
		{10, 20},
		{math.NaN(), 150},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, s.OutOfRange())
	scaled := s.Scale(100)
	assert.InDelta(t, 0.1, scaled.At(0, 0), 1e-12)
	assert.Equal(t, 1, scaled.OutOfRange())
	assert.Equal(t, []bool{false, true}, scaled.MissingRows())
	// the source is untouched
	assert.Equal(t, 10.0, s.At(0, 0))
}

func TestDataset_FilterKeepsAlignment(t *testing.T) {
	s, err := NewSpectralMatrix([]int{500}, [][]float64{{0.1}, {0.2}, {0.3}})
	require.NoError(t, err)
	samples := []SampleRecord{
		{ID: "a", Species: "ACRU", Observed: 1},
		{ID: "b", Species: "QURU", Observed: math.NaN()},
		{ID: "c", Species: "ACRU", Observed: 3},
	}
	ds, err := NewDataset(s, samples)
	require.NoError(t, err)

	acru := ds.Filter(func(r SampleRecord) bool { return r.Species == "ACRU" })
	require.Equal(t, 2, acru.Len())
	assert.Equal(t, "c", acru.Samples()[1].ID)
	assert.Equal(t, 0.3, acru.Spectra().At(1, 0))

	none := ds.Filter(func(SampleRecord) bool { return false })
	assert.Equal(t, 0, none.Len())
	assert.Equal(t, 0, none.Spectra().Rows())

	_, err = NewDataset(s, samples[:2])
	assert.ErrorIs(t, err, ErrFormat)
}

func TestErrorMessagesCarryContext(t *testing.T) {
	err := &DomainMismatchError{Required: WaveRange{500, 510}, Actual: WaveRange{505, 510}, Missing: []int{500, 501, 502, 503, 504}}
	assert.Contains(t, err.Error(), "[500,510] nm")
	assert.Contains(t, (&InsufficientEnsembleError{Folds: 1, Need: 2}).Error(), "1 folds")
	assert.Contains(t, (&FormatError{Source: "coef.csv", Row: 3, Column: 2, Msg: "bad"}).Error(), "coef.csv row 3 column 2")
	assert.True(t, errors.Is(&InsufficientDataError{Have: 1, Need: 2}, ErrInsufficientData))
}
