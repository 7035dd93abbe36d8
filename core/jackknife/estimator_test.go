package jackknife

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/leafn/core/model"
	"github.com/kilianp07/leafn/core/prediction"
)

func ensemble(t *testing.T, waves []int, intercepts []float64, coefs [][]float64) model.CoefficientEnsemble {
	t.Helper()
	ens, err := model.NewCoefficientEnsemble(nil, waves, intercepts, coefs)
	require.NoError(t, err)
	return ens
}

func spectra(t *testing.T, waves []int, rows [][]float64) model.SpectralMatrix {
	t.Helper()
	s, err := model.NewSpectralMatrix(waves, rows)
	require.NoError(t, err)
	return s
}

func TestEstimate_ThreeFolds(t *testing.T) {
	waves := []int{500, 501}
	ens := ensemble(t, waves, []float64{0.9, 1.0, 1.1}, [][]float64{{0, 0}, {0, 0}, {0, 0}})
	s := spectra(t, waves, [][]float64{{0.3, 0.4}})

	est, err := NewEstimator().Estimate(context.Background(), s, ens)
	require.NoError(t, err)

	r, k := est.Folds.Dims()
	assert.Equal(t, 1, r)
	assert.Equal(t, 3, k)
	assert.InDelta(t, 1.0, est.Mean[0], 1e-12)
	assert.InDelta(t, 0.1, est.StdDev[0], 1e-12)
	assert.InDelta(t, 0.905, est.Lower[0], 1e-12)
	assert.InDelta(t, 1.095, est.Upper[0], 1e-12)
	assert.GreaterOrEqual(t, est.Lower[0], 0.9)
	assert.LessOrEqual(t, est.Upper[0], 1.1)
}

func TestEstimate_IdenticalFoldsHaveZeroSpread(t *testing.T) {
	waves := []int{500, 501, 502}
	row := []float64{0.11, -0.37, 0.5}
	ens := ensemble(t, waves, []float64{0.1, 0.1, 0.1, 0.1}, [][]float64{row, row, row, row})
	s := spectra(t, waves, [][]float64{{0.1, 0.2, 0.3}, {0.33, 0.21, 0.7}, {0.9, 0.01, 0.05}})

	est, err := NewEstimator().Estimate(context.Background(), s, ens)
	require.NoError(t, err)
	for i := range est.StdDev {
		assert.Equal(t, 0.0, est.StdDev[i], "row %d", i)
		assert.Equal(t, est.Lower[i], est.Upper[i], "row %d", i)
	}
}

func TestEstimate_InsufficientEnsemble(t *testing.T) {
	waves := []int{500}
	ens := ensemble(t, waves, []float64{1}, [][]float64{{1}})
	_, err := NewEstimator().Estimate(context.Background(), spectra(t, waves, [][]float64{{0.5}}), ens)
	var ie *model.InsufficientEnsembleError
	require.True(t, errors.As(err, &ie), "got %v", err)
	assert.Equal(t, 1, ie.Folds)
}

func TestEstimate_DomainMismatch(t *testing.T) {
	ens := ensemble(t, []int{500, 501}, []float64{1, 2}, [][]float64{{1, 1}, {1, 1}})
	_, err := NewEstimator().Estimate(context.Background(), spectra(t, []int{501, 502}, [][]float64{{0.5, 0.5}}), ens)
	assert.ErrorIs(t, err, model.ErrDomainMismatch)
}

func TestEstimate_IntervalContainsFoldMean(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	waves := []int{400, 401, 402, 403, 404}
	base := []float64{0.8, -1.2, 0.4, 2.0, -0.3}
	const folds = 25
	intercepts := make([]float64, folds)
	coefs := make([][]float64, folds)
	for k := 0; k < folds; k++ {
		// symmetric perturbations around the base model
		d := float64(k-folds/2) / folds * 0.2
		intercepts[k] = 1 + d
		coefs[k] = make([]float64, len(base))
		for j, c := range base {
			coefs[k][j] = c * (1 + d)
		}
	}
	ens := ensemble(t, waves, intercepts, coefs)
	rows := make([][]float64, 40)
	for i := range rows {
		rows[i] = make([]float64, len(waves))
		for j := range rows[i] {
			rows[i][j] = rng.Float64()
		}
	}
	est, err := NewEstimator().Estimate(context.Background(), spectra(t, waves, rows), ens)
	require.NoError(t, err)
	for i := range rows {
		assert.LessOrEqual(t, est.Lower[i], est.Mean[i], "row %d", i)
		assert.LessOrEqual(t, est.Mean[i], est.Upper[i], "row %d", i)
	}
}

func TestEstimate_MissingRowPropagates(t *testing.T) {
	waves := []int{500, 501}
	ens := ensemble(t, waves, []float64{0, 1}, [][]float64{{1, 1}, {1, 2}})
	s := spectra(t, waves, [][]float64{{0.1, 0.2}, {math.NaN(), 0.2}})
	est, err := NewEstimator().Estimate(context.Background(), s, ens)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(est.StdDev[0]))
	assert.True(t, math.IsNaN(est.StdDev[1]))
	assert.True(t, math.IsNaN(est.Lower[1]))
	assert.True(t, math.IsNaN(est.Upper[1]))
}

func TestEstimate_WorkersDoNotChangeResult(t *testing.T) {
	waves := []int{500, 501, 502}
	intercepts := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	coefs := make([][]float64, len(intercepts))
	for k := range coefs {
		coefs[k] = []float64{float64(k), 0.5, -float64(k) / 3}
	}
	ens := ensemble(t, waves, intercepts, coefs)
	s := spectra(t, waves, [][]float64{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}})

	serial := NewEstimator()
	serial.Workers = 1
	parallel := NewEstimator()
	parallel.Workers = 4

	a, err := serial.Estimate(context.Background(), s, ens)
	require.NoError(t, err)
	b, err := parallel.Estimate(context.Background(), s, ens)
	require.NoError(t, err)
	assert.True(t, mat.Equal(a.Folds, b.Folds))
	assert.Equal(t, a.StdDev, b.StdDev)
}

func TestEstimate_TransformAppliedPerFold(t *testing.T) {
	waves := []int{500}
	ens := ensemble(t, waves, []float64{1, 2, 3}, [][]float64{{0}, {0}, {0}})
	e := NewEstimator()
	e.Transform = prediction.TransformSquare
	est, err := e.Estimate(context.Background(), spectra(t, waves, [][]float64{{0.5}}), ens)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 4, 9}, mat.Row(nil, 0, est.Folds))
	assert.InDelta(t, 14.0/3, est.Mean[0], 1e-12)
}

func TestEstimate_CustomLevel(t *testing.T) {
	e := NewEstimator()
	e.Level = 0.5
	lo, hi := e.Probabilities()
	assert.InDelta(t, 0.25, lo, 1e-12)
	assert.InDelta(t, 0.75, hi, 1e-12)

	e.Level = 1.5
	waves := []int{500}
	ens := ensemble(t, waves, []float64{1, 2}, [][]float64{{0}, {0}})
	_, err := e.Estimate(context.Background(), spectra(t, waves, [][]float64{{0.5}}), ens)
	assert.Error(t, err)
}

func TestEstimate_CancelledContext(t *testing.T) {
	waves := []int{500}
	ens := ensemble(t, waves, []float64{1, 2}, [][]float64{{0}, {0}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEstimator().Estimate(ctx, spectra(t, waves, [][]float64{{0.5}}), ens)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQuantileType7(t *testing.T) {
	cases := []struct {
		values []float64
		p      float64
		want   float64
	}{
		{[]float64{1, 2, 3, 4, 5}, 0.1, 1.4},
		{[]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.025, 1.225},
		{[]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.975, 9.775},
		{[]float64{3, 1, 2}, 0.5, 2},
		{[]float64{4}, 0.3, 4},
		{[]float64{1, 2}, 0, 1},
		{[]float64{1, 2}, 1, 2},
	}
	for _, c := range cases {
		got := Quantiles(c.values, c.p)[0]
		assert.InDelta(t, c.want, got, 1e-12, "values %v p %v", c.values, c.p)
	}
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}
