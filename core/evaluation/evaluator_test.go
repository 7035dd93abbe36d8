package evaluation

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/leafn/core/model"
)

func TestEvaluate_PerfectFit(t *testing.T) {
	v := []float64{1.2, 2.5, 1.9, 3.3, 2.2}
	fit, err := Evaluate(v, v)
	require.NoError(t, err)
	assert.Equal(t, 0.0, fit.RMSE)
	assert.InDelta(t, 1.0, fit.RSquared, 1e-12)
	assert.InDelta(t, 1.0, fit.Slope, 1e-12)
	assert.Equal(t, 5, fit.N)
}

func TestEvaluate_KnownValues(t *testing.T) {
	pred := []float64{1.1, 1.9, 3.2, 3.8}
	obs := []float64{1, 2, 3, 4}
	fit, err := Evaluate(pred, obs)
	require.NoError(t, err)
	// residuals 0.1,-0.1,0.2,-0.2
	assert.InDelta(t, math.Sqrt(0.1/4), fit.RMSE, 1e-12)
	assert.InDelta(t, 0.0, fit.Bias, 1e-12)
	assert.Greater(t, fit.RSquared, 0.95)
	assert.LessOrEqual(t, fit.RSquared, 1.0)
}

func TestEvaluate_ShiftInvariance(t *testing.T) {
	pred := []float64{1.1, 1.7, 3.4, 3.9, 5.3}
	obs := []float64{1, 2, 3, 4, 5}
	base, err := Evaluate(pred, obs)
	require.NoError(t, err)

	const c = 12.5
	sp := make([]float64, len(pred))
	so := make([]float64, len(obs))
	for i := range pred {
		sp[i] = pred[i] + c
		so[i] = obs[i] + c
	}
	shifted, err := Evaluate(sp, so)
	require.NoError(t, err)
	assert.InDelta(t, base.RSquared, shifted.RSquared, 1e-9)
	assert.InDelta(t, base.RMSE, shifted.RMSE, 1e-9)
}

func TestEvaluate_ExcludesMissing(t *testing.T) {
	nan := math.NaN()
	pred := []float64{1, 2, nan, 4, 5}
	obs := []float64{1, 2, 3, nan, 6}
	fit, err := Evaluate(pred, obs)
	require.NoError(t, err)
	assert.Equal(t, 3, fit.N)
	assert.InDelta(t, math.Sqrt(1.0/3), fit.RMSE, 1e-12)
}

func TestEvaluate_InsufficientData(t *testing.T) {
	nan := math.NaN()
	_, err := Evaluate([]float64{1, 2, 3}, []float64{1, nan, nan})
	var ide *model.InsufficientDataError
	require.True(t, errors.As(err, &ide), "got %v", err)
	assert.Equal(t, 1, ide.Have)

	_, err = Evaluate([]float64{1, 2, 3}, []float64{2, 2, 2})
	assert.ErrorIs(t, err, model.ErrInsufficientData)
}

func TestEvaluate_LengthMismatch(t *testing.T) {
	_, err := Evaluate([]float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, model.ErrFormat)
}

func TestResiduals(t *testing.T) {
	r, err := Residuals([]float64{2, 3}, []float64{1, math.NaN()})
	require.NoError(t, err)
	assert.Equal(t, 1.0, r[0])
	assert.True(t, math.IsNaN(r[1]))
}

func TestDescribe(t *testing.T) {
	d := Describe([]float64{3, math.NaN(), 1, 2, math.Inf(1)})
	assert.Equal(t, model.Distribution{N: 3, Mean: 2, Median: 2, Min: 1, Max: 3}, d)
	assert.Equal(t, model.Distribution{}, Describe([]float64{math.NaN()}))
}
