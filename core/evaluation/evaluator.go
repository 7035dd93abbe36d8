// Package evaluation compares predictions against observed reference values.
package evaluation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/leafn/core/model"
)

// MinObservations is the number of paired rows needed for a fit summary.
const MinObservations = 2

// Residuals returns predicted minus observed per row, NaN where either side is
// missing.
func Residuals(predicted, observed []float64) ([]float64, error) {
	if len(predicted) != len(observed) {
		return nil, model.Formatf("fit evaluation", "%d predictions but %d observations", len(predicted), len(observed))
	}
	out := make([]float64, len(predicted))
	floats.SubTo(out, predicted, observed)
	return out, nil
}

// Evaluate computes RMSE and R² over rows where both values are present.
// R² comes from an ordinary least-squares fit of predicted on observed, so it
// equals the squared correlation rather than agreement with the 1:1 line.
func Evaluate(predicted, observed []float64) (model.FitSummary, error) {
	res, err := Residuals(predicted, observed)
	if err != nil {
		return model.FitSummary{}, err
	}
	var p, o, r []float64
	for i := range res {
		if math.IsNaN(res[i]) {
			continue
		}
		p = append(p, predicted[i])
		o = append(o, observed[i])
		r = append(r, res[i])
	}
	n := len(r)
	if n < MinObservations {
		return model.FitSummary{}, &model.InsufficientDataError{Have: n, Need: MinObservations}
	}
	if stat.Variance(o, nil) == 0 || stat.Variance(p, nil) == 0 {
		return model.FitSummary{}, &model.InsufficientDataError{Have: n, Need: MinObservations, Reason: "constant values leave R² undefined"}
	}

	rmse := math.Sqrt(floats.Dot(r, r) / float64(n))
	alpha, beta := stat.LinearRegression(o, p, nil, false)
	r2 := stat.RSquared(o, p, nil, alpha, beta)
	if math.IsNaN(r2) {
		return model.FitSummary{}, fmt.Errorf("fit evaluation: R² is not a number")
	}
	return model.FitSummary{
		N:         n,
		RMSE:      rmse,
		RSquared:  r2,
		Slope:     beta,
		Intercept: alpha,
		Bias:      stat.Mean(r, nil),
	}, nil
}
