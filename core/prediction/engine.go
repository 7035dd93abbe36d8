package prediction

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/leafn/core/model"
)

// Predictor produces one estimate per row of spectra.
type Predictor interface {
	Predict(spectra model.SpectralMatrix, coefs model.CoefficientTable) ([]float64, error)
}

// PointPredictor applies a single CoefficientTable to a SpectralMatrix.
type PointPredictor struct{}

// Predict restricts spectra to the model wavelengths and returns
// spectra·coefs + intercept for every row. Rows with a missing reflectance in
// the model domain yield NaN; the output always has one value per row.
func (PointPredictor) Predict(spectra model.SpectralMatrix, coefs model.CoefficientTable) ([]float64, error) {
	x, err := spectra.Select(coefs.Waves())
	if err != nil {
		return nil, err
	}
	rows := x.Rows()
	out := make([]float64, rows)
	if rows == 0 {
		return out, nil
	}
	var y mat.VecDense
	y.MulVec(x.Matrix(), coefs.Vector())
	missing := x.MissingRows()
	b := coefs.Intercept()
	for i := range out {
		if missing[i] {
			out[i] = math.NaN()
			continue
		}
		out[i] = y.AtVec(i) + b
	}
	return out, nil
}
