package model

import (
	"math"
	"time"
)

// PredictionResult is the per-sample output of a run. Bounds and StdDev come
// from the jackknife ensemble; Residual is Point minus Observed and is only
// meaningful when HasResidual is true. Missing inputs surface as NaN.
type PredictionResult struct {
	Sample      SampleRecord
	Point       float64
	FoldMean    float64
	Lower       float64
	Upper       float64
	StdDev      float64
	Residual    float64
	HasResidual bool
}

// Missing reports whether the point estimate could not be computed.
func (p PredictionResult) Missing() bool { return math.IsNaN(p.Point) }

// IntervalWidth returns Upper minus Lower.
func (p PredictionResult) IntervalWidth() float64 { return p.Upper - p.Lower }

// FitSummary aggregates prediction quality over rows with an observed value.
// Slope and Intercept describe the OLS line of predicted on observed.
type FitSummary struct {
	N         int     `json:"n"`
	RMSE      float64 `json:"rmse"`
	RSquared  float64 `json:"r_squared"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Bias      float64 `json:"bias"`
}

// Distribution summarises a set of values.
type Distribution struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Report is everything a single run produces.
type Report struct {
	RunID         string
	GeneratedAt   time.Time
	Results       []PredictionResult
	Fit           *FitSummary
	Folds         int
	Wavelengths   int
	Missing       int
	Predictions   Distribution
	IntervalWidth Distribution
}
