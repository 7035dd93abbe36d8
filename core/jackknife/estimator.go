package jackknife

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/leafn/core/model"
	"github.com/kilianp07/leafn/core/prediction"
)

// MinFolds is the smallest ensemble for which a standard deviation exists.
const MinFolds = 2

// DefaultLevel is the coverage of the percentile interval.
const DefaultLevel = 0.95

// Estimate holds the fold predictions and their per-row summaries. Folds is
// R×K and nil when there are no rows.
type Estimate struct {
	Folds  *mat.Dense
	Mean   []float64
	StdDev []float64
	Lower  []float64
	Upper  []float64
}

// Estimator applies every fold of an ensemble and reduces the results.
type Estimator struct {
	// Predictor computes a single fold; defaults to PointPredictor.
	Predictor prediction.Predictor
	// Transform is applied to each fold prediction before reduction.
	Transform prediction.BackTransform
	// Level is the interval coverage in (0,1); zero means DefaultLevel.
	Level float64
	// Workers bounds concurrent fold evaluation; zero means GOMAXPROCS.
	Workers int
}

// NewEstimator returns an Estimator with default settings.
func NewEstimator() Estimator {
	return Estimator{Predictor: prediction.PointPredictor{}, Transform: prediction.TransformNone, Level: DefaultLevel}
}

// Probabilities returns the lower and upper percentile probabilities.
func (e Estimator) Probabilities() (float64, float64) {
	level := e.Level
	if level == 0 {
		level = DefaultLevel
	}
	tail := (1 - level) / 2
	return tail, 1 - tail
}

// Estimate runs every fold of ens against spectra. Folds are evaluated
// concurrently, each writing its own column, so the result does not depend on
// scheduling order.
func (e Estimator) Estimate(ctx context.Context, spectra model.SpectralMatrix, ens model.CoefficientEnsemble) (Estimate, error) {
	k := ens.Folds()
	if k < MinFolds {
		return Estimate{}, &model.InsufficientEnsembleError{Folds: k, Need: MinFolds}
	}
	if e.Level < 0 || e.Level >= 1 {
		return Estimate{}, fmt.Errorf("interval level %v outside (0,1)", e.Level)
	}
	// Surface a domain mismatch once rather than per fold.
	x, err := spectra.Select(ens.Waves())
	if err != nil {
		return Estimate{}, err
	}
	r := x.Rows()
	if r == 0 {
		return Estimate{}, nil
	}
	pred := e.Predictor
	if pred == nil {
		pred = prediction.PointPredictor{}
	}
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	cols := make([][]float64, k)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for f := 0; f < k; f++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := pred.Predict(x, ens.Fold(f))
			if err != nil {
				return fmt.Errorf("fold %d: %w", f+1, err)
			}
			cols[f] = e.Transform.ApplyAll(p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Estimate{}, err
	}

	folds := mat.NewDense(r, k, nil)
	for f, col := range cols {
		folds.SetCol(f, col)
	}
	return e.reduce(folds), nil
}

// reduce derives mean, sample standard deviation and percentile bounds for
// every row of folds.
func (e Estimator) reduce(folds *mat.Dense) Estimate {
	r, _ := folds.Dims()
	pLo, pHi := e.Probabilities()
	est := Estimate{
		Folds:  folds,
		Mean:   make([]float64, r),
		StdDev: make([]float64, r),
		Lower:  make([]float64, r),
		Upper:  make([]float64, r),
	}
	for i := 0; i < r; i++ {
		row := mat.Row(nil, i, folds)
		if hasNaN(row) {
			nan := math.NaN()
			est.Mean[i], est.StdDev[i], est.Lower[i], est.Upper[i] = nan, nan, nan, nan
			continue
		}
		sort.Float64s(row)
		if row[0] == row[len(row)-1] {
			// Identical folds: avoid rounding noise from the mean.
			est.Mean[i], est.StdDev[i], est.Lower[i], est.Upper[i] = row[0], 0, row[0], row[0]
			continue
		}
		est.Mean[i], est.StdDev[i] = stat.MeanStdDev(row, nil)
		est.Lower[i] = Quantile(row, pLo)
		est.Upper[i] = Quantile(row, pHi)
	}
	return est
}

func hasNaN(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) {
			return true
		}
	}
	return false
}
