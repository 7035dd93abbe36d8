// Package engine combines point prediction, jackknife uncertainty and fit
// evaluation into a single per-sample report.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/leafn/core/evaluation"
	"github.com/kilianp07/leafn/core/jackknife"
	"github.com/kilianp07/leafn/core/logger"
	"github.com/kilianp07/leafn/core/model"
	"github.com/kilianp07/leafn/core/prediction"
)

// Config tunes a run.
type Config struct {
	// Transform maps predictions from model space to trait units.
	Transform prediction.BackTransform
	// Level is the jackknife interval coverage, default 0.95.
	Level float64
	// Workers bounds fold-parallel evaluation.
	Workers int
}

// Inputs are the already-parsed tables for one run.
type Inputs struct {
	RunID    string
	Dataset  model.Dataset
	Model    model.CoefficientTable
	Ensemble model.CoefficientEnsemble
	// Window optionally restricts the spectra before prediction.
	Window *model.WaveRange
}

// Engine runs the prediction pipeline. It holds no per-run state and may be
// reused.
type Engine struct {
	predictor prediction.Predictor
	estimator jackknife.Estimator
	transform prediction.BackTransform
	log       logger.Logger
	now       func() time.Time
}

// New returns an Engine. A nil logger discards output.
func New(cfg Config, log logger.Logger) *Engine {
	if log == nil {
		log = nopLogger{}
	}
	est := jackknife.NewEstimator()
	est.Transform = cfg.Transform
	est.Workers = cfg.Workers
	if cfg.Level != 0 {
		est.Level = cfg.Level
	}
	return &Engine{
		predictor: prediction.PointPredictor{},
		estimator: est,
		transform: cfg.Transform,
		log:       log,
		now:       time.Now,
	}
}

// Run produces one PredictionResult per sample, in dataset order. A missing
// fit summary (too few observed values) is not an error: Report.Fit is nil.
func (e *Engine) Run(ctx context.Context, in Inputs) (model.Report, error) {
	runID := in.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	spectra := in.Dataset.Spectra()
	if in.Window != nil {
		w, err := spectra.Window(*in.Window)
		if err != nil {
			return model.Report{}, fmt.Errorf("apply window %s: %w", *in.Window, err)
		}
		spectra = w
	}
	if out := spectra.OutOfRange(); out > 0 {
		e.log.Warnf("%d reflectance values outside [0,1]; check reflectance scaling", out)
	}

	raw, err := e.predictor.Predict(spectra, in.Model)
	if err != nil {
		return model.Report{}, fmt.Errorf("point prediction: %w", err)
	}
	point := e.transform.ApplyAll(raw)

	est, err := e.estimator.Estimate(ctx, spectra, in.Ensemble)
	if err != nil {
		return model.Report{}, fmt.Errorf("jackknife: %w", err)
	}

	samples := in.Dataset.Samples()
	observed := in.Dataset.Observed()
	residuals, err := evaluation.Residuals(point, observed)
	if err != nil {
		return model.Report{}, err
	}

	rep := model.Report{
		RunID:       runID,
		GeneratedAt: e.now().UTC(),
		Results:     make([]model.PredictionResult, len(samples)),
		Folds:       in.Ensemble.Folds(),
		Wavelengths: in.Model.Len(),
	}
	for i, s := range samples {
		r := model.PredictionResult{
			Sample:   s,
			Point:    point[i],
			FoldMean: math.NaN(),
			Lower:    math.NaN(),
			Upper:    math.NaN(),
			StdDev:   math.NaN(),
			Residual: residuals[i],
		}
		if est.Folds != nil {
			r.FoldMean, r.Lower, r.Upper, r.StdDev = est.Mean[i], est.Lower[i], est.Upper[i], est.StdDev[i]
		}
		r.HasResidual = !math.IsNaN(r.Residual)
		if r.Missing() {
			rep.Missing++
		}
		rep.Results[i] = r
	}

	fit, err := evaluation.Evaluate(point, observed)
	switch {
	case err == nil:
		rep.Fit = &fit
		e.log.Infof("fit over %d samples: rmse=%.4f r2=%.4f", fit.N, fit.RMSE, fit.RSquared)
	case errors.Is(err, model.ErrInsufficientData):
		e.log.Warnf("no fit summary: %v", err)
	default:
		return model.Report{}, err
	}

	widths := make([]float64, len(rep.Results))
	for i, r := range rep.Results {
		widths[i] = r.IntervalWidth()
	}
	rep.Predictions = evaluation.Describe(point)
	rep.IntervalWidth = evaluation.Describe(widths)
	e.log.Debugw("run complete", map[string]any{
		"run_id":  runID,
		"samples": len(rep.Results),
		"missing": rep.Missing,
		"folds":   rep.Folds,
	})
	return rep, nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
