package metrics

import (
	"errors"
	"math"

	coremetrics "github.com/kilianp07/leafn/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// IntervalBuckets are the histogram buckets of leafn_interval_width, in the
// unit of the predicted trait.
var IntervalBuckets = prometheus.ExponentialBuckets(0.01, 2, 10)

// PromSink records run outcomes in Prometheus metrics.
type PromSink struct {
	samples  *prometheus.CounterVec
	width    prometheus.Histogram
	rmse     prometheus.Gauge
	r2       prometheus.Gauge
	folds    prometheus.Gauge
	duration prometheus.Gauge
}

// NewPromSink registers run metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer, nil)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Labels are
// attached to every metric as constant labels.
func NewPromSinkWithRegistry(reg prometheus.Registerer, labels prometheus.Labels) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "leafn_samples_total",
			Help:        "Samples processed, by outcome",
			ConstLabels: labels,
		}, []string{"status"}),
		width: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "leafn_interval_width",
			Help:        "Width of the jackknife uncertainty interval per sample",
			Buckets:     IntervalBuckets,
			ConstLabels: labels,
		}),
		rmse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "leafn_fit_rmse",
			Help:        "Root mean squared error of the last evaluated run",
			ConstLabels: labels,
		}),
		r2: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "leafn_fit_r_squared",
			Help:        "Coefficient of determination of the last evaluated run",
			ConstLabels: labels,
		}),
		folds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "leafn_ensemble_folds",
			Help:        "Number of jackknife folds used by the last run",
			ConstLabels: labels,
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "leafn_run_duration_seconds",
			Help:        "Wall time of the last run",
			ConstLabels: labels,
		}),
	}

	var err error
	if s.samples, err = register(reg, s.samples); err != nil {
		return nil, err
	}
	if s.width, err = register(reg, s.width); err != nil {
		return nil, err
	}
	if s.rmse, err = register(reg, s.rmse); err != nil {
		return nil, err
	}
	if s.r2, err = register(reg, s.r2); err != nil {
		return nil, err
	}
	if s.folds, err = register(reg, s.folds); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when c was registered
// before, so repeated sink construction shares one set of series.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun updates the sample counters and the run gauges. Fit gauges keep
// their previous value when the run had no fit summary.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.samples.WithLabelValues("predicted").Add(float64(ev.Samples - ev.Missing))
	s.samples.WithLabelValues("missing").Add(float64(ev.Missing))
	s.folds.Set(float64(ev.Folds))
	s.duration.Set(ev.Duration.Seconds())
	if ev.Fit != nil {
		s.rmse.Set(ev.Fit.RMSE)
		s.r2.Set(ev.Fit.RSquared)
	}
	return nil
}

// RecordPredictions observes the interval width of every non-missing sample.
func (s *PromSink) RecordPredictions(ev coremetrics.PredictionEvent) error {
	for _, r := range ev.Results {
		if r.Missing() {
			continue
		}
		if w := r.IntervalWidth(); !math.IsNaN(w) {
			s.width.Observe(w)
		}
	}
	return nil
}

// WriteTextfile dumps the gatherer in the text exposition format to path,
// for node_exporter's textfile collector. A nil gatherer means the default
// registry.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return prometheus.WriteToTextfile(path, g)
}
