package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kilianp07/leafn/config"
	"github.com/kilianp07/leafn/core/engine"
	coremetrics "github.com/kilianp07/leafn/core/metrics"
	"github.com/kilianp07/leafn/core/model"
	"github.com/kilianp07/leafn/infra/logger"
	"github.com/kilianp07/leafn/infra/metrics"
	"github.com/kilianp07/leafn/infra/tabular"
	"github.com/kilianp07/leafn/pkg/export"
)

// Service loads the configured tables, runs the engine and delivers the
// results to the outputs and metrics sinks.
type Service struct {
	cfg    *config.Config
	engine *engine.Engine
	sink   coremetrics.MetricsSink
	log    logger.Logger
	stdout io.Writer
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}
	logg := logger.New("service")
	eng := engine.New(engine.Config{
		Transform: cfg.Model.Transform(),
		Level:     cfg.Model.IntervalLevel,
		Workers:   cfg.Engine.Workers,
	}, logger.New("engine"))
	return &Service{cfg: cfg, engine: eng, sink: sink, log: logg, stdout: os.Stdout}, nil
}

// Models holds the loaded coefficient tables.
type Models struct {
	Primary  model.CoefficientTable
	Ensemble model.CoefficientEnsemble
}

// LoadModels reads the primary and jackknife coefficient tables. When a
// window is configured both tables must cover exactly that window, and the
// ensemble must share the primary model's wavelengths.
func LoadModels(cfg config.ModelConfig) (Models, error) {
	window := cfg.WaveRange()
	primary, err := tabular.LoadCoefficients(cfg.Coefficients, tabular.CoefficientOptions{Expected: window})
	if err != nil {
		return Models{}, err
	}
	ens, err := tabular.LoadEnsemble(cfg.Jackknife, tabular.EnsembleOptions{Waves: primary.Waves(), Expected: window})
	if err != nil {
		return Models{}, err
	}
	if !ens.SameDomain(primary) {
		return Models{}, model.Formatf(cfg.Jackknife, "ensemble domain %s differs from primary model %s",
			ens.Domain(), primary.Domain())
	}
	return Models{Primary: primary, Ensemble: ens}, nil
}

// Run executes one prediction run and returns its report.
func (s *Service) Run(ctx context.Context) (model.Report, error) {
	start := time.Now()
	models, err := LoadModels(s.cfg.Model)
	if err != nil {
		return model.Report{}, err
	}
	ds, err := tabular.LoadSpectra(s.cfg.Input.Spectra, s.cfg.Input.Options())
	if err != nil {
		return model.Report{}, err
	}
	s.log.Infof("loaded %d samples over %s", ds.Len(), ds.Spectra().Domain())

	rep, err := s.engine.Run(ctx, engine.Inputs{
		Dataset:  ds,
		Model:    models.Primary,
		Ensemble: models.Ensemble,
		Window:   s.cfg.Model.WaveRange(),
	})
	if err != nil {
		return model.Report{}, fmt.Errorf("run: %w", err)
	}
	if err := s.writeOutputs(rep); err != nil {
		return rep, err
	}
	s.record(rep, time.Since(start))
	if rep.Fit != nil {
		s.log.Infof("run %s: %d samples, rmse %.4f, r2 %.4f", rep.RunID, len(rep.Results), rep.Fit.RMSE, rep.Fit.RSquared)
	} else {
		s.log.Infof("run %s: %d samples, no fit summary", rep.RunID, len(rep.Results))
	}
	return rep, nil
}

func (s *Service) writeOutputs(rep model.Report) error {
	out := s.cfg.Output
	write := func(w io.Writer) error {
		if out.Format == config.FormatJSON {
			return export.WriteJSON(w, rep.RunID, rep.Results)
		}
		return export.WriteCSV(w, rep.RunID, rep.Results)
	}
	if out.Stdout() {
		if err := write(s.stdout); err != nil {
			return fmt.Errorf("write records: %w", err)
		}
	} else if err := writeOutput(out.Path, write); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	if out.SummaryPath == "" {
		return nil
	}
	if err := writeOutput(out.SummaryPath, func(w io.Writer) error { return export.WriteSummaryJSON(w, rep) }); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// writeOutput creates path, runs write and reports the close error, which is
// where a failed flush surfaces.
func writeOutput(path string, write func(io.Writer) error) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}

// record forwards the run to the metrics sinks. Sink failures are logged and
// never fail the run.
func (s *Service) record(rep model.Report, took time.Duration) {
	if err := s.sink.RecordRun(coremetrics.NewRunEvent(rep, took)); err != nil {
		s.log.Errorf("record run: %v", err)
	}
	if rec, ok := s.sink.(coremetrics.PredictionRecorder); ok {
		ev := coremetrics.PredictionEvent{RunID: rep.RunID, Time: rep.GeneratedAt, Results: rep.Results}
		if err := rec.RecordPredictions(ev); err != nil {
			s.log.Errorf("record predictions: %v", err)
		}
	}
	if path := s.cfg.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(path, nil); err != nil {
			s.log.Errorf("prometheus textfile: %v", err)
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error { return coremetrics.Close(s.sink) }
