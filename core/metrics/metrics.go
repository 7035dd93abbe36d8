package metrics

import (
	"io"
	"time"

	"github.com/kilianp07/leafn/core/model"
)

// RunEvent summarises a completed prediction run.
type RunEvent struct {
	RunID         string
	Time          time.Time
	Duration      time.Duration
	Samples       int
	Missing       int
	Folds         int
	Wavelengths   int
	Fit           *model.FitSummary
	Predictions   model.Distribution
	IntervalWidth model.Distribution
}

// NewRunEvent derives a RunEvent from a report.
func NewRunEvent(rep model.Report, took time.Duration) RunEvent {
	return RunEvent{
		RunID:         rep.RunID,
		Time:          rep.GeneratedAt,
		Duration:      took,
		Samples:       len(rep.Results),
		Missing:       rep.Missing,
		Folds:         rep.Folds,
		Wavelengths:   rep.Wavelengths,
		Fit:           rep.Fit,
		Predictions:   rep.Predictions,
		IntervalWidth: rep.IntervalWidth,
	}
}

// MetricsSink records run summaries.
type MetricsSink interface {
	RecordRun(ev RunEvent) error
}

// PredictionEvent carries the per-sample results of a run.
type PredictionEvent struct {
	RunID   string
	Time    time.Time
	Results []model.PredictionResult
}

// PredictionRecorder is implemented by sinks that store per-sample results.
type PredictionRecorder interface {
	RecordPredictions(ev PredictionEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error                { return nil }
func (NopSink) RecordPredictions(PredictionEvent) error { return nil }

// Close releases sink resources if the sink holds any.
func Close(s MetricsSink) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
