package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/leafn/core/metrics"
	"github.com/kilianp07/leafn/core/model"
	"github.com/kilianp07/leafn/infra/logger"
)

// InfluxConfig holds the connection settings of an InfluxSink.
type InfluxConfig struct {
	URL     string        `json:"url"`
	Token   string        `json:"token"`
	Org     string        `json:"org"`
	Bucket  string        `json:"bucket"`
	Timeout time.Duration `json:"timeout"`
}

// InfluxSink writes run summaries and per-sample predictions to an InfluxDB
// instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	timeout  time.Duration
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		timeout:  cfg.Timeout,
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), sink.timeout)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes one leafn_run point.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, runPoint(ev))
}

func runPoint(ev coremetrics.RunEvent) *write.Point {
	p := write.NewPointWithMeasurement("leafn_run").
		AddTag("run_id", ev.RunID).
		AddField("samples", ev.Samples).
		AddField("missing", ev.Missing).
		AddField("folds", ev.Folds).
		AddField("wavelengths", ev.Wavelengths).
		AddField("duration_ms", ev.Duration.Milliseconds())
	if ev.Fit != nil {
		p = p.AddField("n", ev.Fit.N).
			AddField("rmse", round4(ev.Fit.RMSE)).
			AddField("r2", round4(ev.Fit.RSquared)).
			AddField("bias", round4(ev.Fit.Bias))
	}
	if ev.IntervalWidth.N > 0 {
		p = p.AddField("interval_width_median", round4(ev.IntervalWidth.Median))
	}
	return p.SetTime(ev.Time)
}

// RecordPredictions writes one leafn_prediction point per sample with a
// point estimate. Samples are stamped with their acquisition date when known.
func (s *InfluxSink) RecordPredictions(ev coremetrics.PredictionEvent) error {
	points := make([]*write.Point, 0, len(ev.Results))
	for _, r := range ev.Results {
		if r.Missing() {
			continue
		}
		points = append(points, predictionPoint(ev, r))
	}
	if len(points) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, points...)
}

func predictionPoint(ev coremetrics.PredictionEvent, r model.PredictionResult) *write.Point {
	p := write.NewPointWithMeasurement("leafn_prediction").
		AddTag("run_id", ev.RunID).
		AddTag("sample_id", r.Sample.ID)
	if r.Sample.Species != "" {
		p = p.AddTag("species", r.Sample.Species)
	}
	p = p.AddField("prediction", round4(r.Point))
	if !math.IsNaN(r.StdDev) {
		p = p.AddField("fold_mean", round4(r.FoldMean)).
			AddField("lower", round4(r.Lower)).
			AddField("upper", round4(r.Upper)).
			AddField("std_dev", round4(r.StdDev))
	}
	if r.HasResidual {
		p = p.AddField("observed", round4(r.Sample.Observed)).
			AddField("residual", round4(r.Residual))
	}
	ts := ev.Time
	if !r.Sample.Date.IsZero() {
		ts = r.Sample.Date
	}
	return p.SetTime(ts)
}

// Close flushes and closes the underlying client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round4(f float64) float64 {
	return math.Round(f*1e4) / 1e4
}
