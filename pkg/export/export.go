package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/kilianp07/leafn/core/model"
)

// DateLayout formats sample dates in exported records.
const DateLayout = "2006-01-02"

// Header lists the CSV columns written by WriteCSV.
var Header = []string{
	"run_id", "sample_id", "date", "species", "observed",
	"prediction", "fold_mean", "lower", "upper", "std_dev", "residual",
}

// Record is the exported form of one prediction. Missing values are nil.
type Record struct {
	RunID      string   `json:"run_id"`
	SampleID   string   `json:"sample_id"`
	Date       string   `json:"date,omitempty"`
	Species    string   `json:"species,omitempty"`
	Observed   *float64 `json:"observed"`
	Prediction *float64 `json:"prediction"`
	FoldMean   *float64 `json:"fold_mean"`
	Lower      *float64 `json:"lower"`
	Upper      *float64 `json:"upper"`
	StdDev     *float64 `json:"std_dev"`
	Residual   *float64 `json:"residual"`
}

// NewRecord converts a prediction result for export.
func NewRecord(runID string, r model.PredictionResult) Record {
	rec := Record{
		RunID:      runID,
		SampleID:   r.Sample.ID,
		Species:    r.Sample.Species,
		Observed:   optional(r.Sample.Observed),
		Prediction: optional(r.Point),
		FoldMean:   optional(r.FoldMean),
		Lower:      optional(r.Lower),
		Upper:      optional(r.Upper),
		StdDev:     optional(r.StdDev),
	}
	if !r.Sample.Date.IsZero() {
		rec.Date = r.Sample.Date.Format(DateLayout)
	}
	if r.HasResidual {
		rec.Residual = optional(r.Residual)
	}
	return rec
}

// NewRecords converts every result of a run.
func NewRecords(runID string, results []model.PredictionResult) []Record {
	out := make([]Record, len(results))
	for i, r := range results {
		out[i] = NewRecord(runID, r)
	}
	return out
}

func optional(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func cell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// WriteCSV writes one row per result, in input order, with empty cells for
// missing values.
func WriteCSV(w io.Writer, runID string, results []model.PredictionResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range results {
		rec := NewRecord(runID, r)
		row := []string{
			rec.RunID,
			rec.SampleID,
			rec.Date,
			rec.Species,
			cell(rec.Observed),
			cell(rec.Prediction),
			cell(rec.FoldMean),
			cell(rec.Lower),
			cell(rec.Upper),
			cell(rec.StdDev),
			cell(rec.Residual),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the results of a run as a JSON array.
func WriteJSON(w io.Writer, runID string, results []model.PredictionResult) error {
	enc := json.NewEncoder(w)
	return enc.Encode(NewRecords(runID, results))
}

// Summary is the exported run summary.
type Summary struct {
	RunID         string             `json:"run_id"`
	GeneratedAt   time.Time          `json:"generated_at"`
	Samples       int                `json:"samples"`
	Missing       int                `json:"missing"`
	Folds         int                `json:"folds"`
	Wavelengths   int                `json:"wavelengths"`
	Fit           *model.FitSummary  `json:"fit"`
	Predictions   model.Distribution `json:"predictions"`
	IntervalWidth model.Distribution `json:"interval_width"`
}

// NewSummary extracts the summary part of a report.
func NewSummary(rep model.Report) Summary {
	return Summary{
		RunID:         rep.RunID,
		GeneratedAt:   rep.GeneratedAt.UTC(),
		Samples:       len(rep.Results),
		Missing:       rep.Missing,
		Folds:         rep.Folds,
		Wavelengths:   rep.Wavelengths,
		Fit:           rep.Fit,
		Predictions:   rep.Predictions,
		IntervalWidth: rep.IntervalWidth,
	}
}

// WriteSummaryJSON writes the fit summary and distributions of a report.
func WriteSummaryJSON(w io.Writer, rep model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewSummary(rep))
}
