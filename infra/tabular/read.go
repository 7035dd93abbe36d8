package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/leafn/core/model"
)

// ReadCSV returns every record of a comma separated stream. Rows may have
// differing lengths; the parsers report shape errors themselves.
func ReadCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return dropBlank(records), nil
}

// ReadXLSX returns the rows of the named sheet, or of the first sheet when
// sheet is empty. Short rows are padded to the widest row.
func ReadXLSX(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	return sheetRows(f, sheet)
}

func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("xlsx has no sheets")
		}
		sheet = sheets[0]
	}
	// raw values; formatted text would round styled numbers
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	for i, r := range rows {
		if len(r) < width {
			rows[i] = append(r, make([]string, width-len(r))...)
		}
	}
	return dropBlank(rows), nil
}

func dropBlank(records [][]string) [][]string {
	out := records[:0]
	for _, rec := range records {
		blank := true
		for _, c := range rec {
			if strings.TrimSpace(c) != "" {
				blank = false
				break
			}
		}
		if !blank {
			out = append(out, rec)
		}
	}
	return out
}

// ReadFile loads a CSV or XLSX file, chosen by extension. Anything that is
// not .xlsx is read as CSV.
func ReadFile(path string) ([][]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(fh, "")
	}
	return ReadCSV(fh)
}

// LoadCoefficients reads a primary coefficient table from path.
func LoadCoefficients(path string, opts CoefficientOptions) (model.CoefficientTable, error) {
	records, err := ReadFile(path)
	if err != nil {
		return model.CoefficientTable{}, fmt.Errorf("coefficients: %w", err)
	}
	if opts.Source == "" {
		opts.Source = filepath.Base(path)
	}
	return ParseCoefficients(records, opts)
}

// LoadEnsemble reads a jackknife coefficient table from path.
func LoadEnsemble(path string, opts EnsembleOptions) (model.CoefficientEnsemble, error) {
	records, err := ReadFile(path)
	if err != nil {
		return model.CoefficientEnsemble{}, fmt.Errorf("ensemble: %w", err)
	}
	if opts.Source == "" {
		opts.Source = filepath.Base(path)
	}
	return ParseEnsemble(records, opts)
}

// LoadSpectra reads spectra and sample metadata from path.
func LoadSpectra(path string, opts SpectraOptions) (model.Dataset, error) {
	records, err := ReadFile(path)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("spectra: %w", err)
	}
	if opts.Source == "" {
		opts.Source = filepath.Base(path)
	}
	return ParseSpectra(records, opts)
}
