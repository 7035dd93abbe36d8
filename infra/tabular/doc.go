// Package tabular reads coefficient tables, jackknife ensembles and spectra
// from delimited text (CSV) or spreadsheet (XLSX) sources and converts them
// into validated core/model values. Parsing is strict: a malformed cell or a
// wavelength domain that does not match the expected window is a
// model.FormatError carrying the file, row and column.
package tabular
