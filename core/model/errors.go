package model

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat matches any FormatError.
	ErrFormat = errors.New("malformed table")
	// ErrDomainMismatch matches any DomainMismatchError.
	ErrDomainMismatch = errors.New("wavelength domain mismatch")
	// ErrInsufficientEnsemble matches any InsufficientEnsembleError.
	ErrInsufficientEnsemble = errors.New("insufficient ensemble")
	// ErrInsufficientData matches any InsufficientDataError.
	ErrInsufficientData = errors.New("insufficient data")
)

// FormatError reports a malformed or incomplete coefficient or spectral table.
// Row and Column are 1-based when known and zero otherwise.
type FormatError struct {
	Source string
	Row    int
	Column int
	Msg    string
}

func (e *FormatError) Error() string {
	loc := e.Source
	if loc == "" {
		loc = "table"
	}
	switch {
	case e.Row > 0 && e.Column > 0:
		loc = fmt.Sprintf("%s row %d column %d", loc, e.Row, e.Column)
	case e.Row > 0:
		loc = fmt.Sprintf("%s row %d", loc, e.Row)
	}
	return fmt.Sprintf("%s: %s", loc, e.Msg)
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// Formatf builds a FormatError without location information.
func Formatf(source, format string, args ...any) *FormatError {
	return &FormatError{Source: source, Msg: fmt.Sprintf(format, args...)}
}

// DomainMismatchError reports spectra whose wavelength columns do not cover the
// domain required by a model.
type DomainMismatchError struct {
	Required WaveRange
	Actual   WaveRange
	Missing  []int
}

func (e *DomainMismatchError) Error() string {
	msg := fmt.Sprintf("model requires %s, spectra provide %s", e.Required, e.Actual)
	if n := len(e.Missing); n > 0 {
		if n > 5 {
			msg += fmt.Sprintf(" (%d wavelengths missing, first %v)", n, e.Missing[:5])
		} else {
			msg += fmt.Sprintf(" (missing %v)", e.Missing)
		}
	}
	return msg
}

// Is reports whether target is ErrDomainMismatch.
func (e *DomainMismatchError) Is(target error) bool { return target == ErrDomainMismatch }

// InsufficientEnsembleError is returned when an ensemble has too few folds to
// derive a standard deviation.
type InsufficientEnsembleError struct {
	Folds int
	Need  int
}

func (e *InsufficientEnsembleError) Error() string {
	return fmt.Sprintf("ensemble has %d folds, need at least %d", e.Folds, e.Need)
}

// Is reports whether target is ErrInsufficientEnsemble.
func (e *InsufficientEnsembleError) Is(target error) bool { return target == ErrInsufficientEnsemble }

// InsufficientDataError is returned when too few observed values are available
// to evaluate a fit.
type InsufficientDataError struct {
	Have   int
	Need   int
	Reason string
}

func (e *InsufficientDataError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("fit evaluation: %s (%d usable rows)", e.Reason, e.Have)
	}
	return fmt.Sprintf("fit evaluation: %d usable rows, need at least %d", e.Have, e.Need)
}

// Is reports whether target is ErrInsufficientData.
func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }
