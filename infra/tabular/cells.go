package tabular

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// DefaultMissing lists the cell values read as missing reflectance or
// observation values.
var DefaultMissing = []string{"", "NA", "N/A", "NaN", "nan", "null"}

// DefaultWavePrefixes are the label prefixes accepted in front of a
// wavelength. Matching ignores case.
var DefaultWavePrefixes = []string{"X", "Wave_", "Wave", "WL_", "Band_", "nm"}

// ParseWave extracts an integer wavelength from a column label such as
// "500", "Wave_500", "X500" or "500nm".
func ParseWave(label string) (int, bool) {
	return ParseWaveWith(label, DefaultWavePrefixes)
}

// ParseWaveWith accepts a bare integer, or one of prefixes followed by an
// integer, with an optional "nm" suffix. Other labels such as "Plot2" are not
// wavelengths.
func ParseWaveWith(label string, prefixes []string) (int, bool) {
	s := strings.TrimSpace(strings.Trim(strings.TrimSpace(label), `"'`))
	s = strings.TrimSpace(strings.TrimSuffix(strings.ToLower(s), "nm"))
	if w, ok := atoiWave(s); ok {
		return w, true
	}
	for _, p := range prefixes {
		p = strings.ToLower(p)
		if p != "" && strings.HasPrefix(s, p) {
			if w, ok := atoiWave(s[len(p):]); ok {
				return w, true
			}
		}
	}
	return 0, false
}

func atoiWave(s string) (int, bool) {
	if s == "" || strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
		return 0, false
	}
	w, err := strconv.Atoi(s)
	if err != nil || w <= 0 {
		return 0, false
	}
	return w, true
}

func parseNumber(cell string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

type missingSet map[string]struct{}

func newMissingSet(tokens []string) missingSet {
	if tokens == nil {
		tokens = DefaultMissing
	}
	m := make(missingSet, len(tokens)+1)
	m[""] = struct{}{}
	for _, t := range tokens {
		m[strings.TrimSpace(t)] = struct{}{}
	}
	return m
}

func (m missingSet) has(cell string) bool {
	_, ok := m[strings.TrimSpace(cell)]
	return ok
}

// parseOptional reads a numeric cell where missing tokens become NaN.
func (m missingSet) parseOptional(cell string) (float64, bool) {
	if m.has(cell) {
		return math.NaN(), true
	}
	return parseNumber(cell)
}
