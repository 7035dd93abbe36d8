package prediction

import (
	"fmt"
	"strings"
)

// BackTransform maps predictions from model space to trait units.
type BackTransform string

const (
	// TransformNone leaves predictions unchanged.
	TransformNone BackTransform = "none"
	// TransformSquare undoes a square-root transform of the training response.
	TransformSquare BackTransform = "square"
)

// ParseBackTransform converts a configuration value. An empty string means none.
func ParseBackTransform(s string) (BackTransform, error) {
	switch BackTransform(strings.ToLower(strings.TrimSpace(s))) {
	case "", TransformNone:
		return TransformNone, nil
	case TransformSquare:
		return TransformSquare, nil
	default:
		return "", fmt.Errorf("unknown back transform %q", s)
	}
}

// Apply maps a single value. NaN stays NaN.
func (t BackTransform) Apply(v float64) float64 {
	switch t {
	case TransformSquare:
		return v * v
	default:
		return v
	}
}

// ApplyAll returns a transformed copy of values.
func (t BackTransform) ApplyAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = t.Apply(v)
	}
	return out
}

// Identity reports whether the transform leaves values unchanged.
func (t BackTransform) Identity() bool { return t == "" || t == TransformNone }
