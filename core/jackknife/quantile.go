package jackknife

import (
	"math"
	"sort"
)

// Quantile returns the p-quantile of sorted using linear interpolation between
// order statistics (Hyndman and Fan type 7, h = (n-1)p). sorted must be in
// increasing order and contain no NaN.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	switch {
	case n == 0 || math.IsNaN(p):
		return math.NaN()
	case p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[n-1]
	}
	h := float64(n-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= n {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Quantiles sorts a copy of values and evaluates every probability in ps.
func Quantiles(values []float64, ps ...float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = Quantile(sorted, p)
	}
	return out
}
