package evaluation

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/kilianp07/leafn/core/model"
)

// Describe summarises the non-missing values. An input without any finite
// value yields a zero Distribution.
func Describe(values []float64) model.Distribution {
	data := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			data = append(data, v)
		}
	}
	if data.Len() == 0 {
		return model.Distribution{}
	}
	mean, _ := data.Mean()
	median, _ := data.Median()
	lo, _ := data.Min()
	hi, _ := data.Max()
	return model.Distribution{N: data.Len(), Mean: mean, Median: median, Min: lo, Max: hi}
}
