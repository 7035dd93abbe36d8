package model

import "fmt"

// WaveRange is an inclusive range of integer wavelengths in nanometers.
type WaveRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r WaveRange) String() string { return fmt.Sprintf("[%d,%d] nm", r.Start, r.End) }

// Len returns the number of wavelengths in the range.
func (r WaveRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Contains reports whether w lies inside the range.
func (r WaveRange) Contains(w int) bool { return w >= r.Start && w <= r.End }

// Waves enumerates the range in increasing order.
func (r WaveRange) Waves() []int {
	out := make([]int, 0, r.Len())
	for w := r.Start; w <= r.End; w++ {
		out = append(out, w)
	}
	return out
}

// Validate checks that the range is non-empty and positive.
func (r WaveRange) Validate() error {
	if r.Start <= 0 || r.End <= 0 {
		return fmt.Errorf("wavelength range %s must be positive", r)
	}
	if r.End < r.Start {
		return fmt.Errorf("wavelength range %s is empty", r)
	}
	return nil
}

// rangeOf returns the span covered by a sorted wavelength slice.
func rangeOf(waves []int) WaveRange {
	if len(waves) == 0 {
		return WaveRange{}
	}
	return WaveRange{Start: waves[0], End: waves[len(waves)-1]}
}

// checkIncreasing verifies that waves are positive and strictly increasing.
func checkIncreasing(source string, waves []int) error {
	for i, w := range waves {
		if w <= 0 {
			return Formatf(source, "wavelength %d at position %d is not positive", w, i+1)
		}
		if i > 0 && w <= waves[i-1] {
			return Formatf(source, "wavelengths must be strictly increasing: %d follows %d", w, waves[i-1])
		}
	}
	return nil
}

func contiguous(waves []int) bool {
	for i := 1; i < len(waves); i++ {
		if waves[i] != waves[i-1]+1 {
			return false
		}
	}
	return true
}

func equalWaves(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
