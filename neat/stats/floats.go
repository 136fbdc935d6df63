// Package stats provides descriptive statistics over slices of float64,
// used by reproduction to summarize per-species and per-generation
// fitness distributions.
package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Floats is a slice of float64 with descriptive-statistics methods.
type Floats []float64

// Min returns the smallest value in the slice.
func (x Floats) Min() float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return floats.Min(x)
}

// Max returns the greatest value in the slice.
func (x Floats) Max() float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return floats.Max(x)
}

// Sum returns the total of the values in the slice.
func (x Floats) Sum() float64 {
	return floats.Sum(x)
}

// Mean returns the average of the values in the slice.
func (x Floats) Mean() float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}
