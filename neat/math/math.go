// Package math defines standard mathematical primitives used by the NEAT
// algorithm as well as utility functions shared across genome mutation,
// reproduction and the microgrid simulator.
package math

import (
	"math/rand"
)

// RandSign returns a random positive or negative one (1 or -1) drawn from
// the given source, to randomize the sign of a sampled value. Every caller
// supplies its own *rand.Rand rather than relying on the package-global
// generator, so that concurrent fitness evaluations stay reproducible per
// worker.
func RandSign(rng *rand.Rand) int32 {
	v := rng.Int()
	if (v % 2) == 0 {
		return -1
	}
	return 1
}

// SingleRouletteThrow performs a single throw onto a roulette wheel where
// the wheel's space is unevenly divided. The probability that a segment
// will be selected is given by that segment's value in the probabilities
// array. Returns segment index, or -1 if the throw lands on no segment
// (which happens when a value is NaN); all-zero values select index 0.
func SingleRouletteThrow(rng *rand.Rand, probabilities []float64) int {
	total := 0.0
	for _, v := range probabilities {
		total += v
	}

	throwValue := rng.Float64() * total

	accumulator := 0.0
	for i, v := range probabilities {
		accumulator += v
		if throwValue <= accumulator {
			return i
		}
	}
	return -1
}

// Clip restricts x to the closed interval [lo, hi].
func Clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
