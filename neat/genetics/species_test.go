package genetics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceCache_symmetric(t *testing.T) {
	opts := testOptions()
	rng := rand.New(rand.NewSource(5))
	a := CreateNew(0, 2, 1, opts.Weight(), opts.Bias(), counter(0), rng)
	b := CreateNew(1, 2, 1, opts.Weight(), opts.Bias(), counter(10), rng)

	cache := NewDistanceCache(opts)
	assert.Equal(t, cache.Distance(a, b), cache.Distance(b, a))
}

func TestSpeciate_everyGenomeAssignedExactlyOneSpecies(t *testing.T) {
	opts := testOptions()
	rng := rand.New(rand.NewSource(9))
	nextInnov := counter(0)

	population := make(map[int]*Genome, 6)
	for i := 0; i < 6; i++ {
		g := CreateNew(i, 2, 1, opts.Weight(), opts.Bias(), nextInnov, rng)
		f := rng.Float64()
		g.Fitness = &f
		population[i] = g
	}

	set := NewSpeciesSet(opts)
	set.Speciate(population, 0)

	seen := make(map[int]bool)
	for _, sp := range set.All() {
		require.NotEmpty(t, sp.Members)
		for gk := range sp.Members {
			assert.False(t, seen[gk], "genome %d assigned to more than one species", gk)
			seen[gk] = true
			sid, ok := set.SpeciesOf(gk)
			require.True(t, ok)
			assert.Equal(t, sp.Key, sid)
		}
	}
	assert.Len(t, seen, len(population))
}

func TestSpeciate_secondGenerationReusesRepresentatives(t *testing.T) {
	opts := testOptions()
	rng := rand.New(rand.NewSource(13))
	nextInnov := counter(0)

	population := make(map[int]*Genome, 4)
	for i := 0; i < 4; i++ {
		g := CreateNew(i, 2, 1, opts.Weight(), opts.Bias(), nextInnov, rng)
		f := float64(i)
		g.Fitness = &f
		population[i] = g
	}

	set := NewSpeciesSet(opts)
	set.Speciate(population, 0)
	firstSpeciesCount := len(set.All())

	set.Speciate(population, 1)
	assert.LessOrEqual(t, len(set.All()), firstSpeciesCount+len(population))
}
