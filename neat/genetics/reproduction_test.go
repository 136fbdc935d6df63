package genetics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSpecies(key int, fitnessHistory []float64, lastImproved int, members map[int]*Genome) *Species {
	return &Species{
		Key:            key,
		Created:        0,
		LastImproved:   lastImproved,
		Representative: members[firstKey(members)],
		Members:        members,
		FitnessHistory: append([]float64(nil), fitnessHistory...),
	}
}

func firstKey(m map[int]*Genome) int {
	for k := range m {
		return k
	}
	return 0
}

func memberWithFitness(key int, fitness float64) *Genome {
	g := &Genome{Key: key, Inputs: map[int]NodeGene{}, Nodes: map[int]NodeGene{}, Connections: map[ConnKey]ConnectionGene{}, ConnsByInnovation: map[int]ConnKey{}}
	g.Fitness = &fitness
	return g
}

func TestDetectStagnation_stagnantUnlessElite(t *testing.T) {
	opts := testOptions()
	opts.MaxStagnation = 5
	opts.NumSurvivingEliteSpecies = 1
	r := NewReproduction(opts, 2, 1)

	stagnantSpecies := newTestSpecies(0, []float64{1, 1, 1, 1, 1, 1}, 0, map[int]*Genome{0: memberWithFitness(0, 1.0)})
	betterSpecies := newTestSpecies(1, nil, 5, map[int]*Genome{1: memberWithFitness(1, 10.0)})

	survivors := r.detectStagnation([]*Species{stagnantSpecies, betterSpecies}, 5, MeanSpeciesFitness)

	survivorKeys := make(map[int]bool)
	for _, e := range survivors {
		survivorKeys[e.species.Key] = true
	}
	assert.False(t, survivorKeys[0], "low-fitness stagnant species should be culled")
	assert.True(t, survivorKeys[1], "elite species must survive regardless of age")
}

func TestComputeSpawnAmounts_normalization(t *testing.T) {
	opts := testOptions()
	opts.PopulationSize = 20
	opts.MinSpeciesSize = 2
	r := NewReproduction(opts, 2, 1)

	species1 := newTestSpecies(0, nil, 0, map[int]*Genome{})
	for i := 0; i < 10; i++ {
		species1.Members[i] = memberWithFitness(i, 0.6)
	}
	species2 := newTestSpecies(1, nil, 0, map[int]*Genome{})
	for i := 10; i < 20; i++ {
		species2.Members[i] = memberWithFitness(i, 0.2)
	}
	species1.AdjustedFitness = 0.6
	species2.AdjustedFitness = 0.2

	entries := []stagnationEntry{{species: species1, fitness: 0.6}, {species: species2, fitness: 0.2}}
	spawn := r.computeSpawnAmounts(entries)

	assert.GreaterOrEqual(t, spawn[0], opts.MinSpeciesSize)
	assert.GreaterOrEqual(t, spawn[1], opts.MinSpeciesSize)
	assert.Greater(t, spawn[0], spawn[1])
}

func TestReproduce_fullCycle(t *testing.T) {
	opts := testOptions()
	opts.PopulationSize = 10
	opts.MinSpeciesSize = 2
	opts.MaxStagnation = 100
	opts.NumSurvivingEliteSpecies = 1

	rng := rand.New(rand.NewSource(21))
	r := NewReproduction(opts, 2, 1)
	population := r.CreateNewPopulation(2, 1, rng)
	for _, g := range population {
		f := rng.Float64()
		g.Fitness = &f
	}

	speciesSet := NewSpeciesSet(opts)
	speciesSet.Speciate(population, 0)

	newPopulation, err := r.Reproduce(speciesSet, 0, MeanSpeciesFitness, rng)
	require.NoError(t, err)
	assert.NotEmpty(t, newPopulation)

	for childID, ancestry := range r.Ancestors {
		assert.Contains(t, newPopulation, childID)
		assert.Contains(t, population, ancestry[0])
		assert.Contains(t, population, ancestry[1])
	}
}
