package evolution

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborian/neatgrid/neat"
	"github.com/arborian/neatgrid/neat/genetics"
)

func testOptions() *neat.Options {
	return &neat.Options{
		PopulationSize:                20,
		ReproSurvivalRate:             0.2,
		MinSpeciesSize:                2,
		MaxStagnation:                 15,
		NumSurvivingEliteSpecies:      2,
		CompatibilityThreshold:        3.0,
		DisjointCoefficient:           1.0,
		WeightCoefficient:             0.5,
		KeepDisabledProbability:       0.75,
		NodeMutationProbability:       0.1,
		ConnectionMutationProbability: 0.1,
		AdjustWeightProb:              0.8,
		ReplaceWeightProb:             0.1,
		AdjustBiasProb:                0.7,
		ReplaceBiasProb:               0.1,
		WeightInitMean:                0.0,
		WeightInitStdev:               1.0,
		WeightMaxAdjust:               0.5,
		WeightMinVal:                  -4.0,
		WeightMaxVal:                  4.0,
		BiasInitMean:                  0.0,
		BiasInitStdev:                 1.0,
		BiasMaxAdjust:                 0.5,
		BiasMinVal:                    -4.0,
		BiasMaxVal:                    4.0,
	}
}

func TestEvolution_runsUntilGoalOrGenerationLimit(t *testing.T) {
	opts := testOptions()
	rng := rand.New(rand.NewSource(1))

	evo, err := NewEvolution(opts.NeatContext(), 2, 1, rng)
	require.NoError(t, err)

	evalCount := 0
	fitnessFn := func(population map[int]*genetics.Genome) {
		evalCount++
		for _, g := range population {
			f := rng.Float64()
			g.Fitness = &f
		}
	}

	best, gen, err := evo.Run(fitnessFn, 2.0, 5, genetics.MeanSpeciesFitness, rng)
	require.NoError(t, err)
	assert.Equal(t, 5, gen)
	assert.NotNil(t, best)
	assert.Equal(t, 5, evalCount)
}

func TestEvolution_stopsAtFitnessGoal(t *testing.T) {
	opts := testOptions()
	rng := rand.New(rand.NewSource(2))

	evo, err := NewEvolution(opts.NeatContext(), 2, 1, rng)
	require.NoError(t, err)

	fitnessFn := func(population map[int]*genetics.Genome) {
		for _, g := range population {
			f := 100.0
			g.Fitness = &f
		}
	}

	best, gen, err := evo.Run(fitnessFn, 1.0, 10, genetics.MeanSpeciesFitness, rng)
	require.NoError(t, err)
	assert.Equal(t, 0, gen)
	require.NotNil(t, best)
	assert.Equal(t, 100.0, *best.Fitness)
}

func TestNewEvolution_missingOptionsInContext(t *testing.T) {
	rng := rand.New(rand.NewSource(4))

	_, err := NewEvolution(context.Background(), 2, 1, rng)
	require.ErrorIs(t, err, neat.ErrNEATOptionsNotFound)
}

func TestEvolution_missingFitnessIsFatal(t *testing.T) {
	opts := testOptions()
	rng := rand.New(rand.NewSource(3))

	evo, err := NewEvolution(opts.NeatContext(), 2, 1, rng)
	require.NoError(t, err)

	fitnessFn := func(population map[int]*genetics.Genome) {}

	_, _, err = evo.Run(fitnessFn, 1.0, 1, genetics.MeanSpeciesFitness, rng)
	assert.Error(t, err)
}
