// Package evolution drives the generation loop: evaluate fitness,
// snapshot state, check the stopping goal, then reproduce and
// speciate for the next generation.
package evolution

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/arborian/neatgrid/neat"
	"github.com/arborian/neatgrid/neat/genetics"
)

// FitnessFunc evaluates an entire population and must assign a
// non-nil Fitness to every genome before returning. Implementations
// may evaluate genomes concurrently; ordering is unconstrained.
type FitnessFunc func(population map[int]*genetics.Genome)

// GenerationSnapshot captures the state of one completed generation for
// inspection by the caller (logging, checkpointing, plotting).
type GenerationSnapshot struct {
	Generation  int
	Species     []*genetics.Species
	BestGenome  *genetics.Genome
	BestFitness float64
}

// Evolution owns the population, the species set, and the reproduction
// counters across the full run of an evolutionary experiment.
type Evolution struct {
	opts         *neat.Options
	numInputs    int
	numOutputs   int
	reproduction *genetics.Reproduction
	species      *genetics.SpeciesSet

	population map[int]*genetics.Genome
	generation int

	bestGenome  *genetics.Genome
	bestFitness float64

	History []GenerationSnapshot
}

// NewEvolution constructs the initial population and its generation-0
// speciation, ready for Run. ctx must carry a *neat.Options value (see
// neat.NewContext / Options.NeatContext); this is how options are handed
// down to reproduction and speciation for the whole run.
func NewEvolution(ctx context.Context, numInputs, numOutputs int, rng *rand.Rand) (*Evolution, error) {
	opts, found := neat.FromContext(ctx)
	if !found {
		return nil, neat.ErrNEATOptionsNotFound
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	reproduction := genetics.NewReproduction(opts, numInputs, numOutputs)
	population := reproduction.CreateNewPopulation(numInputs, numOutputs, rng)

	speciesSet := genetics.NewSpeciesSet(opts)
	speciesSet.Speciate(population, 0)

	return &Evolution{
		opts:         opts,
		numInputs:    numInputs,
		numOutputs:   numOutputs,
		reproduction: reproduction,
		species:      speciesSet,
		population:   population,
		bestFitness:  math.Inf(-1),
	}, nil
}

// Run executes the evolutionary loop for up to maxGenerations
// generations, invoking fitnessFn once per generation and stopping
// early if the best genome's fitness exceeds fitnessGoal. Returns the
// best genome found (a deep copy, safe to retain) and the generation
// at which the run stopped.
func (e *Evolution) Run(fitnessFn FitnessFunc, fitnessGoal float64, maxGenerations int, aggregate genetics.SpeciesFitnessFunc, rng *rand.Rand) (*genetics.Genome, int, error) {
	for gen := 0; gen < maxGenerations; gen++ {
		e.generation = gen
		fitnessFn(e.population)

		for id, g := range e.population {
			if g.Fitness == nil {
				return nil, gen, errors.Wrapf(neat.ErrMissingFitness, "genome %d has no fitness after evaluation", id)
			}
		}

		// Shallow copies keep this generation's representative and member
		// map even after the next Speciate reassigns them on the live
		// species.
		speciesSnapshot := make([]*genetics.Species, 0, len(e.species.All()))
		for _, sp := range e.species.All() {
			cp := *sp
			speciesSnapshot = append(speciesSnapshot, &cp)
		}
		e.updateBest()

		e.History = append(e.History, GenerationSnapshot{
			Generation:  gen,
			Species:     speciesSnapshot,
			BestGenome:  e.bestGenome,
			BestFitness: e.bestFitness,
		})

		neat.InfoLog(fmt.Sprintf(">>>>> Generation:%3d\tspecies: %d\tbest fitness: %f", gen, len(speciesSnapshot), e.bestFitness))

		if e.bestFitness > fitnessGoal {
			neat.InfoLog(fmt.Sprintf(">>>>> The winner organism found in [%d] generation, fitness: %f <<<<<", gen, e.bestFitness))
			return e.bestGenome, gen, nil
		}

		if len(speciesSnapshot) == 0 {
			neat.WarnLog(fmt.Sprintf("EVOLUTION: population extinct at generation %d, no species survived", gen))
		}

		newPopulation, err := e.reproduction.Reproduce(e.species, gen, aggregate, rng)
		if err != nil {
			return nil, gen, err
		}
		e.population = newPopulation
		e.species.Speciate(e.population, gen+1)
	}
	return e.bestGenome, maxGenerations, nil
}

// updateBest scans the current population for a new best genome,
// deep-copying it so the snapshot never aliases a live population
// member across generations.
func (e *Evolution) updateBest() {
	for _, id := range sortedGenomeIDs(e.population) {
		g := e.population[id]
		if g.Fitness != nil && *g.Fitness > e.bestFitness {
			e.bestFitness = *g.Fitness
			e.bestGenome = g.Copy()
		}
	}
}

func sortedGenomeIDs(population map[int]*genetics.Genome) []int {
	ids := make([]int, 0, len(population))
	for id := range population {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}

// Population returns the current generation's population.
func (e *Evolution) Population() map[int]*genetics.Genome {
	return e.population
}

// Generation returns the index of the most recently completed
// generation.
func (e *Evolution) Generation() int {
	return e.generation
}
