package genetics

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/pkg/errors"

	"github.com/arborian/neatgrid/neat"
	neatmath "github.com/arborian/neatgrid/neat/math"
	"github.com/arborian/neatgrid/neat/stats"
)

// SpeciesFitnessFunc aggregates a non-empty sequence of member fitnesses
// into one species-level fitness. The default throughout this package is
// the arithmetic mean.
type SpeciesFitnessFunc func(stats.Floats) float64

// MeanSpeciesFitness is the default SpeciesFitnessFunc.
func MeanSpeciesFitness(f stats.Floats) float64 {
	return f.Mean()
}

// Reproduction owns the monotonic genome, node and innovation counters
// for one evolutionary run and turns one generation of species into
// the next generation's population. Only Reproduction ever touches
// these counters; they are never ambient globals.
type Reproduction struct {
	opts *neat.Options

	genomeCounter     int
	nodeCounter       int
	innovationCounter int

	// Ancestors records (p1, p2) parent genome ids for every offspring
	// ever produced, keyed by the offspring's genome id.
	Ancestors map[int][2]int
}

// NewReproduction returns a Reproduction whose node and innovation
// counters start past the minimal genome's own fan-in (numInputs
// sensors, numOutputs outputs, numInputs*numOutputs connections),
// matching the ids CreateNew hands out for the initial population.
func NewReproduction(opts *neat.Options, numInputs, numOutputs int) *Reproduction {
	return &Reproduction{
		opts:              opts,
		nodeCounter:       numInputs + numOutputs,
		innovationCounter: numInputs * numOutputs,
		Ancestors:         make(map[int][2]int),
	}
}

func (r *Reproduction) nextGenomeID() int {
	id := r.genomeCounter
	r.genomeCounter++
	return id
}

// NextNodeID allocates and returns the next node id.
func (r *Reproduction) NextNodeID() int {
	id := r.nodeCounter
	r.nodeCounter++
	return id
}

// NextInnovationID allocates and returns the next innovation number.
func (r *Reproduction) NextInnovationID() int {
	id := r.innovationCounter
	r.innovationCounter++
	return id
}

// CreateNewPopulation builds the initial generation: opts.PopulationSize
// minimal genomes, each with a fresh genome id. Every initial genome
// numbers its input-to-output connections 0..numInputs*numOutputs-1, so
// identical edges share an innovation number across the population.
func (r *Reproduction) CreateNewPopulation(numInputs, numOutputs int, rng *rand.Rand) map[int]*Genome {
	population := make(map[int]*Genome, r.opts.PopulationSize)
	for i := 0; i < r.opts.PopulationSize; i++ {
		id := r.nextGenomeID()
		innov := 0
		nextInitialInnovation := func() int {
			n := innov
			innov++
			return n
		}
		population[id] = CreateNew(id, numInputs, numOutputs, r.opts.Weight(), r.opts.Bias(), nextInitialInnovation, rng)
	}
	return population
}

// stagnationEntry pairs a species with its freshly-computed aggregate
// fitness for one stagnation pass.
type stagnationEntry struct {
	species *Species
	fitness float64
}

// detectStagnation applies shared fitness, appends this generation's
// aggregate to each species' history, and marks the species that have
// failed to improve for opts.MaxStagnation generations as stagnant —
// except for the top opts.NumSurvivingEliteSpecies species by aggregate
// fitness, which are always immune.
func (r *Reproduction) detectStagnation(speciesList []*Species, generation int, aggregate SpeciesFitnessFunc) []stagnationEntry {
	entries := make([]stagnationEntry, 0, len(speciesList))
	for _, sp := range speciesList {
		for _, gk := range sp.MemberKeys() {
			g := sp.Members[gk]
			if g.Fitness != nil {
				shared := *g.Fitness / float64(len(sp.Members))
				g.Fitness = &shared
			}
		}

		prevBest := math.Inf(-1)
		if len(sp.FitnessHistory) > 0 {
			prevBest = stats.Floats(sp.FitnessHistory).Max()
		}

		memberFitnesses := make(stats.Floats, 0, len(sp.Members))
		for _, gk := range sp.MemberKeys() {
			if f := sp.Members[gk].Fitness; f != nil {
				memberFitnesses = append(memberFitnesses, *f)
			}
		}
		agg := aggregate(memberFitnesses)
		sp.Fitness = agg
		sp.HasFitness = true
		sp.FitnessHistory = append(sp.FitnessHistory, agg)
		if agg > prevBest {
			sp.LastImproved = generation
		}
		entries = append(entries, stagnationEntry{species: sp, fitness: agg})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].fitness < entries[j].fitness })

	eliteCutoff := len(entries) - r.opts.NumSurvivingEliteSpecies
	notStagnantCount := len(entries)
	stagnant := make(map[int]bool, len(entries))
	for i, e := range entries {
		isElite := i >= eliteCutoff
		stagnantTime := generation - e.species.LastImproved
		if !isElite && stagnantTime >= r.opts.MaxStagnation && notStagnantCount > r.opts.NumSurvivingEliteSpecies {
			stagnant[e.species.Key] = true
			notStagnantCount--
			neat.DebugLog(fmt.Sprintf("REPRODUCTION: species %d stagnant for %d generations, culled at generation %d", e.species.Key, stagnantTime, generation))
		}
	}

	// Restore deterministic key order for downstream processing; the
	// fitness-ascending order above only mattered for elite/stagnation
	// ranking.
	sort.Slice(entries, func(i, j int) bool { return entries[i].species.Key < entries[j].species.Key })

	survivors := make([]stagnationEntry, 0, len(entries))
	for _, e := range entries {
		if !stagnant[e.species.Key] {
			survivors = append(survivors, e)
		}
	}
	return survivors
}

// computeSpawnAmounts implements the spawn-allocation algorithm: target
// sizes from normalized adjusted fitness, smoothed against the
// species' previous size, then renormalized to approximately
// population_size while never dropping below min_species_size.
func (r *Reproduction) computeSpawnAmounts(surviving []stagnationEntry) map[int]int {
	minFit, maxFit := math.Inf(1), math.Inf(-1)
	for _, e := range surviving {
		for _, gk := range e.species.MemberKeys() {
			g := e.species.Members[gk]
			if g.Fitness == nil {
				continue
			}
			if *g.Fitness < minFit {
				minFit = *g.Fitness
			}
			if *g.Fitness > maxFit {
				maxFit = *g.Fitness
			}
		}
	}
	fitRange := maxFit - minFit
	if fitRange < 1.0 {
		fitRange = 1.0
	}

	total := 0.0
	for _, e := range surviving {
		memberFitnesses := make(stats.Floats, 0, len(e.species.Members))
		for _, gk := range e.species.MemberKeys() {
			if f := e.species.Members[gk].Fitness; f != nil {
				memberFitnesses = append(memberFitnesses, *f)
			}
		}
		af := (memberFitnesses.Mean() - minFit) / fitRange
		e.species.AdjustedFitness = af
		total += af
	}

	smoothed := make(map[int]float64, len(surviving))
	for _, e := range surviving {
		var target float64
		if e.species.AdjustedFitness > 0 && total > 0 {
			target = (e.species.AdjustedFitness / total) * float64(r.opts.PopulationSize)
			if target < float64(r.opts.MinSpeciesSize) {
				target = float64(r.opts.MinSpeciesSize)
			}
		} else {
			target = float64(r.opts.MinSpeciesSize)
		}

		prevSize := float64(len(e.species.Members))
		diff := (target - prevSize) * 0.5
		// math.Round is half-away-from-zero; this only disagrees with
		// Python's banker's rounding on exact .5 smoothing deltas.
		change := math.Round(diff)
		var s float64
		switch {
		case change != 0:
			s = prevSize + change
		case diff > 0:
			s = prevSize + 1
		case diff < 0:
			s = prevSize - 1
		default:
			s = prevSize
		}
		smoothed[e.species.Key] = s
	}

	sumSmoothed := 0.0
	for _, s := range smoothed {
		sumSmoothed += s
	}

	spawn := make(map[int]int, len(surviving))
	for _, e := range surviving {
		var v int
		if sumSmoothed > 0 {
			v = int(math.Round(smoothed[e.species.Key] * float64(r.opts.PopulationSize) / sumSmoothed))
		} else {
			v = r.opts.MinSpeciesSize
		}
		if v < r.opts.MinSpeciesSize {
			v = r.opts.MinSpeciesSize
		}
		spawn[e.species.Key] = v
	}
	return spawn
}

// spawnOffspring produces count offspring for one species: the top
// member survives unchanged as an elite, and the remainder are bred
// from a roulette-sampled parent pool drawn from the top
// ceil(repro_survival_rate * |members|) members by fitness (at least 2),
// each parent chosen with probability proportional to its own fitness
// within the pool.
func (r *Reproduction) spawnOffspring(sp *Species, count int, innovations *Innovations, rng *rand.Rand) ([]*Genome, error) {
	members := make([]*Genome, 0, len(sp.Members))
	for _, gk := range sp.MemberKeys() {
		members = append(members, sp.Members[gk])
	}
	sort.SliceStable(members, func(i, j int) bool {
		fi, fj := fitnessOf(members[i]), fitnessOf(members[j])
		return fi > fj
	})

	if len(members) == 0 {
		return nil, errors.Wrap(neat.ErrEmptyCrossover, "species has no members to reproduce from")
	}

	offspring := make([]*Genome, 0, count)
	elite := members[0].Copy()
	offspring = append(offspring, elite)

	cutoff := int(math.Ceil(r.opts.ReproSurvivalRate * float64(len(members))))
	if cutoff < 2 {
		cutoff = 2
	}
	if cutoff > len(members) {
		cutoff = len(members)
	}
	parentPool := members[:cutoff]
	weights := rouletteWeights(parentPool)

	for len(offspring) < count {
		p1 := parentPool[pickParent(rng, weights)]
		p2 := parentPool[pickParent(rng, weights)]

		childID := r.nextGenomeID()
		child, err := Crossover(childID, p1, p2, r.opts, rng)
		if err != nil {
			return nil, err
		}
		Mutate(child, r.opts, innovations, r.NextNodeID, r.NextInnovationID, rng)
		r.Ancestors[childID] = [2]int{p1.Key, p2.Key}
		offspring = append(offspring, child)
	}
	return offspring, nil
}

// rouletteWeights shifts the pool's fitnesses so the least-fit member
// gets a small positive floor, making every member a viable (if
// unlikely) roulette segment regardless of sign.
func rouletteWeights(pool []*Genome) []float64 {
	min := math.Inf(1)
	for _, g := range pool {
		if f := fitnessOf(g); f < min {
			min = f
		}
	}
	weights := make([]float64, len(pool))
	for i, g := range pool {
		weights[i] = fitnessOf(g) - min + 1e-6
	}
	return weights
}

// pickParent throws the roulette wheel over weights, falling back to a
// uniform draw if the throw lands on no segment (a NaN weight, as
// produced by a member without fitness).
func pickParent(rng *rand.Rand, weights []float64) int {
	if i := neatmath.SingleRouletteThrow(rng, weights); i >= 0 {
		return i
	}
	return rng.Intn(len(weights))
}

func fitnessOf(g *Genome) float64 {
	if g.Fitness == nil {
		return math.Inf(-1)
	}
	return *g.Fitness
}

// Reproduce runs one full reproduction step: shared-fitness adjustment,
// stagnation-based culling, spawn allocation, and offspring generation
// for every surviving species. Offspring are produced under one fresh
// Innovations registry shared across the whole step, so structurally
// identical mutations across different offspring receive identical
// ids. Returns the new population keyed by genome id; the surviving
// species are installed back into speciesSet (with stale member maps the
// caller must re-speciate).
func (r *Reproduction) Reproduce(speciesSet *SpeciesSet, generation int, aggregate SpeciesFitnessFunc, rng *rand.Rand) (map[int]*Genome, error) {
	if aggregate == nil {
		aggregate = MeanSpeciesFitness
	}

	surviving := r.detectStagnation(speciesSet.All(), generation, aggregate)
	if len(surviving) == 0 {
		neat.WarnLog(fmt.Sprintf("REPRODUCTION: population extinct at generation %d, no species survived stagnation culling", generation))
		return nil, errors.New("no species survived stagnation culling")
	}

	spawnAmounts := r.computeSpawnAmounts(surviving)

	newPopulation := make(map[int]*Genome)
	innovations := NewInnovations()
	survivingSpecies := make(map[int]*Species, len(surviving))

	for _, e := range surviving {
		offspring, err := r.spawnOffspring(e.species, spawnAmounts[e.species.Key], innovations, rng)
		if err != nil {
			return nil, err
		}
		for _, g := range offspring {
			newPopulation[g.Key] = g
		}
		survivingSpecies[e.species.Key] = e.species
	}

	speciesSet.ReplaceSpecies(survivingSpecies)
	return newPopulation, nil
}
