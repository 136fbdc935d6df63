package genetics

import (
	"sort"

	"github.com/arborian/neatgrid/neat"
)

// Species is an equivalence class of genomes within compatibility
// distance of a representative, tracked across generations so that
// stagnation and spawn allocation can use its history.
type Species struct {
	Key            int
	Created        int
	LastImproved   int
	Representative *Genome
	Members        map[int]*Genome

	Fitness         float64
	HasFitness      bool
	AdjustedFitness float64
	FitnessHistory  []float64
}

// MemberKeys returns this species' member genome ids in ascending order.
func (s *Species) MemberKeys() []int {
	keys := make([]int, 0, len(s.Members))
	for k := range s.Members {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// DistanceCache memoizes Genome distance symmetrically by (a.Key, b.Key)
// for the duration of one speciation pass; coefficients are fixed at
// construction via opts.
type DistanceCache struct {
	opts  *neat.Options
	cache map[[2]int]float64
}

// NewDistanceCache returns an empty cache bound to opts' distance
// coefficients.
func NewDistanceCache(opts *neat.Options) *DistanceCache {
	return &DistanceCache{opts: opts, cache: make(map[[2]int]float64)}
}

// Distance returns the genetic distance between a and b, memoized
// symmetrically: Distance(a,b) and Distance(b,a) share one cache entry.
func (c *DistanceCache) Distance(a, b *Genome) float64 {
	key := [2]int{a.Key, b.Key}
	if key[0] > key[1] {
		key[0], key[1] = key[1], key[0]
	}
	if d, ok := c.cache[key]; ok {
		return d
	}
	d := Distance(a, b, c.opts)
	c.cache[key] = d
	return d
}

// SpeciesSet partitions a population into species by genetic distance,
// carrying species identity and representatives across generations.
type SpeciesSet struct {
	opts            *neat.Options
	species         map[int]*Species
	genomeToSpecies map[int]int
	nextSpeciesID   int
}

// NewSpeciesSet returns an empty species set bound to opts'
// compatibility threshold and distance coefficients.
func NewSpeciesSet(opts *neat.Options) *SpeciesSet {
	return &SpeciesSet{
		opts:            opts,
		species:         make(map[int]*Species),
		genomeToSpecies: make(map[int]int),
	}
}

// Species returns the species keyed by id, or nil if absent.
func (s *SpeciesSet) Species(id int) *Species {
	return s.species[id]
}

// All returns every species in ascending key order.
func (s *SpeciesSet) All() []*Species {
	keys := make([]int, 0, len(s.species))
	for k := range s.species {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]*Species, len(keys))
	for i, k := range keys {
		out[i] = s.species[k]
	}
	return out
}

// SpeciesOf returns the species id a genome belongs to, and whether it
// was found.
func (s *SpeciesSet) SpeciesOf(genomeKey int) (int, bool) {
	id, ok := s.genomeToSpecies[genomeKey]
	return id, ok
}

// ReplaceSpecies installs the surviving species (already culled of
// stagnant ones by Reproduction) ahead of the next Speciate call. Member
// maps are left as-is; Speciate repopulates them from population.
func (s *SpeciesSet) ReplaceSpecies(surviving map[int]*Species) {
	s.species = surviving
}

// Speciate partitions population (genome key -> genome) into species
// for generation, reusing existing species' representatives where
// possible and opening new species (via a monotonic, never-recycled id)
// for anything left over. Existing species are processed in ascending
// key order, each claiming the unspeciated genome closest to its old
// representative; new species are then opened from the genomes that
// remain, in ascending genome-key order.
func (s *SpeciesSet) Speciate(population map[int]*Genome, generation int) {
	cache := NewDistanceCache(s.opts)

	unspeciated := make(map[int]*Genome, len(population))
	for k, g := range population {
		unspeciated[k] = g
	}

	newRepresentatives := make(map[int]*Genome)
	newMembers := make(map[int]map[int]*Genome)

	for _, existingID := range s.sortedSpeciesIDs() {
		old := s.species[existingID]
		if old.Representative == nil || len(unspeciated) == 0 {
			continue
		}
		best, bestDist := s.closest(old.Representative, unspeciated, cache)
		if best == nil {
			continue
		}
		newRepresentatives[existingID] = best
		newMembers[existingID] = map[int]*Genome{best.Key: best}
		delete(unspeciated, best.Key)
		_ = bestDist
	}

	for _, gk := range sortedGenomeKeys(unspeciated) {
		g := unspeciated[gk]
		bestID := -1
		bestDist := 0.0
		for _, sid := range sortedIntKeys(newRepresentatives) {
			d := cache.Distance(g, newRepresentatives[sid])
			if d < s.opts.CompatibilityThreshold && (bestID == -1 || d < bestDist) {
				bestID, bestDist = sid, d
			}
		}
		if bestID == -1 {
			bestID = s.nextSpeciesID
			s.nextSpeciesID++
			newRepresentatives[bestID] = g
			newMembers[bestID] = map[int]*Genome{g.Key: g}
		} else {
			newMembers[bestID][g.Key] = g
		}
	}

	rebuilt := make(map[int]*Species, len(newRepresentatives))
	genomeToSpecies := make(map[int]int, len(population))
	for sid, rep := range newRepresentatives {
		sp, existed := s.species[sid]
		if !existed {
			sp = &Species{Key: sid, Created: generation, LastImproved: generation}
		}
		sp.Representative = rep
		sp.Members = newMembers[sid]
		rebuilt[sid] = sp
		for gk := range sp.Members {
			genomeToSpecies[gk] = sid
		}
	}

	s.species = rebuilt
	s.genomeToSpecies = genomeToSpecies
}

func (s *SpeciesSet) closest(representative *Genome, pool map[int]*Genome, cache *DistanceCache) (*Genome, float64) {
	var best *Genome
	bestDist := 0.0
	for _, gk := range sortedGenomeKeys(pool) {
		g := pool[gk]
		d := cache.Distance(representative, g)
		if best == nil || d < bestDist {
			best, bestDist = g, d
		}
	}
	return best, bestDist
}

func (s *SpeciesSet) sortedSpeciesIDs() []int {
	keys := make([]int, 0, len(s.species))
	for k := range s.species {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func sortedGenomeKeys(m map[int]*Genome) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func sortedIntKeys(m map[int]*Genome) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
