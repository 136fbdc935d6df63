package components

import (
	"math"
	"math/rand"
	"sort"
)

// PriceResponsiveLoad is one household's demand-shifting model: a
// sensitivity to price signals, a patience (in steps) governing how
// long a shifted load waits before it is forced back onto the grid,
// and the set of loads currently shifted out.
type PriceResponsiveLoad struct {
	Sensitivity float64
	Patience    int

	shiftedLoads map[int]float64
	step         int
}

// NewPriceResponsiveLoad returns a load with an empty shift backlog.
func NewPriceResponsiveLoad(sensitivity float64, patience int) *PriceResponsiveLoad {
	return &PriceResponsiveLoad{Sensitivity: sensitivity, Patience: patience, shiftedLoads: make(map[int]float64)}
}

// GetLoad advances the household by one step and returns its net load
// for this step: the (possibly negative) price-shifted base load, plus
// whatever previously-shifted load gets executed this step.
func (p *PriceResponsiveLoad) GetLoad(baseLoad float64, priceLevel int, rng *rand.Rand) float64 {
	t := p.step
	p.step++

	executed := 0.0
	for _, ts := range p.shiftedTimestampsAscending() {
		load := p.shiftedLoads[ts]
		priceTerm := -float64(priceLevel) * sign(load) / 2.0
		patienceTerm := float64(t-ts) / float64(p.Patience)
		probability := clip(priceTerm+patienceTerm, 0.0, 1.0)
		if rng.Float64() < probability {
			executed += load
			delete(p.shiftedLoads, ts)
		}
	}

	shifted := baseLoad * p.Sensitivity * float64(priceLevel)
	p.shiftedLoads[t] = shifted

	return baseLoad - shifted + executed
}

func (p *PriceResponsiveLoad) shiftedTimestampsAscending() []int {
	keys := make([]int, 0, len(p.shiftedLoads))
	for k := range p.shiftedLoads {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
