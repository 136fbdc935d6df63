package components

import (
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// BaseHourlyResidentialLoads is the default 24-entry table of baseline
// residential demand by hour of day, in the same units as the rest of
// the environment's energy quantities.
var BaseHourlyResidentialLoads = [24]float64{
	1.2, 1.1, 1.0, 0.9, 0.9, 1.0,
	1.3, 1.8, 2.0, 1.7, 1.5, 1.4,
	1.4, 1.4, 1.4, 1.5, 1.7, 2.1,
	2.4, 2.3, 2.0, 1.8, 1.6, 1.4,
}

// PricingManager throttles runaway price-level adjustments: once the
// cumulative sum of applied levels crosses OverPricingThreshold within
// an episode, every subsequent level is forced to 0 instead of applied,
// and the counter never resets.
type PricingManager struct {
	OverPricingThreshold int
	priceLevelsSum       int
}

// NewPricingManager returns a manager with a zeroed cumulative counter.
func NewPricingManager(overPricingThreshold int) *PricingManager {
	return &PricingManager{OverPricingThreshold: overPricingThreshold}
}

// ValidatePriceLevel returns the effective price level to apply: x
// itself, unless the cumulative sum already exceeds
// OverPricingThreshold, in which case 0 is substituted. Either way the
// effective level is added to the running total.
func (p *PricingManager) ValidatePriceLevel(x int) int {
	effective := x
	if p.priceLevelsSum > p.OverPricingThreshold {
		effective = 0
	}
	p.priceLevelsSum += effective
	return effective
}

// PriceLevelsSum returns the running cumulative total of applied price
// levels so far this episode.
func (p *PricingManager) PriceLevelsSum() int {
	return p.priceLevelsSum
}

// HouseholdsManager owns a population of PriceResponsiveLoad instances
// sharing the same base hourly load table and market price series.
type HouseholdsManager struct {
	Households      []*PriceResponsiveLoad
	BaseHourlyLoads [24]float64
	BasePrices      []float64
	PriceInterval   float64
	Pricing         *PricingManager
}

// NewHouseholdsManager builds n households, each independently sampling
// sensitivity and patience from clipped Gaussians parameterized by
// (mean, stdev).
func NewHouseholdsManager(n int, sensitivityMean, sensitivityStdev float64, patienceMean, patienceStdev float64, baseHourlyLoads [24]float64, basePrices []float64, priceInterval float64, overPricingThreshold int, rng *rand.Rand) *HouseholdsManager {
	sensitivityDist := distuv.Normal{Mu: sensitivityMean, Sigma: sensitivityStdev, Src: rng}
	patienceDist := distuv.Normal{Mu: patienceMean, Sigma: patienceStdev, Src: rng}

	households := make([]*PriceResponsiveLoad, n)
	for i := range households {
		sensitivity := clip(sensitivityDist.Rand(), 0, 1)
		patience := int(clip(patienceDist.Rand(), 1, patienceMean*3))
		households[i] = NewPriceResponsiveLoad(sensitivity, patience)
	}
	return &HouseholdsManager{
		Households:      households,
		BaseHourlyLoads: baseHourlyLoads,
		BasePrices:      basePrices,
		PriceInterval:   priceInterval,
		Pricing:         NewPricingManager(overPricingThreshold),
	}
}

// GetConsumptionAndProfit validates priceLevel via the PricingManager,
// aggregates every household's demand for this step, and prices the
// result against the market base price at idx.
func (h *HouseholdsManager) GetConsumptionAndProfit(hour, priceLevel, idx int, rng *rand.Rand) (float64, float64) {
	effectiveLevel := h.Pricing.ValidatePriceLevel(priceLevel)

	consumption := 0.0
	baseLoad := h.BaseHourlyLoads[hour]
	for _, household := range h.Households {
		consumption += household.GetLoad(baseLoad, effectiveLevel, rng)
	}

	unitPrice := h.BasePrices[idx]/100.0 + float64(effectiveLevel)*h.PriceInterval
	return consumption, consumption * unitPrice
}
