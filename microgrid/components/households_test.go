package components

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPricingManager_overPricingThrottle(t *testing.T) {
	pm := NewPricingManager(4)

	levels := []int{2, 2, 2, 0, 1}
	expected := []int{2, 2, 2, 0, 0}

	for i, level := range levels {
		effective := pm.ValidatePriceLevel(level)
		assert.Equal(t, expected[i], effective, "step %d", i)
	}
}

func TestPriceResponsiveLoad_netLoad(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	load := NewPriceResponsiveLoad(0.4, 6)

	net := load.GetLoad(1.0, 2, rng)
	// a positive price level shifts load out this step; the immediate
	// net load must be strictly less than the unshifted base load.
	assert.Less(t, net, 1.0)
}

func TestHouseholdsManager_consumptionAndProfit(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	basePrices := []float64{50.0, 55.0}
	manager := NewHouseholdsManager(10, 0.3, 0.4, 6, 10, BaseHourlyResidentialLoads, basePrices, 0.0015, 4, rng)

	consumption, profit := manager.GetConsumptionAndProfit(8, 2, 0, rng)
	assert.Greater(t, consumption, 0.0)
	assert.NotZero(t, profit)
}
