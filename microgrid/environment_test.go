package microgrid

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeriesData(n int) SeriesData {
	timestamps := make([]time.Time, n)
	up := make([]float64, n)
	down := make([]float64, n)
	generated := make([]float64, n)
	basePrices := make([]float64, n)
	outdoor := make([]float64, n)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		timestamps[i] = base.Add(time.Duration(i) * time.Hour)
		up[i] = 50.0
		down[i] = 30.0
		generated[i] = 200.0
		basePrices[i] = 40.0
		outdoor[i] = 10.0
	}
	return SeriesData{
		UpPrices:           up,
		DownPrices:         down,
		GeneratedEnergy:    generated,
		BasePrices:         basePrices,
		OutdoorTemperature: outdoor,
		Timestamps:         timestamps,
	}
}

func smallParams() Params {
	p := DefaultParams()
	p.TCL.Count = 5
	p.Households.Count = 5
	return p
}

func TestEnvironment_stepProducesObservation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	env, err := NewEnvironment(smallParams(), testSeriesData(10), rng)
	require.NoError(t, err)

	reward, state, err := env.Step(Action{TCLLevel: 2, PriceLevel: 2, DeficiencyPriority: BuyFirst, ExcessPriority: SellFirst}, rng)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, state.TCLStateOfCharge, 0.0)
	assert.LessOrEqual(t, state.TCLStateOfCharge, 1.0)
	assert.GreaterOrEqual(t, state.ESSStateOfCharge, 0.0)
	assert.LessOrEqual(t, state.ESSStateOfCharge, 1.0)
	assert.Equal(t, 0, state.HourOfDay)
	_ = reward
}

func TestEnvironment_indexOutOfRange(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	env, err := NewEnvironment(smallParams(), testSeriesData(2), rng)
	require.NoError(t, err)

	action := Action{TCLLevel: 1, PriceLevel: 2, DeficiencyPriority: BuyFirst, ExcessPriority: SellFirst}
	_, _, err = env.Step(action, rng)
	require.NoError(t, err)
	_, _, err = env.Step(action, rng)
	require.NoError(t, err)
	_, _, err = env.Step(action, rng)
	assert.Error(t, err)
}

func TestEnvironment_invalidActionRejected(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	env, err := NewEnvironment(smallParams(), testSeriesData(10), rng)
	require.NoError(t, err)

	_, _, err = env.Step(Action{TCLLevel: 9, PriceLevel: 2}, rng)
	assert.Error(t, err)
}

func TestEnvironment_rejectsEmptySeries(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	_, err := NewEnvironment(smallParams(), SeriesData{}, rng)
	assert.Error(t, err)
}

func TestParamsFromMap_overridesAndCoerces(t *testing.T) {
	p, err := ParamsFromMap(map[string]interface{}{
		"tcl_count":       "42", // string coerced to int via cast
		"household_count": 7,
		"generation_cost": "0.05",
	})
	require.NoError(t, err)
	assert.Equal(t, 42, p.TCL.Count)
	assert.Equal(t, 7, p.Households.Count)
	assert.InDelta(t, 0.05, p.GenerationCost, 1e-9)
	assert.Equal(t, DefaultParams().ESS.MaxEnergy, p.ESS.MaxEnergy)
}

func TestParamsFromMap_invalidValue(t *testing.T) {
	_, err := ParamsFromMap(map[string]interface{}{"tcl_count": "not-a-number"})
	assert.Error(t, err)
}
