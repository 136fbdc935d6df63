package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestTCL() *TCL {
	return &TCL{
		NominalPower: 1.5,
		Controller:   BackupController{MinTemp: 19.0, MaxTemp: 25.0},
		Temperature: TCLTemperatureModel{
			InTemp:              22.0,
			BuildingTemp:        21.0,
			ThermalMassAir:      0.004,
			ThermalMassBuilding: 0.3,
			BuildingHeating:     0.0,
		},
	}
}

func TestTCL_monotonicHeatingResponse(t *testing.T) {
	withHeating := newTestTCL()
	withoutHeating := newTestTCL()

	heatedTemp := withHeating.Update(10.0, 1)
	coldTemp := withoutHeating.Update(10.0, 0)

	assert.GreaterOrEqual(t, heatedTemp, coldTemp)
}

func TestBackupController_overridesOutOfRange(t *testing.T) {
	c := BackupController{MinTemp: 19.0, MaxTemp: 25.0}
	assert.Equal(t, 1, c.GetAction(18.0, 0))
	assert.Equal(t, 0, c.GetAction(26.0, 1))
	assert.Equal(t, 1, c.GetAction(22.0, 1))
}

func TestTCLAggregator_allocatesToLowestSoCFirst(t *testing.T) {
	low := newTestTCL()
	low.Temperature.InTemp = 19.5 // low soc
	high := newTestTCL()
	high.Temperature.InTemp = 24.5 // high soc

	agg := &TCLAggregator{TCLs: []*TCL{high, low}, OutdoorTemps: []float64{10.0}}
	consumed := agg.AllocateEnergy(2.0, 0)

	// only the neediest (lowest SoC) TCL should have been switched on
	assert.InDelta(t, 1.5, consumed, 1e-9)
}
