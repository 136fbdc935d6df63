package main

import (
	"testing"

	"github.com/arborian/neatgrid/microgrid"
	"github.com/stretchr/testify/assert"
)

func TestDiscretize(t *testing.T) {
	assert.Equal(t, 0, discretize(-1.0, 3))
	assert.Equal(t, 3, discretize(2.0, 3))
	assert.Equal(t, 1, discretize(0.3, 3))
}

func TestOutputsToAction(t *testing.T) {
	action := outputsToAction([]float64{0.5, 0.5, 0.9, 0.1})
	assert.NoError(t, action.Validate())
	assert.Equal(t, microgrid.ESSFirst, action.DeficiencyPriority)
	assert.Equal(t, microgrid.SellFirst, action.ExcessPriority)
}

func TestObservationToInputs(t *testing.T) {
	s := microgrid.State{TCLStateOfCharge: 0.5, ESSStateOfCharge: 0.25, HourOfDay: 12}
	inputs := observationToInputs(s)
	assert.Len(t, inputs, 8)
	assert.Equal(t, 0.5, inputs[0])
	assert.InDelta(t, 0.5, inputs[7], 1e-9)
}
