package components

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDER_getGeneratedEnergyAndHour(t *testing.T) {
	base := time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC)
	der := &DER{
		GeneratedEnergy: []float64{10.0, 20.0, 30.0},
		Timestamps: []time.Time{
			base,
			base.Add(time.Hour),
			base.Add(2 * time.Hour),
		},
		GenerationCost: 0.032,
	}

	assert.Equal(t, 20.0, der.GetGeneratedEnergy(1))
	assert.Equal(t, 6, der.GetHourOfDay(1))
	assert.Equal(t, 3, der.Len())
}
