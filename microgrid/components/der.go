package components

import "time"

// DER is a distributed energy resource reading from a precomputed
// hourly generation series (e.g. wind power), paired with calendar
// timestamps and a per-unit generation cost used by the reward
// computation.
type DER struct {
	GeneratedEnergy []float64
	Timestamps      []time.Time
	GenerationCost  float64
}

// GetGeneratedEnergy returns the generation series value at idx.
func (d *DER) GetGeneratedEnergy(idx int) float64 {
	return d.GeneratedEnergy[idx]
}

// GetHourOfDay returns the calendar hour of the timestamp aligned with
// idx.
func (d *DER) GetHourOfDay(idx int) int {
	return d.Timestamps[idx].Hour()
}

// Len returns the length of the generation series, used by the caller
// to bound episode length.
func (d *DER) Len() int {
	return len(d.GeneratedEnergy)
}
