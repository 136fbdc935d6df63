package components

import "sort"

// TCLAggregator owns a fleet of TCLs and the outdoor-temperature time
// series driving them, and allocates a shared energy budget across the
// fleet each step.
type TCLAggregator struct {
	TCLs         []*TCL
	OutdoorTemps []float64
}

// StateOfCharge returns the mean state of charge across the fleet.
func (a *TCLAggregator) StateOfCharge() float64 {
	if len(a.TCLs) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range a.TCLs {
		sum += t.StateOfCharge()
	}
	return sum / float64(len(a.TCLs))
}

// AllocateEnergy distributes energy across the fleet for timestep idx:
// TCLs are served in ascending state-of-charge order (the neediest
// first), each commanded on so long as its nominal power still fits
// within the energy remaining. Returns total energy actually consumed.
func (a *TCLAggregator) AllocateEnergy(energy float64, idx int) float64 {
	ordered := append([]*TCL(nil), a.TCLs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StateOfCharge() < ordered[j].StateOfCharge()
	})

	outTemp := a.OutdoorTemps[idx]
	remaining := energy
	consumed := 0.0
	for _, t := range ordered {
		action := desiredAction(t.NominalPower, remaining)
		used := t.Update(outTemp, action)
		remaining -= used
		consumed += used
	}
	return consumed
}

func desiredAction(nominalPower, energyRemaining float64) int {
	if nominalPower < energyRemaining {
		return 1
	}
	return 0
}
