package components

// ESS is a battery: an energy store with independent charge and
// discharge power caps and efficiencies.
type ESS struct {
	Energy              float64
	MaxEnergy           float64
	MaxChargePower      float64
	MaxDischargePower   float64
	ChargeEfficiency    float64
	DischargeEfficiency float64
}

// update is the unified charge/discharge step shared by Charge and
// Discharge: both are expressed as one call with the power not being
// requested set to zero. Returns the energy supplied by discharging plus
// the part of chargePower the battery could not absorb.
func (e *ESS) update(chargePower, dischargePower float64) float64 {
	charging := clampNonNegative(chargePower)
	charging = minFloat(charging, e.MaxChargePower, (e.MaxEnergy-e.Energy)/e.ChargeEfficiency)

	discharging := clampNonNegative(dischargePower)
	discharging = minFloat(discharging, e.MaxDischargePower, e.Energy*e.DischargeEfficiency)

	e.Energy += e.ChargeEfficiency*charging - discharging/e.DischargeEfficiency

	return discharging + chargePower - charging
}

// Charge attempts to store p units of energy, returning the excess
// that could not be absorbed due to power or capacity limits.
func (e *ESS) Charge(p float64) float64 {
	return e.update(p, 0)
}

// Discharge attempts to draw p units of energy out of the battery,
// returning the energy actually supplied.
func (e *ESS) Discharge(p float64) float64 {
	return e.update(0, p)
}

// StateOfCharge returns Energy / MaxEnergy.
func (e *ESS) StateOfCharge() float64 {
	return e.Energy / e.MaxEnergy
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func minFloat(values ...float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
