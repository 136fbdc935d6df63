// Package components implements the individual microgrid building
// blocks the environment composes each step: thermostatically
// controlled loads and their aggregator, a battery, wind generation,
// the main grid connection, and price-responsive households.
package components

// BackupController enforces hard thermal limits on a TCL regardless of
// the action the controlling policy requested: it forces the TCL on
// when the indoor temperature falls below min_temp and off when it
// rises above max_temp.
type BackupController struct {
	MinTemp float64
	MaxTemp float64
}

// GetAction overrides the requested action (0 or 1) when the indoor
// temperature has drifted outside [MinTemp, MaxTemp].
func (b BackupController) GetAction(inTemp float64, requested int) int {
	switch {
	case inTemp < b.MinTemp:
		return 1
	case inTemp > b.MaxTemp:
		return 0
	default:
		return requested
	}
}

// GetStateOfCharge maps indoor temperature linearly onto [0,1] across
// [MinTemp, MaxTemp].
func (b BackupController) GetStateOfCharge(inTemp float64) float64 {
	return (inTemp - b.MinTemp) / (b.MaxTemp - b.MinTemp)
}

// TCLTemperatureModel is the thermal RC-like model of one TCL's indoor
// air and surrounding building mass.
type TCLTemperatureModel struct {
	InTemp              float64
	OutTemp             float64
	BuildingTemp        float64
	ThermalMassAir      float64
	ThermalMassBuilding float64
	BuildingHeating     float64
}

// Update advances the temperature model by one step given the outdoor
// temperature and the heating power actually delivered this step,
// returning the new indoor temperature.
func (m *TCLTemperatureModel) Update(outTemp, tclHeating float64) float64 {
	m.OutTemp = outTemp
	buildingDelta := m.buildingTempChange()
	m.InTemp = m.InTemp + (outTemp-m.InTemp)*m.ThermalMassAir - buildingDelta + tclHeating + m.BuildingHeating
	m.BuildingTemp += buildingDelta
	return m.InTemp
}

func (m *TCLTemperatureModel) buildingTempChange() float64 {
	return (m.InTemp - m.BuildingTemp) * m.ThermalMassBuilding
}

// TCL is one thermostatically-controlled load: a backup controller
// enforcing hard thermal limits plus the temperature model it drives.
type TCL struct {
	NominalPower float64
	Controller   BackupController
	Temperature  TCLTemperatureModel
}

// StateOfCharge returns the TCL's current state of charge in [0,1],
// derived from its indoor temperature.
func (t *TCL) StateOfCharge() float64 {
	return t.Controller.GetStateOfCharge(t.Temperature.InTemp)
}

// Update applies the backup-controller-overridden action for one step,
// returning the energy consumed (0 or NominalPower).
func (t *TCL) Update(outTemp float64, requestedAction int) float64 {
	effectiveAction := t.Controller.GetAction(t.Temperature.InTemp, requestedAction)
	tclHeating := t.NominalPower * float64(effectiveAction)
	t.Temperature.Update(outTemp, tclHeating)
	return tclHeating
}
