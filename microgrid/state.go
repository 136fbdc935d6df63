package microgrid

// State is the 8-tuple observation returned after every Environment
// step: the first six fields are real-valued (the first two clamped to
// [0,1]); PricingCounter is the cumulative price-level throttle and
// HourOfDay is the calendar hour aligned with the current index.
type State struct {
	TCLStateOfCharge    float64
	ESSStateOfCharge    float64
	OutdoorTemperature  float64
	GeneratedEnergy     float64
	UpPrice             float64
	BaseResidentialLoad float64
	PricingCounter      int
	HourOfDay           int
}
