package microgrid

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/arborian/neatgrid/microgrid/components"
)

// TCLParams configures the fleet of thermostatically-controlled loads.
// Each "Mean, Stdev" pair parameterizes a per-unit Gaussian draw at
// construction time (e.g. every TCL's nominal power is independently
// sampled around NominalPowerMean).
type TCLParams struct {
	Count                                             int
	ThermalMassAirMean, ThermalMassAirStdev           float64
	ThermalMassBuildingMean, ThermalMassBuildingStdev float64
	InternalHeatingMean, InternalHeatingStdev         float64
	NominalPowerMean, NominalPowerStdev               float64
	MinTemp, MaxTemp                                  float64
}

// ESSParams configures the battery.
type ESSParams struct {
	ChargeEfficiency, DischargeEfficiency float64
	MaxChargePower, MaxDischargePower     float64
	MaxEnergy                             float64
}

// GridParams configures the main grid connection.
type GridParams struct {
	ImportTransmissionCost, ExportTransmissionCost float64
}

// HouseholdParams configures the household population. Patience and
// Sensitivity are each "Mean, Stdev" pairs, independently sampled (and
// clipped to sane bounds) per household.
type HouseholdParams struct {
	Count                             int
	PatienceMean, PatienceStdev       float64
	SensitivityMean, SensitivityStdev float64
	PriceInterval                     float64
	OverPricingThreshold              int
}

// Params is the full microgrid configuration, mirroring the defaults
// the source environment ships with.
type Params struct {
	TCL            TCLParams
	ESS            ESSParams
	Grid           GridParams
	Households     HouseholdParams
	GenerationCost float64
}

// DefaultParams returns the microgrid's default configuration: 100
// TCLs, a 500-unit battery with 0.9 round-trip-leg efficiencies, and
// 150 price-responsive households.
func DefaultParams() Params {
	return Params{
		TCL: TCLParams{
			Count:                   100,
			ThermalMassAirMean:      0.004,
			ThermalMassAirStdev:     0.0008,
			ThermalMassBuildingMean: 0.3,
			ThermalMassBuildingStdev: 0.004,
			InternalHeatingMean:     0.0,
			InternalHeatingStdev:    0.01,
			NominalPowerMean:        1.5,
			NominalPowerStdev:       0.01,
			MinTemp:                 19.0,
			MaxTemp:                 25.0,
		},
		ESS: ESSParams{
			ChargeEfficiency:    0.9,
			DischargeEfficiency: 0.9,
			MaxChargePower:      250.0,
			MaxDischargePower:   250.0,
			MaxEnergy:           500.0,
		},
		Grid: GridParams{
			ImportTransmissionCost: 0.0097,
			ExportTransmissionCost: 0.0009,
		},
		Households: HouseholdParams{
			Count:                150,
			PatienceMean:         10,
			PatienceStdev:        6,
			SensitivityMean:      0.4,
			SensitivityStdev:     0.3,
			PriceInterval:        0.0015,
			OverPricingThreshold: 4,
		},
		GenerationCost: 0.032,
	}
}

// ParamsFromMap builds a Params from a loosely-typed map, the way the
// original simulator's per-component "from_dict" factories accepted
// plain dictionaries read from a scenario config file. Missing keys
// fall back to DefaultParams' values; present keys are coerced with
// github.com/spf13/cast so that callers can hand in JSON/YAML-decoded
// maps without pre-converting every numeric field.
func ParamsFromMap(m map[string]interface{}) (Params, error) {
	p := DefaultParams()

	if v, ok := m["tcl_count"]; ok {
		n, err := cast.ToIntE(v)
		if err != nil {
			return Params{}, errors.Wrap(err, "tcl_count")
		}
		p.TCL.Count = n
	}
	if v, ok := m["nominal_power_mean"]; ok {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return Params{}, errors.Wrap(err, "nominal_power_mean")
		}
		p.TCL.NominalPowerMean = f
	}
	if v, ok := m["nominal_power_stdev"]; ok {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return Params{}, errors.Wrap(err, "nominal_power_stdev")
		}
		p.TCL.NominalPowerStdev = f
	}
	if v, ok := m["ess_max_energy"]; ok {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return Params{}, errors.Wrap(err, "ess_max_energy")
		}
		p.ESS.MaxEnergy = f
	}
	if v, ok := m["household_count"]; ok {
		n, err := cast.ToIntE(v)
		if err != nil {
			return Params{}, errors.Wrap(err, "household_count")
		}
		p.Households.Count = n
	}
	if v, ok := m["over_pricing_threshold"]; ok {
		n, err := cast.ToIntE(v)
		if err != nil {
			return Params{}, errors.Wrap(err, "over_pricing_threshold")
		}
		p.Households.OverPricingThreshold = n
	}
	if v, ok := m["generation_cost"]; ok {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return Params{}, errors.Wrap(err, "generation_cost")
		}
		p.GenerationCost = f
	}

	return p, nil
}

// SeriesData is every precomputed time series the environment is
// driven by, all index-aligned: up/down regulation prices, wind
// generation, base residential market prices, and outdoor temperature.
type SeriesData struct {
	UpPrices           []float64
	DownPrices         []float64
	GeneratedEnergy    []float64
	BasePrices         []float64
	OutdoorTemperature []float64
	Timestamps         []time.Time
}

// Environment composes every microgrid component into one steppable
// simulation; it owns the shared timestep index and is not safe for
// concurrent use (each fitness evaluation must own its own instance).
type Environment struct {
	params Params

	tclAggregator *components.TCLAggregator
	ess           *components.ESS
	der           *components.DER
	grid          *components.MainGrid
	households    *components.HouseholdsManager

	idx int
}

// NewEnvironment builds an environment from params and data, sampling
// TCL thermal parameters and initial ESS energy from rng.
func NewEnvironment(params Params, data SeriesData, rng *rand.Rand) (*Environment, error) {
	if err := validateSeries(data); err != nil {
		return nil, err
	}

	tcls := make([]*components.TCL, params.TCL.Count)
	for i := range tcls {
		tcls[i] = &components.TCL{
			NominalPower: gaussian(rng, params.TCL.NominalPowerMean, params.TCL.NominalPowerStdev, 0, params.TCL.NominalPowerMean*4),
			Controller:   components.BackupController{MinTemp: params.TCL.MinTemp, MaxTemp: params.TCL.MaxTemp},
			Temperature: components.TCLTemperatureModel{
				InTemp:              uniform(rng, params.TCL.MinTemp, params.TCL.MaxTemp),
				BuildingTemp:        uniform(rng, params.TCL.MinTemp, params.TCL.MaxTemp),
				ThermalMassAir:      gaussian(rng, params.TCL.ThermalMassAirMean, params.TCL.ThermalMassAirStdev, 0, 1),
				ThermalMassBuilding: gaussian(rng, params.TCL.ThermalMassBuildingMean, params.TCL.ThermalMassBuildingStdev, 0, 1),
				BuildingHeating:     gaussian(rng, params.TCL.InternalHeatingMean, params.TCL.InternalHeatingStdev, 0, 1),
			},
		}
	}

	ess := &components.ESS{
		Energy:               gaussian(rng, params.ESS.MaxEnergy*0.5, params.ESS.MaxEnergy*0.1, 0, params.ESS.MaxEnergy),
		MaxEnergy:            params.ESS.MaxEnergy,
		MaxChargePower:       params.ESS.MaxChargePower,
		MaxDischargePower:    params.ESS.MaxDischargePower,
		ChargeEfficiency:     params.ESS.ChargeEfficiency,
		DischargeEfficiency:  params.ESS.DischargeEfficiency,
	}

	der := &components.DER{
		GeneratedEnergy: data.GeneratedEnergy,
		Timestamps:      data.Timestamps,
		GenerationCost:  params.GenerationCost,
	}

	grid := components.NewMainGrid(data.UpPrices, data.DownPrices, params.Grid.ImportTransmissionCost, params.Grid.ExportTransmissionCost)

	households := components.NewHouseholdsManager(
		params.Households.Count,
		params.Households.SensitivityMean, params.Households.SensitivityStdev,
		params.Households.PatienceMean, params.Households.PatienceStdev,
		components.BaseHourlyResidentialLoads,
		data.BasePrices,
		params.Households.PriceInterval,
		params.Households.OverPricingThreshold,
		rng,
	)

	return &Environment{
		params:        params,
		tclAggregator: &components.TCLAggregator{TCLs: tcls, OutdoorTemps: data.OutdoorTemperature},
		ess:           ess,
		der:           der,
		grid:          grid,
		households:    households,
		idx:           -1,
	}, nil
}

func validateSeries(data SeriesData) error {
	if len(data.UpPrices) == 0 || len(data.DownPrices) == 0 || len(data.GeneratedEnergy) == 0 || len(data.BasePrices) == 0 || len(data.OutdoorTemperature) == 0 {
		return errors.Wrap(ErrConfig, "microgrid series must not be empty")
	}
	return nil
}

func uniform(rng *rand.Rand, min, max float64) float64 {
	lo, hi := min, max
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo + rng.Float64()*(hi-lo)
}

// gaussian draws one clipped Gaussian sample via distuv.Normal, the
// policy this environment uses for every per-unit physical parameter
// (TCL thermal constants, nominal power, initial ESS energy).
func gaussian(rng *rand.Rand, mean, stdev, lo, hi float64) float64 {
	dist := distuv.Normal{Mu: mean, Sigma: stdev, Src: rng}
	return clip(dist.Rand(), lo, hi)
}

// minSeriesLen returns the minimum length across every index-aligned
// series, bounding the longest valid episode.
func (e *Environment) minSeriesLen() int {
	n := len(e.der.GeneratedEnergy)
	for _, l := range []int{len(e.grid.UpPrices), len(e.grid.DownPrices), len(e.households.BasePrices), len(e.tclAggregator.OutdoorTemps)} {
		if l < n {
			n = l
		}
	}
	return n
}

// Step advances the environment by one timestep given action, returning
// the reward and the new observation. Returns ErrIndexOutOfRange once
// the index would run past any backing series.
func (e *Environment) Step(action Action, rng *rand.Rand) (float64, State, error) {
	if err := action.Validate(); err != nil {
		return 0, State{}, err
	}

	e.idx++
	if e.idx >= e.minSeriesLen() {
		return 0, State{}, errors.Wrapf(ErrIndexOutOfRange, "index %d beyond series bounds", e.idx)
	}
	idx := e.idx

	tclEnergy := float64(len(e.tclAggregator.TCLs)) * 1.5 * (float64(action.TCLLevel) / 3.0)
	tclConsumed := e.tclAggregator.AllocateEnergy(tclEnergy, idx)

	hour := e.der.GetHourOfDay(idx)
	resConsumption, resProfit := e.households.GetConsumptionAndProfit(hour, action.EffectivePriceLevel(), idx, rng)

	generated := e.der.GetGeneratedEnergy(idx)

	excess := generated - tclConsumed - resConsumption

	gridReturn := e.settleEnergyBalance(excess, action, idx)

	reward := tclConsumed*e.der.GenerationCost + resProfit + gridReturn

	return reward, e.observe(idx), nil
}

// settleEnergyBalance disposes of a surplus (excess > 0) or covers a
// shortfall (excess < 0) according to the action's stated priorities,
// returning the net grid cash flow (positive when selling, negative
// when buying).
func (e *Environment) settleEnergyBalance(excess float64, action Action, idx int) float64 {
	if excess > 0 {
		return e.handleExcessEnergy(excess, action, idx)
	}
	return e.coverEnergyDeficiency(-excess, action, idx)
}

func (e *Environment) handleExcessEnergy(excess float64, action Action, idx int) float64 {
	if action.ExcessPriority == SellFirst {
		return e.grid.SoldProfit(excess, idx)
	}
	overflow := e.ess.Charge(excess)
	return e.grid.SoldProfit(overflow, idx)
}

func (e *Environment) coverEnergyDeficiency(deficiency float64, action Action, idx int) float64 {
	if action.DeficiencyPriority == BuyFirst {
		return -e.grid.BoughtCost(deficiency, idx)
	}
	supplied := e.ess.Discharge(deficiency)
	residual := deficiency - supplied
	return -e.grid.BoughtCost(residual, idx)
}

// observe composes the 8-tuple state vector for idx.
func (e *Environment) observe(idx int) State {
	return State{
		TCLStateOfCharge:    clip(e.tclAggregator.StateOfCharge(), 0, 1),
		ESSStateOfCharge:    clip(e.ess.StateOfCharge(), 0, 1),
		OutdoorTemperature:  e.tclAggregator.OutdoorTemps[idx],
		GeneratedEnergy:     e.der.GetGeneratedEnergy(idx),
		UpPrice:             e.grid.UpPrice(idx),
		BaseResidentialLoad: components.BaseHourlyResidentialLoads[e.der.GetHourOfDay(idx)],
		PricingCounter:      e.households.Pricing.PriceLevelsSum(),
		HourOfDay:           e.der.GetHourOfDay(idx),
	}
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
