// Package microgrid simulates a discrete-time microgrid as the fitness
// environment evolved genomes are scored against: thermostatically
// controlled loads, a battery, wind generation, price-responsive
// households and a main grid connection, stepped one timestep at a
// time by Environment.Step.
package microgrid

import "github.com/pkg/errors"

// DeficiencyPriority selects how an energy shortfall is covered.
type DeficiencyPriority int

const (
	// BuyFirst covers a shortfall by buying from the main grid before
	// discharging the battery.
	BuyFirst DeficiencyPriority = iota
	// ESSFirst covers a shortfall by discharging the battery before
	// buying the residual from the main grid.
	ESSFirst
)

// ExcessPriority selects how surplus energy is disposed of.
type ExcessPriority int

const (
	// SellFirst sells all surplus energy to the main grid.
	SellFirst ExcessPriority = iota
	// StoreFirst charges the battery with the surplus before selling
	// the overflow.
	StoreFirst
)

// Action is one timestep's decision: a TCL duty level, a price-level
// adjustment, and priorities for how shortfalls and surpluses are
// handled.
type Action struct {
	TCLLevel           int
	PriceLevel         int
	DeficiencyPriority DeficiencyPriority
	ExcessPriority     ExcessPriority
}

// Validate checks that a's fields fall within their declared discrete
// ranges: tcl_level in [0,3] and price_level in [0,4].
func (a Action) Validate() error {
	if a.TCLLevel < 0 || a.TCLLevel > 3 {
		return errors.Wrapf(ErrInvalidAction, "tcl_level %d out of range [0,3]", a.TCLLevel)
	}
	if a.PriceLevel < 0 || a.PriceLevel > 4 {
		return errors.Wrapf(ErrInvalidAction, "price_level %d out of range [0,4]", a.PriceLevel)
	}
	return nil
}

// EffectivePriceLevel returns the action's price level recentered to
// {-2 .. 2}.
func (a Action) EffectivePriceLevel() int {
	return a.PriceLevel - 2
}
