package neat

import "github.com/pkg/errors"

// Sentinel error kinds surfaced by this module. Construction-time problems
// are wrapped around ErrConfig; the others are raised by the evolutionary
// loop as documented on each wrapping site. The microgrid package declares
// and raises its own ErrInvalidAction and ErrIndexOutOfRange.
var (
	// ErrConfig marks an invalid configuration parameter discovered at
	// construction time (e.g. a non-positive population size, an
	// out-of-range probability, or inconsistent weight bounds).
	ErrConfig = errors.New("invalid NEAT configuration")

	// ErrMissingFitness marks a genome that reached the end of a
	// generation without having its fitness assigned by the fitness
	// callback.
	ErrMissingFitness = errors.New("genome missing fitness value")

	// ErrInvalidAction marks an action outside its declared discrete
	// range.
	ErrInvalidAction = errors.New("action outside declared range")

	// ErrIndexOutOfRange marks a microgrid simulation index beyond the
	// bounds of one of the backing time series.
	ErrIndexOutOfRange = errors.New("microgrid index out of range")

	// ErrEmptyCrossover marks an attempt to generate offspring from an
	// empty parent pool.
	ErrEmptyCrossover = errors.New("no parents available for crossover")
)
