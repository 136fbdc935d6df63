package microgrid

import "github.com/pkg/errors"

var (
	// ErrConfig marks an invalid microgrid configuration; NewEnvironment
	// raises it when a required time series is empty.
	ErrConfig = errors.New("invalid microgrid configuration")
	// ErrInvalidAction marks an action outside its declared discrete
	// range.
	ErrInvalidAction = errors.New("action outside declared range")
	// ErrIndexOutOfRange marks a timestep index beyond the bounds of
	// one of the backing time series.
	ErrIndexOutOfRange = errors.New("microgrid index out of range")
)
