// Package dataio loads the microgrid's precomputed time series: the
// paired (base_price, outdoor_temperature) array shipped as a NumPy
// .npy file, and the up-regulation/down-regulation/generation series
// shipped as CSV.
package dataio

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// LoadPricesAndTemps reads an Nx2 float64 .npy array (column 0 =
// base_price, column 1 = outdoor_temperature) and returns the two
// columns as index-aligned slices.
func LoadPricesAndTemps(r io.Reader) (basePrices, outdoorTemps []float64, err error) {
	reader, err := npyio.NewReader(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open npy array")
	}

	shape := reader.Header.Descr.Shape
	if len(shape) != 2 || shape[1] != 2 {
		return nil, nil, errors.Errorf("expected an Nx2 array, got shape %v", shape)
	}

	flat := make([]float64, shape[0]*shape[1])
	if err := reader.Read(&flat); err != nil {
		return nil, nil, errors.Wrap(err, "failed to read npy array data")
	}

	m := mat.NewDense(shape[0], shape[1], flat)
	basePrices = mat.Col(nil, 0, m)
	outdoorTemps = mat.Col(nil, 1, m)
	return basePrices, outdoorTemps, nil
}
