package dataio

import (
	"bytes"
	"testing"

	"github.com/sbinet/npyio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestLoadPricesAndTemps(t *testing.T) {
	basePrices := []float64{40.0, 41.5, 39.0}
	outdoorTemps := []float64{10.0, 11.2, 9.8}

	flat := make([]float64, 0, len(basePrices)*2)
	for i := range basePrices {
		flat = append(flat, basePrices[i], outdoorTemps[i])
	}
	m := mat.NewDense(len(basePrices), 2, flat)

	var buf bytes.Buffer
	require.NoError(t, npyio.Write(&buf, m))

	gotBase, gotTemps, err := LoadPricesAndTemps(&buf)
	require.NoError(t, err)
	assert.InDeltaSlice(t, basePrices, gotBase, 1e-9)
	assert.InDeltaSlice(t, outdoorTemps, gotTemps, 1e-9)
}

func TestLoadPricesAndTemps_rejectsBadShape(t *testing.T) {
	m := mat.NewDense(3, 1, []float64{1, 2, 3})

	var buf bytes.Buffer
	require.NoError(t, npyio.Write(&buf, m))

	_, _, err := LoadPricesAndTemps(&buf)
	assert.Error(t, err)
}
