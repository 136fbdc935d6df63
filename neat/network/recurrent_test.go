package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborian/neatgrid/neat/genetics"
)

func minimalGenome() *genetics.Genome {
	g := &genetics.Genome{
		Key:        0,
		Inputs:     map[int]genetics.NodeGene{0: {ID: 0, NodeType: genetics.SensorNode}, 1: {ID: 1, NodeType: genetics.SensorNode}},
		Nodes:      map[int]genetics.NodeGene{2: {ID: 2, NodeType: genetics.OutputNode, Bias: 0}},
		OutputKeys: []int{2},
		Connections: map[genetics.ConnKey]genetics.ConnectionGene{
			{In: 0, Out: 2}: {InNodeID: 0, OutNodeID: 2, Weight: 1, Enabled: true, InnovationID: 0},
			{In: 1, Out: 2}: {InNodeID: 1, OutNodeID: 2, Weight: -1, Enabled: true, InnovationID: 1},
		},
		ConnsByInnovation: map[int]genetics.ConnKey{0: {In: 0, Out: 2}, 1: {In: 1, Out: 2}},
	}
	return g
}

func TestRecurrentNetwork_minimalGenomeDecode(t *testing.T) {
	net := Create(minimalGenome())

	out, err := net.Activate([]float64{1.0, 1.0})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 0.5, out[0], 1e-9)

	out, err = net.Activate([]float64{1.0, 0.0})
	require.NoError(t, err)
	assert.InDelta(t, 0.9933071, out[0], 1e-6)
}

func TestRecurrentNetwork_activateWrongLength(t *testing.T) {
	net := Create(minimalGenome())
	_, err := net.Activate([]float64{1.0})
	assert.Error(t, err)
}

func TestRecurrentNetwork_decodeIsRepeatable(t *testing.T) {
	g := minimalGenome()
	net1 := Create(g)
	net2 := Create(g)

	out1, err := net1.Activate([]float64{1.0, 0.3})
	require.NoError(t, err)
	out2, err := net2.Activate([]float64{1.0, 0.3})
	require.NoError(t, err)
	assert.Equal(t, out1, out2)
}

func TestRequiredForOutput_excludesPrunedNodes(t *testing.T) {
	inputs := []int{0, 1}
	outputs := []int{4}
	edges := []edge{
		{in: 0, out: 2, weight: 1},
		{in: 2, out: 4, weight: 1},
		{in: 1, out: 3, weight: 1}, // node 3 feeds nothing required, must be pruned
	}
	required := RequiredForOutput(inputs, outputs, edges)

	assert.True(t, required[4])
	assert.True(t, required[2])
	assert.False(t, required[3])
	assert.False(t, required[0])
	assert.False(t, required[1])
}

func TestRequiredForOutput_idempotent(t *testing.T) {
	inputs := []int{0, 1}
	outputs := []int{3}
	edges := []edge{
		{in: 0, out: 2, weight: 1},
		{in: 2, out: 3, weight: 1},
		{in: 1, out: 3, weight: 1},
	}
	first := RequiredForOutput(inputs, outputs, edges)
	second := RequiredForOutput(inputs, outputs, edges)
	assert.Equal(t, first, second)
}
