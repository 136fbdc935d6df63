// Package network decodes a genome into an executable recurrent
// network: a required-node pruning pass followed by a double-buffered
// activation loop.
package network

import (
	"github.com/pkg/errors"

	"github.com/arborian/neatgrid/neat/genetics"
	neatmath "github.com/arborian/neatgrid/neat/math"
)

// edge is a pruned-down view of a genome connection used while building
// the evaluation order: just enough to decide reachability and to wire
// an evaluation's incoming sum.
type edge struct {
	in, out int
	weight  float64
}

// RequiredForOutput computes the set of node ids that can influence the
// output nodes: starting from the outputs, it repeatedly admits any
// non-input node that feeds (directly or transitively) into the
// required set, until no more can be added. The returned set always
// includes every output id and never an input id.
func RequiredForOutput(inputs, outputs []int, connections []edge) map[int]bool {
	inputSet := make(map[int]bool, len(inputs))
	for _, id := range inputs {
		inputSet[id] = true
	}

	required := make(map[int]bool, len(outputs))
	for _, id := range outputs {
		required[id] = true
	}

	for {
		candidates := make(map[int]bool)
		for _, c := range connections {
			if required[c.out] && !required[c.in] && !inputSet[c.in] {
				candidates[c.in] = true
			}
		}
		if len(candidates) == 0 {
			break
		}
		for id := range candidates {
			required[id] = true
		}
	}
	return required
}

// nodeEval is one node's contribution to an activation step: its bias
// and the (source id, weight) pairs feeding it, gathered once at decode
// time since the evaluation order does not matter under double
// buffering.
type nodeEval struct {
	nodeID   int
	bias     float64
	incoming []weightedSource
}

type weightedSource struct {
	sourceID int
	weight   float64
}

// RecurrentNetwork is a decoded, directly-executable genome: a fixed
// set of relevant node ids, a bias+incoming-edges evaluation list, and
// two value buffers swapped on every activation so that recurrent
// (cyclic) connections see the previous step's values.
type RecurrentNetwork struct {
	inputIDs  []int
	outputIDs []int
	evals     []nodeEval

	values [2]map[int]float64
	active int
}

// Create decodes g into a RecurrentNetwork: nodes not required for any
// output are pruned, and only enabled connections touching the
// required set contribute an evaluation.
func Create(g *genetics.Genome) *RecurrentNetwork {
	inputIDs := make([]int, 0, len(g.Inputs))
	for id := range g.Inputs {
		inputIDs = append(inputIDs, id)
	}

	edges := make([]edge, 0, len(g.Connections))
	for _, c := range g.Connections {
		if !c.Enabled {
			continue
		}
		edges = append(edges, edge{in: c.InNodeID, out: c.OutNodeID, weight: c.Weight})
	}

	required := RequiredForOutput(inputIDs, g.OutputKeys, edges)

	nodeInputs := make(map[int][]weightedSource)
	for _, e := range edges {
		if !required[e.in] && !required[e.out] {
			continue
		}
		nodeInputs[e.out] = append(nodeInputs[e.out], weightedSource{sourceID: e.in, weight: e.weight})
	}

	evals := make([]nodeEval, 0, len(required))
	for id := range required {
		n, ok := g.Nodes[id]
		if !ok {
			continue
		}
		evals = append(evals, nodeEval{nodeID: id, bias: n.Bias, incoming: nodeInputs[id]})
	}

	net := &RecurrentNetwork{
		inputIDs:  inputIDs,
		outputIDs: append([]int(nil), g.OutputKeys...),
		evals:     evals,
		values:    [2]map[int]float64{make(map[int]float64), make(map[int]float64)},
	}
	return net
}

// Reset zeros both value buffers.
func (n *RecurrentNetwork) Reset() {
	n.values[0] = make(map[int]float64)
	n.values[1] = make(map[int]float64)
	n.active = 0
}

// Activate runs one activation step given an input vector aligned with
// the genome's sensor ids in ascending order, returning the output
// values in the genome's output_keys order.
func (n *RecurrentNetwork) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != len(n.inputIDs) {
		return nil, errors.Errorf("activate: expected %d inputs, got %d", len(n.inputIDs), len(inputs))
	}

	n.active = 1 - n.active
	src := n.values[n.active]
	dst := n.values[1-n.active]

	sortedInputs := sortedInputIDs(n.inputIDs)
	for i, id := range sortedInputs {
		src[id] = inputs[i]
		dst[id] = inputs[i]
	}

	for _, ev := range n.evals {
		sum := 0.0
		for _, w := range ev.incoming {
			sum += src[w.sourceID] * w.weight
		}
		dst[ev.nodeID] = neatmath.SigmoidFn(ev.bias + sum)
	}

	out := make([]float64, len(n.outputIDs))
	for i, id := range n.outputIDs {
		out[i] = dst[id]
	}
	return out, nil
}

func sortedInputIDs(ids []int) []int {
	out := append([]int(nil), ids...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
