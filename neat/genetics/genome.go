package genetics

import (
	"math"
	"math/rand"
	"sort"

	"github.com/pkg/errors"

	"github.com/arborian/neatgrid/neat"
	neatmath "github.com/arborian/neatgrid/neat/math"
)

// ConnKey addresses a connection gene by its endpoints. It is stable
// identity within one genome: (in, out) pairs are never duplicated.
type ConnKey struct {
	In, Out int
}

// Genome is a directed graph of node and connection genes encoding the
// topology and parameters of one recurrent network, plus whatever
// fitness the evolutionary loop has assigned it so far.
type Genome struct {
	Key        int
	Inputs     map[int]NodeGene
	OutputKeys []int
	Nodes      map[int]NodeGene

	Connections       map[ConnKey]ConnectionGene
	ConnsByInnovation map[int]ConnKey

	Fitness *float64
}

func newEmptyGenome(key int) *Genome {
	return &Genome{
		Key:               key,
		Inputs:            make(map[int]NodeGene),
		Nodes:             make(map[int]NodeGene),
		Connections:       make(map[ConnKey]ConnectionGene),
		ConnsByInnovation: make(map[int]ConnKey),
	}
}

// addConnection inserts c into both the (in,out) and innovation views.
func (g *Genome) addConnection(c ConnectionGene) {
	key := ConnKey{In: c.InNodeID, Out: c.OutNodeID}
	g.Connections[key] = c
	g.ConnsByInnovation[c.InnovationID] = key
}

// IsSensor reports whether id names one of this genome's input nodes.
func (g *Genome) IsSensor(id int) bool {
	_, ok := g.Inputs[id]
	return ok
}

// IsOutput reports whether id names an output node.
func (g *Genome) IsOutput(id int) bool {
	n, ok := g.Nodes[id]
	return ok && n.NodeType == OutputNode
}

// sampleGaussian draws a clipped Gaussian sample for a weight or bias.
func sampleGaussian(rng *rand.Rand, opts neat.WeightOptions) float64 {
	v := rng.NormFloat64()*opts.InitStdev + opts.InitMean
	return neatmath.Clip(v, opts.MinVal, opts.MaxVal)
}

// CreateNew builds a minimal genome with numInputs sensors, numOutputs
// output nodes, and a full input-to-output connection fan, each
// connection receiving a distinct innovation number from
// nextInnovationID and a weight sampled from weightOpts; output node
// biases are sampled from biasOpts.
func CreateNew(key, numInputs, numOutputs int, weightOpts, biasOpts neat.WeightOptions, nextInnovationID func() int, rng *rand.Rand) *Genome {
	g := newEmptyGenome(key)
	g.OutputKeys = make([]int, numOutputs)

	for i := 0; i < numInputs; i++ {
		g.Inputs[i] = NodeGene{ID: i, NodeType: SensorNode}
	}
	for o := 0; o < numOutputs; o++ {
		id := numInputs + o
		g.Nodes[id] = NodeGene{ID: id, NodeType: OutputNode, Bias: sampleGaussian(rng, biasOpts)}
		g.OutputKeys[o] = id
	}
	for i := 0; i < numInputs; i++ {
		for o := 0; o < numOutputs; o++ {
			outID := numInputs + o
			g.addConnection(ConnectionGene{
				InNodeID:     i,
				OutNodeID:    outID,
				Weight:       sampleGaussian(rng, weightOpts),
				Enabled:      true,
				InnovationID: nextInnovationID(),
			})
		}
	}
	return g
}

// Crossover produces a new offspring genome from two evaluated parents.
// The fitter parent (ties won by p1) contributes every node it uses and
// every connection it carries; connections also present in the other
// parent inherit a weight chosen uniformly from either parent and may
// be disabled per keepDisabledProbability when either copy is disabled.
func Crossover(childKey int, p1, p2 *Genome, opts *neat.Options, rng *rand.Rand) (*Genome, error) {
	if p1 == nil || p2 == nil {
		return nil, errors.Wrap(neat.ErrEmptyCrossover, "crossover requires two parents")
	}
	if p1.Fitness == nil || p2.Fitness == nil {
		return nil, errors.Wrap(neat.ErrMissingFitness, "crossover requires parent fitness")
	}

	fitter, other := p1, p2
	if *p2.Fitness > *p1.Fitness {
		fitter, other = p2, p1
	}

	child := newEmptyGenome(childKey)
	child.OutputKeys = append([]int(nil), fitter.OutputKeys...)
	for id, n := range fitter.Inputs {
		child.Inputs[id] = n.Copy()
	}

	for key, c1 := range fitter.Connections {
		childConn := c1.Copy()
		if c2, ok := other.Connections[key]; ok {
			if rng.Float64() < 0.5 {
				childConn.Weight = c2.Weight
			}
			eitherDisabled := !c1.Enabled || !c2.Enabled
			childConn.Enabled = !(eitherDisabled && rng.Float64() < opts.KeepDisabledProbability)
		}
		child.addConnection(childConn)
	}

	for key := range child.Connections {
		for _, id := range [2]int{key.In, key.Out} {
			if _, ok := child.Inputs[id]; ok {
				continue
			}
			if _, ok := child.Nodes[id]; ok {
				continue
			}
			if n, ok := fitter.Nodes[id]; ok {
				child.Nodes[id] = n.Copy()
			}
		}
	}
	return child, nil
}

// connectionKeys returns the genome's connection keys in a deterministic
// order, so that random selection among them via an *rand.Rand index
// only depends on the RNG's draw sequence, never on Go's randomized map
// iteration.
func (g *Genome) connectionKeys() []ConnKey {
	keys := make([]ConnKey, 0, len(g.Connections))
	for k := range g.Connections {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].In != keys[j].In {
			return keys[i].In < keys[j].In
		}
		return keys[i].Out < keys[j].Out
	})
	return keys
}

// nodeKeys returns this genome's hidden+output node ids in ascending
// order.
func (g *Genome) nodeKeys() []int {
	keys := make([]int, 0, len(g.Nodes))
	for k := range g.Nodes {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// inputAndNodeKeys returns the union of input and node ids, ascending.
func (g *Genome) inputAndNodeKeys() []int {
	keys := make([]int, 0, len(g.Inputs)+len(g.Nodes))
	for k := range g.Inputs {
		keys = append(keys, k)
	}
	for k := range g.Nodes {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// MutateAddNode implements the add-node structural mutation: an
// existing connection is disabled and split by a new hidden node, with
// the new node id and the two new connections' innovation numbers
// shared across every offspring that splits the same edge within the
// same generation (via innovations).
func (g *Genome) MutateAddNode(innovations *Innovations, biasOpts neat.WeightOptions, nextNodeID, nextInnovationID func() int, rng *rand.Rand) {
	keys := g.connectionKeys()
	if len(keys) == 0 {
		return
	}
	key := keys[rng.Intn(len(keys))]
	c := g.Connections[key]
	c.Enabled = false
	g.Connections[key] = c

	hiddenID := innovations.SplitNode(key.In, key.Out, nextNodeID)
	g.Nodes[hiddenID] = NodeGene{ID: hiddenID, NodeType: HiddenNode, Bias: sampleGaussian(rng, biasOpts)}

	inInnov := innovations.AddedConnection(key.In, hiddenID, nextInnovationID)
	outInnov := innovations.AddedConnection(hiddenID, key.Out, nextInnovationID)
	g.addConnection(ConnectionGene{InNodeID: key.In, OutNodeID: hiddenID, Weight: 1.0, Enabled: true, InnovationID: inInnov})
	g.addConnection(ConnectionGene{InNodeID: hiddenID, OutNodeID: key.Out, Weight: c.Weight, Enabled: true, InnovationID: outInnov})
}

// MutateAddConnection implements the add-connection structural
// mutation: a new edge is drawn between a random source (input or
// node) and a random non-sensor destination. A pre-existing edge is
// simply re-enabled; an edge between two output nodes whose source is
// not itself a sensor is rejected.
func (g *Genome) MutateAddConnection(innovations *Innovations, weightOpts neat.WeightOptions, nextInnovationID func() int, rng *rand.Rand) {
	sources := g.inputAndNodeKeys()
	destinations := g.nodeKeys()
	if len(sources) == 0 || len(destinations) == 0 {
		return
	}
	inID := sources[rng.Intn(len(sources))]
	outID := destinations[rng.Intn(len(destinations))]
	key := ConnKey{In: inID, Out: outID}

	if c, ok := g.Connections[key]; ok {
		c.Enabled = true
		g.Connections[key] = c
		return
	}
	if !g.IsSensor(inID) && g.IsOutput(inID) && g.IsOutput(outID) {
		return
	}
	innov := innovations.AddedConnection(inID, outID, nextInnovationID)
	g.addConnection(ConnectionGene{
		InNodeID:     inID,
		OutNodeID:    outID,
		Weight:       sampleGaussian(rng, weightOpts),
		Enabled:      true,
		InnovationID: innov,
	})
}

// mutateReal applies the shared "replace or perturb" sampling policy
// used for both connection weights and node biases.
func mutateReal(current float64, opts neat.WeightOptions, replaceProb, adjustProb float64, rng *rand.Rand) float64 {
	r := rng.Float64()
	switch {
	case r < replaceProb:
		return sampleGaussian(rng, opts)
	case r < replaceProb+adjustProb:
		delta := float64(neatmath.RandSign(rng)) * rng.Float64() * opts.MaxAdjust
		return neatmath.Clip(current+delta, opts.MinVal, opts.MaxVal)
	default:
		return current
	}
}

// MutateWeights perturbs or replaces every connection weight in
// deterministic key order.
func (g *Genome) MutateWeights(opts *neat.Options, rng *rand.Rand) {
	weightOpts := opts.Weight()
	for _, key := range g.connectionKeys() {
		c := g.Connections[key]
		c.Weight = mutateReal(c.Weight, weightOpts, opts.ReplaceWeightProb, opts.AdjustWeightProb, rng)
		g.Connections[key] = c
	}
}

// MutateBiases perturbs or replaces every node bias in deterministic
// key order.
func (g *Genome) MutateBiases(opts *neat.Options, rng *rand.Rand) {
	biasOpts := opts.Bias()
	for _, id := range g.nodeKeys() {
		n := g.Nodes[id]
		n.Bias = mutateReal(n.Bias, biasOpts, opts.ReplaceBiasProb, opts.AdjustBiasProb, rng)
		g.Nodes[id] = n
	}
}

// Mutate applies, in order, the add-node, add-connection, weight and
// bias mutations, each gated by its configured probability (add-node
// and add-connection) or applied per-gene (weight and bias).
func Mutate(g *Genome, opts *neat.Options, innovations *Innovations, nextNodeID, nextInnovationID func() int, rng *rand.Rand) {
	if rng.Float64() < opts.NodeMutationProbability {
		g.MutateAddNode(innovations, opts.Bias(), nextNodeID, nextInnovationID, rng)
	}
	if rng.Float64() < opts.ConnectionMutationProbability {
		g.MutateAddConnection(innovations, opts.Weight(), nextInnovationID, rng)
	}
	g.MutateWeights(opts, rng)
	g.MutateBiases(opts, rng)
}

// Distance computes the genetic distance between two genomes used for
// speciation: a disjoint-node term plus a disjoint-connection term
// combined with a weight-difference term over matching connections.
func Distance(a, b *Genome, opts *neat.Options) float64 {
	return nodeTermDistance(a, b, opts) + connectionTermDistance(a, b, opts)
}

func nodeTermDistance(a, b *Genome, opts *neat.Options) float64 {
	if len(a.Nodes) == 0 && len(b.Nodes) == 0 {
		return 0
	}
	disjoint := 0
	for id := range a.Nodes {
		if _, ok := b.Nodes[id]; !ok {
			disjoint++
		}
	}
	for id := range b.Nodes {
		if _, ok := a.Nodes[id]; !ok {
			disjoint++
		}
	}
	denom := math.Log2(float64(maxInt(len(a.Nodes), len(b.Nodes))))
	if denom < 1 {
		denom = 1
	}
	return opts.DisjointCoefficient * float64(disjoint) / denom
}

func connectionTermDistance(a, b *Genome, opts *neat.Options) float64 {
	if len(a.Connections) == 0 && len(b.Connections) == 0 {
		return 0
	}
	disjoint := 0
	weightDiffSum := 0.0
	matching := 0
	for innov, keyA := range a.ConnsByInnovation {
		if keyB, ok := b.ConnsByInnovation[innov]; ok {
			matching++
			weightDiffSum += connectionDistance(a.Connections[keyA], b.Connections[keyB])
		} else {
			disjoint++
		}
	}
	for innov := range b.ConnsByInnovation {
		if _, ok := a.ConnsByInnovation[innov]; !ok {
			disjoint++
		}
	}
	denom := math.Log2(float64(maxInt(len(a.Connections), len(b.Connections))))
	if denom < 1 {
		denom = 1
	}
	d := opts.DisjointCoefficient * float64(disjoint) / denom
	if matching > 0 {
		d += opts.WeightCoefficient * weightDiffSum / float64(matching)
	}
	return d
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Copy returns a deep copy of the genome, suitable for use as a species
// representative snapshot or as a crossover parent that must not alias
// a live population member.
func (g *Genome) Copy() *Genome {
	clone := newEmptyGenome(g.Key)
	clone.OutputKeys = append([]int(nil), g.OutputKeys...)
	for id, n := range g.Inputs {
		clone.Inputs[id] = n
	}
	for id, n := range g.Nodes {
		clone.Nodes[id] = n
	}
	for key, c := range g.Connections {
		clone.Connections[key] = c
		clone.ConnsByInnovation[c.InnovationID] = key
	}
	if g.Fitness != nil {
		f := *g.Fitness
		clone.Fitness = &f
	}
	return clone
}
