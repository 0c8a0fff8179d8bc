// Package autodiff records backward-pass nodes during the forward computation
// and replays them to compute gradients.
//
// Architecture:
//   - Variable: a tensor plus its autograd metadata (producer node, output slot,
//     gradient accumulator for leaves)
//   - Node: one backward operation, linked to its inputs' producers by Edges
//   - SavedVariable: a value a Node cached for its backward formula, stamped
//     with the buffer version it was captured at
//   - Engine: runs a backward pass over the node DAG in dependency order
//
// Usage:
//
//	rec := ops.NewRecorder(cpu.New())
//	x := autodiff.NewLeaf(raw, true)
//	y := rec.Softmax(rec.Mul(x, x), 0)
//	err := autodiff.NewEngine(cpu.New()).Backward(y, seed, false)
//	grad := x.Grad()
package autodiff

import "github.com/born-ml/snapgrad/internal/tensor"

// Node is one backward operation in the recorded graph.
//
// Every implementation embeds NodeBase, which supplies naming, edges and the
// default "nothing saved" behaviour.
type Node interface {
	// Name returns the operation name, e.g. "MulBackward".
	Name() string

	// NextEdges returns the producers of this operation's inputs, one edge per
	// input, in a fixed order. An edge with a nil Function is an input that
	// needs no gradient.
	NextEdges() []Edge

	// CanSerialize reports whether the node holds saved variables that can be
	// checkpointed.
	CanSerialize() bool

	// SavedVariables returns the node's saved variables in a fixed order.
	SavedVariables() []*SavedVariable

	// Apply computes one gradient per next edge from the gradients flowing into
	// this node's outputs. Entries may be nil where no gradient flows.
	Apply(grads []*tensor.RawTensor, backend tensor.Backend) ([]*tensor.RawTensor, error)

	// ReleaseVariables frees the saved variables once the graph is not retained.
	ReleaseVariables()

	base() *NodeBase
}

// Edge points at the node that produced one input, and at which of that
// node's outputs the input was.
type Edge struct {
	Function Node
	InputNr  int
}

// IsValid reports whether the edge leads to a producer.
func (e Edge) IsValid() bool {
	return e.Function != nil
}

// NodeBase carries the state common to every node.
type NodeBase struct {
	name   string
	edges  []Edge
	anchor *nodeAnchor
}

// nodeAnchor is the target of weak references to a node. The node holds it
// strongly, so the anchor lives exactly as long as the node.
type nodeAnchor struct {
	node Node
}

// NewNodeBase creates the common node state.
func NewNodeBase(name string, edges []Edge) NodeBase {
	return NodeBase{name: name, edges: edges}
}

// Name returns the operation name.
func (b *NodeBase) Name() string {
	return b.name
}

// NextEdges returns the input edges.
func (b *NodeBase) NextEdges() []Edge {
	return b.edges
}

// CanSerialize returns false; nodes with saved variables override it.
func (b *NodeBase) CanSerialize() bool {
	return false
}

// SavedVariables returns nil; nodes with saved variables override it.
func (b *NodeBase) SavedVariables() []*SavedVariable {
	return nil
}

// ReleaseVariables is a no-op; nodes with saved variables override it.
func (b *NodeBase) ReleaseVariables() {}

func (b *NodeBase) base() *NodeBase {
	return b
}

// anchorOf returns n's weak-reference anchor, creating it on first use.
func anchorOf(n Node) *nodeAnchor {
	b := n.base()
	if b.anchor == nil {
		b.anchor = &nodeAnchor{node: n}
	}
	return b.anchor
}

// CollectNextEdges returns the gradient edges of the given inputs.
func CollectNextEdges(inputs ...*Variable) []Edge {
	edges := make([]Edge, len(inputs))
	for i, in := range inputs {
		if in != nil {
			edges[i] = in.GradientEdge()
		}
	}
	return edges
}

// AccumulateGrad sums the gradient contributions destined for a leaf.
type AccumulateGrad struct {
	NodeBase
	variable *Variable
}

func newAccumulateGrad(v *Variable) *AccumulateGrad {
	return &AccumulateGrad{
		NodeBase: NewNodeBase("AccumulateGrad", nil),
		variable: v,
	}
}

// Variable returns the leaf this accumulator feeds.
func (a *AccumulateGrad) Variable() *Variable {
	return a.variable
}

// Apply adds grads[0] into the leaf's gradient.
func (a *AccumulateGrad) Apply(grads []*tensor.RawTensor, backend tensor.Backend) ([]*tensor.RawTensor, error) {
	if len(grads) == 0 || grads[0] == nil {
		return nil, nil
	}
	g := grads[0]

	if a.variable.grad == nil {
		a.variable.grad = g.HostClone()
		return nil, nil
	}
	a.variable.grad = backend.Add(a.variable.grad, g)
	return nil, nil
}
