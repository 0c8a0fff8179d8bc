package autodiff

import (
	"weak"

	"github.com/born-ml/snapgrad/internal/tensor"
)

// Variable is a tensor value together with its autograd metadata.
//
// A leaf has no producer; if it requires grad its gradients are summed by an
// AccumulateGrad node, which the leaf references weakly. The graph holds the
// accumulator strongly through its edges.
type Variable struct {
	data            *tensor.RawTensor
	requiresGrad    bool
	gradFn          Node
	outputNr        int
	gradAccumulator weak.Pointer[AccumulateGrad]
	grad            *tensor.RawTensor
	name            string
}

// NewLeaf wraps data as a leaf variable.
func NewLeaf(data *tensor.RawTensor, requiresGrad bool) *Variable {
	return &Variable{
		data:         data,
		requiresGrad: requiresGrad,
	}
}

// NewResult wraps data as output outputNr of gradFn.
func NewResult(data *tensor.RawTensor, gradFn Node, outputNr int) *Variable {
	return &Variable{
		data:         data,
		requiresGrad: gradFn != nil,
		gradFn:       gradFn,
		outputNr:     outputNr,
	}
}

// Data returns the underlying tensor.
func (v *Variable) Data() *tensor.RawTensor {
	return v.data
}

// Name returns the variable's optional name.
func (v *Variable) Name() string {
	return v.name
}

// SetName sets a name used in diagnostics.
func (v *Variable) SetName(name string) *Variable {
	v.name = name
	return v
}

// RequiresGrad reports whether gradients are tracked for this variable.
func (v *Variable) RequiresGrad() bool {
	return v.requiresGrad
}

// SetRequiresGrad toggles gradient tracking.
func (v *Variable) SetRequiresGrad(requiresGrad bool) {
	v.requiresGrad = requiresGrad
}

// IsLeaf reports whether the variable has no producer.
func (v *Variable) IsLeaf() bool {
	return v.gradFn == nil
}

// GradFn returns the node that produced this variable, or nil for a leaf.
func (v *Variable) GradFn() Node {
	return v.gradFn
}

// OutputNr returns which output of GradFn this variable is.
func (v *Variable) OutputNr() int {
	return v.outputNr
}

// Version returns the current version of the variable's buffer.
func (v *Variable) Version() uint32 {
	return v.data.Version()
}

// Grad returns the accumulated gradient, or nil before any backward pass.
func (v *Variable) Grad() *tensor.RawTensor {
	return v.grad
}

// ZeroGrad resets the accumulated gradient to zeros in place.
func (v *Variable) ZeroGrad() {
	if v.grad == nil {
		return
	}
	clear(v.grad.Data())
	v.grad.MarkMutated()
}

// GradAccumulator returns the leaf's accumulator, creating it if it is gone.
// Returns nil for non-leaves and for leaves that do not require grad.
func (v *Variable) GradAccumulator() *AccumulateGrad {
	if !v.IsLeaf() || !v.requiresGrad {
		return nil
	}
	if acc := v.gradAccumulator.Value(); acc != nil {
		return acc
	}
	acc := newAccumulateGrad(v)
	v.gradAccumulator = weak.Make(acc)
	return acc
}

// GradientEdge returns the edge gradients for this variable flow into.
func (v *Variable) GradientEdge() Edge {
	if v.gradFn != nil {
		return Edge{Function: v.gradFn, InputNr: v.outputNr}
	}
	if acc := v.GradAccumulator(); acc != nil {
		return Edge{Function: acc, InputNr: 0}
	}
	return Edge{}
}
