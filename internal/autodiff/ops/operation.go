// Package ops defines the backward nodes recorded by forward operations.
//
// Each forward method on Recorder computes its result with the wrapped
// backend and, when any input requires grad, records a node that knows how to
// compute input gradients from output gradients.
//
// Recorded nodes and what they save for backward:
//   - MulBackward: both operands (d(a*b)/da = b, d(a*b)/db = a)
//   - AddBackward: nothing
//   - ExpBackward: its output (d(exp(x))/dx = exp(x))
//   - ReLUBackward: its output (gradient passes where output > 0)
//   - SoftmaxBackward: its output (∂L/∂x = y * (∂L/∂y - Σ ∂L/∂y·y))
package ops

import (
	"github.com/born-ml/snapgrad/internal/autodiff"
	"github.com/born-ml/snapgrad/internal/tensor"
)

// Recorder runs forward operations and records their backward nodes.
type Recorder struct {
	backend tensor.Backend
}

// NewRecorder creates a recorder computing with backend.
func NewRecorder(backend tensor.Backend) *Recorder {
	return &Recorder{backend: backend}
}

// Backend returns the wrapped backend.
func (r *Recorder) Backend() tensor.Backend {
	return r.backend
}

// Mul multiplies a and b element-wise.
func (r *Recorder) Mul(a, b *autodiff.Variable) *autodiff.Variable {
	out := r.backend.Mul(a.Data(), b.Data())
	if !needsGrad(a, b) {
		return autodiff.NewLeaf(out, false)
	}
	return autodiff.NewResult(out, NewMulBackward(a, b), 0)
}

// Add adds a and b element-wise.
func (r *Recorder) Add(a, b *autodiff.Variable) *autodiff.Variable {
	defer a.Data().ForceNonUnique()()
	out := r.backend.Add(a.Data(), b.Data())
	if !needsGrad(a, b) {
		return autodiff.NewLeaf(out, false)
	}
	return autodiff.NewResult(out, NewAddBackward(a, b), 0)
}

// Exp computes e^x element-wise.
func (r *Recorder) Exp(x *autodiff.Variable) *autodiff.Variable {
	out := r.backend.Exp(x.Data())
	if !needsGrad(x) {
		return autodiff.NewLeaf(out, false)
	}
	node := &ExpBackward{NodeBase: autodiff.NewNodeBase("ExpBackward", autodiff.CollectNextEdges(x))}
	result := autodiff.NewResult(out, node, 0)
	node.result = autodiff.NewSavedVariable(result, true, false)
	return result
}

// ReLU computes max(0, x) element-wise.
func (r *Recorder) ReLU(x *autodiff.Variable) *autodiff.Variable {
	out := r.backend.ReLU(x.Data())
	if !needsGrad(x) {
		return autodiff.NewLeaf(out, false)
	}
	node := &ReLUBackward{NodeBase: autodiff.NewNodeBase("ReLUBackward", autodiff.CollectNextEdges(x))}
	result := autodiff.NewResult(out, node, 0)
	node.result = autodiff.NewSavedVariable(result, true, false)
	return result
}

// Softmax normalizes x along dim.
func (r *Recorder) Softmax(x *autodiff.Variable, dim int) *autodiff.Variable {
	out := r.backend.Softmax(x.Data(), dim)
	if !needsGrad(x) {
		return autodiff.NewLeaf(out, false)
	}
	if dim < 0 {
		dim += len(out.Shape())
	}
	node := &SoftmaxBackward{
		NodeBase: autodiff.NewNodeBase("SoftmaxBackward", autodiff.CollectNextEdges(x)),
		dim:      dim,
	}
	result := autodiff.NewResult(out, node, 0)
	node.result = autodiff.NewSavedVariable(result, true, false)
	return result
}

func needsGrad(inputs ...*autodiff.Variable) bool {
	if !autodiff.GradEnabled() {
		return false
	}
	for _, in := range inputs {
		if in.RequiresGrad() {
			return true
		}
	}
	return false
}
